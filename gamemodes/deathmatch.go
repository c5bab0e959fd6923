package gamemodes

import (
	"math/rand"
	"time"

	"tagserver/game"
	"tagserver/protocol"
)

// Deathmatch is free-for-all: every player gets an own color, each hit costs
// 10 health and grants a short inviolability window. A player without health
// is out for good; the phaser turns off and the lights go dark. Hits score
// 100 points, a killing shot 500.
type Deathmatch struct {
	game.Base

	// Per-game random hue offset so colors differ between games.
	colorOffset float64

	// Seconds of inviolability and phaser downtime after a hit.
	inviolableTime int64
}

func NewDeathmatch(g *game.Game) game.Gamemode {
	dm := &Deathmatch{
		Base:           game.NewBase(g),
		colorOffset:    float64(rand.Intn(100)) / 100.0,
		inviolableTime: 6,
	}
	dm.PlayerMin = 2
	return dm
}

func (dm *Deathmatch) PlayerJoined(p *game.Player) {
	p.Health = 100
	p.Points = 0
	p.ColorBeforeGame = true
}

func (dm *Deathmatch) PlayerGameStart(p *game.Player) {
	hue := playerHue(dm.PlayerIndex(p), dm.PlayerCount(), dm.colorOffset)
	p.Color = hueColor(hue)

	p.MaxShotInterval = 300

	// Inviolable and phaser off until the scheduled start.
	p.Inviolable = false
	p.InviolableUntil = dm.StartTime()
	p.PhaserEnable = true
	p.PhaserDisableUntil = dm.StartTime()
}

func (dm *Deathmatch) PlayerGotHit(p, opponent *game.Player, sid int) {
	if p.Health > 10 {
		p.Health -= 10
		p.InviolableUntil = time.Now().Unix() + dm.inviolableTime
		p.PhaserDisableUntil = p.InviolableUntil
	} else {
		// Dead players stay inviolable so no further hits register.
		p.Health = 0
		p.Inviolable = true
		p.PhaserEnable = false
		p.Color = game.Color{}
	}

	p.Client.TriggerAction(protocol.ActionHitValid, nil)
}

func (dm *Deathmatch) PlayerHasHit(p, opponent *game.Player, sid int) {
	if opponent.Health > 0 {
		p.Points += 100
	} else {
		p.Points += 500
	}

	p.Client.TriggerAction(protocol.ActionShotHit, map[string]interface{}{"name": opponent.Name})
}
