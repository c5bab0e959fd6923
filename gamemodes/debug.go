package gamemodes

import (
	"time"

	"tagserver/game"
	"tagserver/protocol"
)

// Debug is a single-player-capable mode for protocol and hardware testing:
// deathmatch mechanics without health depletion or death, a flat 500 points
// per hit and a short 2 second inviolability window.
type Debug struct {
	game.Base

	inviolableTime int64
}

func NewDebug(g *game.Game) game.Gamemode {
	d := &Debug{Base: game.NewBase(g), inviolableTime: 2}
	d.PlayerMin = 1
	return d
}

func (d *Debug) PlayerJoined(p *game.Player) {
	p.Health = 100
	p.Points = 0
	p.ColorBeforeGame = true
}

func (d *Debug) PlayerGameStart(p *game.Player) {
	p.Color = hueColor(playerHue(d.PlayerIndex(p), d.PlayerCount(), 0))

	p.MaxShotInterval = 300

	p.Inviolable = false
	p.InviolableUntil = d.StartTime()
	p.PhaserEnable = true
	p.PhaserDisableUntil = d.StartTime()
}

func (d *Debug) PlayerGotHit(p, opponent *game.Player, sid int) {
	p.PhaserDisableUntil = time.Now().Unix() + d.inviolableTime
	p.InviolableUntil = p.PhaserDisableUntil

	p.Client.TriggerAction(protocol.ActionHitValid, nil)
}

func (d *Debug) PlayerHasHit(p, opponent *game.Player, sid int) {
	p.Points += 500
	p.Client.TriggerAction(protocol.ActionShotHit, nil)
}
