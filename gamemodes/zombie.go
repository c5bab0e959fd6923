package gamemodes

import (
	"math/rand"

	"tagserver/game"
	"tagserver/protocol"
)

// Zombie is a two-team infection mode. The mode owns its "Zombie" and
// "Alive" teams; external team edits are rejected while it is active. One
// random player starts as the sole zombie, every hit a zombie lands converts
// the victim. Only zombies score points (100 per converting hit).
type Zombie struct {
	game.Base

	teamZombie *game.Team
	teamAlive  *game.Team

	// pid of the randomly chosen first zombie, picked once at game start.
	initialZombie int
}

func NewZombie(g *game.Game) game.Gamemode {
	z := &Zombie{Base: game.NewBase(g)}
	z.PlayerMin = 2
	z.Managed = true

	z.teamZombie = g.NewTeam("Zombie")
	g.AddTeam(z.teamZombie)
	z.teamAlive = g.NewTeam("Alive")
	g.AddTeam(z.teamAlive)

	return z
}

func (z *Zombie) PlayerJoined(p *game.Player) {
	p.Health = 100
	p.Points = 0
	p.ColorBeforeGame = true
	p.InviolableLightsOff = false
}

func (z *Zombie) PlayerGameStart(p *game.Player) {
	if z.initialZombie == 0 {
		players := z.Players()
		z.initialZombie = players[rand.Intn(len(players))].PID
	}

	if p.PID == z.initialZombie {
		z.turnZombie(p)
	} else {
		p.Color = game.Color{}
		p.Health = 100
		p.Inviolable = false
		p.InviolableUntil = z.StartTime()
		p.PhaserEnable = false
		p.PhaserDisableUntil = 0
		z.MoveToTeam(p, z.teamAlive)
	}

	p.MaxShotInterval = 300
}

func (z *Zombie) PlayerGotHit(p, opponent *game.Player, sid int) {
	if p.Team == z.teamAlive && opponent.Team == z.teamZombie {
		z.turnZombie(p)
	}

	p.Client.TriggerAction(protocol.ActionHitValid, nil)
}

func (z *Zombie) PlayerHasHit(p, opponent *game.Player, sid int) {
	if p.Team == z.teamZombie {
		p.Points += 100
	}

	p.Client.TriggerAction(protocol.ActionShotHit, map[string]interface{}{"name": opponent.Name})
}

// turnZombie applies the full conversion: green lights, no health, phaser on
// and permanently inviolable, moved to the zombie team.
func (z *Zombie) turnZombie(p *game.Player) {
	p.Color = game.Color{G: 255}
	p.Health = 0
	p.Inviolable = true
	p.InviolableUntil = 0
	p.PhaserEnable = true
	p.PhaserDisableUntil = z.StartTime()
	z.MoveToTeam(p, z.teamZombie)
}
