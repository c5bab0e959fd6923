package gamemodes

import (
	"testing"

	"tagserver/game"
)

func zombieTeams(t *testing.T, g *game.Game) (zombie, alive *game.Team) {
	t.Helper()
	zombie = g.TeamByName("Zombie")
	alive = g.TeamByName("Alive")
	if zombie == nil || alive == nil {
		t.Fatal("expected the mode to own a Zombie and an Alive team")
	}
	return zombie, alive
}

func TestZombieOwnsItsTeams(t *testing.T) {
	g, _ := newModeGame(t, NewZombie, 2)
	zombieTeams(t, g)
	if !g.TeamsManaged() {
		t.Fatal("expected team management to be locked for zombie games")
	}
	if g.TeamCount() != 2 {
		t.Fatalf("expected exactly two teams, got %d", g.TeamCount())
	}
}

func TestZombieStartPicksOneZombie(t *testing.T) {
	g, players := newModeGame(t, NewZombie, 4)
	teamZombie, teamAlive := zombieTeams(t, g)

	if !g.ScheduleStart(0) {
		t.Fatal("expected schedule to succeed")
	}

	if teamZombie.PlayerCount() != 1 {
		t.Fatalf("expected exactly one initial zombie, got %d", teamZombie.PlayerCount())
	}
	if teamAlive.PlayerCount() != 3 {
		t.Fatalf("expected three alive players, got %d", teamAlive.PlayerCount())
	}

	for _, p := range players {
		switch p.Team {
		case teamZombie:
			if p.Health != 0 || !p.Inviolable || !p.PhaserEnable {
				t.Fatalf("unexpected zombie state: health=%d inviolable=%v phaser=%v",
					p.Health, p.Inviolable, p.PhaserEnable)
			}
			if p.Color != (game.Color{G: 255}) {
				t.Fatalf("expected green zombie color, got %+v", p.Color)
			}
		case teamAlive:
			if p.Health != 100 || p.PhaserEnable {
				t.Fatalf("unexpected alive state: health=%d phaser=%v", p.Health, p.PhaserEnable)
			}
		default:
			t.Fatalf("player %d on unexpected team", p.PID)
		}
	}
}

func TestZombieHitConvertsVictim(t *testing.T) {
	g, players := newModeGame(t, NewZombie, 3)
	teamZombie, teamAlive := zombieTeams(t, g)
	g.ScheduleStart(0)

	var zombie, victim *game.Player
	for _, p := range players {
		if p.Team == teamZombie && zombie == nil {
			zombie = p
		}
		if p.Team == teamAlive && victim == nil {
			victim = p
		}
	}

	g.GotHit(victim, zombie.PID, 1)
	g.GotHit(victim, zombie.PID, 1)

	if zombie.Points != 100 {
		t.Fatalf("expected the converting hit to score once, got %d", zombie.Points)
	}
	if victim.Team != teamZombie {
		t.Fatal("expected the victim to join the zombie team")
	}
	if victim.Health != 0 || !victim.Inviolable {
		t.Fatalf("expected full conversion, health=%d inviolable=%v", victim.Health, victim.Inviolable)
	}
	if teamZombie.PlayerCount() != 2 {
		t.Fatalf("expected two zombies after conversion, got %d", teamZombie.PlayerCount())
	}
}

func TestZombieHitByAliveDoesNotConvert(t *testing.T) {
	g, players := newModeGame(t, NewZombie, 2)
	teamZombie, teamAlive := zombieTeams(t, g)
	g.ScheduleStart(0)

	var zombie, alive *game.Player
	for _, p := range players {
		if p.Team == teamZombie {
			zombie = p
		} else {
			alive = p
		}
	}

	g.GotHit(zombie, alive.PID, 1)

	if zombie.Team != teamZombie {
		t.Fatal("expected the zombie to stay a zombie")
	}
	if alive.Team != teamAlive {
		t.Fatal("expected the shooter to stay alive")
	}
	if alive.Points != 0 {
		t.Fatalf("expected no points for shooting a zombie, got %d", alive.Points)
	}
}
