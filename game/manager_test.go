package game

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"tagserver/protocol"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	modes := map[string]GamemodeFactory{
		"plain": newPlainMode,
	}
	return NewManager(modes, zap.NewNop())
}

func TestCreateGameUnknownGamemode(t *testing.T) {
	m := newTestManager(t)
	_, err := m.CreateGame("nosuchmode", testIdentity{id: 1, name: "owner"})
	if !errors.Is(err, ErrUnknownGamemode) {
		t.Fatalf("expected ErrUnknownGamemode, got %v", err)
	}
}

func TestCreateGameRegistersGame(t *testing.T) {
	m := newTestManager(t)
	gid, err := m.CreateGame("plain", testIdentity{id: 1, name: "owner"})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if gid == "" {
		t.Fatal("expected a non-empty game id")
	}

	g := m.Game(gid)
	if g == nil {
		t.Fatal("expected the game to be registered under its id")
	}
	if g.Mode != "plain" {
		t.Fatalf("expected mode name to be recorded, got %q", g.Mode)
	}
	if len(m.Games()) != 1 {
		t.Fatalf("expected one registered game, got %d", len(m.Games()))
	}
}

func TestModeNamesSorted(t *testing.T) {
	m := NewManager(map[string]GamemodeFactory{
		"zulu":  newPlainMode,
		"alpha": newPlainMode,
	}, zap.NewNop())

	names := m.ModeNames()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zulu" {
		t.Fatalf("expected sorted mode names, got %v", names)
	}
}

func TestJoinAndLeaveGame(t *testing.T) {
	m := newTestManager(t)
	gid, err := m.CreateGame("plain", testIdentity{id: 1, name: "owner"})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	g := m.Game(gid)

	client := &testClient{identity: testIdentity{id: 2, name: "alice"}}
	player := m.JoinGame(g, client)
	if player == nil {
		t.Fatal("expected a player from join")
	}
	if client.Player() != player || client.SessionGame() != g {
		t.Fatal("expected the session to be bound to the game")
	}
	if !client.hasAction(protocol.ActionJoinedGame) {
		t.Fatalf("expected joined game action, got %v", client.actions)
	}

	m.LeaveGame(client)
	if client.Player() != nil || client.SessionGame() != nil {
		t.Fatal("expected the session to be unbound after leave")
	}
}

func TestLastPlayerLeavingClosesGame(t *testing.T) {
	m := newTestManager(t)
	gid, _ := m.CreateGame("plain", testIdentity{id: 1, name: "owner"})
	g := m.Game(gid)

	client := &testClient{identity: testIdentity{id: 2, name: "alice"}}
	m.JoinGame(g, client)
	m.LeaveGame(client)

	if m.Game(gid) != nil {
		t.Fatal("expected the game to be dropped when the last player leaves")
	}
}

func TestJoinSecondGameLeavesFirst(t *testing.T) {
	m := newTestManager(t)
	gid1, _ := m.CreateGame("plain", testIdentity{id: 1, name: "owner"})
	gid2, _ := m.CreateGame("plain", testIdentity{id: 1, name: "owner"})
	g1 := m.Game(gid1)
	g2 := m.Game(gid2)

	anchor := &testClient{identity: testIdentity{id: 9, name: "anchor"}}
	m.JoinGame(g1, anchor)

	client := &testClient{identity: testIdentity{id: 2, name: "alice"}}
	m.JoinGame(g1, client)
	if g1.PlayerCount() != 2 {
		t.Fatalf("expected two players in first game, got %d", g1.PlayerCount())
	}

	m.JoinGame(g2, client)
	if g1.PlayerCount() != 1 {
		t.Fatalf("expected the session to leave the first game, got %d players", g1.PlayerCount())
	}
	if client.SessionGame() != g2 {
		t.Fatal("expected the session to be bound to the second game")
	}
}

func TestLeaveWithoutGameResetsSession(t *testing.T) {
	m := newTestManager(t)
	client := &testClient{identity: testIdentity{id: 2, name: "alice"}}
	m.LeaveGame(client)
	if client.resets != 1 {
		t.Fatalf("expected one reset, got %d", client.resets)
	}
}

func TestGameIDCollisionsAvoided(t *testing.T) {
	m := newTestManager(t)
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		gid, err := m.CreateGame("plain", testIdentity{id: 1, name: "owner"})
		if err != nil {
			t.Fatalf("create game: %v", err)
		}
		if _, dup := seen[gid]; dup {
			t.Fatalf("duplicate game id issued: %q", gid)
		}
		seen[gid] = struct{}{}
	}
}
