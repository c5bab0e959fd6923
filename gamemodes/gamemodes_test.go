package gamemodes

import (
	"testing"

	"go.uber.org/zap"

	"tagserver/game"
)

type testIdentity struct {
	id   uint
	name string
}

func (i testIdentity) UserID() uint        { return i.id }
func (i testIdentity) DisplayName() string { return i.name }

type testClient struct {
	identity testIdentity
	player   *game.Player
	g        *game.Game
	actions  []int
}

func (c *testClient) Identity() game.Identity  { return c.identity }
func (c *testClient) Player() *game.Player     { return c.player }
func (c *testClient) SessionGame() *game.Game  { return c.g }
func (c *testClient) SetPlayer(p *game.Player) { c.player = p }
func (c *testClient) SetGame(g *game.Game)     { c.g = g }

func (c *testClient) TriggerAction(code int, params map[string]interface{}) {
	c.actions = append(c.actions, code)
}

func (c *testClient) SetField(data map[string]interface{}) {}
func (c *testClient) Update(full bool)                     {}

func (c *testClient) Reset() {
	c.player = nil
	c.g = nil
}

func (c *testClient) hasAction(code int) bool {
	for _, a := range c.actions {
		if a == code {
			return true
		}
	}
	return false
}

func newModeGame(t *testing.T, factory game.GamemodeFactory, playerCount int) (*game.Game, []*game.Player) {
	t.Helper()
	g := game.NewGame(factory, "amber-wolf", "test", testIdentity{id: 1, name: "owner"}, zap.NewNop())

	players := make([]*game.Player, 0, playerCount)
	for i := 0; i < playerCount; i++ {
		client := &testClient{identity: testIdentity{id: uint(i + 10), name: playerName(i)}}
		p := g.NewPlayer(client)
		g.AddPlayer(p)
		client.player = p
		client.g = g
		players = append(players, p)
	}
	return g, players
}

func playerName(i int) string {
	names := []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	return names[i%len(names)]
}

func clientOf(p *game.Player) *testClient {
	return p.Client.(*testClient)
}

func TestHueColorEndpoints(t *testing.T) {
	if got := hueColor(0); got != (game.Color{R: 255}) {
		t.Fatalf("expected pure red for hue 0, got %+v", got)
	}
	if got := hueColor(1.0 / 3.0); got != (game.Color{G: 255}) {
		t.Fatalf("expected pure green for hue 1/3, got %+v", got)
	}
	if got := hueColor(2.0 / 3.0); got != (game.Color{B: 255}) {
		t.Fatalf("expected pure blue for hue 2/3, got %+v", got)
	}
	// Hue wraps around the circle.
	if got := hueColor(1.5); got != hueColor(0.5) {
		t.Fatalf("expected hue to wrap, got %+v", got)
	}
}

func TestAvailableContainsAllModes(t *testing.T) {
	for _, name := range []string{"deathmatch", "zombie", "debug"} {
		if _, ok := Available[name]; !ok {
			t.Errorf("expected gamemode %q to be registered", name)
		}
	}
}
