package comm

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"tagserver/game"
	"tagserver/gamemodes"
	"tagserver/protocol"
)

type fakeIdentity struct {
	id   uint
	name string
}

func (i fakeIdentity) UserID() uint        { return i.id }
func (i fakeIdentity) DisplayName() string { return i.name }

// fakeConn records outbound payloads before serialization. Assertions in
// this file compare the in-memory values, so numbers keep their Go types;
// anything routed through a json round-trip instead would surface every
// number as float64.
type fakeConn struct {
	sent   []map[string]interface{}
	closed bool
}

func (c *fakeConn) Send(v interface{}) error {
	msg, ok := v.(map[string]interface{})
	if !ok {
		msg = map[string]interface{}{"raw": v}
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) last() map[string]interface{} {
	if len(c.sent) == 0 {
		return nil
	}
	return c.sent[len(c.sent)-1]
}

func (c *fakeConn) lastActions() []int {
	msg := c.last()
	if msg == nil {
		return nil
	}
	codes, _ := msg["a"].([]int)
	return codes
}

func hasCode(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func newTestManager() *game.Manager {
	return game.NewManager(gamemodes.Available, zap.NewNop())
}

func newGameClient(t *testing.T) (*game.Manager, *game.Game, *SocketClient, *fakeConn) {
	t.Helper()
	games := newTestManager()
	gid, err := games.CreateGame("debug", fakeIdentity{id: 1, name: "owner"})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	g := games.Game(gid)

	conn := &fakeConn{}
	client := NewSocketClient("conn-1", conn, fakeIdentity{id: 2, name: "alice"}, games, zap.NewNop())
	games.JoinGame(g, client)
	return games, g, client, conn
}

func TestJoinSendsFullPlayerState(t *testing.T) {
	_, _, _, conn := newGameClient(t)

	msg := conn.last()
	if msg == nil {
		t.Fatal("expected a payload after joining a game")
	}
	if !hasCode(conn.lastActions(), protocol.ActionJoinedGame) {
		t.Fatalf("expected joined game action, got %v", msg["a"])
	}
	for _, key := range []string{"p_pid", "p_health", "g_gid", "g_player_count"} {
		if _, ok := msg[key]; !ok {
			t.Errorf("expected key %q in the join payload", key)
		}
	}
}

func TestUpdateSendsOnlyChangedFields(t *testing.T) {
	_, g, client, conn := newGameClient(t)

	player := client.Player()
	player.Health = 90
	g.UpdateClient(client, false)

	msg := conn.last()
	if got, ok := msg["p_health"]; !ok || got != 90 {
		t.Fatalf("expected the changed health field in the diff, got %v", got)
	}
	if _, ok := msg["p_points"]; ok {
		t.Fatal("expected unchanged fields to be omitted from the diff")
	}
	if _, ok := msg["g_gid"]; ok {
		t.Fatal("expected unchanged game fields to be omitted from the diff")
	}
}

func TestUpdateWithoutChangesIsSuppressed(t *testing.T) {
	_, g, client, conn := newGameClient(t)

	before := len(conn.sent)
	g.UpdateClient(client, false)
	if len(conn.sent) != before {
		t.Fatalf("expected no transmission for an empty update, got %v", conn.last())
	}
}

func TestFullUpdateResendsEverything(t *testing.T) {
	_, g, client, conn := newGameClient(t)

	g.UpdateClient(client, true)
	msg := conn.last()
	for _, key := range []string{"p_pid", "p_health", "p_points", "g_gid"} {
		if _, ok := msg[key]; !ok {
			t.Errorf("expected key %q in the full update", key)
		}
	}
}

func TestFullDataUpdateAction(t *testing.T) {
	_, _, client, conn := newGameClient(t)

	before := len(conn.sent)
	client.Dispatch(map[string]interface{}{
		"a": []interface{}{float64(protocol.ActionFullDataUpdate)},
	})
	if len(conn.sent) != before+1 {
		t.Fatal("expected a full state payload")
	}
	if _, ok := conn.last()["p_health"]; !ok {
		t.Fatal("expected player state in the full update")
	}
}

func TestTimesyncReply(t *testing.T) {
	conn := &fakeConn{}
	client := NewSocketClient("conn-1", conn, fakeIdentity{id: 2, name: "alice"}, newTestManager(), zap.NewNop())

	client.Dispatch(map[string]interface{}{
		"a": []interface{}{float64(protocol.ActionTimesync)},
	})

	msg := conn.last()
	if msg == nil {
		t.Fatal("expected a timesync reply")
	}
	if !hasCode(conn.lastActions(), protocol.ActionTimesync) {
		t.Fatalf("expected the timesync action echoed, got %v", msg["a"])
	}
	if _, ok := msg["t"].(int64); !ok {
		t.Fatalf("expected a server timestamp, got %T", msg["t"])
	}
}

func TestJoinUnknownGameNotifiesClient(t *testing.T) {
	conn := &fakeConn{}
	client := NewSocketClient("conn-1", conn, fakeIdentity{id: 2, name: "alice"}, newTestManager(), zap.NewNop())

	client.Dispatch(map[string]interface{}{
		"a":   []interface{}{float64(protocol.ActionJoinGame)},
		"gid": "no-such-game",
	})

	if !hasCode(conn.lastActions(), protocol.ActionInvalidGame) {
		t.Fatalf("expected invalid game action, got %v", conn.last())
	}
	if client.Player() != nil {
		t.Fatal("expected the session to stay outside any game")
	}
}

func TestDispatchIgnoresMalformedActions(t *testing.T) {
	conn := &fakeConn{}
	client := NewSocketClient("conn-1", conn, fakeIdentity{id: 2, name: "alice"}, newTestManager(), zap.NewNop())

	before := len(conn.sent)
	client.Dispatch(map[string]interface{}{"a": []interface{}{"bogus", nil, 99.0}})
	client.Dispatch(map[string]interface{}{})
	if len(conn.sent) != before {
		t.Fatalf("expected malformed input to be ignored, got %v", conn.last())
	}
}

func TestGotHitOverWire(t *testing.T) {
	_, _, client, conn := newGameClient(t)
	player := client.Player()
	if !client.SessionGame().ScheduleStart(0) {
		t.Fatal("expected schedule to succeed")
	}
	if player.PhaserDisableUntil > time.Now().Unix() {
		t.Fatalf("expected the phaser to be usable at start, disabled until %d", player.PhaserDisableUntil)
	}

	client.Dispatch(map[string]interface{}{
		"a":   []interface{}{float64(protocol.ActionGotHit)},
		"pid": float64(player.PID),
		"sid": float64(3),
	})

	if player.Points != 500 {
		t.Fatalf("expected 500 points after the hit, got %d", player.Points)
	}
	if !hasCode(conn.lastActions(), protocol.ActionHitValid) {
		t.Fatalf("expected hit valid action, got %v", conn.last())
	}
	if !hasCode(conn.lastActions(), protocol.ActionShotHit) {
		t.Fatalf("expected shot hit action, got %v", conn.last())
	}
}

func TestLeaveGameAction(t *testing.T) {
	games, g, client, conn := newGameClient(t)

	client.Dispatch(map[string]interface{}{
		"a": []interface{}{float64(protocol.ActionLeaveGame)},
	})

	if client.Player() != nil || client.SessionGame() != nil {
		t.Fatal("expected the session to be unbound after leaving")
	}
	if !hasCode(conn.lastActions(), protocol.ActionGameClosed) {
		t.Fatalf("expected game closed action, got %v", conn.last())
	}
	if games.Game(g.GID) != nil {
		t.Fatal("expected the empty game to be closed")
	}
}

func TestPowerOffLeavesGame(t *testing.T) {
	_, _, client, _ := newGameClient(t)

	client.Dispatch(map[string]interface{}{
		"a": []interface{}{float64(protocol.ActionPowerOff)},
	})
	if client.Player() != nil {
		t.Fatal("expected a powered off device to leave its game")
	}
}
