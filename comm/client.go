package comm

import (
	"reflect"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"tagserver/game"
	"tagserver/protocol"
)

// ConnState tracks whether a session's transport is live. A session survives
// its connection: on disconnect only the timestamp is recorded, so a
// reconnecting device can resume within the grace window.
type ConnState struct {
	Connected      bool
	DisconnectedAt time.Time
}

// SocketClient is the per-session protocol state: the pending action set, the
// pending auxiliary data and the snapshot of the last transmitted pgt fields
// used for diffing. It implements game.Client.
type SocketClient struct {
	mu sync.Mutex

	connID string
	conn   Conn
	state  ConnState

	identity game.Identity
	games    *game.Manager
	logger   *zap.Logger

	// Pending actions fire at most once per flush no matter how often they
	// were requested; pending data is last-write-wins per field.
	actions map[int]struct{}
	data    map[string]interface{}
	lastPGT map[string]interface{}

	player      *game.Player
	currentGame *game.Game
}

func NewSocketClient(connID string, conn Conn, identity game.Identity, games *game.Manager, logger *zap.Logger) *SocketClient {
	return &SocketClient{
		connID:   connID,
		conn:     conn,
		state:    ConnState{Connected: true},
		identity: identity,
		games:    games,
		logger:   logger,
		actions:  make(map[int]struct{}),
		data:     make(map[string]interface{}),
		lastPGT:  make(map[string]interface{}),
	}
}

func (s *SocketClient) ConnID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connID
}

func (s *SocketClient) Identity() game.Identity {
	return s.identity
}

func (s *SocketClient) Player() *game.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

func (s *SocketClient) SessionGame() *game.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentGame
}

func (s *SocketClient) SetPlayer(p *game.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = p
}

func (s *SocketClient) SetGame(g *game.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentGame = g
}

// Reset clears the session back to its initial state: no pending traffic, no
// diff snapshot, no game association.
func (s *SocketClient) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = make(map[int]struct{})
	s.data = make(map[string]interface{})
	s.lastPGT = make(map[string]interface{})
	s.player = nil
	s.currentGame = nil
}

// Rebind moves the session onto a new connection, superseding the old one.
func (s *SocketClient) Rebind(connID string, conn Conn) {
	s.mu.Lock()
	old := s.conn
	s.connID = connID
	s.conn = conn
	s.state = ConnState{Connected: true}
	s.mu.Unlock()

	if old != nil && old != conn {
		old.Close()
	}
}

// MarkDisconnected records the disconnect time. The session and its game
// association stay intact for the reconnection grace window.
func (s *SocketClient) MarkDisconnected(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ConnState{DisconnectedAt: at}
}

func (s *SocketClient) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TriggerAction queues an action code and merges its parameters into the
// pending data. Nothing is transmitted until the next update.
func (s *SocketClient) TriggerAction(code int, params map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[code] = struct{}{}
	for k, v := range params {
		s.data[k] = v
	}
}

// SetField merges data into the pending payload without an action code.
func (s *SocketClient) SetField(data map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range data {
		s.data[k] = v
	}
}

// Update builds and transmits the outbound payload: the queued actions, the
// queued data and either the changed pgt fields (diff against the last
// transmitted snapshot) or, with full set, every pgt field. An update that
// carries neither actions nor data is not transmitted at all.
//
// When the session is in a game the caller must hold the game lock; use
// Game.UpdateClient from outside the game package.
func (s *SocketClient) Update(full bool) {
	s.mu.Lock()

	codes := make([]int, 0, len(s.actions))
	for code := range s.actions {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	payload := map[string]interface{}{"a": codes}
	for k, v := range s.data {
		payload[k] = v
	}

	// Merge the derived state: player fields, then team, then game.
	newPGT := make(map[string]interface{})
	if s.player != nil {
		for k, v := range s.player.PGTData() {
			newPGT[k] = v
		}
		if s.player.Team != nil {
			for k, v := range s.player.Team.PGTData() {
				newPGT[k] = v
			}
		}
	}
	if s.currentGame != nil {
		for k, v := range s.currentGame.PGTData() {
			newPGT[k] = v
		}
	}

	for k, v := range newPGT {
		if full {
			payload[k] = v
			continue
		}
		if old, ok := s.lastPGT[k]; !ok || !reflect.DeepEqual(old, v) {
			payload[k] = v
		}
	}
	s.lastPGT = newPGT

	s.actions = make(map[int]struct{})
	s.data = make(map[string]interface{})
	conn := s.conn
	s.mu.Unlock()

	// Nothing queued and nothing changed: skip the send entirely.
	if len(codes) == 0 && len(payload) == 1 {
		return
	}

	conn.Send(payload)
}

// Flush transmits pending state, taking the game lock when the session is in
// a game.
func (s *SocketClient) Flush(full bool) {
	if g := s.SessionGame(); g != nil {
		g.UpdateClient(s, full)
		return
	}
	s.Update(full)
}

// Dispatch handles one inbound message frame. A missing action list is a
// no-op; unrecognized or malformed actions are ignored, the protocol never
// answers malformed input with an error.
func (s *SocketClient) Dispatch(msg map[string]interface{}) {
	actions, _ := msg["a"].([]interface{})

	for _, a := range actions {
		code, ok := intField(a)
		if !ok {
			continue
		}

		switch code {
		case protocol.ActionKeepAlive:
			// Transport ping/pong covers liveness.
		case protocol.ActionTimesync:
			s.onTimesync()
		case protocol.ActionJoinGame:
			s.onJoinGame(msg)
		case protocol.ActionLeaveGame:
			s.games.LeaveGame(s)
		case protocol.ActionGotHit:
			s.onGotHit(msg)
		case protocol.ActionSendShot:
			s.onSendShot(msg)
		case protocol.ActionFullDataUpdate:
			s.Flush(true)
		case protocol.ActionPowerOff:
			s.onPowerOff()
		case protocol.ActionHWStatus:
			s.logger.Debug("Device hardware status", zap.Any("status", msg))
		case protocol.ActionHitpointInit:
			s.onHitpointInit(msg)
		case protocol.ActionHitpointGotHit:
			s.onHitpointGotHit(msg)
		}
	}
}

func (s *SocketClient) onTimesync() {
	s.TriggerAction(protocol.ActionTimesync, map[string]interface{}{
		"t": time.Now().UnixMilli(),
	})
	s.Flush(false)
}

func (s *SocketClient) onJoinGame(msg map[string]interface{}) {
	gid, _ := msg["gid"].(string)

	var g *game.Game
	if gid != "" {
		g = s.games.Game(gid)
	}
	if g == nil {
		s.TriggerAction(protocol.ActionInvalidGame, nil)
		s.Flush(false)
		return
	}

	s.games.JoinGame(g, s)
}

func (s *SocketClient) onGotHit(msg map[string]interface{}) {
	player := s.Player()
	g := s.SessionGame()
	if player == nil || g == nil {
		return
	}

	pid, okPID := intField(msg["pid"])
	sid, okSID := intField(msg["sid"])
	if !okPID || !okSID {
		return
	}

	g.GotHit(player, pid, sid)
}

func (s *SocketClient) onSendShot(msg map[string]interface{}) {
	player := s.Player()
	g := s.SessionGame()
	if player == nil || g == nil {
		return
	}

	sid, ok := intField(msg["sid"])
	if !ok {
		return
	}

	g.SendShot(player, sid)
}

func (s *SocketClient) onPowerOff() {
	s.logger.Info("Device powering off", zap.Uint("user", s.identity.UserID()))
	if s.Player() != nil {
		s.games.LeaveGame(s)
	}
}

func (s *SocketClient) onHitpointInit(msg map[string]interface{}) {
	g := s.SessionGame()
	if g == nil {
		return
	}

	mode, ok := intField(msg["hp_mode"])
	if !ok {
		return
	}

	color, ok := g.HitpointInit(mode)
	if !ok {
		return
	}

	s.TriggerAction(protocol.ActionHitpointInit, map[string]interface{}{
		"hp_mode": mode,
		"color_r": color.R,
		"color_g": color.G,
		"color_b": color.B,
	})
	s.Flush(false)
}

func (s *SocketClient) onHitpointGotHit(msg map[string]interface{}) {
	g := s.SessionGame()
	if g == nil {
		return
	}

	mode, okMode := intField(msg["hp_mode"])
	pid, okPID := intField(msg["pid"])
	sid, okSID := intField(msg["sid"])
	if !okMode || !okPID || !okSID {
		return
	}

	player := g.PlayerByPID(pid)
	if player == nil {
		return
	}

	cooldown, ok := g.HitpointGotHit(mode, player, sid)
	if !ok {
		return
	}

	s.TriggerAction(protocol.ActionHitpointHitValid, map[string]interface{}{
		"hp_mode":  mode,
		"cooldown": cooldown,
	})
	s.Flush(false)
}

// intField reads a numeric message field. JSON numbers decode as float64.
func intField(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
