package game

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"tagserver/protocol"
)

// ErrUnknownGamemode is returned when a game is created with a gamemode name
// that is not registered.
var ErrUnknownGamemode = errors.New("unknown gamemode")

// Manager is the registry of live games. One instance exists per process,
// created in main and passed into the communication layer and the admin API.
type Manager struct {
	mu    sync.Mutex
	games map[string]*Game

	modes  map[string]GamemodeFactory
	rng    *rand.Rand
	logger *zap.Logger
}

func NewManager(modes map[string]GamemodeFactory, logger *zap.Logger) *Manager {
	return &Manager{
		games:  make(map[string]*Game),
		modes:  modes,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

// CreateGame instantiates a game with the named gamemode and a fresh
// word-pair id, stores it and returns the id.
func (m *Manager) CreateGame(gamemode string, createdBy Identity) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	factory, ok := m.modes[gamemode]
	if !ok {
		return "", ErrUnknownGamemode
	}

	gid := randomGameID(m.rng)
	for _, exists := m.games[gid]; exists; _, exists = m.games[gid] {
		gid = randomGameID(m.rng)
	}

	game := NewGame(factory, gid, gamemode, createdBy, m.logger)
	m.games[gid] = game

	m.logger.Info("Created new game",
		zap.String("gid", gid),
		zap.String("gamemode", gamemode),
		zap.Uint("created_by", createdBy.UserID()),
	)

	return gid, nil
}

// Game returns the live game with the given id, nil if there is none.
func (m *Manager) Game(gid string) *Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.games[gid]
}

// Games returns all live games in gid order.
func (m *Manager) Games() []*Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		list = append(list, g)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].GID < list[j].GID })
	return list
}

// ModeNames returns the registered gamemode names, sorted.
func (m *Manager) ModeNames() []string {
	names := make([]string, 0, len(m.modes))
	for name := range m.modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JoinGame binds the session to a new player in the given game. A session
// already playing elsewhere leaves that game first.
func (m *Manager) JoinGame(g *Game, client Client) *Player {
	if client.Player() != nil {
		m.LeaveGame(client)
	}

	player := g.NewPlayer(client)
	g.AddPlayer(player)
	client.SetPlayer(player)
	client.SetGame(g)

	client.TriggerAction(protocol.ActionJoinedGame, nil)
	g.UpdateClient(client, false)

	m.logger.Info("Player joined game",
		zap.String("gid", g.GID),
		zap.Int("pid", player.PID),
		zap.String("name", player.Name),
	)

	return player
}

// LeaveGame removes the session's player from its game. From the client's
// point of view a left game looks exactly like a closed one. When the last
// player leaves, the game is closed and dropped from the registry.
func (m *Manager) LeaveGame(client Client) {
	player := client.Player()
	g := client.SessionGame()
	if player == nil || g == nil {
		client.Reset()
		return
	}

	g.RemovePlayer(player)

	client.TriggerAction(protocol.ActionGameClosed, nil)
	g.UpdateClient(client, false)
	client.Reset()

	m.logger.Info("Player left game", zap.String("gid", g.GID), zap.Int("pid", player.PID))

	if g.PlayerCount() == 0 {
		m.CloseGame(g.GID)
	}
}

// CloseGame closes the game and discards the registry entry.
func (m *Manager) CloseGame(gid string) {
	m.mu.Lock()
	g := m.games[gid]
	delete(m.games, gid)
	m.mu.Unlock()

	if g == nil {
		return
	}
	g.Close()
	m.logger.Info("Closed game", zap.String("gid", gid))
}
