package comm

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tagserver/game"
)

// DefaultGraceWindow is how long a disconnected session keeps its game and
// player association before a reconnect starts fresh.
const DefaultGraceWindow = 600 * time.Second

// Directory resolves device access tokens to identities. Backed by the
// external user directory.
type Directory interface {
	ResolveByToken(ctx context.Context, token string) (game.Identity, bool)
}

// ClientManager owns all live client sessions and spectator handles, keyed
// by connection id. One instance per process, created in main.
type ClientManager struct {
	mu         sync.Mutex
	clients    map[string]*SocketClient
	spectators map[string]*Spectator

	games     *game.Manager
	directory Directory
	grace     time.Duration
	logger    *zap.Logger
}

func NewClientManager(games *game.Manager, directory Directory, grace time.Duration, logger *zap.Logger) *ClientManager {
	if grace <= 0 {
		grace = DefaultGraceWindow
	}
	return &ClientManager{
		clients:    make(map[string]*SocketClient),
		spectators: make(map[string]*Spectator),
		games:      games,
		directory:  directory,
		grace:      grace,
		logger:     logger,
	}
}

// JoinClient authenticates the access token and binds the connection to the
// identity's session. There is exactly one session per identity: a second
// connection supersedes the first. A session reclaimed within the grace
// window keeps its game and player and gets a full state push to re-sync; a
// session reclaimed after the window is reset first.
func (cm *ClientManager) JoinClient(ctx context.Context, accessToken, connID string, conn Conn) *SocketClient {
	identity, ok := cm.directory.ResolveByToken(ctx, accessToken)
	if !ok {
		return nil
	}

	cm.mu.Lock()
	var existing *SocketClient
	for id, client := range cm.clients {
		if client.Identity().UserID() == identity.UserID() {
			existing = client
			delete(cm.clients, id)
			break
		}
	}
	if existing != nil {
		cm.clients[connID] = existing
	}
	cm.mu.Unlock()

	if existing != nil {
		state := existing.State()
		if !state.Connected && time.Since(state.DisconnectedAt) > cm.grace {
			// Grace window elapsed: the old game association is stale.
			if existing.Player() != nil {
				cm.games.LeaveGame(existing)
			}
			existing.Reset()
		}

		existing.Rebind(connID, conn)

		// Re-sync the reconnecting device completely.
		if g := existing.SessionGame(); g != nil {
			g.UpdateClient(existing, true)
		}

		cm.logger.Info("Re-joined client",
			zap.Uint("user", identity.UserID()),
			zap.String("conn", connID),
		)
		return existing
	}

	client := NewSocketClient(connID, conn, identity, cm.games, cm.logger)
	cm.mu.Lock()
	cm.clients[connID] = client
	cm.mu.Unlock()

	cm.logger.Info("Joined client",
		zap.Uint("user", identity.UserID()),
		zap.String("conn", connID),
	)
	return client
}

// Client returns the session bound to the connection, nil if there is none.
func (cm *ClientManager) Client(connID string) *SocketClient {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.clients[connID]
}

// OnDisconnect marks the session's disconnect time and detaches any
// spectator handle of the connection. The session itself is retained for the
// grace window.
func (cm *ClientManager) OnDisconnect(connID string) {
	cm.mu.Lock()
	client := cm.clients[connID]
	spectator := cm.spectators[connID]
	delete(cm.spectators, connID)
	cm.mu.Unlock()

	if client != nil {
		client.MarkDisconnected(time.Now())
		cm.logger.Info("Client disconnected",
			zap.Uint("user", client.Identity().UserID()),
			zap.String("conn", connID),
		)
	}
	if spectator != nil {
		spectator.Game().RemoveSpectator(spectator)
		spectator.Close()
	}
}

// JoinSpectator attaches the connection as a read-only observer of the given
// game, replacing any previous spectator handle of the connection. The new
// spectator immediately receives a full snapshot.
func (cm *ClientManager) JoinSpectator(connID string, conn Conn, gid string) *Spectator {
	cm.mu.Lock()
	prior := cm.spectators[connID]
	delete(cm.spectators, connID)
	cm.mu.Unlock()

	if prior != nil {
		prior.Game().RemoveSpectator(prior)
		prior.Close()
	}

	g := cm.games.Game(gid)
	if g == nil {
		return nil
	}

	spectator := NewSpectator(connID, conn, g, cm.logger)
	cm.mu.Lock()
	cm.spectators[connID] = spectator
	cm.mu.Unlock()

	g.AddSpectator(spectator)

	cm.logger.Info("Joined spectator",
		zap.String("conn", connID),
		zap.String("gid", gid),
	)
	return spectator
}

// Sweep discards sessions whose disconnect lies past the grace window,
// removing their players from any game they were still in. Reconnect
// semantics do not depend on the sweep; it only reclaims memory.
func (cm *ClientManager) Sweep() {
	cutoff := time.Now().Add(-cm.grace)

	cm.mu.Lock()
	var stale []*SocketClient
	for id, client := range cm.clients {
		state := client.State()
		if !state.Connected && state.DisconnectedAt.Before(cutoff) {
			stale = append(stale, client)
			delete(cm.clients, id)
		}
	}
	cm.mu.Unlock()

	for _, client := range stale {
		if client.Player() != nil {
			cm.games.LeaveGame(client)
		}
	}

	if len(stale) > 0 {
		cm.logger.Info("Swept stale sessions", zap.Int("count", len(stale)))
	}
}
