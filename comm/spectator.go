package comm

import (
	"go.uber.org/zap"

	"tagserver/game"
)

// Spectator mirrors one game to a read-only observer connection. It
// implements game.Spectator; all payloads are built by the game under its
// lock and only serialized here.
type Spectator struct {
	connID string
	conn   Conn
	game   *game.Game
	logger *zap.Logger
}

func NewSpectator(connID string, conn Conn, g *game.Game, logger *zap.Logger) *Spectator {
	return &Spectator{connID: connID, conn: conn, game: g, logger: logger}
}

func (s *Spectator) Game() *game.Game {
	return s.game
}

// Update pushes the full game snapshot.
func (s *Spectator) Update(snapshot game.PGTSnapshot) {
	s.conn.Send(map[string]interface{}{"pgt": snapshot})
}

// PlayerGotHit pushes a lightweight hit event, independent of the snapshot.
func (s *Spectator) PlayerGotHit(player, opponent map[string]interface{}, sid int) {
	s.conn.Send(map[string]interface{}{
		"hit": map[string]interface{}{
			"player": player,
			"by":     opponent,
			"sid":    sid,
		},
	})
}

// PlayerFiredShot pushes a lightweight shot event.
func (s *Spectator) PlayerFiredShot(player map[string]interface{}, sid int) {
	s.conn.Send(map[string]interface{}{
		"shot": map[string]interface{}{
			"player": player,
			"sid":    sid,
		},
	})
}

// Close is called when the game detaches the spectator. The transport stays
// open, the same connection may still run a client session.
func (s *Spectator) Close() {
	s.logger.Debug("Closed spectator",
		zap.String("conn", s.connID),
		zap.String("gid", s.game.GID),
	)
}
