package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tagserver/comm"
	"tagserver/protocol"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleSocket upgrades the request to a WebSocket and runs the read loop
// for the connection until it drops. One connection carries at most one
// client session and any number of spectate subscriptions, switched on the
// "e" field of each incoming message.
func HandleSocket(c *gin.Context, clients *comm.ClientManager, logger *zap.Logger) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	connID := uuid.New().String()
	conn := comm.NewWSConn(ws, logger)
	logger.Info("WebSocket connection established", zap.String("conn_id", connID))

	done := make(chan struct{})
	go pingLoop(conn, done, logger)

	defer func() {
		close(done)
		clients.OnDisconnect(connID)
		conn.Close()
		logger.Info("WebSocket connection closed", zap.String("conn_id", connID))
	}()

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ctx := c.Request.Context()
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("WebSocket read error", zap.String("conn_id", connID), zap.Error(err))
			}
			return
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Warn("Discarding undecodable message", zap.String("conn_id", connID), zap.Error(err))
			continue
		}

		event, _ := msg["e"].(string)
		switch event {
		case protocol.EventJoin:
			token, _ := msg["access_token"].(string)
			client := clients.JoinClient(ctx, token, connID, conn)
			if client == nil {
				conn.Send(map[string]interface{}{"a": []int{protocol.ActionServerJoinDenied}})
				continue
			}
			client.TriggerAction(protocol.ActionJoinedServer, nil)
			client.Flush(false)

		case protocol.EventMessage:
			client := clients.Client(connID)
			if client == nil {
				conn.Send(map[string]interface{}{"a": []int{protocol.ActionServerJoinDenied}})
				continue
			}
			client.Dispatch(msg)

		case protocol.EventSpectate:
			gid, _ := msg["gid"].(string)
			if clients.JoinSpectator(connID, conn, gid) == nil {
				conn.Send(map[string]interface{}{"a": []int{protocol.ActionInvalidGame}})
			}

		default:
			logger.Debug("Ignoring message with unknown event",
				zap.String("conn_id", connID),
				zap.String("event", event),
			)
		}
	}
}

func pingLoop(conn *comm.WSConn, done <-chan struct{}, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				logger.Debug("Ping failed", zap.Error(err))
				return
			}
		}
	}
}
