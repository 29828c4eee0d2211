package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tileduel/tileduel/internal/model"
	"github.com/tileduel/tileduel/internal/protocol"
	"github.com/tileduel/tileduel/internal/services/match"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Ping cadence; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size
	maxMessageSize = 1024

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// client is one websocket connection's server-side state. The identity is
// established once by a successful auth message and is immutable after that.
type client struct {
	handler *Handler
	conn    *websocket.Conn
	send    chan []byte

	closeOnce sync.Once

	// player is only written by the read loop (auth), and only read there
	// and in the disconnect path that runs after the read loop exits
	player *model.Player
}

// Ensure client satisfies the engine's connection contract
var _ match.Conn = (*client)(nil)

func newClient(conn *websocket.Conn, handler *Handler) *client {
	return &client{
		handler: handler,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
	}
}

// Send encodes and queues a message for the peer. Fire-and-forget: a full
// buffer drops the message rather than blocking the engine.
func (c *client) Send(msg protocol.ServerMessage) {
	data, err := protocol.EncodeServer(msg)
	if err != nil {
		c.handler.logger.Error("failed to encode message", slog.String("error", err.Error()))
		return
	}

	select {
	case c.send <- data:
	default:
		c.handler.logger.Warn("send buffer full, dropping message")
	}
}

// readLoop consumes inbound frames until the connection dies, then folds the
// departure into the engine
func (c *client) readLoop() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		msg, err := protocol.DecodeClient(data)
		if err != nil {
			// Malformed frames are noise, not protocol faults
			c.handler.logger.Debug("dropping malformed message", slog.String("error", err.Error()))
			continue
		}

		c.dispatch(msg)
	}

	if c.player != nil {
		c.handler.coordinator.Disconnect(context.Background(), c.player.ID, c)
	}
}

// dispatch routes one decoded message. Every action other than auth
// requires an established identity.
func (c *client) dispatch(msg protocol.ClientMessage) {
	ctx := context.Background()

	if auth, ok := msg.(*protocol.Auth); ok {
		if c.player != nil {
			// Identity is fixed once set; a re-auth would orphan the
			// original player's registry entry and room seat
			c.Send(&protocol.Error{Message: "Already authenticated"})
			return
		}
		c.handleAuth(auth)
		return
	}

	if c.player == nil {
		c.Send(&protocol.Error{Message: "Not authenticated"})
		return
	}

	switch m := msg.(type) {
	case *protocol.FindGame:
		c.handler.coordinator.FindGame(ctx, *c.player, m.GridSize)
	case *protocol.PlayerReady:
		c.handler.coordinator.PlayerReady(ctx, c.player.ID)
	case *protocol.ScoreUpdate:
		c.handler.coordinator.ScoreUpdate(ctx, c.player.ID, m.Score, m.MaxTile)
	case *protocol.GameOver:
		c.handler.coordinator.GameOver(ctx, c.player.ID, m.Score, m.MaxTile)
	case *protocol.LeaveRoom:
		c.handler.coordinator.LeaveRoom(ctx, c.player.ID)
	case *protocol.Auth:
		// handled above
	}
}

func (c *client) handleAuth(msg *protocol.Auth) {
	player, err := c.handler.auth.VerifyToken(msg.Token)
	if err != nil {
		// The connection stays open, unauthenticated; no automatic retry
		c.Send(&protocol.Error{Message: "Invalid token"})
		return
	}

	c.player = player
	c.handler.coordinator.Registry().Register(player.ID, c)
	c.Send(&protocol.AuthSuccess{Username: player.DisplayName})

	c.handler.logger.Info("client authenticated",
		slog.String("player_id", string(player.ID)),
		slog.String("name", player.DisplayName))
}

// writePump flushes queued messages and keeps the connection alive with pings
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close tears the connection down once, releasing the write pump
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
