package match

import "github.com/tileduel/tileduel/internal/protocol"

// Conn is the outbound half of a client connection.
//
// Sends are fire-and-forget: a slow or closed peer drops the message, it is
// never retried. Connection failure surfaces separately through the
// transport's close event (Coordinator.Disconnect).
type Conn interface {
	Send(msg protocol.ServerMessage)
}
