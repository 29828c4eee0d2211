package match

import (
	"sync"

	"github.com/tileduel/tileduel/internal/model"
)

// Registry maps authenticated identities to their live connections.
//
// Registration is last-writer-wins: a reconnect replaces the stale session
// outright. Unregister only evicts when the closing connection is still the
// one on record, so a trailing close from a superseded connection cannot
// knock out its replacement.
type Registry struct {
	mu    sync.RWMutex
	conns map[model.PlayerID]Conn
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[model.PlayerID]Conn),
	}
}

// Register associates a connection with an identity, replacing any prior one
func (r *Registry) Register(id model.PlayerID, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = conn
}

// Lookup returns the identity's current connection, if any
func (r *Registry) Lookup(id model.PlayerID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// Unregister removes the mapping only if conn is still the registered
// connection. Returns true if the mapping was removed.
func (r *Registry) Unregister(id model.PlayerID, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[id]; ok && current == conn {
		delete(r.conns, id)
		return true
	}
	return false
}
