package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/connectpro/relay/internal/domain"
)

// Registry owns the set of live, authenticated connections.
// All lookups other connections perform to reach a peer go through here.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*Connection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*Connection)}
}

// Register stores the connection under its transport session id.
// The id is minted by the adapter at upgrade time and reused directly.
func (r *Registry) Register(id domain.ConnID, principal domain.Principal, signal SignalConnection) *Connection {
	conn := NewConnection(id, principal, signal)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = conn
	log.Info().Str("module", "core.registry").Str("conn", string(id)).Str("user", principal.ID).Msg("connection registered")
	return conn
}

func (r *Registry) Lookup(id domain.ConnID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// Unregister removes the connection. Called exactly once per connection
// lifetime, from the disconnect cleanup cascade.
func (r *Registry) Unregister(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "core.registry").Str("conn", string(id)).Msg("connection unregistered")
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
