package core

import "github.com/connectpro/relay/internal/domain"

// Frame is an encoded outbound message.
type Frame []byte

// SignalConnection abstracts the transport endpoint of one connection.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Connection binds a live transport session to its authenticated principal.
// The principal is immutable once attached; room membership is tracked by
// the RoomTable, never mutated here.
type Connection struct {
	id        domain.ConnID
	principal domain.Principal
	signal    SignalConnection
}

func NewConnection(id domain.ConnID, principal domain.Principal, signal SignalConnection) *Connection {
	return &Connection{id: id, principal: principal, signal: signal}
}

func (c *Connection) ID() domain.ConnID           { return c.id }
func (c *Connection) Principal() domain.Principal { return c.principal }
func (c *Connection) Signal() SignalConnection    { return c.signal }
