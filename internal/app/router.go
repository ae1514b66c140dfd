package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/connectpro/relay/internal/core"
	"github.com/connectpro/relay/internal/domain"
	"github.com/connectpro/relay/internal/protocol"
)

// Router resolves event addressing over the shared connection registry and
// room table. Three modes: unicast to one connection, inclusive broadcast to
// a room, exclusive broadcast to a room minus the sender. Delivery is
// best-effort: a send that fails because the target vanished or its buffer
// is full is logged and dropped.
type Router struct {
	Registry *core.Registry
	Rooms    *core.RoomTable
}

func NewRouter(registry *core.Registry, rooms *core.RoomTable) *Router {
	return &Router{Registry: registry, Rooms: rooms}
}

// Unicast delivers to exactly one connection. Returns false when the target
// is no longer registered; the target may have disconnected between address
// resolution and delivery, which is expected, not a fault.
func (r *Router) Unicast(target domain.ConnID, v any) bool {
	frame, err := encode(v)
	if err != nil {
		return false
	}
	conn, ok := r.Registry.Lookup(target)
	if !ok {
		log.Debug().Str("module", "app.router").Str("target", string(target)).Msg("unicast target gone")
		return false
	}
	r.deliver(conn, frame)
	return true
}

// Broadcast delivers to every member of the room, including the sender.
func (r *Router) Broadcast(room domain.RoomID, v any) {
	r.fanOut(r.Rooms.MembersOf(room), v)
}

// BroadcastExcluding delivers to every member of the room except the sender.
func (r *Router) BroadcastExcluding(room domain.RoomID, sender domain.ConnID, v any) {
	r.fanOut(r.Rooms.MembersExcluding(room, sender), v)
}

func (r *Router) fanOut(targets []domain.ConnID, v any) {
	frame, err := encode(v)
	if err != nil {
		return
	}
	for _, id := range targets {
		conn, ok := r.Registry.Lookup(id)
		if !ok {
			continue
		}
		r.deliver(conn, frame)
	}
}

func (r *Router) deliver(conn *core.Connection, frame core.Frame) {
	if err := conn.Signal().TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.router").Str("conn", string(conn.ID())).Msg("delivery dropped")
	}
}

// Disconnect runs the teardown cascade for a closed transport session:
// purge every room membership, then drop the registry entry. Both complete
// before any departure broadcast, so no delivery can target the connection
// in a half-removed state. Returns the vacated rooms for the caller's
// departure broadcasts.
func (r *Router) Disconnect(id domain.ConnID) []domain.RoomID {
	rooms := r.Rooms.LeaveAll(id)
	r.Registry.Unregister(id)
	log.Info().Str("module", "app.router").Str("conn", string(id)).Int("rooms", len(rooms)).Msg("disconnected")
	return rooms
}

// Participants snapshots the principals in a room, excluding one connection.
func (r *Router) Participants(room domain.RoomID, excluding domain.ConnID) []protocol.Participant {
	members := r.Rooms.MembersExcluding(room, excluding)
	out := make([]protocol.Participant, 0, len(members))
	for _, id := range members {
		conn, ok := r.Registry.Lookup(id)
		if !ok {
			continue
		}
		p := conn.Principal()
		out = append(out, protocol.Participant{
			UserID:   p.ID,
			Name:     p.Name,
			Email:    p.Email,
			IsGuest:  p.IsGuest,
			SocketID: string(id),
		})
	}
	return out
}

func encode(v any) (core.Frame, error) {
	frame, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.router").Msg("encode event")
		return nil, err
	}
	return frame, nil
}
