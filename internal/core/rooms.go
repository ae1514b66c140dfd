package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/connectpro/relay/internal/domain"
)

// RoomTable maps rooms to their members and members back to their rooms.
// Both directions are mutated under one lock so readers can never observe
// them disagreeing. Empty room entries are deleted, never kept around:
// a room exists exactly as long as it has at least one member.
type RoomTable struct {
	mu     sync.RWMutex
	byRoom map[domain.RoomID]map[domain.ConnID]struct{}
	byConn map[domain.ConnID]map[domain.RoomID]struct{}
}

func NewRoomTable() *RoomTable {
	return &RoomTable{
		byRoom: make(map[domain.RoomID]map[domain.ConnID]struct{}),
		byConn: make(map[domain.ConnID]map[domain.RoomID]struct{}),
	}
}

// Join adds the connection to the room. Re-joining is a no-op on the set;
// callers still re-send snapshots and presence on every join.
func (t *RoomTable) Join(room domain.RoomID, conn domain.ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.byRoom[room] == nil {
		t.byRoom[room] = make(map[domain.ConnID]struct{})
	}
	if t.byConn[conn] == nil {
		t.byConn[conn] = make(map[domain.RoomID]struct{})
	}
	t.byRoom[room][conn] = struct{}{}
	t.byConn[conn][room] = struct{}{}
	log.Info().Str("module", "core.rooms").Str("room", string(room)).Str("conn", string(conn)).Msg("member joined")
}

// Leave removes the mapping and reports whether the connection was a member.
func (t *RoomTable) Leave(room domain.RoomID, conn domain.ConnID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.leaveLocked(room, conn)
}

func (t *RoomTable) leaveLocked(room domain.RoomID, conn domain.ConnID) bool {
	members, ok := t.byRoom[room]
	if !ok {
		return false
	}
	if _, ok = members[conn]; !ok {
		return false
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(t.byRoom, room)
	}
	if rooms := t.byConn[conn]; rooms != nil {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(t.byConn, conn)
		}
	}
	log.Info().Str("module", "core.rooms").Str("room", string(room)).Str("conn", string(conn)).Msg("member left")
	return true
}

// LeaveAll removes the connection from every room it belongs to and returns
// the vacated rooms so the caller can emit one departure broadcast per room.
func (t *RoomTable) LeaveAll(conn domain.ConnID) []domain.RoomID {
	t.mu.Lock()
	defer t.mu.Unlock()
	rooms := t.byConn[conn]
	if len(rooms) == 0 {
		return nil
	}
	out := make([]domain.RoomID, 0, len(rooms))
	for room := range rooms {
		out = append(out, room)
	}
	for _, room := range out {
		t.leaveLocked(room, conn)
	}
	return out
}

func (t *RoomTable) MembersOf(room domain.RoomID) []domain.ConnID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.ConnID, 0, len(t.byRoom[room]))
	for conn := range t.byRoom[room] {
		out = append(out, conn)
	}
	return out
}

func (t *RoomTable) MembersExcluding(room domain.RoomID, excluded domain.ConnID) []domain.ConnID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	members := t.byRoom[room]
	out := make([]domain.ConnID, 0, len(members))
	for conn := range members {
		if conn == excluded {
			continue
		}
		out = append(out, conn)
	}
	return out
}

func (t *RoomTable) RoomsOf(conn domain.ConnID) []domain.RoomID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(t.byConn[conn]))
	for room := range t.byConn[conn] {
		out = append(out, room)
	}
	return out
}

func (t *RoomTable) MemberCount(room domain.RoomID) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byRoom[room])
}

// RoomInfo is a read-only view for the introspection API.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"memberCount"`
}

func (t *RoomTable) Rooms() []RoomInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]RoomInfo, 0, len(t.byRoom))
	for room, members := range t.byRoom {
		out = append(out, RoomInfo{ID: room, MemberCount: len(members)})
	}
	return out
}
