package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/connectpro/relay/internal/core"
	"github.com/connectpro/relay/internal/domain"
)

// recorder captures delivered frames for assertions.
type recorder struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   bool
}

func (r *recorder) TrySend(f core.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("backpressure")
	}
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) Close() {}

func (r *recorder) received() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]map[string]any, 0, len(r.frames))
	for _, f := range r.frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	router *Router
	conns  map[domain.ConnID]*recorder
}

func newFixture() *fixture {
	return &fixture{
		router: NewRouter(core.NewRegistry(), core.NewRoomTable()),
		conns:  make(map[domain.ConnID]*recorder),
	}
}

func (f *fixture) connect(id domain.ConnID, name string) *recorder {
	rec := &recorder{}
	f.router.Registry.Register(id, domain.Principal{ID: "user-" + string(id), Name: name}, rec)
	f.conns[id] = rec
	return rec
}

type ping struct {
	Kind string `json:"kind"`
	N    int    `json:"n"`
}

func TestRouter_Unicast(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	a := f.connect("a", "Alice")
	b := f.connect("b", "Bob")
	f.router.Rooms.Join("r1", "a")
	f.router.Rooms.Join("r1", "b")

	req.True(f.router.Unicast("b", ping{Kind: "ping", N: 1}))

	// Delivered to b alone, even though a shares the room.
	req.Len(b.received(), 1)
	req.Empty(a.received())
}

func TestRouter_Unicast_TargetGone(t *testing.T) {
	req := require.New(t)
	f := newFixture()

	req.False(f.router.Unicast("ghost", ping{Kind: "ping"}))
}

func TestRouter_Broadcast_IncludesSender(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	a := f.connect("a", "Alice")
	b := f.connect("b", "Bob")
	c := f.connect("c", "Cara")
	f.router.Rooms.Join("r1", "a")
	f.router.Rooms.Join("r1", "b")
	f.router.Rooms.Join("r2", "c")

	f.router.Broadcast("r1", ping{Kind: "ping"})

	req.Len(a.received(), 1)
	req.Len(b.received(), 1)
	req.Empty(c.received())
}

func TestRouter_BroadcastExcluding_NeverEchoesSender(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	a := f.connect("a", "Alice")
	b := f.connect("b", "Bob")
	f.router.Rooms.Join("r1", "a")
	f.router.Rooms.Join("r1", "b")

	for i := 0; i < 10; i++ {
		f.router.BroadcastExcluding("r1", "a", ping{Kind: "ping", N: i})
	}

	req.Empty(a.received())
	req.Len(b.received(), 10)
}

func TestRouter_Broadcast_DropsFailedDelivery(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	a := f.connect("a", "Alice")
	b := f.connect("b", "Bob")
	b.fail = true
	f.router.Rooms.Join("r1", "a")
	f.router.Rooms.Join("r1", "b")

	// A slow peer must not affect delivery to the rest of the room.
	f.router.Broadcast("r1", ping{Kind: "ping"})

	req.Len(a.received(), 1)
	req.Empty(b.received())
}

func TestRouter_Disconnect_Completeness(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	f.connect("a", "Alice")
	f.connect("b", "Bob")
	f.router.Rooms.Join("r1", "a")
	f.router.Rooms.Join("r2", "a")
	f.router.Rooms.Join("r1", "b")

	vacated := f.router.Disconnect("a")

	req.ElementsMatch([]domain.RoomID{"r1", "r2"}, vacated)
	_, ok := f.router.Registry.Lookup("a")
	req.False(ok)
	req.ElementsMatch([]domain.ConnID{"b"}, f.router.Rooms.MembersOf("r1"))
	req.Empty(f.router.Rooms.MembersOf("r2"))
}

func TestRouter_Participants(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	f.connect("a", "Alice")
	f.connect("b", "Bob")
	f.router.Rooms.Join("r1", "a")
	f.router.Rooms.Join("r1", "b")

	participants := f.router.Participants("r1", "a")

	req.Len(participants, 1)
	req.Equal("Bob", participants[0].Name)
	req.Equal("b", participants[0].SocketID)
}

func TestRouter_ConcurrentBroadcastAndDisconnect(t *testing.T) {
	req := require.New(t)
	f := newFixture()
	for _, id := range []domain.ConnID{"a", "b", "c", "d"} {
		f.connect(id, string(id))
		f.router.Rooms.Join("r1", id)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			f.router.Broadcast("r1", ping{Kind: "ping", N: i})
		}
	}()
	go func() {
		defer wg.Done()
		f.router.Disconnect("b")
		f.router.Disconnect("c")
	}()
	wg.Wait()

	req.ElementsMatch([]domain.ConnID{"a", "d"}, f.router.Rooms.MembersOf("r1"))
	_, ok := f.router.Registry.Lookup("b")
	req.False(ok)
}
