package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	signaladapter "github.com/connectpro/relay/internal/adapters/signal"
	"github.com/connectpro/relay/internal/app"
	"github.com/connectpro/relay/internal/auth"
	"github.com/connectpro/relay/internal/config"
	"github.com/connectpro/relay/internal/core"
)

func newTestServer(t *testing.T) (*httptest.Server, *auth.Verifier) {
	return newTestServerWith(t, auth.StaticDirectory{})
}

func newTestServerWith(t *testing.T, dir auth.Directory) (*httptest.Server, *auth.Verifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Mode:           "test",
		AllowedOrigins: []string{"*"},
		ReadLimit:      32768,
		SendBuffer:     64,
		PingPeriod:     25 * time.Second,
		PongWait:       time.Minute,
		WriteWait:      5 * time.Second,
		JWTSecret:      "test-secret",
		ChatRateLimit:  100,
		ChatRateWindow: time.Minute,
	}

	rt := app.NewRouter(core.NewRegistry(), core.NewRoomTable())
	verifier := auth.NewVerifier(cfg.JWTSecret)
	ctl := signaladapter.NewController(cfg, rt, verifier, dir)

	srv := httptest.NewServer(SetupRouter(context.Background(), cfg, rt, ctl))
	t.Cleanup(srv.Close)
	return srv, verifier
}

func signToken(t *testing.T, v *auth.Verifier, userID string) string {
	t.Helper()
	token, err := v.Sign(auth.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return token
}

func dial(t *testing.T, srv *httptest.Server, token, name string) *websocket.Conn {
	t.Helper()
	q := url.Values{}
	q.Set("token", token)
	if name != "" {
		q.Set("name", name)
	}
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + q.Encode()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var event map[string]any
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func sendEvent(t *testing.T, ws *websocket.Conn, raw string) {
	t.Helper()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(raw)))
}

func TestWS_RejectsBadToken(t *testing.T) {
	req := require.New(t)
	srv, _ := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	req.Error(err)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?token=garbage", nil)
	req.Error(err)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestWS_JoinChatDisconnectScenario(t *testing.T) {
	req := require.New(t)
	srv, verifier := newTestServer(t)

	wsA := dial(t, srv, signToken(t, verifier, "user-a"), "Alice")
	connectedA := readEvent(t, wsA)
	req.Equal("connected", connectedA["kind"])
	req.Equal("Alice", connectedA["name"])
	socketA := connectedA["socketId"].(string)

	// A joins an empty room.
	sendEvent(t, wsA, `{"kind":"join-meeting","meetingId":"R1"}`)
	snapshot := readEvent(t, wsA)
	req.Equal("current-participants", snapshot["kind"])
	req.EqualValues(0, snapshot["count"])
	req.Equal("joined-meeting", readEvent(t, wsA)["kind"])

	// B joins and sees A; A hears about B.
	wsB := dial(t, srv, signToken(t, verifier, "user-b"), "Bob")
	connectedB := readEvent(t, wsB)
	socketB := connectedB["socketId"].(string)

	sendEvent(t, wsB, `{"kind":"join-meeting","meetingId":"R1"}`)
	snapshotB := readEvent(t, wsB)
	req.EqualValues(1, snapshotB["count"])
	first := snapshotB["participants"].([]any)[0].(map[string]any)
	req.Equal(socketA, first["socketId"])
	req.Equal("joined-meeting", readEvent(t, wsB)["kind"])

	joined := readEvent(t, wsA)
	req.Equal("participant-joined", joined["kind"])
	req.Equal("Bob", joined["name"])

	// Chat reaches both, sender included.
	sendEvent(t, wsA, `{"kind":"send-message","meetingId":"R1","message":"hi"}`)
	for _, ws := range []*websocket.Conn{wsA, wsB} {
		msg := readEvent(t, ws)
		req.Equal("new-message", msg["kind"])
		req.Equal("hi", msg["message"])
		req.Equal("Alice", msg["userName"])
	}

	// Signaling relays to the target alone, annotated with the sender.
	sendEvent(t, wsB, `{"kind":"webrtc-offer","meetingId":"R1","targetSocketId":"`+socketA+`","offer":{"type":"offer","sdp":"v=0"}}`)
	offer := readEvent(t, wsA)
	req.Equal("webrtc-offer", offer["kind"])
	req.Equal(socketB, offer["from"])
	req.Equal("user-b", offer["fromUserId"])

	// A drops; B hears exactly one departure.
	req.NoError(wsA.Close())
	gone := readEvent(t, wsB)
	req.Equal("participant-disconnected", gone["kind"])
	req.Equal("Alice", gone["name"])
	req.Equal(socketA, gone["socketId"])
}

func TestWS_DisplayNameFallback(t *testing.T) {
	req := require.New(t)
	srv, verifier := newTestServerWith(t, auth.StaticDirectory{"user-a": "Alice Archer"})

	// No client-asserted name: the directory supplies one.
	ws := dial(t, srv, signToken(t, verifier, "user-a"), "")
	connected := readEvent(t, ws)
	req.Equal("connected", connected["kind"])
	req.Equal("Alice Archer", connected["name"])

	// Unknown subject and no asserted name: placeholder.
	ws = dial(t, srv, signToken(t, verifier, "user-x"), "")
	connected = readEvent(t, ws)
	req.Equal("User", connected["name"])

	// A client-asserted name beats the directory entry.
	ws = dial(t, srv, signToken(t, verifier, "user-a"), "Ali")
	connected = readEvent(t, ws)
	req.Equal("Ali", connected["name"])
}

func TestHTTP_HealthAndRooms(t *testing.T) {
	req := require.New(t)
	srv, verifier := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	ws := dial(t, srv, signToken(t, verifier, "user-a"), "Alice")
	readEvent(t, ws)
	sendEvent(t, ws, `{"kind":"join-meeting","meetingId":"R1"}`)
	readEvent(t, ws)
	readEvent(t, ws)

	roomsResp, err := http.Get(srv.URL + "/api/rooms")
	req.NoError(err)
	defer roomsResp.Body.Close()
	var rooms struct {
		Rooms []core.RoomInfo `json:"rooms"`
	}
	req.NoError(json.NewDecoder(roomsResp.Body).Decode(&rooms))
	req.Len(rooms.Rooms, 1)
	req.EqualValues("R1", rooms.Rooms[0].ID)
	req.Equal(1, rooms.Rooms[0].MemberCount)

	partResp, err := http.Get(srv.URL + "/api/rooms/R1/participants")
	req.NoError(err)
	defer partResp.Body.Close()
	var participants struct {
		Count int `json:"count"`
	}
	req.NoError(json.NewDecoder(partResp.Body).Decode(&participants))
	req.Equal(1, participants.Count)
}
