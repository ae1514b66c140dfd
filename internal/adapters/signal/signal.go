package signal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/connectpro/relay/internal/app"
	"github.com/connectpro/relay/internal/auth"
	"github.com/connectpro/relay/internal/config"
	"github.com/connectpro/relay/internal/core"
	"github.com/connectpro/relay/internal/domain"
	"github.com/connectpro/relay/internal/protocol"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the WebSocket endpoint: it authenticates the handshake,
// registers the connection and runs the read/write pumps that feed the
// event handlers.
type Controller struct {
	cfg       *config.Config
	router    *app.Router
	verifier  *auth.Verifier
	directory auth.Directory
	chat      *MessageRateLimiter
	upgrader  websocket.Upgrader
}

func NewController(cfg *config.Config, router *app.Router, verifier *auth.Verifier, directory auth.Directory) *Controller {
	return &Controller{
		cfg:       cfg,
		router:    router,
		verifier:  verifier,
		directory: directory,
		chat:      NewMessageRateLimiter(cfg.ChatRateLimit, cfg.ChatRateWindow),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(cfg.AllowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal authenticates and upgrades one connection. A failed token
// check rejects the request before the upgrade: an unauthenticated session
// is never registered and no handler ever sees it.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	claims, err := ctl.verifier.Verify(bearerToken(c))
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("handshake rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	principal := ctl.resolvePrincipal(c, claims)

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	// The transport session id doubles as the connection id.
	sid := domain.ConnID(uuid.NewString())
	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.cfg.SendBuffer),
	}

	ctl.router.Registry.Register(sid, principal, conn)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("user", principal.ID).Msg("new WS connection")

	ctl.sendEvent(conn, protocol.Connected{
		Kind:      protocol.KindConnected,
		SocketID:  string(sid),
		UserID:    principal.ID,
		Name:      principal.Name,
		Timestamp: protocol.Timestamp(),
	})

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, principal, conn)
}

// bearerToken pulls the credential from the query string or the
// Authorization header; the query form exists for browser WebSocket
// clients that cannot set headers.
func bearerToken(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	h := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return after
	}
	return ""
}

// resolvePrincipal combines verified claims with the client-asserted
// name/email. A missing name falls back to the directory, then to a
// placeholder; the lookup is best-effort and never blocks setup on failure.
func (ctl *Controller) resolvePrincipal(c *gin.Context, claims auth.Claims) domain.Principal {
	name := c.Query("name")
	if name == "" && ctl.directory != nil {
		if found, err := ctl.directory.FindDisplayName(c.Request.Context(), claims.UserID); err == nil {
			name = found
		}
	}
	if name == "" {
		name = "User"
	}
	// Truncate on a rune boundary; a byte slice could split a multibyte
	// character and produce an invalid-UTF-8 name.
	if runes := []rune(name); len(runes) > domain.MaxNameLen {
		name = string(runes[:domain.MaxNameLen])
	}
	principal, err := domain.NewPrincipal(claims.UserID, name, c.Query("email"), claims.IsGuest)
	if err != nil {
		// Unreachable after the fallback above; keep the placeholder anyway.
		principal = domain.Principal{ID: claims.UserID, Name: "User", IsGuest: claims.IsGuest}
	}
	return principal
}
