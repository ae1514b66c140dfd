package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/connectpro/relay/internal/adapters/signal"
	"github.com/connectpro/relay/internal/app"
	"github.com/connectpro/relay/internal/config"
	"github.com/connectpro/relay/internal/domain"
	"github.com/connectpro/relay/internal/protocol"
)

// SetupRouter wires the WebSocket endpoint plus a small read-only
// introspection API. Meeting records themselves live in the external
// meeting service; the relay only exposes its live room state.
func SetupRouter(ctx context.Context, cfg *config.Config, rt *app.Router, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "connectpro signaling relay",
			"version":     "1.0.0",
			"connections": rt.Registry.Count(),
			"timestamp":   protocol.Timestamp(),
		})
	})

	api := r.Group("/api")

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": rt.Rooms.Rooms()})
	})

	api.GET("/rooms/:id/participants", func(c *gin.Context) {
		room := domain.RoomID(c.Param("id"))
		c.JSON(http.StatusOK, gin.H{
			"participants": rt.Participants(room, ""),
			"count":        rt.Rooms.MemberCount(room),
		})
	})

	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
