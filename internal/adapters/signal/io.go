package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/connectpro/relay/internal/domain"
	"github.com/connectpro/relay/internal/protocol"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, sid domain.ConnID, pr domain.Principal, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.onDisconnect(sid, pr)
		cancel()
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.dispatch(sid, pr, c, data)
		}
	}
}

// dispatch demultiplexes one inbound event to its handler group. A panic in
// a handler answers the sender with a generic error and keeps the
// connection's loop alive; no other connection is affected.
func (ctl *Controller) dispatch(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("module", "signal").Str("sid", string(sid)).Msg("handler panic")
			ctl.sendError(c, protocol.KindMeetingError, "Internal error")
		}
	}()

	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, protocol.KindMeetingError, "Malformed event")
		return
	}

	switch env.Kind {
	case protocol.KindJoinMeeting:
		ctl.handleJoin(sid, pr, c, data)
	case protocol.KindLeaveMeeting:
		ctl.handleLeave(sid, pr, c, data)
	case protocol.KindStatusChanged:
		ctl.handleStatusChanged(sid, pr, c, data)
	case protocol.KindSendMessage:
		ctl.handleSendMessage(sid, pr, c, data)
	case protocol.KindTypingStart:
		ctl.handleTyping(sid, pr, c, data, protocol.KindUserTyping)
	case protocol.KindTypingStop:
		ctl.handleTyping(sid, pr, c, data, protocol.KindUserStoppedTyping)
	case protocol.KindWebRTCOffer, protocol.KindWebRTCAnswer, protocol.KindWebRTCCandidate:
		ctl.handleWebRTCSignal(sid, pr, c, data, env.Kind)
	case protocol.KindWebRTCReady:
		ctl.handleWebRTCReady(sid, pr, c, data)
	case protocol.KindWebRTCConnError:
		ctl.handleWebRTCConnError(sid, pr, c, data)
	case protocol.KindMeetingStarted:
		ctl.handleMeetingStarted(sid, pr, c, data)
	case protocol.KindMeetingEnded:
		ctl.handleMeetingEnded(sid, pr, c, data)
	case protocol.KindKickParticipant:
		ctl.handleKickParticipant(sid, pr, c, data)
	case protocol.KindSendNotification:
		ctl.handleSendNotification(sid, pr, c, data)
	default:
		log.Warn().Str("module", "signal").Str("kind", string(env.Kind)).Msg("unknown event")
		ctl.sendError(c, protocol.KindMeetingError, "Unknown event kind")
	}
}

func (ctl *Controller) sendEvent(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendEvent marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *wsConn, kind protocol.Kind, message string) {
	ctl.sendEvent(c, protocol.ErrorEvent{Kind: kind, Message: message})
}
