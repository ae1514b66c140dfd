package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/connectpro/relay/internal/domain"
	"github.com/connectpro/relay/internal/protocol"
)

// handleWebRTCSignal relays an offer, answer or ICE candidate to one target
// connection. The payload is opaque: the relay never parses SDP. A target
// that vanished between address resolution and delivery is logged and
// dropped; the sender cannot tell "delivered" from "target gone".
func (ctl *Controller) handleWebRTCSignal(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte, kind protocol.Kind) {
	var p protocol.WebRTCSignal
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, protocol.KindWebRTCError, "Malformed signal")
		return
	}

	relay := protocol.WebRTCRelay{
		Kind:       kind,
		From:       string(sid),
		FromUserID: pr.ID,
		Timestamp:  protocol.Timestamp(),
	}
	switch kind {
	case protocol.KindWebRTCOffer:
		if p.TargetSocketID == "" || len(p.Offer) == 0 {
			ctl.sendError(c, protocol.KindWebRTCError, "Invalid offer data")
			return
		}
		relay.FromUserName = pr.Name
		relay.Offer = p.Offer
	case protocol.KindWebRTCAnswer:
		if p.TargetSocketID == "" || len(p.Answer) == 0 {
			ctl.sendError(c, protocol.KindWebRTCError, "Invalid answer data")
			return
		}
		relay.FromUserName = pr.Name
		relay.Answer = p.Answer
	case protocol.KindWebRTCCandidate:
		if p.TargetSocketID == "" || len(p.Candidate) == 0 {
			ctl.sendError(c, protocol.KindWebRTCError, "Invalid ICE candidate data")
			return
		}
		relay.Candidate = p.Candidate
	}

	if !ctl.router.Unicast(domain.ConnID(p.TargetSocketID), relay) {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Str("target", p.TargetSocketID).Str("kind", string(kind)).Msg("signal target gone")
	}
}

func (ctl *Controller) handleWebRTCReady(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte) {
	var p protocol.WebRTCReady
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	ctl.router.BroadcastExcluding(domain.RoomID(p.MeetingID), sid, protocol.PeerReady{
		Kind:      protocol.KindPeerReady,
		SocketID:  string(sid),
		UserID:    pr.ID,
		UserName:  pr.Name,
		Timestamp: protocol.Timestamp(),
	})
}

func (ctl *Controller) handleWebRTCConnError(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte) {
	var p protocol.WebRTCConnError
	if err := json.Unmarshal(data, &p); err != nil || p.TargetSocketID == "" {
		return
	}

	ctl.router.Unicast(domain.ConnID(p.TargetSocketID), protocol.PeerConnFailed{
		Kind:       protocol.KindPeerConnFailed,
		From:       string(sid),
		FromUserID: pr.ID,
		Error:      p.Error,
		Timestamp:  protocol.Timestamp(),
	})
}
