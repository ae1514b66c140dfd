package signal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/connectpro/relay/internal/domain"
	"github.com/connectpro/relay/internal/protocol"
)

func notificationID(sid domain.ConnID) string {
	return fmt.Sprintf("notification_%d_%s", time.Now().UnixMilli(), sid)
}

func (ctl *Controller) handleMeetingStarted(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte) {
	var p protocol.MeetingStarted
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	title := p.Title
	if title == "" {
		title = "Meeting"
	}

	ctl.router.Broadcast(domain.RoomID(p.MeetingID), protocol.Notification{
		Kind:      protocol.KindNotification,
		ID:        notificationID(sid),
		Type:      "meeting-started",
		MeetingID: p.MeetingID,
		Title:     "Meeting Started",
		Message:   fmt.Sprintf("%s has started", title),
		Timestamp: protocol.Timestamp(),
		Data: map[string]any{
			"hostId":   pr.ID,
			"hostName": pr.Name,
		},
	})
	log.Info().Str("module", "signal").Str("room", p.MeetingID).Str("user", pr.ID).Msg("meeting started")
}

// handleMeetingEnded broadcasts twice on purpose: a generic notification for
// toast UIs plus a dedicated meeting-ended event clients key teardown on.
func (ctl *Controller) handleMeetingEnded(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte) {
	var p protocol.MeetingEnded
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	message := p.Reason
	if message == "" {
		message = "The meeting has ended"
	}
	room := domain.RoomID(p.MeetingID)

	ctl.router.Broadcast(room, protocol.Notification{
		Kind:      protocol.KindNotification,
		ID:        notificationID(sid),
		Type:      "meeting-ended",
		MeetingID: p.MeetingID,
		Title:     "Meeting Ended",
		Message:   message,
		Timestamp: protocol.Timestamp(),
		Data: map[string]any{
			"endedBy":     pr.ID,
			"endedByName": pr.Name,
		},
	})
	ctl.router.Broadcast(room, protocol.MeetingEndedEvent{
		Kind:        protocol.KindMeetingEnded,
		MeetingID:   p.MeetingID,
		EndedBy:     pr.ID,
		EndedByName: pr.Name,
		Reason:      p.Reason,
		Timestamp:   protocol.Timestamp(),
	})
	log.Info().Str("module", "signal").Str("room", p.MeetingID).Str("user", pr.ID).Msg("meeting ended")
}

// handleKickParticipant notifies the target and the room. It does not
// verify that the kicker hosts the meeting; the host field lives in the
// external meeting store and this relay never consults it.
func (ctl *Controller) handleKickParticipant(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte) {
	var p protocol.KickParticipant
	if err := json.Unmarshal(data, &p); err != nil || p.TargetSocketID == "" {
		ctl.sendError(c, protocol.KindNotificationError, "Target socket ID is required")
		return
	}
	reason := p.Reason
	if reason == "" {
		reason = "You have been removed from the meeting"
	}

	ctl.router.Unicast(domain.ConnID(p.TargetSocketID), protocol.KickedFromMeeting{
		Kind:         protocol.KindKickedFromMeeting,
		MeetingID:    p.MeetingID,
		KickedBy:     pr.ID,
		KickedByName: pr.Name,
		Reason:       reason,
		Timestamp:    protocol.Timestamp(),
	})

	ctl.router.BroadcastExcluding(domain.RoomID(p.MeetingID), sid, protocol.Notification{
		Kind:      protocol.KindNotification,
		ID:        notificationID(sid),
		Type:      "kicked",
		MeetingID: p.MeetingID,
		Title:     "Participant Removed",
		Message:   "A participant was removed from the meeting",
		Timestamp: protocol.Timestamp(),
		Data: map[string]any{
			"removedBy":     pr.ID,
			"removedByName": pr.Name,
		},
	})
	log.Info().Str("module", "signal").Str("room", p.MeetingID).Str("target", p.TargetSocketID).Str("by", pr.ID).Msg("participant kicked")
}

func (ctl *Controller) handleSendNotification(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte) {
	var p protocol.SendNotification
	if err := json.Unmarshal(data, &p); err != nil || p.Title == "" || p.Message == "" {
		ctl.sendError(c, protocol.KindNotificationError, "Title and message are required")
		return
	}
	kind := p.Type
	if kind == "" {
		kind = "info"
	}

	ctl.router.Broadcast(domain.RoomID(p.MeetingID), protocol.Notification{
		Kind:      protocol.KindNotification,
		ID:        notificationID(sid),
		Type:      kind,
		MeetingID: p.MeetingID,
		Title:     p.Title,
		Message:   p.Message,
		Timestamp: protocol.Timestamp(),
		Data: map[string]any{
			"sentBy":     pr.ID,
			"sentByName": pr.Name,
		},
	})
}
