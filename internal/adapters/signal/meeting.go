package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/connectpro/relay/internal/domain"
	"github.com/connectpro/relay/internal/protocol"
)

func (ctl *Controller) participant(sid domain.ConnID, pr domain.Principal) protocol.Participant {
	return protocol.Participant{
		UserID:   pr.ID,
		Name:     pr.Name,
		Email:    pr.Email,
		IsGuest:  pr.IsGuest,
		SocketID: string(sid),
	}
}

// handleJoin adds the connection to the room, snapshots the other
// participants back to the joiner and announces the joiner to the room.
// A re-join re-sends the snapshot and re-broadcasts presence on purpose:
// clients use it to re-sync after a flaky reconnect.
func (ctl *Controller) handleJoin(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte) {
	var p protocol.JoinMeeting
	if err := json.Unmarshal(data, &p); err != nil || p.MeetingID == "" {
		ctl.sendError(c, protocol.KindMeetingError, "meetingId is required")
		return
	}
	room := domain.RoomID(p.MeetingID)

	ctl.router.Rooms.Join(room, sid)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.MeetingID).Msg("join")

	others := ctl.router.Participants(room, sid)
	ctl.sendEvent(c, protocol.CurrentParticipants{
		Kind:         protocol.KindCurrentParticipants,
		Participants: others,
		Count:        len(others),
	})

	ctl.router.BroadcastExcluding(room, sid, protocol.ParticipantJoined{
		Kind:        protocol.KindParticipantJoined,
		Participant: ctl.participant(sid, pr),
		Timestamp:   protocol.Timestamp(),
	})

	ctl.sendEvent(c, protocol.MeetingAck{
		Kind:      protocol.KindJoinedMeeting,
		MeetingID: p.MeetingID,
		Success:   true,
		Timestamp: protocol.Timestamp(),
	})
}

// handleLeave is idempotent: leaving a room the connection is not in acks
// without touching the membership set or notifying anyone.
func (ctl *Controller) handleLeave(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte) {
	var p protocol.LeaveMeeting
	if err := json.Unmarshal(data, &p); err != nil || p.MeetingID == "" {
		ctl.sendError(c, protocol.KindMeetingError, "meetingId is required")
		return
	}
	room := domain.RoomID(p.MeetingID)

	wasMember := ctl.router.Rooms.Leave(room, sid)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.MeetingID).Bool("was_member", wasMember).Msg("leave")

	if wasMember {
		ctl.router.BroadcastExcluding(room, sid, protocol.ParticipantLeft{
			Kind:      protocol.KindParticipantLeft,
			UserID:    pr.ID,
			Name:      pr.Name,
			SocketID:  string(sid),
			Timestamp: protocol.Timestamp(),
		})
	}

	ctl.sendEvent(c, protocol.MeetingAck{
		Kind:      protocol.KindLeftMeeting,
		MeetingID: p.MeetingID,
		Success:   true,
		Timestamp: protocol.Timestamp(),
	})
}

func (ctl *Controller) handleStatusChanged(sid domain.ConnID, pr domain.Principal, c *wsConn, data []byte) {
	var p protocol.StatusChanged
	if err := json.Unmarshal(data, &p); err != nil || p.MeetingID == "" {
		ctl.sendError(c, protocol.KindMeetingError, "meetingId is required")
		return
	}

	ctl.router.BroadcastExcluding(domain.RoomID(p.MeetingID), sid, protocol.StatusUpdated{
		Kind:      protocol.KindStatusUpdated,
		UserID:    pr.ID,
		Name:      pr.Name,
		SocketID:  string(sid),
		Status:    p.Status,
		Timestamp: protocol.Timestamp(),
	})
}

// onDisconnect runs the teardown cascade for a closed transport session and
// announces the departure once per vacated room. The cascade completes
// before the broadcasts, so no delivery can target the dead connection.
func (ctl *Controller) onDisconnect(sid domain.ConnID, pr domain.Principal) {
	for _, room := range ctl.router.Disconnect(sid) {
		ctl.router.Broadcast(room, protocol.ParticipantLeft{
			Kind:      protocol.KindParticipantGone,
			UserID:    pr.ID,
			Name:      pr.Name,
			SocketID:  string(sid),
			Timestamp: protocol.Timestamp(),
		})
	}
	ctl.chat.Forget(sid)
}
