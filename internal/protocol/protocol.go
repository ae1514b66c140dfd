// Package protocol defines the wire vocabulary of the signaling relay.
//
// Every message is a JSON object carrying a "kind" discriminator plus
// kind-specific fields. Kind strings and field names are the compatibility
// surface for unmodified clients and must not change.
package protocol

import "time"

type Kind string

// Inbound kinds (client -> relay).
const (
	KindJoinMeeting       Kind = "join-meeting"
	KindLeaveMeeting      Kind = "leave-meeting"
	KindStatusChanged     Kind = "participant-status-changed"
	KindSendMessage       Kind = "send-message"
	KindTypingStart       Kind = "typing-start"
	KindTypingStop        Kind = "typing-stop"
	KindWebRTCOffer       Kind = "webrtc-offer"
	KindWebRTCAnswer      Kind = "webrtc-answer"
	KindWebRTCCandidate   Kind = "webrtc-ice-candidate"
	KindWebRTCReady       Kind = "webrtc-ready"
	KindWebRTCConnError   Kind = "webrtc-connection-error"
	KindMeetingStarted    Kind = "meeting-started"
	KindMeetingEnded      Kind = "meeting-ended"
	KindKickParticipant   Kind = "kick-participant"
	KindSendNotification  Kind = "send-notification"
)

// Outbound kinds (relay -> client).
const (
	KindConnected            Kind = "connected"
	KindCurrentParticipants  Kind = "current-participants"
	KindParticipantJoined    Kind = "participant-joined"
	KindJoinedMeeting        Kind = "joined-meeting"
	KindParticipantLeft      Kind = "participant-left"
	KindLeftMeeting          Kind = "left-meeting"
	KindStatusUpdated        Kind = "participant-status-updated"
	KindParticipantGone      Kind = "participant-disconnected"
	KindMeetingError         Kind = "meeting-error"
	KindNewMessage           Kind = "new-message"
	KindChatError            Kind = "chat-error"
	KindUserTyping           Kind = "user-typing"
	KindUserStoppedTyping    Kind = "user-stopped-typing"
	KindWebRTCError          Kind = "webrtc-error"
	KindPeerReady            Kind = "peer-ready"
	KindPeerConnFailed       Kind = "peer-connection-failed"
	KindNotification         Kind = "notification"
	KindNotificationError    Kind = "notification-error"
	KindKickedFromMeeting    Kind = "kicked-from-meeting"
)

// Envelope is the minimal decode used to demultiplex an inbound message.
type Envelope struct {
	Kind Kind `json:"kind"`
}

// Timestamp renders event time the way clients expect it.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
