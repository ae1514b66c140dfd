package protocol

import "encoding/json"

// Participant is the read-only view of a connection exposed to peers.
type Participant struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	IsGuest  bool   `json:"isGuest"`
	SocketID string `json:"socketId"`
}

type Connected struct {
	Kind      Kind   `json:"kind"`
	SocketID  string `json:"socketId"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
}

type CurrentParticipants struct {
	Kind         Kind          `json:"kind"`
	Participants []Participant `json:"participants"`
	Count        int           `json:"count"`
}

type ParticipantJoined struct {
	Kind Kind `json:"kind"`
	Participant
	Timestamp string `json:"timestamp"`
}

type MeetingAck struct {
	Kind      Kind   `json:"kind"`
	MeetingID string `json:"meetingId"`
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
}

type ParticipantLeft struct {
	Kind      Kind   `json:"kind"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	SocketID  string `json:"socketId"`
	Timestamp string `json:"timestamp"`
}

type StatusUpdated struct {
	Kind      Kind   `json:"kind"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	SocketID  string `json:"socketId"`
	Status    Status `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ErrorEvent answers a malformed or failed inbound event. The same shape
// serves meeting-error, chat-error, webrtc-error and notification-error.
type ErrorEvent struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

type ChatMessage struct {
	Kind      Kind   `json:"kind"`
	ID        string `json:"id"`
	MeetingID string `json:"meetingId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	IsGuest   bool   `json:"isGuest"`
}

type TypingEvent struct {
	Kind      Kind   `json:"kind"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Timestamp string `json:"timestamp"`
}

// WebRTCRelay is an offer/answer/candidate forwarded to its target,
// annotated with the sender so the peer knows whom to answer.
type WebRTCRelay struct {
	Kind         Kind            `json:"kind"`
	From         string          `json:"from"`
	FromUserID   string          `json:"fromUserId"`
	FromUserName string          `json:"fromUserName,omitempty"`
	Offer        json.RawMessage `json:"offer,omitempty"`
	Answer       json.RawMessage `json:"answer,omitempty"`
	Candidate    json.RawMessage `json:"candidate,omitempty"`
	Timestamp    string          `json:"timestamp"`
}

type PeerReady struct {
	Kind      Kind   `json:"kind"`
	SocketID  string `json:"socketId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Timestamp string `json:"timestamp"`
}

type PeerConnFailed struct {
	Kind       Kind            `json:"kind"`
	From       string          `json:"from"`
	FromUserID string          `json:"fromUserId"`
	Error      json.RawMessage `json:"error,omitempty"`
	Timestamp  string          `json:"timestamp"`
}

type Notification struct {
	Kind      Kind           `json:"kind"`
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	MeetingID string         `json:"meetingId"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

type KickedFromMeeting struct {
	Kind         Kind   `json:"kind"`
	MeetingID    string `json:"meetingId"`
	KickedBy     string `json:"kickedBy"`
	KickedByName string `json:"kickedByName"`
	Reason       string `json:"reason"`
	Timestamp    string `json:"timestamp"`
}

type MeetingEndedEvent struct {
	Kind        Kind   `json:"kind"`
	MeetingID   string `json:"meetingId"`
	EndedBy     string `json:"endedBy"`
	EndedByName string `json:"endedByName"`
	Reason      string `json:"reason"`
	Timestamp   string `json:"timestamp"`
}
