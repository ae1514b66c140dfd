package protocol

import "encoding/json"

// Status carries camera/microphone toggles. Pointers distinguish
// "not reported" from an explicit false.
type Status struct {
	Camera     *bool `json:"camera"`
	Microphone *bool `json:"microphone"`
}

type JoinMeeting struct {
	MeetingID string `json:"meetingId"`
}

type LeaveMeeting struct {
	MeetingID string `json:"meetingId"`
}

type StatusChanged struct {
	MeetingID string `json:"meetingId"`
	Status    Status `json:"status"`
}

type SendMessage struct {
	MeetingID string `json:"meetingId"`
	Message   string `json:"message"`
}

type Typing struct {
	MeetingID string `json:"meetingId"`
}

// WebRTCSignal covers offer, answer and ICE candidate relays.
// The signaling payloads are opaque to the relay and forwarded verbatim.
type WebRTCSignal struct {
	MeetingID      string          `json:"meetingId"`
	TargetSocketID string          `json:"targetSocketId"`
	Offer          json.RawMessage `json:"offer,omitempty"`
	Answer         json.RawMessage `json:"answer,omitempty"`
	Candidate      json.RawMessage `json:"candidate,omitempty"`
}

type WebRTCReady struct {
	MeetingID string `json:"meetingId"`
}

type WebRTCConnError struct {
	MeetingID      string          `json:"meetingId"`
	TargetSocketID string          `json:"targetSocketId"`
	Error          json.RawMessage `json:"error,omitempty"`
}

type MeetingStarted struct {
	MeetingID string `json:"meetingId"`
	Title     string `json:"title"`
}

type MeetingEnded struct {
	MeetingID string `json:"meetingId"`
	Reason    string `json:"reason"`
}

type KickParticipant struct {
	MeetingID      string `json:"meetingId"`
	TargetUserID   string `json:"targetUserId"`
	TargetSocketID string `json:"targetSocketId"`
	Reason         string `json:"reason"`
}

type SendNotification struct {
	MeetingID string `json:"meetingId"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
}
