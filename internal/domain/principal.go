// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"unicode/utf8"
)

// MaxNameLen bounds display names in characters, not bytes.
const MaxNameLen = 64

var (
	ErrNameEmpty   = errors.New("name empty")
	ErrNameTooLong = errors.New("name too long")
)

type (
	// ConnID identifies one live transport session.
	ConnID string
	// RoomID identifies a meeting room. Rooms exist implicitly:
	// a room is alive as long as at least one connection is joined to it.
	RoomID string
)

// Principal is the authenticated identity attached to a connection.
// ID and IsGuest come from verified token claims; Name and Email are
// client-asserted at handshake time and must not be treated as authenticated.
// Immutable for the connection's lifetime.
type Principal struct {
	ID      string `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	IsGuest bool   `json:"isGuest"`
}

// NewPrincipal avoids ad-hoc struct literals in adapters.
func NewPrincipal(id, name, email string, isGuest bool) (Principal, error) {
	if name == "" {
		return Principal{}, ErrNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return Principal{}, ErrNameTooLong
	}
	return Principal{ID: id, Name: name, Email: email, IsGuest: isGuest}, nil
}
