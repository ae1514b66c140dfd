package auth

import (
	"context"
	"errors"
)

var ErrUnknownSubject = errors.New("unknown subject")

// Directory resolves a display name for a subject when the client asserts
// none at handshake. Backed by the external account store; lookups are
// best-effort and a failure must never stall connection setup.
type Directory interface {
	FindDisplayName(ctx context.Context, userID string) (string, error)
}

// StaticDirectory serves display names from a fixed map.
// Useful for tests and for running the relay without the account service.
type StaticDirectory map[string]string

func (d StaticDirectory) FindDisplayName(_ context.Context, userID string) (string, error) {
	if name, ok := d[userID]; ok {
		return name, nil
	}
	return "", ErrUnknownSubject
}
