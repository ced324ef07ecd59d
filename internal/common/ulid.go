package common

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULID returns a lexicographically sortable 26-char identifier.
func NewULID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewSessionID generates an identifier for sessions created server-side
// when the client did not supply one.
func NewSessionID() (string, error) {
	id, err := NewULID()
	if err != nil {
		return "", err
	}
	return "session_" + id, nil
}
