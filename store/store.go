package store

import (
	"context"

	"github.com/pkg/errors"
)

var (
	//ErrMalformedState reports truncated or length-inconsistent framing
	ErrMalformedState = errors.New("persisted state is malformed")
	//ErrAuthentication reports tampered or foreign ciphertext, a
	//security-relevant event kept distinct from plain corruption
	ErrAuthentication = errors.New("persisted state failed authentication")
)

// Store moves the full keyed state dictionary across the external medium,
// read once at session start and written once at session end. Implementations
// may back it with any transport.
type Store interface {
	GetPersistedState(ctx context.Context) (map[string][]byte, error)
	PersistState(ctx context.Context, state map[string][]byte) error
}
