package state

import "github.com/pkg/errors"

var (
	//ErrDuplicateKey reports a second write to a key within one session,
	//a caller bug, never retried by the library
	ErrDuplicateKey = errors.New("state key already persisted this session")
	//ErrAlreadyRestored reports a second bulk-load of the read side
	ErrAlreadyRestored = errors.New("state already restored")
	//ErrAlreadyPersisted reports a second persist of the same manager
	ErrAlreadyPersisted = errors.New("state already persisted")
	//ErrDecode reports a payload that was present but failed the codec,
	//distinct from not-found
	ErrDecode = errors.New("failed to decode state payload")
)
