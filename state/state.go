package state

import (
	"context"
	"sync"

	"github.com/lumen-ui/state-core/buffer"
	"github.com/lumen-ui/state-core/codec"
	"github.com/pkg/errors"
)

// Callback performs last-chance state capture during the pause phase.
type Callback func(ctx context.Context) error

type registration struct {
	id int64
	cb Callback
}

// Registration identifies a registered pause callback and allows its removal
// before the pause phase runs.
type Registration struct {
	id    int64
	state *State
}

// Unregister removes the callback, safe to call more than once and after the
// pause phase.
func (r *Registration) Unregister() {
	r.state.unregister(r.id)
}

// State is the keyed store one UI session writes to and reads from.
// Keys compare byte-exact and are case-sensitive. The write side accepts each
// key at most once per session; the read side hands each restored payload out
// at most once.
type State struct {
	mutex sync.Mutex
	codec codec.Codec

	pending  map[string]*buffer.Writer
	restored map[string][]byte
	loaded   bool

	regs   []registration
	nextID int64
}

type StateOption func(*State)

// WithCodec replaces the default JSON codec used by the typed accessors.
func WithCodec(c codec.Codec) StateOption {
	return func(s *State) {
		s.codec = c
	}
}

func NewState(opts ...StateOption) *State {
	s := &State{
		codec:   codec.JSON,
		pending: map[string]*buffer.Writer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Persist hands produce a pooled writer registered under key. The buffer is
// retained until the lifecycle manager drains the session; if produce fails
// the buffer is released and the key stays unused, so the caller may retry.
func (s *State) Persist(key string, produce func(w *buffer.Writer) error) error {
	s.mutex.Lock()
	_, taken := s.pending[key]
	s.mutex.Unlock()
	if taken {
		return errors.WithMessagef(ErrDuplicateKey, "key %q", key)
	}
	w := buffer.Acquire()
	if err := produce(w); err != nil {
		w.Release()
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	//produce runs unlocked, so a concurrent write to the same key must be
	//re-checked before the buffer is recorded
	if _, taken := s.pending[key]; taken {
		w.Release()
		return errors.WithMessagef(ErrDuplicateKey, "key %q", key)
	}
	s.pending[key] = w
	return nil
}

// PersistValue encodes v with the configured codec, including nil, and writes
// it through Persist.
func (s *State) PersistValue(key string, v any) error {
	return s.Persist(key, func(w *buffer.Writer) error {
		data, err := s.codec.Marshal(v)
		if err != nil {
			return errors.WithMessagef(err, "failed to encode %q as %s", key, s.codec.Name())
		}
		_, err = w.Write(data)
		return err
	})
}

// TryTake removes and returns the payload restored under key. Absence is a
// normal outcome, not an error, and covers keys already taken.
func (s *State) TryTake(key string) ([]byte, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	payload, ok := s.restored[key]
	if ok {
		delete(s.restored, key)
	}
	return payload, ok
}

// TakeValue decodes the payload restored under key with the state's codec.
// The payload is consumed either way; a codec failure reports found=true with
// an ErrDecode so the caller can tell it from absence.
func TakeValue[T any](s *State, key string) (T, bool, error) {
	var v T
	payload, ok := s.TryTake(key)
	if !ok {
		return v, false, nil
	}
	if err := s.codec.Unmarshal(payload, &v); err != nil {
		return v, true, errors.WithMessagef(ErrDecode, "key %q: %v", key, err)
	}
	return v, true, nil
}

// OnPersisting registers cb for the pause phase. Registrations survive a
// restore; the state never re-registers on the caller's behalf.
func (s *State) OnPersisting(cb Callback) *Registration {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.nextID++
	s.regs = append(s.regs, registration{id: s.nextID, cb: cb})
	return &Registration{id: s.nextID, state: s}
}

func (s *State) unregister(id int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for i, reg := range s.regs {
		if reg.id == id {
			s.regs = append(s.regs[:i], s.regs[i+1:]...)
			return
		}
	}
}

// RestoreFrom bulk-loads the read side exactly once. A second call fails with
// ErrAlreadyRestored and leaves the first load untouched.
func (s *State) RestoreFrom(data map[string][]byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.loaded {
		return ErrAlreadyRestored
	}
	s.loaded = true
	s.restored = make(map[string][]byte, len(data))
	for key, payload := range data {
		s.restored[key] = payload
	}
	return nil
}

// callbacksSnapshot returns the live registrations in registration order.
func (s *State) callbacksSnapshot() []registration {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	regs := make([]registration, len(s.regs))
	copy(regs, s.regs)
	return regs
}

// snapshot exposes the pending payloads as views into the pooled buffers,
// valid until releaseAll.
func (s *State) snapshot() map[string][]byte {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make(map[string][]byte, len(s.pending))
	for key, w := range s.pending {
		out[key] = w.Bytes()
	}
	return out
}

// releaseAll returns every pending buffer to the pool and clears the write
// side, idempotent.
func (s *State) releaseAll() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for key, w := range s.pending {
		w.Release()
		delete(s.pending, key)
	}
}
