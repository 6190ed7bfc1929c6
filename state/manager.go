package state

import (
	"context"
	"sync"

	"github.com/lumen-ui/state-core/common/safe"
	"github.com/lumen-ui/state-core/common/status"
	"github.com/lumen-ui/state-core/host"
	"github.com/lumen-ui/state-core/log"
	"github.com/lumen-ui/state-core/store"
	"github.com/pkg/errors"
	"github.com/uber-go/tally/v4"
)

// Manager drives one restore/persist lifecycle of a State instance. Restore
// and persist are independent monotonic axes: a fresh session may persist
// without ever restoring, but neither transition can happen twice.
type Manager struct {
	state  *State
	logger log.Logger
	scope  tally.Scope

	persisted status.Flag
}

type Option func(*Manager)

func WithLogger(logger log.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithScope(scope tally.Scope) Option {
	return func(m *Manager) {
		m.scope = scope
	}
}

func NewManager(s *State, opts ...Option) *Manager {
	m := &Manager{
		state:  s,
		logger: log.Global().Named("state.manager"),
		scope:  tally.NoopScope,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RestoreState fetches the session's prior keyed payloads from st and loads
// them into the state. Store-boundary failures (store.ErrMalformedState,
// store.ErrAuthentication) propagate without marking the session restored;
// the caller decides between starting fresh and aborting.
func (m *Manager) RestoreState(ctx context.Context, st store.Store) error {
	data, err := st.GetPersistedState(ctx)
	if err != nil {
		return errors.WithMessage(err, "failed to fetch persisted state")
	}
	if err := m.state.RestoreFrom(data); err != nil {
		return err
	}
	m.scope.Counter("restore").Inc(1)
	m.logger.Debugf("restored %d state entries", len(data))
	return nil
}

// PersistState runs the pause-and-persist sequence on d, serialized with all
// other UI mutation. A second call fails immediately with ErrAlreadyPersisted,
// whatever the first call's outcome. The pooled buffers are released on every
// exit path once the sequence has run.
func (m *Manager) PersistState(ctx context.Context, st store.Store, d host.Dispatcher) error {
	if !m.persisted.Set() {
		return ErrAlreadyPersisted
	}
	return d.Dispatch(ctx, func() error {
		defer m.state.releaseAll()
		m.pause(ctx)
		//a callback's late Persist lands before this snapshot
		snapshot := m.state.snapshot()
		if err := st.PersistState(ctx, snapshot); err != nil {
			return errors.WithMessage(err, "failed to persist state")
		}
		m.scope.Counter("persist").Inc(1)
		m.scope.Counter("entries_persisted").Inc(int64(len(snapshot)))
		return nil
	})
}

// pause starts every registered callback before joining any, so callbacks run
// concurrently relative to each other. A callback that fails or panics is
// logged and counted, never aborts its siblings and never reaches the persist
// caller.
func (m *Manager) pause(ctx context.Context) {
	regs := m.state.callbacksSnapshot()
	if len(regs) == 0 {
		return
	}
	sw := m.scope.Timer("pause_latency").Start()
	defer sw.Stop()
	wg := &sync.WaitGroup{}
	for _, reg := range regs {
		reg := reg
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := safe.Run(func() error {
				return reg.cb(ctx)
			}); err != nil {
				m.scope.Counter("callback_failure").Inc(1)
				m.logger.Warnw("state callback failed during pause.", "registration", reg.id, "err", err)
			}
		}()
	}
	wg.Wait()
}

// Close releases all pooled buffers still held by the session, idempotent.
func (m *Manager) Close() error {
	m.state.releaseAll()
	return nil
}
