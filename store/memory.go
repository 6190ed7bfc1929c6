package store

import (
	"context"
	"sync"
)

// Memory keeps the state dictionary in process, for tests and same-process
// prerender handoff. Both directions copy, so neither side can alias pooled
// memory.
type Memory struct {
	mutex sync.Mutex
	data  map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) GetPersistedState(_ context.Context) (map[string][]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	state := make(map[string][]byte, len(m.data))
	for key, payload := range m.data {
		out := make([]byte, len(payload))
		copy(out, payload)
		state[key] = out
	}
	return state, nil
}

func (m *Memory) PersistState(_ context.Context, state map[string][]byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data = make(map[string][]byte, len(state))
	for key, payload := range state {
		in := make([]byte, len(payload))
		copy(in, payload)
		m.data[key] = in
	}
	return nil
}
