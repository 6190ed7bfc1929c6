package status

import "sync/atomic"

// Flag is a monotonic one-shot marker: it can be set exactly once and never
// cleared again.
type Flag struct {
	v int32
}

// Set marks the flag, returning false if it was already set.
func (f *Flag) Set() bool {
	return atomic.CompareAndSwapInt32(&f.v, 0, 1)
}

func (f *Flag) Held() bool {
	return atomic.LoadInt32(&f.v) == 1
}
