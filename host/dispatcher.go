package host

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/lumen-ui/state-core/common/safe"
	"github.com/pkg/errors"
)

var ErrDispatcherClosed = errors.New("dispatcher is closed")

// Dispatcher is the render host boundary: run a unit of work serialized with
// respect to all UI mutation.
type Dispatcher interface {
	Dispatch(ctx context.Context, fn func() error) error
}

// unit is a one-shot work item, executed or canceled exactly once.
type unit struct {
	fn func() error
	//0: pending 1: executed 2: canceled
	status uint32
	err    error
	done   chan struct{}
}

func newUnit(fn func() error) *unit {
	return &unit{fn: fn, done: make(chan struct{})}
}

func (u *unit) exec() bool {
	if atomic.CompareAndSwapUint32(&u.status, 0, 1) {
		defer close(u.done)
		u.err = safe.Run(u.fn)
		return true
	}
	return false
}

func (u *unit) cancel() bool {
	if atomic.CompareAndSwapUint32(&u.status, 0, 2) {
		close(u.done)
		return true
	}
	return false
}

// SerialDispatcher drains units on a single goroutine, so no two dispatched
// units ever run concurrently.
type SerialDispatcher struct {
	units  chan *unit
	closed chan struct{}
	once   sync.Once
}

func NewSerialDispatcher() *SerialDispatcher {
	d := &SerialDispatcher{
		units:  make(chan *unit),
		closed: make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *SerialDispatcher) loop() {
	for {
		select {
		case u := <-d.units:
			u.exec()
		case <-d.closed:
			return
		}
	}
}

// Dispatch runs fn on the dispatcher goroutine and reports its outcome. A
// panic in fn comes back as an error. If ctx expires before fn starts, the
// unit is canceled and ctx's error returned; once fn is running, Dispatch
// waits it out.
func (d *SerialDispatcher) Dispatch(ctx context.Context, fn func() error) error {
	u := newUnit(fn)
	select {
	case d.units <- u:
	case <-d.closed:
		return ErrDispatcherClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-u.done:
		return u.err
	case <-ctx.Done():
		if u.cancel() {
			return ctx.Err()
		}
		<-u.done
		return u.err
	}
}

// Close stops the loop, idempotent. Units already handed to the loop still run.
func (d *SerialDispatcher) Close() {
	d.once.Do(func() {
		close(d.closed)
	})
}
