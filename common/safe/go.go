package safe

import (
	"fmt"
	"os"
	"runtime/debug"
)

//be safe, don't panic

// Run executes fn, converting a panic into a returned error.
func Run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "panic: %#v\n", r)
			debug.PrintStack()
			switch x := r.(type) {
			case error:
				err = x
			default:
				err = fmt.Errorf("%v", x)
			}
		}
	}()
	err = fn()
	return err
}

// Go runs fn on a new goroutine, reporting its outcome on the returned channel.
func Go(fn func() error) chan error {
	c := make(chan error, 1)
	go func() {
		c <- Run(fn)
		close(c)
	}()
	return c
}
