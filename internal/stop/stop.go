// Package stop provides a one-way flag shared by the walker, the workers and
// the output stage.
package stop

import (
	"context"
	"sync"
	"sync/atomic"
)

// Flag is set at most once. Readers never block.
type Flag struct {
	set   atomic.Bool
	once  sync.Once
	cause error
	done  chan struct{}
	init  sync.Once
}

// New returns an unset flag.
func New() *Flag {
	f := &Flag{}
	f.lazy()
	return f
}

func (f *Flag) lazy() {
	f.init.Do(func() { f.done = make(chan struct{}) })
}

// Stop sets the flag. Only the first cause is kept; later calls are no-ops.
func (f *Flag) Stop(cause error) {
	if f == nil {
		return
	}
	f.lazy()
	f.once.Do(func() {
		f.cause = cause
		f.set.Store(true)
		close(f.done)
	})
}

// Stopped reports whether Stop has been called.
func (f *Flag) Stopped() bool {
	return f != nil && f.set.Load()
}

// Cause returns the error passed to the first Stop, or nil.
func (f *Flag) Cause() error {
	if !f.Stopped() {
		return nil
	}
	return f.cause
}

// Done is closed once the flag is set.
func (f *Flag) Done() <-chan struct{} {
	if f == nil {
		return nil
	}
	f.lazy()
	return f.done
}

// Watch sets the flag when ctx is cancelled. The returned function releases
// the watcher and must be called once the caller is finished.
func (f *Flag) Watch(ctx context.Context) (release func()) {
	stop := context.AfterFunc(ctx, func() { f.Stop(context.Cause(ctx)) })
	return func() { stop() }
}
