package adapter

import (
	"context"
	"sync"
	"sync/atomic"
)

// outcome carries the single result of a bridged partner call
type outcome[T any] struct {
	value T
	err   error
}

// continuation bridges a callback-style partner call into a single result
// delivered to the original caller. Some SDK versions invoke more than one
// callback for the same call; only the first invocation resolves the
// continuation, every later one is counted and dropped.
//
// The continuation imposes no deadline of its own: timeouts, when they
// happen, are reported by the partner SDK as error codes.
type continuation[T any] struct {
	once    sync.Once
	ch      chan outcome[T]
	dropped atomic.Int64
}

func newContinuation[T any]() *continuation[T] {
	return &continuation[T]{ch: make(chan outcome[T], 1)}
}

// complete resolves the continuation with a value. effect, when non-nil,
// runs inside the single-fire guard so side effects from duplicate or
// post-cancellation callbacks never land. Reports whether this call won.
func (c *continuation[T]) complete(value T, effect func()) bool {
	fired := false
	c.once.Do(func() {
		if effect != nil {
			effect()
		}
		c.ch <- outcome[T]{value: value}
		fired = true
	})
	if !fired {
		c.dropped.Add(1)
	}
	return fired
}

// fail resolves the continuation with an error under the same single-fire
// discipline as complete
func (c *continuation[T]) fail(err error, effect func()) bool {
	fired := false
	c.once.Do(func() {
		if effect != nil {
			effect()
		}
		c.ch <- outcome[T]{err: err}
		fired = true
	})
	if !fired {
		c.dropped.Add(1)
	}
	return fired
}

// abandon consumes the single-fire guard without resolving, turning any
// later callback into a complete no-op
func (c *continuation[T]) abandon() {
	c.once.Do(func() {})
}

// await blocks until the first callback resolves the continuation or the
// context is cancelled. Cancellation abandons the pending registration; the
// partner SDK is never asked to cancel because it has no such call.
func (c *continuation[T]) await(ctx context.Context) (T, error) {
	select {
	case out := <-c.ch:
		return out.value, out.err
	case <-ctx.Done():
		c.abandon()
		var zero T
		return zero, ctx.Err()
	}
}

// droppedCallbacks reports how many callback invocations arrived after the
// continuation was already resolved or abandoned
func (c *continuation[T]) droppedCallbacks() int64 {
	return c.dropped.Load()
}
