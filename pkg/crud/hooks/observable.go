// Package hooks provides observable state machines over the entity client
// for long lived frontends: list and single entity fetches, mutations and a
// composite create-or-update form. Each hook owns its state behind a mutex,
// notifies subscribers after every committed change and guards against the
// two lifecycle hazards of reactive data loading: out of order responses and
// results arriving after the owning UI unit has been torn down.
package hooks

import (
	"sync"

	crderrors "github.com/velosovictor/frontblok-crud/pkg/crud/errors"
)

// Listener is invoked after a state change has been committed. Listeners run
// outside the state lock, so they may read the hook's accessors freely.
type Listener func()

// observable is the shared base for all hooks: a subscriber registry, a
// teardown flag and a monotonic issue counter implementing the
// last-issued-wins policy for in-flight requests.
type observable struct {
	mu        sync.Mutex
	listeners map[int]Listener
	nextToken int
	disposed  bool
	issued    uint64
}

// Subscribe registers a listener and returns its unsubscribe function.
func (o *observable) Subscribe(l Listener) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.listeners == nil {
		o.listeners = map[int]Listener{}
	}

	token := o.nextToken
	o.nextToken++
	o.listeners[token] = l

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()

		delete(o.listeners, token)
	}
}

// Dispose marks the instance as torn down. A result that settles after this
// point is discarded without touching state or listeners. There is no
// network level cancellation; pending requests simply settle into nothing.
func (o *observable) Dispose() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.disposed = true
}

// nextIssueLocked advances the issue counter, making every earlier in-flight
// request stale. Callers hold o.mu.
func (o *observable) nextIssueLocked() uint64 {
	o.issued++
	return o.issued
}

// isCurrentLocked reports whether a result with the given issue number may
// still settle the state. Callers hold o.mu.
func (o *observable) isCurrentLocked(seq uint64) bool {
	return !o.disposed && seq == o.issued
}

// snapshotLocked returns the registered listeners. Callers hold o.mu and
// invoke the snapshot only after releasing it.
func (o *observable) snapshotLocked() []Listener {
	ls := make([]Listener, 0, len(o.listeners))
	for _, l := range o.listeners {
		ls = append(ls, l)
	}
	return ls
}

func fanout(listeners []Listener) {
	for _, l := range listeners {
		l()
	}
}

// guard runs fn and converts a panic into a normalized error, so that a
// misbehaving client implementation cannot crash the owning UI unit.
func guard[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = crderrors.Normalize(r)
		}
	}()

	return fn()
}

func guardErr(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = crderrors.Normalize(r)
		}
	}()

	return fn()
}
