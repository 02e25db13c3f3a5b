package client

import (
	"sync"

	crderrors "github.com/velosovictor/frontblok-crud/pkg/crud/errors"
)

// A process wide default client slot. Explicit construction via New and
// passing the client to its consumers is the primary wiring; the slot exists
// as a convenience for applications that want exactly one client per process.
var (
	defaultMutex  sync.RWMutex
	defaultClient EntityClient
)

// Init constructs a client over the given executor and stores it as the
// process default. Re-initialization replaces the previous instance without
// error (last write wins). The stored client is returned.
func Init(executor Executor, options ...func(*entityClient)) EntityClient {
	c := New(executor, options...)

	defaultMutex.Lock()
	defaultClient = c
	defaultMutex.Unlock()

	return c
}

// Default returns the client stored by Init. Calling it before Init fails
// with ErrNotInitialized, which signals broken application wiring and should
// abort startup rather than be handled per call.
func Default() (EntityClient, error) {
	defaultMutex.RLock()
	defer defaultMutex.RUnlock()

	if defaultClient == nil {
		return nil, crderrors.NewNotInitializedError("entity client has not been initialized")
	}

	return defaultClient, nil
}

// IsInitialized reports whether a default client is currently stored.
func IsInitialized() bool {
	defaultMutex.RLock()
	defer defaultMutex.RUnlock()

	return defaultClient != nil
}

// Reset clears the default client. Intended for tests and teardown.
func Reset() {
	defaultMutex.Lock()
	defaultClient = nil
	defaultMutex.Unlock()
}
