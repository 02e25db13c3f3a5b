package hooks

import (
	"context"

	"github.com/velosovictor/frontblok-crud/pkg/crud"
	"github.com/velosovictor/frontblok-crud/pkg/crud/client"
)

// Mutation tracks create, update and remove operations against one entity:
// an in-flight flag, the last error and the last settled record. Every
// failure is both recorded on the observable state and returned to the
// caller; neither channel ever fires alone. Operations are never retried or
// coalesced, so firing two of them concurrently runs both and the caller is
// responsible for sequencing when exclusivity matters.
type Mutation struct {
	observable

	client     client.EntityClient
	entityName string

	result   *crud.Record
	inFlight bool
	err      error
}

// NewMutation creates the hook. No work happens until an operation is
// invoked.
func NewMutation(ec client.EntityClient, entityName string) *Mutation {
	return &Mutation{
		client:     ec,
		entityName: entityName,
	}
}

// Create inserts a new record and blocks until the server has settled it.
func (m *Mutation) Create(ctx context.Context, payload crud.Payload) (crud.Record, error) {
	m.begin()

	record, err := guard(func() (crud.Record, error) {
		return m.client.Create(ctx, m.entityName, payload)
	})

	if err != nil {
		m.fail(err)
		return crud.Record{}, err
	}

	m.succeed(&record)
	return record, nil
}

// Update patches the record with the given id and blocks until the server
// has settled it.
func (m *Mutation) Update(ctx context.Context, id string, payload crud.Payload) (crud.Record, error) {
	m.begin()

	record, err := guard(func() (crud.Record, error) {
		return m.client.Update(ctx, m.entityName, id, payload)
	})

	if err != nil {
		m.fail(err)
		return crud.Record{}, err
	}

	m.succeed(&record)
	return record, nil
}

// Remove deletes the record with the given id. A successful remove clears
// the last result.
func (m *Mutation) Remove(ctx context.Context, id string) error {
	m.begin()

	err := guardErr(func() error {
		return m.client.Remove(ctx, m.entityName, id)
	})

	if err != nil {
		m.fail(err)
		return err
	}

	m.succeed(nil)
	return nil
}

// Reset returns the hook to its idle state, for reusing the same instance in
// a new form session.
func (m *Mutation) Reset() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}

	m.result = nil
	m.err = nil
	m.inFlight = false
	listeners := m.snapshotLocked()
	m.mu.Unlock()

	fanout(listeners)
}

// Result returns the record settled by the most recent successful create or
// update, or nil after a remove or reset.
func (m *Mutation) Result() *crud.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.result
}

func (m *Mutation) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.inFlight
}

func (m *Mutation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.err
}

func (m *Mutation) begin() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}

	m.inFlight = true
	m.err = nil
	listeners := m.snapshotLocked()
	m.mu.Unlock()

	fanout(listeners)
}

func (m *Mutation) succeed(result *crud.Record) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}

	m.inFlight = false
	m.result = result
	listeners := m.snapshotLocked()
	m.mu.Unlock()

	fanout(listeners)
}

func (m *Mutation) fail(err error) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}

	m.inFlight = false
	m.err = err
	listeners := m.snapshotLocked()
	m.mu.Unlock()

	fanout(listeners)
}
