package hooks

import (
	"context"

	"github.com/velosovictor/frontblok-crud/pkg/crud"
	"github.com/velosovictor/frontblok-crud/pkg/crud/client"
	crderrors "github.com/velosovictor/frontblok-crud/pkg/crud/errors"
)

// Form drives a typical create-or-edit screen by composing an Entity hook,
// which loads the record being edited, with a Mutation hook that saves it.
// A form bound to an id is in edit mode and Save patches the existing
// record; an unbound form is in create mode and Save inserts a new one.
type Form struct {
	entity   *Entity
	mutation *Mutation
}

// NewForm creates the form. A non-empty id starts an immediate load of the
// record to edit; an empty id yields a create-mode form that settles
// without touching the network.
func NewForm(ctx context.Context, ec client.EntityClient, entityName, id string) *Form {
	return &Form{
		entity:   NewEntity(ctx, ec, entityName, id),
		mutation: NewMutation(ec, entityName),
	}
}

// Subscribe registers the listener with both underlying hooks and returns a
// function that removes it from both.
func (f *Form) Subscribe(listener Listener) func() {
	unsubEntity := f.entity.Subscribe(listener)
	unsubMutation := f.mutation.Subscribe(listener)

	return func() {
		unsubEntity()
		unsubMutation()
	}
}

// Dispose tears down both hooks. In-flight work settles into the void.
func (f *Form) Dispose() {
	f.entity.Dispose()
	f.mutation.Dispose()
}

// IsEdit reports whether the form is bound to an existing record.
func (f *Form) IsEdit() bool {
	return f.entity.ID() != ""
}

// Item returns the loaded record in edit mode, or nil before the load has
// settled and always in create mode.
func (f *Form) Item() *crud.Record {
	return f.entity.Item()
}

// Save writes the payload: a patch of the bound record in edit mode, an
// insert in create mode. A successful create does not rebind the form; the
// caller decides whether to switch to editing the new record via SetID.
func (f *Form) Save(ctx context.Context, payload crud.Payload) (crud.Record, error) {
	if id := f.entity.ID(); id != "" {
		return f.mutation.Update(ctx, id, payload)
	}

	return f.mutation.Create(ctx, payload)
}

// Remove deletes the bound record. Calling it on an unbound form is a
// programming error: it fails immediately without issuing a request and
// without recording anything on the mutation state.
func (f *Form) Remove(ctx context.Context) error {
	id := f.entity.ID()
	if id == "" {
		return crderrors.NewInvalidOperationError("cannot remove an entity that has not been saved")
	}

	return f.mutation.Remove(ctx, id)
}

// SetID rebinds the form to another record, or to none when id is empty,
// and reloads.
func (f *Form) SetID(ctx context.Context, id string) {
	f.entity.SetID(ctx, id)
}

// Refetch reloads the bound record.
func (f *Form) Refetch(ctx context.Context) {
	f.entity.Refetch(ctx)
}

// Loading reports whether either leg of the form is busy.
func (f *Form) Loading() bool {
	return f.entity.Loading() || f.mutation.InFlight()
}

// LoadingEntity reports whether the initial record load is still running.
func (f *Form) LoadingEntity() bool {
	return f.entity.Loading()
}

// Saving reports whether a save or remove is in flight.
func (f *Form) Saving() bool {
	return f.mutation.InFlight()
}

// Err returns the form's current error. A failed load outranks a failed
// mutation.
func (f *Form) Err() error {
	if err := f.entity.Err(); err != nil {
		return err
	}

	return f.mutation.Err()
}

// Result returns the record settled by the most recent successful save.
func (f *Form) Result() *crud.Record {
	return f.mutation.Result()
}
