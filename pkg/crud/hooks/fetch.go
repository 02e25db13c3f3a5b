package hooks

import (
	"context"
	"log/slog"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"

	"github.com/velosovictor/frontblok-crud/pkg/crud"
	"github.com/velosovictor/frontblok-crud/pkg/crud/client"
)

// Collection tracks the result of listing an entity: the fetched items, a
// loading flag and the last error. Exactly one request is current at a time;
// when several are in flight the most recently issued one wins and older
// results are discarded, so a slow stale response can never overwrite a
// fresher one.
type Collection struct {
	observable

	client client.EntityClient
	log    *slog.Logger

	entityName string
	options    crud.Options

	items   []crud.Record
	loading bool
	err     error
}

// NewCollection creates the hook and issues the initial load immediately.
func NewCollection(ctx context.Context, ec client.EntityClient, entityName string, options crud.Options) *Collection {
	c := &Collection{
		client:     ec,
		log:        logging.GetFromContext(ctx),
		entityName: entityName,
		options:    options,
	}

	c.Refetch(ctx)

	return c
}

// Refetch re-enters the loading state and issues a new request with the
// currently bound options. Safe to call while another request is still in
// flight.
func (c *Collection) Refetch(ctx context.Context) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}

	seq := c.nextIssueLocked()
	entityName, options := c.entityName, c.options
	c.loading = true
	c.err = nil
	listeners := c.snapshotLocked()
	c.mu.Unlock()

	fanout(listeners)

	go func() {
		items, err := guard(func() ([]crud.Record, error) {
			return c.client.GetAll(ctx, entityName, options)
		})

		c.settle(seq, items, err)
	}()
}

// SetOptions replaces the query options and refetches when they differ from
// the bound ones. Options compare by their encoded form, so a nil value and
// an absent key are the same thing.
func (c *Collection) SetOptions(ctx context.Context, options crud.Options) {
	c.mu.Lock()
	if c.options.Encode() == options.Encode() {
		c.mu.Unlock()
		return
	}

	c.options = options
	c.mu.Unlock()

	c.Refetch(ctx)
}

func (c *Collection) settle(seq uint64, items []crud.Record, err error) {
	c.mu.Lock()
	if !c.isCurrentLocked(seq) {
		c.mu.Unlock()
		return
	}

	c.loading = false
	if err != nil {
		// stale items are kept so the UI has something to show
		c.err = err
	} else {
		c.items = items
	}

	entityName := c.entityName
	listeners := c.snapshotLocked()
	c.mu.Unlock()

	if err != nil {
		c.log.Error("entity list fetch failed", "entity", entityName, "err", err.Error())
	}

	fanout(listeners)
}

// Items returns the most recently fetched records.
func (c *Collection) Items() []crud.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.items
}

func (c *Collection) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loading
}

func (c *Collection) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.err
}

// Entity tracks a single record fetch keyed by an optional id. An empty id
// is the valid create-mode state, not an error: the hook settles as ready
// with no item and never touches the network.
type Entity struct {
	observable

	client client.EntityClient
	log    *slog.Logger

	entityName string
	id         string

	item    *crud.Record
	loading bool
	err     error
}

// NewEntity creates the hook. A non empty id issues the initial load
// immediately.
func NewEntity(ctx context.Context, ec client.EntityClient, entityName, id string) *Entity {
	e := &Entity{
		client:     ec,
		log:        logging.GetFromContext(ctx),
		entityName: entityName,
		id:         id,
	}

	e.Refetch(ctx)

	return e
}

// Refetch re-enters the loading state for the currently bound id. With no id
// bound it settles ready with empty data instead, still invalidating any
// older in-flight request.
func (e *Entity) Refetch(ctx context.Context) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}

	seq := e.nextIssueLocked()
	entityName, id := e.entityName, e.id

	if id == "" {
		e.loading = false
		e.err = nil
		e.item = nil
		listeners := e.snapshotLocked()
		e.mu.Unlock()

		fanout(listeners)
		return
	}

	e.loading = true
	e.err = nil
	listeners := e.snapshotLocked()
	e.mu.Unlock()

	fanout(listeners)

	go func() {
		record, err := guard(func() (crud.Record, error) {
			return e.client.GetOne(ctx, entityName, id)
		})

		e.settle(seq, record, err)
	}()
}

// SetID rebinds the hook to another record id. An unchanged id is a no-op;
// an empty id moves the hook into create mode.
func (e *Entity) SetID(ctx context.Context, id string) {
	e.mu.Lock()
	if e.id == id {
		e.mu.Unlock()
		return
	}

	e.id = id
	e.mu.Unlock()

	e.Refetch(ctx)
}

func (e *Entity) settle(seq uint64, record crud.Record, err error) {
	e.mu.Lock()
	if !e.isCurrentLocked(seq) {
		e.mu.Unlock()
		return
	}

	e.loading = false
	if err != nil {
		e.err = err
	} else {
		e.item = &record
	}

	entityName, id := e.entityName, e.id
	listeners := e.snapshotLocked()
	e.mu.Unlock()

	if err != nil {
		e.log.Error("entity fetch failed", "entity", entityName, "record_id", id, "err", err.Error())
	}

	fanout(listeners)
}

// ID returns the currently bound record id, possibly empty.
func (e *Entity) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.id
}

// Item returns the fetched record, or nil before the first successful load
// and in create mode.
func (e *Entity) Item() *crud.Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.item
}

func (e *Entity) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.loading
}

func (e *Entity) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.err
}
