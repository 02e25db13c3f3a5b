package hooks

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/matryer/is"
	"github.com/velosovictor/frontblok-crud/pkg/crud"
	crderrors "github.com/velosovictor/frontblok-crud/pkg/crud/errors"
)

func TestMutationCreateReturnsAndRecordsTheResult(t *testing.T) {
	is := is.New(t)
	mc := &mockEntityClient{
		CreateFunc: func(ctx context.Context, entityName string, payload crud.Payload) (crud.Record, error) {
			return taskRecord("t-9"), nil
		},
	}

	m := NewMutation(mc, "task")

	record, err := m.Create(context.Background(), crud.Payload{"title": "write docs"})

	is.NoErr(err)
	is.Equal(record.ID(), "t-9")
	is.Equal(m.Result().ID(), "t-9") // the settled record is also kept on the hook
	is.True(!m.InFlight())
	is.NoErr(m.Err())
}

func TestMutationFailuresAreRecordedAndReturned(t *testing.T) {
	is := is.New(t)
	mc := &mockEntityClient{
		UpdateFunc: func(ctx context.Context, entityName, id string, payload crud.Payload) (crud.Record, error) {
			return crud.Record{}, crderrors.NewRequestFailedError("backend offline")
		},
	}

	m := NewMutation(mc, "task")

	_, err := m.Update(context.Background(), "t-1", crud.Payload{"done": true})

	is.True(err != nil)
	is.Equal(m.Err(), err) // the same failure shows on the hook and at the call site
	is.True(!m.InFlight())
}

func TestMutationRemoveClearsTheLastResult(t *testing.T) {
	is := is.New(t)
	mc := &mockEntityClient{
		CreateFunc: func(ctx context.Context, entityName string, payload crud.Payload) (crud.Record, error) {
			return taskRecord("t-9"), nil
		},
	}

	m := NewMutation(mc, "task")

	_, err := m.Create(context.Background(), crud.Payload{"title": "write docs"})
	is.NoErr(err)
	is.True(m.Result() != nil)

	err = m.Remove(context.Background(), "t-9")
	is.NoErr(err)
	is.Equal(m.Result(), nil) // the removed record is no longer a result
}

func TestMutationInFlightIsVisibleWhileTheCallIsBlocked(t *testing.T) {
	is := is.New(t)

	release := make(chan struct{})
	mc := &mockEntityClient{
		CreateFunc: func(ctx context.Context, entityName string, payload crud.Payload) (crud.Record, error) {
			<-release
			return taskRecord("t-1"), nil
		},
	}

	m := NewMutation(mc, "task")

	done := make(chan error, 1)
	go func() {
		_, err := m.Create(context.Background(), crud.Payload{"title": "write docs"})
		done <- err
	}()

	eventually(t, func() bool { return m.InFlight() })
	close(release)

	is.NoErr(<-done)
	is.True(!m.InFlight())
}

func TestMutationResetReturnsTheHookToIdle(t *testing.T) {
	is := is.New(t)
	mc := &mockEntityClient{
		CreateFunc: func(ctx context.Context, entityName string, payload crud.Payload) (crud.Record, error) {
			return taskRecord("t-9"), nil
		},
	}

	m := NewMutation(mc, "task")

	_, err := m.Create(context.Background(), crud.Payload{"title": "write docs"})
	is.NoErr(err)

	var notified int32
	m.Subscribe(func() { atomic.AddInt32(&notified, 1) })

	m.Reset()

	is.Equal(m.Result(), nil)
	is.NoErr(m.Err())
	is.True(!m.InFlight())
	is.True(atomic.LoadInt32(&notified) > 0) // a reset is observable like any other change
}

func TestMutationsAreNotCoalesced(t *testing.T) {
	is := is.New(t)

	release := make(chan struct{})
	mc := &mockEntityClient{
		CreateFunc: func(ctx context.Context, entityName string, payload crud.Payload) (crud.Record, error) {
			<-release
			return taskRecord("t-1"), nil
		},
	}

	m := NewMutation(mc, "task")

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := m.Create(context.Background(), crud.Payload{"title": "write docs"})
			done <- err
		}()
	}

	eventually(t, func() bool { return mc.callCount("Create") == 2 })
	close(release)

	is.NoErr(<-done)
	is.NoErr(<-done)
	is.Equal(mc.callCount("Create"), 2) // both requests reached the backend
}

func TestDisposedMutationReturnsToTheCallerWithoutTouchingState(t *testing.T) {
	is := is.New(t)

	release := make(chan struct{})
	mc := &mockEntityClient{
		CreateFunc: func(ctx context.Context, entityName string, payload crud.Payload) (crud.Record, error) {
			<-release
			return taskRecord("t-1"), nil
		},
	}

	m := NewMutation(mc, "task")

	type outcome struct {
		record crud.Record
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		record, err := m.Create(context.Background(), crud.Payload{"title": "write docs"})
		done <- outcome{record, err}
	}()

	eventually(t, func() bool { return m.InFlight() })
	m.Dispose()
	close(release)

	got := <-done
	is.NoErr(got.err)
	is.Equal(got.record.ID(), "t-1") // the caller still gets the outcome
	is.Equal(m.Result(), nil)        // but the disposed hook never records it
}
