// Package client implements the generic entity client: five CRUD verbs that
// operate against any named entity by deriving the REST endpoint from the
// entity name. The client is constructed over an opaque request executor and
// performs no header, auth or URL management of its own.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/velosovictor/frontblok-crud/pkg/crud"
	crderrors "github.com/velosovictor/frontblok-crud/pkg/crud/errors"
	"github.com/velosovictor/frontblok-crud/pkg/inflect"
)

// Executor is the request capability the client is constructed over. It is
// expected to resolve relative endpoint paths against its configured base,
// handle authentication, send any body as JSON and return the raw response
// body. Non-2xx responses and transport failures come back as errors.
type Executor interface {
	Execute(ctx context.Context, method, path string, body []byte) ([]byte, error)
}

type EntityClient interface {
	GetAll(ctx context.Context, entityName string, options crud.Options) ([]crud.Record, error)
	GetOne(ctx context.Context, entityName, id string) (crud.Record, error)
	Create(ctx context.Context, entityName string, payload crud.Payload) (crud.Record, error)
	Update(ctx context.Context, entityName, id string, payload crud.Payload) (crud.Record, error)
	Remove(ctx context.Context, entityName, id string) error
}

func Debug(enabled string) func(*entityClient) {
	return func(c *entityClient) {
		c.debug = (enabled == "true")
	}
}

// New creates an entity client over the given executor.
func New(executor Executor, options ...func(*entityClient)) EntityClient {
	c := &entityClient{
		executor: executor,
		debug:    false,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

const (
	TraceAttributeEntityName string = "entity-name"
	TraceAttributeRecordID   string = "record-id"
)

var tracer = otel.Tracer("frontblok-crud/entity-client")

type entityClient struct {
	executor Executor
	debug    bool
}

// collectionPath derives the collection endpoint for an entity name. The
// derivation goes through inflect.ToPlural and nothing else, so "task" and
// "tasks" address the same resource. Collection paths keep a trailing slash.
func collectionPath(entityName string) string {
	return "/api/" + inflect.ToPlural(entityName) + "/"
}

func itemPath(entityName, id string) string {
	return "/api/" + inflect.ToPlural(entityName) + "/" + url.QueryEscape(id)
}

func (c entityClient) GetAll(ctx context.Context, entityName string, options crud.Options) ([]crud.Record, error) {
	var err error

	ctx, span := tracer.Start(ctx, "list-entities",
		trace.WithAttributes(attribute.String(TraceAttributeEntityName, entityName)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	respBody, err := c.callBackend(ctx, http.MethodGet, collectionPath(entityName)+options.Encode(), nil)
	if err != nil {
		return nil, err
	}

	records, err := crud.NewRecordSliceFromJSON(respBody)
	if err != nil {
		if c.debug && len(respBody) < 1000 {
			err = fmt.Errorf("unmarshaling of %s failed with err %s", string(respBody), err.Error())
		}

		return nil, err
	}

	return records, nil
}

func (c entityClient) GetOne(ctx context.Context, entityName, id string) (crud.Record, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-entity",
		trace.WithAttributes(attribute.String(TraceAttributeEntityName, entityName)),
		trace.WithAttributes(attribute.String(TraceAttributeRecordID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	respBody, err := c.callBackend(ctx, http.MethodGet, itemPath(entityName, id), nil)
	if err != nil {
		return crud.Record{}, err
	}

	return crud.NewRecordFromJSON(respBody)
}

func (c entityClient) Create(ctx context.Context, entityName string, payload crud.Payload) (crud.Record, error) {
	var err error

	ctx, span := tracer.Start(ctx, "create-entity",
		trace.WithAttributes(attribute.String(TraceAttributeEntityName, entityName)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body, err := json.Marshal(payload.Sanitized())
	if err != nil {
		return crud.Record{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	respBody, err := c.callBackend(ctx, http.MethodPost, collectionPath(entityName), body)
	if err != nil {
		return crud.Record{}, err
	}

	// The response is authoritative: id and timestamps come from the
	// server, not from the payload the caller handed us.
	return crud.NewRecordFromJSON(respBody)
}

func (c entityClient) Update(ctx context.Context, entityName, id string, payload crud.Payload) (crud.Record, error) {
	var err error

	ctx, span := tracer.Start(ctx, "update-entity",
		trace.WithAttributes(attribute.String(TraceAttributeEntityName, entityName)),
		trace.WithAttributes(attribute.String(TraceAttributeRecordID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body, err := json.Marshal(payload.Sanitized())
	if err != nil {
		return crud.Record{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	respBody, err := c.callBackend(ctx, http.MethodPatch, itemPath(entityName, id), body)
	if err != nil {
		return crud.Record{}, err
	}

	return crud.NewRecordFromJSON(respBody)
}

func (c entityClient) Remove(ctx context.Context, entityName, id string) error {
	var err error

	ctx, span := tracer.Start(ctx, "delete-entity",
		trace.WithAttributes(attribute.String(TraceAttributeEntityName, entityName)),
		trace.WithAttributes(attribute.String(TraceAttributeRecordID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	_, err = c.callBackend(ctx, http.MethodDelete, itemPath(entityName, id), nil)

	return err
}

// callBackend routes one request through the executor. Executor failures are
// surfaced as ErrRequestFailed with the message forwarded unchanged; no
// retries, no coalescing, no reinterpretation of status codes.
func (c entityClient) callBackend(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if c.debug {
		log := logging.GetFromContext(ctx)
		log.Debug("calling backend", "method", method, "path", path)
	}

	respBody, err := c.executor.Execute(ctx, method, path, body)
	if err != nil {
		if errors.Is(err, crderrors.ErrRequestFailed) {
			return nil, err
		}

		return nil, crderrors.NewRequestFailedError(err.Error())
	}

	return respBody, nil
}
