package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"github.com/velosovictor/frontblok-crud/internal/pkg/application/entitystore"
	"github.com/velosovictor/frontblok-crud/pkg/crud"
	crderrors "github.com/velosovictor/frontblok-crud/pkg/crud/errors"
)

var tracer = otel.Tracer("frontblok-api/entities")

//NewListEntityTypesHandler handles GET requests for the list of served entity types
func NewListEntityTypesHandler(app entitystore.EntityTypeLister) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "list-entity-types")
		defer span.End()

		log := logging.GetFromContext(r.Context())

		respondWithJSON(w, http.StatusOK, map[string][]string{"entities": app.EntityTypes()}, log)
	})
}

//NewListEntitiesHandler handles GET requests for entity collections
func NewListEntitiesHandler(app entitystore.EntityLister) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "list-entities")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		entityName := chi.URLParam(r, "entityName")

		var filters entitystore.Filters
		filters, err = filtersFromQuery(r.URL.Query())
		if err != nil {
			reportProblem(w, err, traceID, log)
			return
		}

		var records []crud.Record
		records, err = app.ListEntities(ctx, entityName, filters)
		if err != nil {
			reportProblem(w, err, traceID, log)
			return
		}

		respondWithJSON(w, http.StatusOK, records, log)
	})
}

//NewRetrieveEntityHandler handles GET requests for a single entity
func NewRetrieveEntityHandler(app entitystore.EntityRetriever) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "retrieve-entity")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		entityName := chi.URLParam(r, "entityName")
		entityID := chi.URLParam(r, "entityId")

		var record crud.Record
		record, err = app.RetrieveEntity(ctx, entityName, entityID)
		if err != nil {
			reportProblem(w, err, traceID, log)
			return
		}

		respondWithJSON(w, http.StatusOK, record, log)
	})
}

//NewCreateEntityHandler handles incoming POST requests for new entities
func NewCreateEntityHandler(app entitystore.EntityCreator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "create-entity")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		entityName := chi.URLParam(r, "entityName")

		var payload crud.Payload
		payload, err = payloadFromBody(r.Body)
		if err != nil {
			reportProblem(w, err, traceID, log)
			return
		}

		var record crud.Record
		record, err = app.CreateEntity(ctx, entityName, payload)
		if err != nil {
			reportProblem(w, err, traceID, log)
			return
		}

		w.Header().Add("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+record.ID())
		respondWithJSON(w, http.StatusCreated, record, log)
	})
}

//NewUpdateEntityHandler handles PATCH requests against a single entity
func NewUpdateEntityHandler(app entitystore.EntityUpdater) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "update-entity")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		entityName := chi.URLParam(r, "entityName")
		entityID := chi.URLParam(r, "entityId")

		var payload crud.Payload
		payload, err = payloadFromBody(r.Body)
		if err != nil {
			reportProblem(w, err, traceID, log)
			return
		}

		var record crud.Record
		record, err = app.UpdateEntity(ctx, entityName, entityID, payload)
		if err != nil {
			reportProblem(w, err, traceID, log)
			return
		}

		respondWithJSON(w, http.StatusOK, record, log)
	})
}

//NewDeleteEntityHandler handles DELETE requests against a single entity
func NewDeleteEntityHandler(app entitystore.EntityRemover) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "delete-entity")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		entityName := chi.URLParam(r, "entityName")
		entityID := chi.URLParam(r, "entityId")

		err = app.RemoveEntity(ctx, entityName, entityID)
		if err != nil {
			reportProblem(w, err, traceID, log)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func payloadFromBody(body io.Reader) (crud.Payload, error) {
	fields := map[string]any{}

	err := json.NewDecoder(body).Decode(&fields)
	if err != nil {
		return nil, crderrors.NewInvalidRequestError(fmt.Sprintf("unable to decode request payload: %s", err.Error()))
	}

	// server owned header fields are dropped if a client sends them anyway
	return crud.Payload(fields).Sanitized(), nil
}

func filtersFromQuery(query url.Values) (entitystore.Filters, error) {
	filters := entitystore.Filters{Fields: map[string]string{}}

	for name, values := range query {
		if len(values) == 0 {
			continue
		}

		value := values[0]

		switch name {
		case "limit":
			limit, err := strconv.Atoi(value)
			if err != nil || limit < 0 {
				return filters, crderrors.NewBadRequestError("limit must be a non-negative integer")
			}
			filters.Limit = limit
		case "offset":
			offset, err := strconv.Atoi(value)
			if err != nil || offset < 0 {
				return filters, crderrors.NewBadRequestError("offset must be a non-negative integer")
			}
			filters.Offset = offset
		case "order_by":
			filters.OrderBy = value
		default:
			filters.Fields[name] = value
		}
	}

	return filters, nil
}
