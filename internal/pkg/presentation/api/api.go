package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/velosovictor/frontblok-crud/internal/pkg/application/entitystore"
	crderrors "github.com/velosovictor/frontblok-crud/pkg/crud/errors"
)

func RegisterHandlers(ctx context.Context, r *chi.Mux, app entitystore.EntityStore) error {

	log := logging.GetFromContext(ctx)

	r.Route("/api", func(r chi.Router) {
		r.Use(Logger(log))
		r.Use(RequiredContentTypes([]string{"application/json"}))

		r.Get("/", NewListEntityTypesHandler(app))

		r.Route("/{entityName}", func(r chi.Router) {
			r.Get("/", NewListEntitiesHandler(app))
			r.Post("/", NewCreateEntityHandler(app))

			r.Get("/{entityId}", NewRetrieveEntityHandler(app))
			r.Patch("/{entityId}", NewUpdateEntityHandler(app))
			r.Delete("/{entityId}", NewDeleteEntityHandler(app))
		})
	})

	return nil
}

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(
				trace.SpanFromContext(ctx),
				logger,
				ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequiredContentTypes(validTypes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType := r.Header.Get("Content-Type")
			isValidContentType := true

			if len(contentType) > 0 {
				isValidContentType = false

				for _, t := range validTypes {
					if strings.HasPrefix(contentType, t) {
						isValidContentType = true
						break
					}
				}
			}

			if isValidContentType {
				next.ServeHTTP(w, r)
			} else {
				http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
			}
		})
	}
}

func reportProblem(w http.ResponseWriter, err error, traceID string, log *slog.Logger) {
	switch {
	case errors.Is(err, crderrors.ErrNotFound):
		crderrors.ReportNotFound(w, err.Error(), traceID)
	case errors.Is(err, crderrors.ErrBadRequest):
		crderrors.ReportBadRequest(w, err.Error(), traceID)
	case errors.Is(err, crderrors.ErrInvalidRequest):
		crderrors.ReportInvalidRequest(w, err.Error(), traceID)
	default:
		log.Error("request failed", "err", err.Error())
		crderrors.ReportInternalError(w, err.Error(), traceID)
	}
}

func respondWithJSON(w http.ResponseWriter, code int, body any, log *slog.Logger) {
	b, err := json.Marshal(body)
	if err != nil {
		log.Error("failed to marshal response body", "err", err.Error())
		crderrors.ReportInternalError(w, "failed to marshal response body", "")
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
}
