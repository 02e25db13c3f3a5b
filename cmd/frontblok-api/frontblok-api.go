package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/go-chi/chi/v5"

	"github.com/velosovictor/frontblok-crud/internal/pkg/application/entitystore"
	"github.com/velosovictor/frontblok-crud/internal/pkg/application/notifications"
	"github.com/velosovictor/frontblok-crud/internal/pkg/infrastructure/router"
	"github.com/velosovictor/frontblok-crud/internal/pkg/presentation/api"
	"github.com/velosovictor/frontblok-crud/pkg/schema"
)

const (
	appName string = "frontblok-api"
)

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion)
	defer cleanup()

	schemaFile := env.GetVariableOrDefault(ctx, "SCHEMA_FILE", "/opt/frontblok/schema.yaml")

	f, err := os.Open(schemaFile)
	if err != nil {
		log.Error("failed to open schema file", "file", schemaFile, "err", err.Error())
		os.Exit(1)
	}

	storeOptions := []entitystore.StoreOption{}

	endpoint := env.GetVariableOrDefault(ctx, "NOTIFICATION_ENDPOINT", "")
	if endpoint != "" {
		notifier, err := notifications.NewNotifier(ctx, endpoint)
		if err != nil {
			log.Error("failed to create notifier", "err", err.Error())
			os.Exit(1)
		}

		notifier.Start()
		defer notifier.Stop()

		storeOptions = append(storeOptions, entitystore.WithNotifier(notifier))
	}

	r, err := initialize(ctx, f, storeOptions...)
	f.Close()
	if err != nil {
		log.Error("failed to initialize", "err", err.Error())
		os.Exit(1)
	}

	port := env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8080")
	log.Info("starting to listen for connections", "port", port)

	err = http.ListenAndServe(":"+port, r)
	if err != nil {
		log.Error("failed to listen for connections", "err", err.Error())
		os.Exit(1)
	}
}

func initialize(ctx context.Context, schemaData io.Reader, storeOptions ...entitystore.StoreOption) (*chi.Mux, error) {
	cfg, err := schema.LoadConfiguration(schemaData)
	if err != nil {
		return nil, fmt.Errorf("failed to load entity schema: %w", err)
	}

	app, err := entitystore.New(ctx, cfg, storeOptions...)
	if err != nil {
		return nil, err
	}

	r := router.New(appName, logging.GetFromContext(ctx))

	err = api.RegisterHandlers(ctx, r, app)
	if err != nil {
		return nil, err
	}

	return r, nil
}
