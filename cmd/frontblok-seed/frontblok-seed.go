package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"gopkg.in/yaml.v2"

	"github.com/velosovictor/frontblok-crud/pkg/crud"
	"github.com/velosovictor/frontblok-crud/pkg/crud/client"
	"github.com/velosovictor/frontblok-crud/pkg/crud/transport"
)

const (
	appName string = "frontblok-seed"
)

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion)
	defer cleanup()

	cfg := LoadConfiguration(ctx)

	log.Debug("begin seeding", "file", cfg.seedFile, "api", cfg.apiURL)

	seeds, err := loadSeedFile(cfg.seedFile)
	if err != nil {
		log.Error("failed to load seed file", "file", cfg.seedFile, "err", err.Error())
		os.Exit(1)
	}

	client.Init(newExecutor(cfg))

	ec, err := client.Default()
	if err != nil {
		log.Error("failed to get a client", "err", err.Error())
		os.Exit(1)
	}

	var totalCount int64 = 0

	for _, group := range seeds.Seeds {
		l := log.With(slog.String("entity", group.Entity))

		for _, fields := range group.Records {
			record, err := ec.Create(ctx, group.Entity, crud.Payload(fields).Sanitized())
			if err != nil {
				l.Error("failed to create record", "err", err.Error())
				os.Exit(1)
			}

			l.Debug("created record", slog.String("record_id", record.ID()))
			totalCount++
		}
	}

	log.Info("done seeding", slog.Int64("total", totalCount))
}

type Config struct {
	apiURL   string
	seedFile string
	apiToken string
	debug    string
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		apiURL:   env.GetVariableOrDefault(ctx, "API_URL", "http://localhost:8080"),
		seedFile: env.GetVariableOrDefault(ctx, "SEED_FILE", "/opt/frontblok/seeds.yaml"),
		apiToken: env.GetVariableOrDefault(ctx, "API_TOKEN", ""),
		debug:    env.GetVariableOrDefault(ctx, "API_CLIENT_DEBUG", "false"),
	}
}

func newExecutor(cfg Config) client.Executor {
	if cfg.apiToken != "" {
		return transport.New(cfg.apiURL,
			transport.Debug(cfg.debug),
			transport.WithHeader("Authorization", "Bearer "+cfg.apiToken),
		)
	}

	return transport.New(cfg.apiURL, transport.Debug(cfg.debug))
}

// SeedFile holds groups of records to be created, in file order. Groups for
// referenced entity types must come before the groups that point to them.
type SeedFile struct {
	Seeds []SeedGroup `yaml:"seeds"`
}

type SeedGroup struct {
	Entity  string           `yaml:"entity"`
	Records []map[string]any `yaml:"records"`
}

func loadSeedFile(path string) (*SeedFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	seeds := &SeedFile{}

	err = yaml.Unmarshal(b, seeds)
	if err != nil {
		return nil, err
	}

	for _, group := range seeds.Seeds {
		for i, record := range group.Records {
			group.Records[i] = normalizeRecord(record)
		}
	}

	return seeds, nil
}

// normalizeRecord rewrites the map types produced by the yaml decoder into
// ones the json encoder accepts.
func normalizeRecord(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for name, value := range record {
		out[name] = normalizeValue(value)
	}

	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[fmt.Sprintf("%v", key)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, val := range v {
			out = append(out, normalizeValue(val))
		}
		return out
	default:
		return v
	}
}
