// Warehouse - dashboard data service
//
// This is the main entry point for the warehouse dashboard service. It
// subscribes change feeds for the warehouse entity types in the context
// broker, serves the latest snapshots over a JSON API, pushes changes and
// live sensor readings to WebSocket clients, and exposes the dashboard's
// write paths.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/warehouse-core/internal/api"
	"github.com/nerrad567/warehouse-core/internal/infrastructure/config"
	"github.com/nerrad567/warehouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/warehouse-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/warehouse-core/internal/orion"
	"github.com/nerrad567/warehouse-core/internal/status"
	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	serviceName       = "warehouse"
	defaultConfigPath = "configs/config.yaml"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default(serviceName)
	log.Info("starting warehouse service",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, serviceName, version)

	store, err := orion.New(cfg.Orion, nil)
	if err != nil {
		return fmt.Errorf("creating entity store client: %w", err)
	}
	log.Info("entity store configured", "url", cfg.Orion.URL, "service", cfg.Orion.Service)

	norm := warehouse.NewNormalizer()
	norm.SetLogger(log.With("component", "normalizer"))
	repo := warehouse.NewRepository(store, norm)

	// MQTT is optional: without it the live reading relay is disabled.
	var readings api.ReadingSource
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			log.Warn("MQTT unavailable, live readings disabled", "error", mqttErr)
		} else {
			mqttClient.SetLogger(log.With("component", "mqtt"))
			defer func() {
				log.Info("disconnecting from MQTT")
				if closeErr := mqttClient.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			log.Info("MQTT connected", "broker", mqtt.BrokerURL(cfg.MQTT))
			readings = mqttClient
		}
	}

	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Feed:       cfg.Feed,
		Logger:     log.With("component", "api"),
		Repository: repo,
		Types:      store,
		Status:     status.NewChecker(store, cfg.Components),
		Readings:   readings,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"feeds", cfg.Feed.Types,
	)

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses WAREHOUSE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("WAREHOUSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
