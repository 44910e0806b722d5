// Simulator - synthetic warehouse device simulator
//
// This is the main entry point for the device simulator. It owns a fixed
// topology of sensors, zones and inventory items, advances bounded random
// walks on a tick and upserts the results into the context broker.
// Readings are also fanned out to MQTT and InfluxDB when those are enabled,
// and the walk state is persisted to SQLite so a restart continues the same
// entities.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/config"
	"github.com/nerrad567/warehouse-core/internal/infrastructure/database"
	"github.com/nerrad567/warehouse-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/warehouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/warehouse-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/warehouse-core/internal/orion"
	"github.com/nerrad567/warehouse-core/internal/simulator"
	"github.com/nerrad567/warehouse-core/migrations"
)

// Version information - set at build time via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	serviceName       = "simulator"
	defaultConfigPath = "configs/config.yaml"

	// healthTimeout bounds the /health endpoint's dependency checks.
	healthTimeout = 5 * time.Second
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
func run(ctx context.Context) error { //nolint:gocognit // startup wiring of optional sinks
	log := logging.Default(serviceName)
	log.Info("starting device simulator",
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

	opts := []simulator.Option{simulator.WithLogger(log.With("component", "simulator"))}
	deps := &dependencies{}

	// Local state
	if cfg.Simulator.Persist {
		db, dbErr := database.Open(cfg.Database)
		if dbErr != nil {
			return fmt.Errorf("opening database: %w", dbErr)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("simulator state database ready", "path", db.Path())
		opts = append(opts, simulator.WithStateStore(simulator.NewSQLiteStore(db)))
		deps.db = db
	}

	// Telemetry bus
	if cfg.MQTT.Enabled {
		mqttCfg := cfg.MQTT
		mqttCfg.Broker.ClientID += "-" + serviceName
		mqttClient, mqttErr := mqtt.Connect(mqttCfg)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		mqttClient.SetLogger(log.With("component", "mqtt"))
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected", "broker", mqtt.BrokerURL(mqttCfg), "client_id", mqttCfg.Broker.ClientID)
		opts = append(opts, simulator.WithTelemetry(simulator.NewMQTTTelemetry(mqttClient, log.With("component", "telemetry"))))
		deps.mqtt = mqttClient
	}

	// Time series
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		opts = append(opts, simulator.WithTelemetry(simulator.NewInfluxTelemetry(influxClient)))
		deps.influx = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	sim, err := simulator.New(ctx, store, cfg.Simulator, opts...)
	if err != nil {
		return fmt.Errorf("creating simulator: %w", err)
	}

	if cfg.Simulator.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.Simulator.MetricsAddr,
			Handler:           newRouter(deps),
			ReadHeaderTimeout: healthTimeout,
		}
		go func() {
			if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				log.Error("metrics server error", "error", serveErr)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), healthTimeout)
			defer cancel()
			if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
				log.Error("error closing metrics server", "error", shutdownErr)
			}
		}()
		log.Info("metrics endpoint listening", "address", cfg.Simulator.MetricsAddr)
	}

	sim.Start(ctx)
	defer sim.Stop()
	log.Info("simulator running", "interval", sim.Interval())

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// dependencies are the optional connections reported by /health.
type dependencies struct {
	db     *database.DB
	mqtt   *mqtt.Client
	influx *influxdb.Client
}

// healthCheck verifies every enabled connection is healthy.
func (d *dependencies) healthCheck(ctx context.Context) error {
	if d.db != nil {
		if err := d.db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if d.mqtt != nil {
		if err := d.mqtt.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if d.influx != nil {
		if err := d.influx.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}

// newRouter serves /metrics and /health.
func newRouter(deps *dependencies) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := deps.healthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"unhealthy","version":%q,"error":%q}`, version, err.Error())
			return
		}
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, version)
	})
	return r
}

// getConfigPath returns the configuration file path.
// Uses WAREHOUSE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("WAREHOUSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
