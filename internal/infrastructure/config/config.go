package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure shared by the warehouse
// service and the simulator. Each binary reads the sections it needs.
type Config struct {
	Orion      OrionConfig       `yaml:"orion"`
	Feed       FeedConfig        `yaml:"feed"`
	Simulator  SimulatorConfig   `yaml:"simulator"`
	Components []ComponentConfig `yaml:"components"`
	API        APIConfig         `yaml:"api"`
	WebSocket  WebSocketConfig   `yaml:"websocket"`
	MQTT       MQTTConfig        `yaml:"mqtt"`
	InfluxDB   InfluxDBConfig    `yaml:"influxdb"`
	Database   DatabaseConfig    `yaml:"database"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// OrionConfig contains entity store connection settings.
type OrionConfig struct {
	// URL is the store base URL without the API prefix (e.g. http://localhost:1026).
	URL string `yaml:"url"`

	// APIPrefix is prepended to every entity path. Default: "/v2".
	APIPrefix string `yaml:"api_prefix"`

	// Service and ServicePath are sent as the tenancy headers on every request.
	Service     string `yaml:"service"`
	ServicePath string `yaml:"service_path"`

	// PageSize is the limit used when paging through list results.
	PageSize int `yaml:"page_size"`
}

// FeedConfig contains change feed settings.
type FeedConfig struct {
	// PollInterval is the delay between the end of one poll and the start of the next.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Types lists the entity types the warehouse service subscribes to.
	Types []string `yaml:"types"`
}

// SimulatorConfig contains synthetic device simulator settings.
type SimulatorConfig struct {
	TickInterval     time.Duration `yaml:"tick_interval"`
	ItemsPerTick     int           `yaml:"items_per_tick"`
	AlertProbability float64       `yaml:"alert_probability"`

	// Seed fixes the random source. 0 seeds from the clock.
	Seed uint64 `yaml:"seed"`

	// Persist stores walk state in the database so restarts continue the same entities.
	Persist bool `yaml:"persist"`

	// MetricsAddr is the listen address for the simulator's /metrics and /health endpoints.
	// Empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr"`
}

// ComponentConfig names an external component whose availability is probed.
type ComponentConfig struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: WAREHOUSE_SECTION_KEY
// For example: WAREHOUSE_ORION_URL, WAREHOUSE_API_PORT
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults. Load applies the file
// and environment over it.
func Default() *Config {
	return &Config{
		Orion: OrionConfig{
			URL:         "http://localhost:1026",
			APIPrefix:   "/v2",
			Service:     "warehouse",
			ServicePath: "/",
			PageSize:    1000,
		},
		Feed: FeedConfig{
			PollInterval: 5 * time.Second,
			Types:        []string{"Sensor", "InventoryItem", "WarehouseZone", "Alert", "Order", "Shipment"},
		},
		Simulator: SimulatorConfig{
			TickInterval:     5 * time.Second,
			ItemsPerTick:     3,
			AlertProbability: 0.1,
			Persist:          true,
			MetricsAddr:      ":9102",
		},
		Components: []ComponentConfig{
			{Name: "Orion Context Broker", URL: "http://localhost:1026/version", Description: "Context information management"},
			{Name: "Keyrock Identity Management", URL: "http://localhost:3005/version", Description: "Authentication and authorisation"},
			{Name: "WireCloud Dashboard", URL: "http://localhost:8000/api", Description: "Mashup dashboards"},
			{Name: "Knowage Analytics", URL: "http://localhost:8080/api", Description: "Business intelligence and analytics"},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "warehouse-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Org:           "warehouse",
			Bucket:        "telemetry",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Database: DatabaseConfig{
			Path:        "./data/simulator.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Orion
	if v := os.Getenv("WAREHOUSE_ORION_URL"); v != "" {
		cfg.Orion.URL = v
	}
	if v := os.Getenv("WAREHOUSE_ORION_SERVICE"); v != "" {
		cfg.Orion.Service = v
	}
	if v := os.Getenv("WAREHOUSE_ORION_SERVICE_PATH"); v != "" {
		cfg.Orion.ServicePath = v
	}

	// Feed and simulator
	if v := os.Getenv("WAREHOUSE_FEED_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Feed.PollInterval = d
		}
	}
	if v := os.Getenv("WAREHOUSE_SIMULATOR_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Simulator.TickInterval = d
		}
	}
	if v := os.Getenv("WAREHOUSE_SIMULATOR_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Simulator.Seed = seed
		}
	}

	// API
	if v := os.Getenv("WAREHOUSE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("WAREHOUSE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// MQTT
	if v := os.Getenv("WAREHOUSE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("WAREHOUSE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("WAREHOUSE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("WAREHOUSE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Database
	if v := os.Getenv("WAREHOUSE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
}

// Validate checks the configuration for errors.
// All problems are reported together rather than one at a time.
func (c *Config) Validate() error {
	var errs []string

	if c.Orion.URL == "" {
		errs = append(errs, "orion.url is required")
	}
	if c.Orion.Service == "" {
		errs = append(errs, "orion.service is required")
	}
	if !strings.HasPrefix(c.Orion.ServicePath, "/") {
		errs = append(errs, "orion.service_path must start with /")
	}
	if c.Orion.PageSize < 1 {
		errs = append(errs, "orion.page_size must be positive")
	}

	if c.Feed.PollInterval <= 0 {
		errs = append(errs, "feed.poll_interval must be positive")
	}

	if c.Simulator.TickInterval <= 0 {
		errs = append(errs, "simulator.tick_interval must be positive")
	}
	if c.Simulator.ItemsPerTick < 0 {
		errs = append(errs, "simulator.items_per_tick must not be negative")
	}
	if c.Simulator.AlertProbability < 0 || c.Simulator.AlertProbability > 1 {
		errs = append(errs, "simulator.alert_probability must be between 0 and 1")
	}

	for i, comp := range c.Components {
		if comp.Name == "" || comp.URL == "" {
			errs = append(errs, fmt.Sprintf("components[%d] requires name and url", i))
		}
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if c.Simulator.Persist && c.Database.Path == "" {
		errs = append(errs, "database.path is required when simulator.persist is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ReadTimeout returns the API read timeout as a Duration.
func (c APIConfig) ReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// WriteTimeout returns the API write timeout as a Duration.
func (c APIConfig) WriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// IdleTimeout returns the API idle timeout as a Duration.
func (c APIConfig) IdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}
