// Package config handles loading and validating warehouse configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with WAREHOUSE_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// The same file configures both binaries: the warehouse service reads the
// orion, feed, components, api, websocket and mqtt sections; the simulator
// reads orion, simulator, mqtt, influxdb and database.
//
// Security Considerations:
//   - Sensitive values (MQTT password, InfluxDB token) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Orion.URL)
package config
