package influxdb

import "errors"

// Errors returned by the InfluxDB client. Check with errors.Is.
var (
	ErrNotConnected     = errors.New("influxdb: not connected")
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled is returned by Connect when the integration is switched off.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
