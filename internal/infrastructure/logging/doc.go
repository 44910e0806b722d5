// Package logging configures log/slog for the warehouse service and the
// device simulator.
//
// Both binaries log through one Logger type so that their records share a
// shape: service names the binary, version the build, and packages add a
// component with With. Format is json (default) or text, output stdout
// (default) or stderr, level debug, info (default), warn or error:
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stdout"
//
// Packages below cmd/ depend on a four-method Logger interface of their own
// rather than on this package; *Logger satisfies all of them.
//
// Never log secrets such as the InfluxDB token or MQTT password.
package logging
