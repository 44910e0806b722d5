// Package api implements the HTTP REST API and WebSocket server for the
// warehouse dashboard.
//
// This package provides:
//   - Snapshot endpoints serving the latest change feed delivery per entity type
//   - Write endpoints for orders, shipments, reports, users and inventory deletion
//   - Component status and an inventory spreadsheet export
//   - WebSocket hub pushing feed changes and live MQTT sensor readings
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// The server subscribes one change feed per configured entity type. Each
// delivery replaces that type's snapshot on the Board and is broadcast to
// WebSocket clients subscribed to "<type>.changed" (for example
// "sensor.changed"). Readings relayed from the MQTT bus are broadcast on
// "sensor.reading" without touching the store.
//
// A snapshot endpoint answers 503 until its feed has delivered once; the
// dashboard never sees an empty list standing in for an unreachable store.
//
// # Graceful Degradation
//
// The server operates without MQTT; only the live reading relay is lost.
package api
