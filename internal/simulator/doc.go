// Package simulator publishes synthetic warehouse telemetry.
//
// It owns a fixed topology (five zones, ten sensors, twelve products) and on
// every tick pushes fresh values into the entity store through
// orion.Upsert. Readings are resampled, batteries drain, and zone and item
// levels follow bounded random walks. Alerts are drawn from a fixed catalog.
//
// Generated values can additionally be sent to telemetry sinks (MQTT,
// InfluxDB) and the walk state persisted to SQLite so a restart continues
// the same entities:
//
//	sim, err := simulator.New(ctx, client, cfg.Simulator,
//		simulator.WithLogger(log),
//		simulator.WithTelemetry(simulator.NewMQTTTelemetry(broker, log)),
//		simulator.WithStateStore(simulator.NewSQLiteStore(db)),
//	)
//	if err != nil {
//	    return err
//	}
//	sim.Start(ctx)
//	defer sim.Stop()
package simulator
