// Package mqtt connects the warehouse services to the telemetry broker.
//
// The simulator publishes every sensor reading, zone inventory step and
// alert; the warehouse service subscribes to readings and relays them to
// dashboard clients. Topics live under "warehouse/":
//
//	warehouse/sensor/{sensorId}/reading
//	warehouse/zone/{zoneId}/inventory
//	warehouse/alert/{alertId}
//	warehouse/system/{clientId}/status   (retained, with will)
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.SubscribeReadings(func(r mqtt.SensorReading) {
//	    hub.Broadcast("sensor.reading", r)
//	})
//
// The broker is optional telemetry: the entity store remains the system of
// record, so callers log publish failures and carry on.
package mqtt
