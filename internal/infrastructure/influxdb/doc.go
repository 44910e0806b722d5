// Package influxdb writes warehouse time series to InfluxDB v2.
//
// The simulator records three measurements each tick:
//
//	sensor_readings  tags sensor_id, sensor_type, location; fields <attribute>, battery_level
//	zone_inventory   tags zone_id, zone;                     fields current_inventory, capacity, occupancy
//	item_quantity    tags item_id, sku, location;            fields quantity
//
// Writes are non-blocking and batched. Failures are reported through the
// SetOnError callback; the entity store stays the system of record.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.SetOnError(func(err error) { log.Warn("influxdb write failed", "error", err) })
package influxdb
