package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementSensorReadings = "sensor_readings"
	MeasurementZoneInventory  = "zone_inventory"
	MeasurementItemQuantity   = "item_quantity"
)

// WriteSensorReading records one reading. The value field is named after
// the sensor's reading attribute (temperature, weight, scanRate, humidity).
func (c *Client) WriteSensorReading(sensorID, sensorType, location, attribute string, value, battery float64, at time.Time) {
	c.writePoint(SensorReadingPoint(sensorID, sensorType, location, attribute, value, battery, at))
}

// WriteZoneInventory records a zone's inventory level and occupancy.
func (c *Client) WriteZoneInventory(zoneID, name string, current, capacity int, at time.Time) {
	c.writePoint(ZoneInventoryPoint(zoneID, name, current, capacity, at))
}

// WriteItemQuantity records an inventory item's stock level.
func (c *Client) WriteItemQuantity(itemID, sku, location string, quantity int, at time.Time) {
	c.writePoint(ItemQuantityPoint(itemID, sku, location, quantity, at))
}

func (c *Client) writePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}

// SensorReadingPoint builds the sensor_readings point.
func SensorReadingPoint(sensorID, sensorType, location, attribute string, value, battery float64, at time.Time) *write.Point {
	return write.NewPoint(MeasurementSensorReadings,
		map[string]string{
			"sensor_id":   sensorID,
			"sensor_type": sensorType,
			"location":    location,
		},
		map[string]any{
			attribute:       value,
			"battery_level": battery,
		},
		at,
	)
}

// ZoneInventoryPoint builds the zone_inventory point. Occupancy is a
// percentage and is 0 for a zone without capacity.
func ZoneInventoryPoint(zoneID, name string, current, capacity int, at time.Time) *write.Point {
	occupancy := 0.0
	if capacity > 0 {
		occupancy = float64(current) / float64(capacity) * 100
	}
	return write.NewPoint(MeasurementZoneInventory,
		map[string]string{
			"zone_id": zoneID,
			"zone":    name,
		},
		map[string]any{
			"current_inventory": current,
			"capacity":          capacity,
			"occupancy":         occupancy,
		},
		at,
	)
}

// ItemQuantityPoint builds the item_quantity point.
func ItemQuantityPoint(itemID, sku, location string, quantity int, at time.Time) *write.Point {
	return write.NewPoint(MeasurementItemQuantity,
		map[string]string{
			"item_id":  itemID,
			"sku":      sku,
			"location": location,
		},
		map[string]any{
			"quantity": quantity,
		},
		at,
	)
}
