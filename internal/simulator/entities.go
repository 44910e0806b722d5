package simulator

import (
	"time"

	"github.com/nerrad567/warehouse-core/internal/orion"
	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

// SensorEntity builds a sensor's envelope with its fresh reading under the
// attribute its type reads from.
func SensorEntity(s SensorState, reading float64, at time.Time) orion.Entity {
	e := orion.NewEntity(s.ID, warehouse.TypeSensor).
		Set("name", orion.Text(s.Name)).
		Set("sensorType", orion.Text(string(s.Type))).
		Set("location", orion.Text(s.Location)).
		Set("batteryLevel", orion.Number(s.BatteryLevel)).
		Set("dateModified", orion.DateTimeOf(at))
	if attr := s.Type.ReadingAttribute(); attr != "" {
		e = e.Set(attr, orion.Number(reading))
	}
	return e
}

// ZoneEntity builds a zone's envelope.
func ZoneEntity(z ZoneState, at time.Time) orion.Entity {
	return orion.NewEntity(z.ID, warehouse.TypeWarehouseZone).
		Set("name", orion.Text(z.Name)).
		Set("capacity", orion.Number(float64(z.Capacity))).
		Set("currentInventory", orion.Number(float64(z.CurrentInventory))).
		Set("dateModified", orion.DateTimeOf(at))
}

// ItemEntity builds an inventory item's envelope. Stock status is derived
// by readers and never written.
func ItemEntity(i ItemState, at time.Time) orion.Entity {
	return orion.NewEntity(i.ID, warehouse.TypeInventoryItem).
		Set("sku", orion.Text(i.SKU)).
		Set("name", orion.Text(i.Name)).
		Set("quantity", orion.Number(float64(i.Quantity))).
		Set("location", orion.Text(i.Location)).
		Set("threshold", orion.Number(float64(i.Threshold))).
		Set("dateModified", orion.DateTimeOf(at))
}

// AlertEntity builds an alert's envelope.
func AlertEntity(id string, a AlertTemplate, at time.Time) orion.Entity {
	return orion.NewEntity(id, warehouse.TypeAlert).
		Set("message", orion.Text(a.Message)).
		Set("severity", orion.Text(string(a.Severity))).
		Set("zone", orion.Text(a.Zone)).
		Set("timestamp", orion.DateTimeOf(at))
}
