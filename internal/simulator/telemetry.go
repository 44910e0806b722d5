package simulator

import (
	"time"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/mqtt"
)

// Telemetry receives a copy of every value a tick generates, alongside the
// store upsert. Sinks report their own failures; a failing sink never
// affects the tick.
type Telemetry interface {
	SensorRead(s SensorState, reading float64, at time.Time)
	ZoneMoved(z ZoneState, at time.Time)
	ItemMoved(i ItemState, at time.Time)
	AlertRaised(id string, a AlertTemplate, at time.Time)
}

// MessagePublisher is the part of the MQTT client used for telemetry.
type MessagePublisher interface {
	PublishReading(r mqtt.SensorReading) error
	PublishZoneInventory(z mqtt.ZoneInventory) error
	PublishAlert(a mqtt.AlertRaised) error
}

// MQTTTelemetry publishes readings, zone levels and alerts to the broker.
type MQTTTelemetry struct {
	pub    MessagePublisher
	logger Logger
}

// NewMQTTTelemetry wraps pub. A nil logger discards publish failures.
func NewMQTTTelemetry(pub MessagePublisher, logger Logger) *MQTTTelemetry {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTTelemetry{pub: pub, logger: logger}
}

func (m *MQTTTelemetry) SensorRead(s SensorState, reading float64, at time.Time) {
	err := m.pub.PublishReading(mqtt.SensorReading{
		SensorID:     s.ID,
		SensorType:   string(s.Type),
		Location:     s.Location,
		Attribute:    s.Type.ReadingAttribute(),
		Value:        reading,
		Unit:         s.Type.Unit(),
		BatteryLevel: s.BatteryLevel,
		Timestamp:    at,
	})
	m.report(err, "sensor", s.ID)
}

func (m *MQTTTelemetry) ZoneMoved(z ZoneState, at time.Time) {
	err := m.pub.PublishZoneInventory(mqtt.ZoneInventory{
		ZoneID:           z.ID,
		Name:             z.Name,
		Capacity:         z.Capacity,
		CurrentInventory: z.CurrentInventory,
		Timestamp:        at,
	})
	m.report(err, "zone", z.ID)
}

// ItemMoved is not published; item levels only go to the time series sink.
func (m *MQTTTelemetry) ItemMoved(ItemState, time.Time) {}

func (m *MQTTTelemetry) AlertRaised(id string, a AlertTemplate, at time.Time) {
	err := m.pub.PublishAlert(mqtt.AlertRaised{
		AlertID:   id,
		Message:   a.Message,
		Severity:  string(a.Severity),
		Zone:      a.Zone,
		Timestamp: at,
	})
	m.report(err, "alert", id)
}

func (m *MQTTTelemetry) report(err error, kind, id string) {
	if err != nil {
		m.logger.Debug("telemetry publish failed", "kind", kind, "id", id, "error", err)
	}
}

// PointWriter is the part of the InfluxDB client used for telemetry.
type PointWriter interface {
	WriteSensorReading(sensorID, sensorType, location, attribute string, value, battery float64, at time.Time)
	WriteZoneInventory(zoneID, name string, current, capacity int, at time.Time)
	WriteItemQuantity(itemID, sku, location string, quantity int, at time.Time)
}

// InfluxTelemetry records readings, zone levels and item quantities as points.
type InfluxTelemetry struct {
	w PointWriter
}

// NewInfluxTelemetry wraps w.
func NewInfluxTelemetry(w PointWriter) *InfluxTelemetry {
	return &InfluxTelemetry{w: w}
}

func (t *InfluxTelemetry) SensorRead(s SensorState, reading float64, at time.Time) {
	t.w.WriteSensorReading(s.ID, string(s.Type), s.Location, s.Type.ReadingAttribute(), reading, s.BatteryLevel, at)
}

func (t *InfluxTelemetry) ZoneMoved(z ZoneState, at time.Time) {
	t.w.WriteZoneInventory(z.ID, z.Name, z.CurrentInventory, z.Capacity, at)
}

func (t *InfluxTelemetry) ItemMoved(i ItemState, at time.Time) {
	t.w.WriteItemQuantity(i.ID, i.SKU, i.Location, i.Quantity, at)
}

// AlertRaised is not recorded as a point.
func (t *InfluxTelemetry) AlertRaised(string, AlertTemplate, time.Time) {}
