package warehouse

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/nerrad567/warehouse-core/internal/metrics"
	"github.com/nerrad567/warehouse-core/internal/orion"
)

// Logger defines the logging interface used by the warehouse package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Defaults substituted for absent or mistyped attributes.
const (
	DefaultThreshold    = 50
	DefaultCapacity     = 1000
	DefaultBatteryLevel = 100.0
)

// Normalizer maps raw entities onto typed records.
//
// Every absent, null or mistyped attribute is replaced by its documented
// default and out-of-set enumerations are coerced to their default, so a
// record is never rejected over one field. Mistyped attributes and malformed
// structured lists are reported through the logger and the
// warehouse_normalize_failures_total counter.
//
// Absent timestamps normalize to the zero time. Substituting "now" would
// make every poll look like a change.
type Normalizer struct {
	logger   Logger
	failures *prometheus.CounterVec
}

// NewNormalizer creates a normalizer that reports to the shared metrics.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		logger:   noopLogger{},
		failures: metrics.NormalizeFailures,
	}
}

// SetLogger sets the logger for diagnostics.
func (n *Normalizer) SetLogger(logger Logger) {
	n.logger = logger
}

// Sensor normalizes a Sensor entity and derives its status.
func (n *Normalizer) Sensor(e orion.Entity) Sensor {
	f := n.fields(e)
	s := Sensor{
		ID:           e.ID,
		Name:         f.text("name", e.ID),
		Type:         enum(f, "sensorType", SensorType("")),
		Location:     f.text("location", "Unknown"),
		BatteryLevel: f.number("batteryLevel", DefaultBatteryLevel),
		LastReading:  f.timestamp("dateModified"),
	}
	if attr := s.Type.ReadingAttribute(); attr != "" {
		s.Reading = f.optionalNumber(attr)
	}
	s.Status = SensorStatusOf(s.Type, s.BatteryLevel, s.Reading)
	return s
}

// SensorStatusOf derives a sensor's status. Offline is checked before the
// warning conditions because a battery below 5 is also below 20.
func SensorStatusOf(t SensorType, battery float64, reading *float64) SensorStatus {
	switch {
	case battery < 5:
		return SensorOffline
	case battery < 20:
		return SensorWarning
	case t == SensorTemperature && reading != nil && (*reading > 26 || *reading < 0):
		return SensorWarning
	default:
		return SensorOnline
	}
}

// InventoryItem normalizes an InventoryItem entity and derives its stock status.
func (n *Normalizer) InventoryItem(e orion.Entity) InventoryItem {
	f := n.fields(e)
	item := InventoryItem{
		ID:          e.ID,
		SKU:         f.text("sku", "Unknown"),
		Name:        f.text("name", "Unknown Product"),
		Quantity:    f.integer("quantity", 0),
		Threshold:   f.integer("threshold", DefaultThreshold),
		Location:    f.text("location", "Unknown"),
		LastUpdated: f.timestamp("dateModified"),
	}
	item.Status = StockStatusOf(item.Quantity, item.Threshold)
	return item
}

// StockStatusOf derives a stock status. The threshold is an exclusive bound:
// a quantity equal to the threshold is in stock.
func StockStatusOf(quantity, threshold int) StockStatus {
	switch {
	case quantity == 0:
		return OutOfStock
	case quantity < threshold:
		return LowStock
	default:
		return InStock
	}
}

// Zone normalizes a WarehouseZone entity.
func (n *Normalizer) Zone(e orion.Entity) WarehouseZone {
	f := n.fields(e)
	return WarehouseZone{
		ID:               e.ID,
		Name:             f.text("name", e.ID),
		Capacity:         f.integer("capacity", DefaultCapacity),
		CurrentInventory: f.integer("currentInventory", 0),
		LastUpdated:      f.timestamp("dateModified"),
	}
}

// Alert normalizes an Alert entity.
func (n *Normalizer) Alert(e orion.Entity) Alert {
	f := n.fields(e)
	return Alert{
		ID:        e.ID,
		Message:   f.text("message", "Unknown alert"),
		Severity:  enum(f, "severity", SeverityInfo),
		Zone:      f.text("zone", "Unknown"),
		Timestamp: f.timestamp("timestamp"),
	}
}

// Order normalizes an Order entity. A malformed item list becomes empty.
func (n *Normalizer) Order(e orion.Entity) Order {
	f := n.fields(e)
	return Order{
		ID:            e.ID,
		OrderID:       f.text("orderId", e.ID),
		Customer:      f.text("customer", "Unknown"),
		Status:        enum(f, "status", OrderNew),
		Items:         list[OrderItem](f, "items"),
		TotalAmount:   decimal.NewFromFloat(f.number("totalAmount", 0)),
		PaymentStatus: enum(f, "paymentStatus", PaymentPending),
		OrderDate:     f.timestamp("orderDate"),
		ShipByDate:    f.timestamp("shipByDate"),
		Priority:      enum(f, "priority", PriorityNormal),
		Notes:         f.text("notes", ""),
		CreatedAt:     f.timestamp("dateCreated"),
		UpdatedAt:     f.timestamp("dateModified"),
	}
}

// Shipment normalizes a Shipment entity. A malformed item list becomes empty.
func (n *Normalizer) Shipment(e orion.Entity) Shipment {
	f := n.fields(e)
	return Shipment{
		ID:             e.ID,
		ShipmentID:     f.text("shipmentId", e.ID),
		Status:         enum(f, "status", ShipmentPending),
		Origin:         f.text("origin", "Unknown"),
		Destination:    f.text("destination", "Unknown"),
		Carrier:        f.text("carrier", "Unknown"),
		TrackingNumber: f.text("trackingNumber", "N/A"),
		Items:          list[ShipmentItem](f, "items"),
		ScheduledDate:  f.timestamp("scheduledDate"),
		ActualDate:     f.optionalTimestamp("actualDate"),
		CreatedAt:      f.timestamp("dateCreated"),
		UpdatedAt:      f.timestamp("dateModified"),
	}
}

// User normalizes a User entity.
func (n *Normalizer) User(e orion.Entity) User {
	f := n.fields(e)
	return User{
		ID:         e.ID,
		Username:   f.text("username", "user"),
		Email:      f.text("email", "user@example.com"),
		FirstName:  f.text("firstName", "Unknown"),
		LastName:   f.text("lastName", "User"),
		Role:       enum(f, "role", RoleViewer),
		Department: f.text("department", "General"),
		LastLogin:  f.optionalTimestamp("lastLogin"),
		Status:     enum(f, "status", UserActive),
		CreatedAt:  f.timestamp("dateCreated"),
	}
}

// Report normalizes a Report entity.
func (n *Normalizer) Report(e orion.Entity) Report {
	f := n.fields(e)
	return Report{
		ID:          e.ID,
		Name:        f.text("name", "Unnamed Report"),
		Description: f.text("description", ""),
		Type:        enum(f, "reportType", ReportCustom),
		CreatedBy:   f.text("createdBy", "System"),
		CreatedAt:   f.timestamp("dateCreated"),
		LastRun:     f.optionalTimestamp("lastRun"),
		Schedule:    enum(f, "schedule", ScheduleOnDemand),
		Format:      enum(f, "format", FormatPDF),
		URL:         f.text("url", "#"),
	}
}

// Setting normalizes a SystemSetting entity.
func (n *Normalizer) Setting(e orion.Entity) SystemSetting {
	f := n.fields(e)
	return SystemSetting{
		ID:          e.ID,
		Category:    f.text("category", "General"),
		Key:         f.text("key", "unknown"),
		Value:       f.text("value", ""),
		Description: f.text("description", ""),
		UpdatedBy:   f.text("updatedBy", "System"),
		UpdatedAt:   f.timestamp("dateModified"),
	}
}

// fail records one attribute that was replaced by its default.
func (n *Normalizer) fail(e orion.Entity, field string, err error) {
	n.failures.WithLabelValues(e.Type, field).Inc()
	n.logger.Warn("attribute replaced by default",
		"entity", e.ID,
		"type", e.Type,
		"field", field,
		"error", err,
	)
}

func (n *Normalizer) fields(e orion.Entity) fields {
	return fields{n: n, e: e}
}

// fields reads attributes of one entity, reporting failures to the normalizer.
type fields struct {
	n *Normalizer
	e orion.Entity
}

// lookup returns a present, non-null attribute. Attributes that failed to
// decode are reported and treated as absent.
func (f fields) lookup(name string) (orion.AttributeValue, bool) {
	if err, bad := f.e.Invalid[name]; bad {
		f.n.fail(f.e, name, err)
		return orion.AttributeValue{}, false
	}
	v, ok := f.e.Attrs[name]
	if !ok || v.IsNull() {
		return orion.AttributeValue{}, false
	}
	return v, true
}

func (f fields) mismatch(name string, want orion.Kind, v orion.AttributeValue) {
	f.n.fail(f.e, name, fmt.Errorf("%w: want %s, have %s", orion.ErrAttributeMismatch, want, v.Kind()))
}

// text returns a Text attribute, or def when absent, empty or mistyped.
func (f fields) text(name, def string) string {
	v, ok := f.lookup(name)
	if !ok {
		return def
	}
	s, ok := v.AsText()
	if !ok {
		f.mismatch(name, orion.KindText, v)
		return def
	}
	if s == "" {
		return def
	}
	return s
}

func (f fields) number(name string, def float64) float64 {
	if n := f.optionalNumber(name); n != nil {
		return *n
	}
	return def
}

func (f fields) optionalNumber(name string) *float64 {
	v, ok := f.lookup(name)
	if !ok {
		return nil
	}
	n, ok := v.AsNumber()
	if !ok {
		f.mismatch(name, orion.KindNumber, v)
		return nil
	}
	return &n
}

func (f fields) integer(name string, def int) int {
	if n := f.optionalNumber(name); n != nil {
		return int(math.Round(*n))
	}
	return def
}

// timestamp returns a DateTime attribute, or the zero time when absent or unparseable.
func (f fields) timestamp(name string) time.Time {
	if t := f.optionalTimestamp(name); t != nil {
		return *t
	}
	return time.Time{}
}

// optionalTimestamp accepts DateTime attributes and, for keyValues reads, Text
// attributes holding an ISO-8601 string.
func (f fields) optionalTimestamp(name string) *time.Time {
	v, ok := f.lookup(name)
	if !ok {
		return nil
	}

	var raw string
	switch v.Kind() {
	case orion.KindDateTime:
		raw, _ = v.AsDateTime()
	case orion.KindText:
		raw, _ = v.AsText()
	default:
		f.mismatch(name, orion.KindDateTime, v)
		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		f.n.fail(f.e, name, err)
		return nil
	}
	t = t.UTC()
	return &t
}

// enumerated is a string enumeration with a closed value set.
type enumerated interface {
	~string
	Valid() bool
}

// enum returns a Text attribute coerced into its enumeration, or def when
// absent or out of set.
func enum[E enumerated](f fields, name string, def E) E {
	s := E(f.text(name, string(def)))
	if s.Valid() || s == def {
		return s
	}
	f.n.fail(f.e, name, fmt.Errorf("value %q is out of set", string(s)))
	return def
}

// list decodes a structured list attribute into []T.
//
// The payload may be a native array or a JSON-encoded string. Anything else,
// or a string that does not parse, yields an empty list and a diagnostic.
func list[T any](f fields, name string) []T {
	empty := []T{}
	v, ok := f.lookup(name)
	if !ok {
		return empty
	}

	var payload any
	switch v.Kind() {
	case orion.KindStructured:
		p, err := v.AsStructured()
		if err != nil {
			f.n.fail(f.e, name, err)
			return empty
		}
		payload = p
	case orion.KindText:
		s, _ := v.AsText()
		if err := json.Unmarshal([]byte(s), &payload); err != nil {
			f.n.fail(f.e, name, fmt.Errorf("parsing structured string: %w", err))
			return empty
		}
	default:
		f.mismatch(name, orion.KindStructured, v)
		return empty
	}

	data, err := json.Marshal(payload)
	if err != nil {
		f.n.fail(f.e, name, err)
		return empty
	}
	if len(data) == 0 || data[0] != '[' {
		f.n.fail(f.e, name, ErrNotList)
		return empty
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		f.n.fail(f.e, name, fmt.Errorf("decoding list items: %w", err))
		return empty
	}
	if items == nil {
		return empty
	}
	return items
}
