package warehouse

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Entity type names as stored in the entity store.
const (
	TypeSensor        = "Sensor"
	TypeInventoryItem = "InventoryItem"
	TypeWarehouseZone = "WarehouseZone"
	TypeAlert         = "Alert"
	TypeOrder         = "Order"
	TypeShipment      = "Shipment"
	TypeUser          = "User"
	TypeReport        = "Report"
	TypeSystemSetting = "SystemSetting"
)

// SensorType identifies what a sensor measures.
type SensorType string

// Sensor types.
const (
	SensorTemperature SensorType = "temperature"
	SensorWeight      SensorType = "weight"
	SensorRFID        SensorType = "rfid"
	SensorHumidity    SensorType = "humidity"
)

// ReadingAttribute returns the attribute name that carries the sensor's reading.
func (t SensorType) ReadingAttribute() string {
	switch t {
	case SensorTemperature:
		return "temperature"
	case SensorWeight:
		return "weight"
	case SensorRFID:
		return "scanRate"
	case SensorHumidity:
		return "humidity"
	default:
		return ""
	}
}

// Unit returns the display unit of the sensor's reading.
func (t SensorType) Unit() string {
	switch t {
	case SensorTemperature:
		return "°C"
	case SensorWeight:
		return "kg"
	case SensorRFID:
		return "scans/min"
	case SensorHumidity:
		return "%"
	default:
		return ""
	}
}

// SensorStatus is derived from battery level and reading.
type SensorStatus string

// Sensor statuses.
const (
	SensorOnline  SensorStatus = "online"
	SensorWarning SensorStatus = "warning"
	SensorOffline SensorStatus = "offline"
)

// Sensor is a normalized sensor record.
type Sensor struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         SensorType   `json:"type"`
	Location     string       `json:"location"`
	BatteryLevel float64      `json:"batteryLevel"`
	Reading      *float64     `json:"reading"`
	Status       SensorStatus `json:"status"`
	LastReading  time.Time    `json:"lastReading"`
}

// EntityID returns the record's entity id.
func (s Sensor) EntityID() string { return s.ID }

// StockStatus is derived from quantity and threshold.
type StockStatus string

// Stock statuses.
const (
	InStock    StockStatus = "In Stock"
	LowStock   StockStatus = "Low Stock"
	OutOfStock StockStatus = "Out of Stock"
)

// InventoryItem is a normalized stock record.
type InventoryItem struct {
	ID          string      `json:"id"`
	SKU         string      `json:"sku"`
	Name        string      `json:"name"`
	Quantity    int         `json:"quantity"`
	Threshold   int         `json:"threshold"`
	Location    string      `json:"location"`
	Status      StockStatus `json:"status"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// EntityID returns the record's entity id.
func (i InventoryItem) EntityID() string { return i.ID }

// WarehouseZone is a normalized zone record.
type WarehouseZone struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Capacity         int       `json:"capacity"`
	CurrentInventory int       `json:"currentInventory"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// EntityID returns the record's entity id.
func (z WarehouseZone) EntityID() string { return z.ID }

// Occupancy returns current inventory as a rounded percentage of capacity.
// A zone without capacity reports 0.
func (z WarehouseZone) Occupancy() int {
	if z.Capacity <= 0 {
		return 0
	}
	return int(math.Round(float64(z.CurrentInventory) / float64(z.Capacity) * 100))
}

// Severity grades an alert.
type Severity string

// Alert severities.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
	SeverityResolved Severity = "resolved"
)

// Alert is a normalized alert record.
type Alert struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Zone      string    `json:"zone"`
	Timestamp time.Time `json:"timestamp"`
}

// EntityID returns the record's entity id.
func (a Alert) EntityID() string { return a.ID }

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// Order statuses.
const (
	OrderNew        OrderStatus = "New"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

// PaymentStatus is the payment state of an order.
type PaymentStatus string

// Payment statuses.
const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRefunded PaymentStatus = "Refunded"
)

// Priority ranks an order.
type Priority string

// Order priorities.
const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ID          string          `json:"id" validate:"required"`
	SKU         string          `json:"sku" validate:"required"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
}

// Order is a normalized customer order.
type Order struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"orderId"`
	Customer      string          `json:"customer"`
	Status        OrderStatus     `json:"status"`
	Items         []OrderItem     `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	OrderDate     time.Time       `json:"orderDate"`
	ShipByDate    time.Time       `json:"shipByDate"`
	Priority      Priority        `json:"priority"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// EntityID returns the record's entity id.
func (o Order) EntityID() string { return o.ID }

// ShipmentStatus is the transport state of a shipment.
type ShipmentStatus string

// Shipment statuses.
const (
	ShipmentPending   ShipmentStatus = "Pending"
	ShipmentInTransit ShipmentStatus = "In Transit"
	ShipmentDelivered ShipmentStatus = "Delivered"
	ShipmentCancelled ShipmentStatus = "Cancelled"
)

// ShipmentItem is one line of a shipment.
type ShipmentItem struct {
	ID          string `json:"id" validate:"required"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
	SKU         string `json:"sku"`
}

// Shipment is a normalized shipment record.
type Shipment struct {
	ID             string         `json:"id"`
	ShipmentID     string         `json:"shipmentId"`
	Status         ShipmentStatus `json:"status"`
	Origin         string         `json:"origin"`
	Destination    string         `json:"destination"`
	Carrier        string         `json:"carrier"`
	TrackingNumber string         `json:"trackingNumber"`
	Items          []ShipmentItem `json:"items"`
	ScheduledDate  time.Time      `json:"scheduledDate"`
	ActualDate     *time.Time     `json:"actualDate"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// EntityID returns the record's entity id.
func (s Shipment) EntityID() string { return s.ID }

// Role is a user's access role.
type Role string

// User roles.
const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleOperator Role = "Operator"
	RoleViewer   Role = "Viewer"
)

// UserStatus is a user account state.
type UserStatus string

// User statuses.
const (
	UserActive   UserStatus = "Active"
	UserInactive UserStatus = "Inactive"
	UserLocked   UserStatus = "Locked"
)

// User is a normalized user record.
type User struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Role       Role       `json:"role"`
	Department string     `json:"department"`
	LastLogin  *time.Time `json:"lastLogin"`
	Status     UserStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// EntityID returns the record's entity id.
func (u User) EntityID() string { return u.ID }

// ReportType classifies a report.
type ReportType string

// Report types.
const (
	ReportInventory   ReportType = "Inventory"
	ReportOrders      ReportType = "Orders"
	ReportShipments   ReportType = "Shipments"
	ReportPerformance ReportType = "Performance"
	ReportCustom      ReportType = "Custom"
)

// Schedule is how often a report runs.
type Schedule string

// Report schedules.
const (
	ScheduleDaily    Schedule = "Daily"
	ScheduleWeekly   Schedule = "Weekly"
	ScheduleMonthly  Schedule = "Monthly"
	ScheduleOnDemand Schedule = "On Demand"
)

// ReportFormat is a report's output format.
type ReportFormat string

// Report formats.
const (
	FormatPDF       ReportFormat = "PDF"
	FormatCSV       ReportFormat = "CSV"
	FormatExcel     ReportFormat = "Excel"
	FormatDashboard ReportFormat = "Dashboard"
)

// Report is a normalized report definition.
type Report struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        ReportType   `json:"type"`
	CreatedBy   string       `json:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	LastRun     *time.Time   `json:"lastRun"`
	Schedule    Schedule     `json:"schedule"`
	Format      ReportFormat `json:"format"`
	URL         string       `json:"url"`
}

// EntityID returns the record's entity id.
func (r Report) EntityID() string { return r.ID }

// SystemSetting is a normalized configuration entry.
type SystemSetting struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedBy   string    `json:"updatedBy"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EntityID returns the record's entity id.
func (s SystemSetting) EntityID() string { return s.ID }

// Valid reports whether t is a known sensor type.
func (t SensorType) Valid() bool {
	switch t {
	case SensorTemperature, SensorWeight, SensorRFID, SensorHumidity:
		return true
	}
	return false
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo, SeverityResolved:
		return true
	}
	return false
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderNew, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Valid reports whether s is a known shipment status.
func (s ShipmentStatus) Valid() bool {
	switch s {
	case ShipmentPending, ShipmentInTransit, ShipmentDelivered, ShipmentCancelled:
		return true
	}
	return false
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// Valid reports whether s is a known user status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserInactive, UserLocked:
		return true
	}
	return false
}

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	switch t {
	case ReportInventory, ReportOrders, ReportShipments, ReportPerformance, ReportCustom:
		return true
	}
	return false
}

// Valid reports whether s is a known schedule.
func (s Schedule) Valid() bool {
	switch s {
	case ScheduleDaily, ScheduleWeekly, ScheduleMonthly, ScheduleOnDemand:
		return true
	}
	return false
}

// Valid reports whether f is a known report format.
func (f ReportFormat) Valid() bool {
	switch f {
	case FormatPDF, FormatCSV, FormatExcel, FormatDashboard:
		return true
	}
	return false
}
