package simulator

import (
	"strings"

	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

// Zone names.
const (
	ZoneColdStorage = "Zone A - Cold Storage"
	ZoneGeneral     = "Zone B - General Storage"
	ZoneHighValue   = "Zone C - High Value Items"
	ZoneShipping    = "Zone D - Shipping Area"
	ZoneReceiving   = "Zone E - Receiving Area"
)

// ZonePlan is a zone's fixed name and capacity.
type ZonePlan struct {
	Name     string
	Capacity int
}

// Zones is the warehouse layout in publication order.
var Zones = []ZonePlan{
	{ZoneColdStorage, 500},
	{ZoneGeneral, 1000},
	{ZoneHighValue, 300},
	{ZoneShipping, 200},
	{ZoneReceiving, 200},
}

// SensorPlan is one sensor of the fixed topology.
type SensorPlan struct {
	Type     warehouse.SensorType
	Name     string
	Location string
}

// Sensors returns the fixed sensor layout: a temperature sensor per zone,
// weight sensors in general and high-value storage, RFID scanners at
// shipping and receiving, and one humidity sensor in cold storage.
func Sensors() []SensorPlan {
	plans := make([]SensorPlan, 0, len(Zones)+5)
	for _, z := range Zones {
		plans = append(plans, SensorPlan{warehouse.SensorTemperature, "Temperature Sensor - " + z.Name, z.Name})
	}
	for _, zone := range []string{ZoneGeneral, ZoneHighValue} {
		plans = append(plans, SensorPlan{warehouse.SensorWeight, "Weight Sensor - " + zone, zone})
	}
	for _, zone := range []string{ZoneShipping, ZoneReceiving} {
		plans = append(plans, SensorPlan{warehouse.SensorRFID, "RFID Scanner - " + zone, zone})
	}
	plans = append(plans, SensorPlan{warehouse.SensorHumidity, "Humidity Sensor - Cold Storage", ZoneColdStorage})
	return plans
}

// Product is a catalog entry stocked by the simulator.
type Product struct {
	SKU  string
	Name string
}

// Products is the fixed product catalog.
var Products = []Product{
	{"ELEC-001", "Smartphone X1"},
	{"ELEC-002", `Laptop Pro 15"`},
	{"ELEC-003", "Wireless Headphones"},
	{"FOOD-001", "Organic Apples (5kg)"},
	{"FOOD-002", "Premium Coffee Beans"},
	{"FOOD-003", "Frozen Pizza Pack"},
	{"CLOTH-001", "Winter Jacket"},
	{"CLOTH-002", "Running Shoes"},
	{"CLOTH-003", "Cotton T-Shirts (5-Pack)"},
	{"HOME-001", "Smart Speaker"},
	{"HOME-002", "Kitchen Blender"},
	{"HOME-003", "Bed Linen Set"},
}

// RouteProduct returns the zone a SKU is stored in. Food goes to cold
// storage and electronics to the high-value zone; anything else goes to
// fallback, which the caller draws once at startup.
func RouteProduct(sku, fallback string) string {
	switch {
	case strings.HasPrefix(sku, "FOOD"):
		return ZoneColdStorage
	case strings.HasPrefix(sku, "ELEC"):
		return ZoneHighValue
	default:
		return fallback
	}
}

// AlertTemplate is one entry of the alert catalog. An empty Zone means the
// zone is drawn when the alert is raised.
type AlertTemplate struct {
	Message  string
	Severity warehouse.Severity
	Zone     string
}

// AlertCatalog lists every alert the simulator can raise.
var AlertCatalog = []AlertTemplate{
	{"Temperature exceeding threshold", warehouse.SeverityWarning, ZoneColdStorage},
	{"Critical temperature alert", warehouse.SeverityCritical, ZoneColdStorage},
	{"Low inventory warning", warehouse.SeverityWarning, ""},
	{"Unauthorized access detected", warehouse.SeverityCritical, ""},
	{"Sensor battery low", warehouse.SeverityInfo, ""},
	{"Shipment arrived", warehouse.SeverityInfo, ZoneReceiving},
	{"Shipment dispatched", warehouse.SeverityInfo, ZoneShipping},
	{"System maintenance completed", warehouse.SeverityResolved, ""},
}
