package simulator

import (
	"math"
	"math/rand/v2"

	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

// Generator bounds.
const (
	// InitialBattery is every sensor's starting charge.
	InitialBattery = 100.0

	// InitialThreshold is the low-stock threshold of every simulated item.
	InitialThreshold = 20

	maxBatteryDrain = 0.5
	zoneWalkRange   = 0.1
	itemWalkStep    = 5
	maxInitialStock = 200
	initialFillMax  = 0.8
)

// Reading draws a fresh reading for a sensor type. Readings are resampled
// every tick rather than walked.
//
//	temperature  [-5, 30] °C, one decimal
//	weight       [0, 1000) kg, whole
//	rfid         [0, 50) scans/min, whole
//	humidity     [20, 90] %, one decimal
func Reading(t warehouse.SensorType, rng *rand.Rand) float64 {
	switch t {
	case warehouse.SensorTemperature:
		return round1(rng.Float64()*35 - 5)
	case warehouse.SensorWeight:
		return float64(rng.IntN(1000))
	case warehouse.SensorRFID:
		return float64(rng.IntN(50))
	case warehouse.SensorHumidity:
		return round1(rng.Float64()*70 + 20)
	default:
		return 0
	}
}

// DrainBattery lowers level by Uniform(0, 0.5), never below 0.
func DrainBattery(level float64, rng *rand.Rand) float64 {
	return math.Max(level-rng.Float64()*maxBatteryDrain, 0)
}

// WalkZone moves a zone's inventory by round(Uniform(-0.1, 0.1) × capacity)
// and clamps the result to [0, capacity].
func WalkZone(current, capacity int, rng *rand.Rand) int {
	delta := int(math.Round((rng.Float64()*2*zoneWalkRange - zoneWalkRange) * float64(capacity)))
	return clamp(current+delta, 0, capacity)
}

// WalkQuantity moves an item's quantity by UniformInt(-5, 5), floored at 0.
func WalkQuantity(quantity int, rng *rand.Rand) int {
	return max(quantity+rng.IntN(2*itemWalkStep+1)-itemWalkStep, 0)
}

// InitialInventory returns floor(U × 0.8 × capacity).
func InitialInventory(capacity int, rng *rand.Rand) int {
	return int(rng.Float64() * initialFillMax * float64(capacity))
}

// InitialQuantity returns floor(U × 200).
func InitialQuantity(rng *rand.Rand) int {
	return rng.IntN(maxInitialStock)
}

// DrawAlert raises an alert with probability p. Catalog entries without a
// zone get one drawn uniformly from the layout.
func DrawAlert(p float64, rng *rand.Rand) (AlertTemplate, bool) {
	if rng.Float64() >= p {
		return AlertTemplate{}, false
	}
	a := AlertCatalog[rng.IntN(len(AlertCatalog))]
	if a.Zone == "" {
		a.Zone = Zones[rng.IntN(len(Zones))].Name
	}
	return a, true
}

// DrawZone picks a zone name uniformly.
func DrawZone(rng *rand.Rand) string {
	return Zones[rng.IntN(len(Zones))].Name
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
