package simulator

import (
	"math/rand/v2"

	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

// SensorState is the mutable part of a simulated sensor.
type SensorState struct {
	ID           string
	Name         string
	Type         warehouse.SensorType
	Location     string
	BatteryLevel float64
}

// ZoneState is the mutable part of a simulated zone.
type ZoneState struct {
	ID               string
	Name             string
	Capacity         int
	CurrentInventory int
}

// ItemState is the mutable part of a simulated inventory item.
type ItemState struct {
	ID        string
	SKU       string
	Name      string
	Quantity  int
	Threshold int
	Location  string
}

// State is everything the simulator walks between ticks. Its shape is fixed
// at construction; ticks only change values.
type State struct {
	Sensors []SensorState
	Zones   []ZoneState
	Items   []ItemState
}

// NewState builds the initial topology. newID returns the short id suffix
// for each entity.
func NewState(rng *rand.Rand, newID func() string) State {
	var st State
	for _, p := range Sensors() {
		st.Sensors = append(st.Sensors, SensorState{
			ID:           "Sensor:" + string(p.Type) + ":" + newID(),
			Name:         p.Name,
			Type:         p.Type,
			Location:     p.Location,
			BatteryLevel: InitialBattery,
		})
	}
	for _, z := range Zones {
		st.Zones = append(st.Zones, ZoneState{
			ID:               warehouse.TypeWarehouseZone + ":" + newID(),
			Name:             z.Name,
			Capacity:         z.Capacity,
			CurrentInventory: InitialInventory(z.Capacity, rng),
		})
	}
	for _, p := range Products {
		st.Items = append(st.Items, ItemState{
			ID:        warehouse.TypeInventoryItem + ":" + newID(),
			SKU:       p.SKU,
			Name:      p.Name,
			Quantity:  InitialQuantity(rng),
			Threshold: InitialThreshold,
			Location:  RouteProduct(p.SKU, DrawZone(rng)),
		})
	}
	return st
}

// Clone returns a deep copy.
func (s State) Clone() State {
	return State{
		Sensors: append([]SensorState(nil), s.Sensors...),
		Zones:   append([]ZoneState(nil), s.Zones...),
		Items:   append([]ItemState(nil), s.Items...),
	}
}

// Empty reports whether the state holds no entities.
func (s State) Empty() bool {
	return len(s.Sensors) == 0 && len(s.Zones) == 0 && len(s.Items) == 0
}
