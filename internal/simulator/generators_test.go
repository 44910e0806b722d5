package simulator

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(42, 7))
}

func TestReading_Ranges(t *testing.T) {
	tests := []struct {
		sensorType warehouse.SensorType
		lo, hi     float64
		whole      bool
	}{
		{warehouse.SensorTemperature, -5, 30, false},
		{warehouse.SensorWeight, 0, 999, true},
		{warehouse.SensorRFID, 0, 49, true},
		{warehouse.SensorHumidity, 20, 90, false},
	}

	rng := testRand()
	for _, tt := range tests {
		t.Run(string(tt.sensorType), func(t *testing.T) {
			for range 5000 {
				v := Reading(tt.sensorType, rng)
				if v < tt.lo || v > tt.hi {
					t.Fatalf("reading %v outside [%v, %v]", v, tt.lo, tt.hi)
				}
				if tt.whole && v != math.Trunc(v) {
					t.Fatalf("reading %v is not whole", v)
				}
				if !tt.whole && math.Abs(v*10-math.Round(v*10)) > 1e-9 {
					t.Fatalf("reading %v has more than one decimal", v)
				}
			}
		})
	}

	if got := Reading(warehouse.SensorType("sonar"), rng); got != 0 {
		t.Errorf("unknown type reading = %v, want 0", got)
	}
}

func TestDrainBattery_MonotonicAndFloored(t *testing.T) {
	rng := testRand()
	level := InitialBattery
	for range 1000 {
		next := DrainBattery(level, rng)
		if next > level {
			t.Fatalf("battery rose from %v to %v", level, next)
		}
		if level-next > maxBatteryDrain {
			t.Fatalf("battery dropped %v in one tick", level-next)
		}
		level = next
	}
	if level != 0 {
		t.Errorf("battery after 1000 ticks = %v, want 0", level)
	}
	if got := DrainBattery(0, rng); got != 0 {
		t.Errorf("DrainBattery(0) = %v", got)
	}
}

func TestWalkZone_StaysWithinCapacity(t *testing.T) {
	rng := testRand()
	for _, z := range Zones {
		for _, start := range []int{0, z.Capacity / 2, z.Capacity} {
			current := start
			for range 500 {
				next := WalkZone(current, z.Capacity, rng)
				if next < 0 || next > z.Capacity {
					t.Fatalf("%s: inventory %d outside [0, %d]", z.Name, next, z.Capacity)
				}
				if step := int(math.Round(0.1 * float64(z.Capacity))); next-current > step || current-next > step {
					t.Fatalf("%s: step %d exceeds %d", z.Name, next-current, step)
				}
				current = next
			}
		}
	}

	if got := WalkZone(0, 0, rng); got != 0 {
		t.Errorf("WalkZone with zero capacity = %d", got)
	}
}

func TestWalkQuantity(t *testing.T) {
	rng := testRand()
	seen := map[int]bool{}
	for range 5000 {
		next := WalkQuantity(100, rng)
		seen[next-100] = true
	}
	for delta := -5; delta <= 5; delta++ {
		if !seen[delta] {
			t.Errorf("delta %d never drawn", delta)
		}
	}
	if len(seen) != 11 {
		t.Errorf("distinct deltas = %d, want 11", len(seen))
	}

	q := 0
	for range 1000 {
		q = WalkQuantity(q, rng)
		if q < 0 {
			t.Fatalf("quantity %d below zero", q)
		}
	}
}

func TestInitialValues(t *testing.T) {
	rng := testRand()
	for range 1000 {
		if v := InitialInventory(500, rng); v < 0 || v >= 400 {
			t.Fatalf("InitialInventory(500) = %d, want [0, 400)", v)
		}
		if v := InitialQuantity(rng); v < 0 || v >= 200 {
			t.Fatalf("InitialQuantity() = %d, want [0, 200)", v)
		}
	}
}

func TestDrawAlert(t *testing.T) {
	rng := testRand()

	for range 100 {
		if _, ok := DrawAlert(0, rng); ok {
			t.Fatal("alert raised with probability 0")
		}
	}

	zones := make([]string, 0, len(Zones))
	for _, z := range Zones {
		zones = append(zones, z.Name)
	}
	for range 500 {
		a, ok := DrawAlert(1, rng)
		if !ok {
			t.Fatal("alert not raised with probability 1")
		}
		if !slices.Contains(zones, a.Zone) {
			t.Fatalf("alert zone %q is not a layout zone", a.Zone)
		}
		if !a.Severity.Valid() {
			t.Fatalf("alert severity %q invalid", a.Severity)
		}
	}

	raised := 0
	for range 10000 {
		if _, ok := DrawAlert(0.1, rng); ok {
			raised++
		}
	}
	if raised < 800 || raised > 1200 {
		t.Errorf("alerts raised at p=0.1 over 10000 draws = %d", raised)
	}
}

func TestDrawAlert_FixedZonesKept(t *testing.T) {
	rng := testRand()
	for range 500 {
		a, _ := DrawAlert(1, rng)
		switch a.Message {
		case "Shipment arrived":
			if a.Zone != ZoneReceiving {
				t.Fatalf("Shipment arrived zone = %q", a.Zone)
			}
		case "Critical temperature alert", "Temperature exceeding threshold":
			if a.Zone != ZoneColdStorage {
				t.Fatalf("%s zone = %q", a.Message, a.Zone)
			}
		}
	}
}
