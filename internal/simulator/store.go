package simulator

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/database"
	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

// StateStore persists walk state so a restarted simulator keeps publishing
// the same entities from where it stopped.
type StateStore interface {
	// Load returns the stored state, which is empty when nothing was saved.
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
}

// SQLiteStore keeps State in the sim_* tables.
type SQLiteStore struct {
	db *database.DB
}

// NewSQLiteStore returns a store over a migrated database.
func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load reads all rows in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) (State, error) {
	var st State

	err := s.query(ctx, "SELECT id, name, sensor_type, location, battery_level FROM sim_sensors ORDER BY rowid",
		func(rows *sql.Rows) error {
			var r SensorState
			var sensorType string
			if err := rows.Scan(&r.ID, &r.Name, &sensorType, &r.Location, &r.BatteryLevel); err != nil {
				return err
			}
			r.Type = warehouse.SensorType(sensorType)
			st.Sensors = append(st.Sensors, r)
			return nil
		})
	if err != nil {
		return State{}, fmt.Errorf("loading sensors: %w", err)
	}

	err = s.query(ctx, "SELECT id, name, capacity, current_inventory FROM sim_zones ORDER BY rowid",
		func(rows *sql.Rows) error {
			var r ZoneState
			if err := rows.Scan(&r.ID, &r.Name, &r.Capacity, &r.CurrentInventory); err != nil {
				return err
			}
			st.Zones = append(st.Zones, r)
			return nil
		})
	if err != nil {
		return State{}, fmt.Errorf("loading zones: %w", err)
	}

	err = s.query(ctx, "SELECT id, sku, name, quantity, threshold, location FROM sim_items ORDER BY rowid",
		func(rows *sql.Rows) error {
			var r ItemState
			if err := rows.Scan(&r.ID, &r.SKU, &r.Name, &r.Quantity, &r.Threshold, &r.Location); err != nil {
				return err
			}
			st.Items = append(st.Items, r)
			return nil
		})
	if err != nil {
		return State{}, fmt.Errorf("loading items: %w", err)
	}

	return st, nil
}

// Save writes every row in one transaction. Existing rows keep their
// position.
func (s *SQLiteStore) Save(ctx context.Context, st State) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		for _, r := range st.Sensors {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO sim_sensors (id, name, sensor_type, location, battery_level, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET battery_level = excluded.battery_level, updated_at = excluded.updated_at`,
				r.ID, r.Name, string(r.Type), r.Location, r.BatteryLevel, now,
			); err != nil {
				return fmt.Errorf("saving sensor %s: %w", r.ID, err)
			}
		}
		for _, r := range st.Zones {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO sim_zones (id, name, capacity, current_inventory, updated_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET current_inventory = excluded.current_inventory, updated_at = excluded.updated_at`,
				r.ID, r.Name, r.Capacity, r.CurrentInventory, now,
			); err != nil {
				return fmt.Errorf("saving zone %s: %w", r.ID, err)
			}
		}
		for _, r := range st.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO sim_items (id, sku, name, quantity, threshold, location, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET quantity = excluded.quantity, updated_at = excluded.updated_at`,
				r.ID, r.SKU, r.Name, r.Quantity, r.Threshold, r.Location, now,
			); err != nil {
				return fmt.Errorf("saving item %s: %w", r.ID, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) query(ctx context.Context, q string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
