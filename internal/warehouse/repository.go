package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nerrad567/warehouse-core/internal/orion"
)

// Store is the subset of the entity store client used by the repository.
type Store interface {
	List(ctx context.Context, entityType string, opts ...orion.ListOption) ([]orion.Entity, error)
	Get(ctx context.Context, id, entityType string) (orion.Entity, error)
	Create(ctx context.Context, e orion.Entity) error
	PatchAttributes(ctx context.Context, id string, attrs map[string]orion.AttributeValue) error
	Delete(ctx context.Context, id string) error
}

// Repository reads and writes typed warehouse records through the entity store.
//
// Reads are List followed by normalization; a store failure is returned as
// an error and never as an empty result. Writes validate their input first.
//
// Thread Safety: safe for concurrent use.
type Repository struct {
	store    Store
	norm     *Normalizer
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// NewRepository creates a repository over store.
func NewRepository(store Store, norm *Normalizer) *Repository {
	return &Repository{
		store:    store,
		norm:     norm,
		validate: newValidator(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Normalizer returns the normalizer used for reads.
func (r *Repository) Normalizer() *Normalizer {
	return r.norm
}

// Sensors lists every sensor.
func (r *Repository) Sensors(ctx context.Context) ([]Sensor, error) {
	return listAs(ctx, r.store, TypeSensor, r.norm.Sensor)
}

// Inventory lists every inventory item.
func (r *Repository) Inventory(ctx context.Context) ([]InventoryItem, error) {
	return listAs(ctx, r.store, TypeInventoryItem, r.norm.InventoryItem)
}

// Zones lists every warehouse zone.
func (r *Repository) Zones(ctx context.Context) ([]WarehouseZone, error) {
	return listAs(ctx, r.store, TypeWarehouseZone, r.norm.Zone)
}

// Alerts lists every alert. Alerts are read in the keyValues representation.
func (r *Repository) Alerts(ctx context.Context) ([]Alert, error) {
	return listAs(ctx, r.store, TypeAlert, r.norm.Alert, orion.KeyValues())
}

// Orders lists every order.
func (r *Repository) Orders(ctx context.Context) ([]Order, error) {
	return listAs(ctx, r.store, TypeOrder, r.norm.Order)
}

// Shipments lists every shipment.
func (r *Repository) Shipments(ctx context.Context) ([]Shipment, error) {
	return listAs(ctx, r.store, TypeShipment, r.norm.Shipment)
}

// Users lists every user.
func (r *Repository) Users(ctx context.Context) ([]User, error) {
	return listAs(ctx, r.store, TypeUser, r.norm.User)
}

// Reports lists every report definition.
func (r *Repository) Reports(ctx context.Context) ([]Report, error) {
	return listAs(ctx, r.store, TypeReport, r.norm.Report)
}

// Settings lists every system setting.
func (r *Repository) Settings(ctx context.Context) ([]SystemSetting, error) {
	return listAs(ctx, r.store, TypeSystemSetting, r.norm.Setting)
}

func listAs[T any](ctx context.Context, store Store, entityType string, normalize func(orion.Entity) T, opts ...orion.ListOption) ([]T, error) {
	entities, err := store.List(ctx, entityType, opts...)
	if err != nil {
		return nil, fmt.Errorf("listing %s records: %w", entityType, err)
	}
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		out = append(out, normalize(e))
	}
	return out, nil
}
