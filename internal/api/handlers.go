package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

// handleSnapshot serves the latest delivered snapshot of entityType, or 503
// until its feed has delivered once.
func (s *Server) handleSnapshot(entityType string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap, ok := s.board.Get(entityType)
		if !ok {
			writeUnavailable(w, entityType+" data not yet available")
			return
		}
		writeJSON(w, http.StatusOK, snap.Records)
	}
}

// handleListOf serves entityType from its feed snapshot when one exists and
// reads the store directly otherwise.
func handleListOf[T any](s *Server, entityType string, list func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if snap, ok := s.board.Get(entityType); ok {
			writeJSON(w, http.StatusOK, snap.Records)
			return
		}
		records, err := list(r.Context())
		if err != nil {
			s.logger.Warn("listing entities failed", "type", entityType, "error", err)
			writeStoreError(w, err)
			return
		}
		if records == nil {
			records = []T{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// zoneView is a zone with its occupancy percentage.
type zoneView struct {
	warehouse.WarehouseZone
	Occupancy int `json:"occupancy"`
}

func (s *Server) handleZones(w http.ResponseWriter, _ *http.Request) {
	zones, ok := Records[warehouse.WarehouseZone](s.board, warehouse.TypeWarehouseZone)
	if !ok {
		writeUnavailable(w, warehouse.TypeWarehouseZone+" data not yet available")
		return
	}
	views := make([]zoneView, 0, len(zones))
	for _, z := range zones {
		views = append(views, zoneView{WarehouseZone: z, Occupancy: z.Occupancy()})
	}
	writeJSON(w, http.StatusOK, views)
}

// handleInventory serves the inventory snapshot, optionally filtered by
// ?status= (In Stock, Low Stock, Out of Stock).
func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	items, ok := Records[warehouse.InventoryItem](s.board, warehouse.TypeInventoryItem)
	if !ok {
		writeUnavailable(w, warehouse.TypeInventoryItem+" data not yet available")
		return
	}
	if want := r.URL.Query().Get("status"); want != "" {
		filtered := make([]warehouse.InventoryItem, 0, len(items))
		for _, item := range items {
			if string(item.Status) == want {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	if s.status == nil {
		writeUnavailable(w, "component status not configured")
		return
	}
	components := s.status.Last()
	if components == nil {
		components = s.status.Check(r.Context())
	}
	writeJSON(w, http.StatusOK, components)
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	if s.types == nil {
		writeUnavailable(w, "type listing not configured")
		return
	}
	types, err := s.types.Types(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

// ─── Writes ────────────────────────────────────────────────────────

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var in warehouse.NewOrder
	if !decodeBody(w, r, &in) {
		return
	}
	order, err := s.repo.CreateOrder(r.Context(), in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("order created", "id", order.ID, "order_id", order.OrderID)
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var in warehouse.OrderUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	if err := s.repo.UpdateOrder(r.Context(), chi.URLParam(r, "id"), in); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	var in warehouse.NewShipment
	if !decodeBody(w, r, &in) {
		return
	}
	shipment, err := s.repo.CreateShipment(r.Context(), in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("shipment created", "id", shipment.ID)
	writeJSON(w, http.StatusCreated, shipment)
}

func (s *Server) handleUpdateShipment(w http.ResponseWriter, r *http.Request) {
	var in warehouse.ShipmentUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	if err := s.repo.UpdateShipment(r.Context(), chi.URLParam(r, "id"), in); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var in warehouse.NewReport
	if !decodeBody(w, r, &in) {
		return
	}
	report, err := s.repo.CreateReport(r.Context(), in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in warehouse.NewUser
	if !decodeBody(w, r, &in) {
		return
	}
	user, err := s.repo.CreateUser(r.Context(), in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleDeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.repo.DeleteInventoryItem(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("inventory item deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}
