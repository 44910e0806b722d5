package warehouse

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/nerrad567/warehouse-core/internal/orion"
	"github.com/nerrad567/warehouse-core/internal/orion/oriontest"
)

var fixedNow = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestRepository(t *testing.T) (*Repository, *oriontest.Server) {
	t.Helper()
	srv := oriontest.NewServer(t)
	repo := NewRepository(srv.NewClient(t), NewNormalizer())
	repo.now = func() time.Time { return fixedNow }
	ids := 0
	repo.newID = func() string {
		ids++
		return "id-" + string(rune('0'+ids))
	}
	return repo, srv
}

func TestRepository_Inventory(t *testing.T) {
	repo, srv := newTestRepository(t)
	srv.Put(orion.NewEntity("InventoryItem:1", TypeInventoryItem).
		Set("sku", orion.Text("FOOD-001")).
		Set("quantity", orion.Number(5)).
		Set("threshold", orion.Number(20)))
	srv.Put(orion.NewEntity("InventoryItem:2", TypeInventoryItem).
		Set("sku", orion.Text("ELEC-001")).
		Set("quantity", orion.Number(0)))

	items, err := repo.Inventory(context.Background())
	if err != nil {
		t.Fatalf("Inventory() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	byID := map[string]InventoryItem{}
	for _, it := range items {
		byID[it.ID] = it
	}
	if byID["InventoryItem:1"].Status != LowStock {
		t.Errorf("item 1 status = %q", byID["InventoryItem:1"].Status)
	}
	if byID["InventoryItem:2"].Status != OutOfStock {
		t.Errorf("item 2 status = %q", byID["InventoryItem:2"].Status)
	}
}

func TestRepository_ListFailureIsAnError(t *testing.T) {
	repo, srv := newTestRepository(t)
	srv.FailMethod(http.MethodGet, http.StatusBadGateway)

	got, err := repo.Sensors(context.Background())
	if !errors.Is(err, orion.ErrTransport) {
		t.Fatalf("Sensors() error = %v, want ErrTransport", err)
	}
	if got != nil {
		t.Errorf("Sensors() = %v on failure, want nil", got)
	}
}

func TestRepository_AlertsUseKeyValues(t *testing.T) {
	repo, srv := newTestRepository(t)
	srv.Put(orion.NewEntity("a1", TypeAlert).
		Set("message", orion.Text("Shipment arrived")).
		Set("severity", orion.Text("info")).
		Set("zone", orion.Text("Zone E - Receiving Area")).
		Set("timestamp", orion.DateTime("2024-01-01T00:00:00.000Z")))

	alerts, err := repo.Alerts(context.Background())
	if err != nil {
		t.Fatalf("Alerts() error = %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("len = %d, want 1", len(alerts))
	}
	if alerts[0].Timestamp.IsZero() {
		t.Error("timestamp lost in keyValues read")
	}
	if alerts[0].Message != "Shipment arrived" {
		t.Errorf("Message = %q", alerts[0].Message)
	}
}

func TestRepository_CreateOrder(t *testing.T) {
	repo, srv := newTestRepository(t)

	order, err := repo.CreateOrder(context.Background(), NewOrder{
		Customer: "Acme Corp",
		Items: []OrderItem{
			{ID: "l1", SKU: "ELEC-001", ProductName: "Smartphone X1", Price: decimal.RequireFromString("499.99"), Quantity: 2},
			{ID: "l2", SKU: "HOME-002", ProductName: "Kitchen Blender", Price: decimal.RequireFromString("0.10"), Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if order.ID != "Order:id-1" {
		t.Errorf("ID = %q", order.ID)
	}
	if order.OrderID != "ORD-"+fixedRefSuffix() {
		t.Errorf("OrderID = %q", order.OrderID)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("1000.28")) {
		t.Errorf("TotalAmount = %s, want 1000.28", order.TotalAmount)
	}
	if order.Status != OrderNew || order.PaymentStatus != PaymentPending || order.Priority != PriorityNormal {
		t.Errorf("defaults = %q/%q/%q", order.Status, order.PaymentStatus, order.Priority)
	}
	if !order.ShipByDate.Equal(fixedNow.Add(7 * 24 * time.Hour)) {
		t.Errorf("ShipByDate = %v", order.ShipByDate)
	}

	stored, ok := srv.Entity("Order:id-1")
	if !ok {
		t.Fatal("order not stored")
	}
	if _, has := stored.Attr("status"); !has {
		t.Error("stored order has no status")
	}
	back := NewNormalizer().Order(stored)
	if len(back.Items) != 2 || !back.Items[0].Price.Equal(decimal.RequireFromString("499.99")) {
		t.Errorf("stored items = %+v", back.Items)
	}
}

func TestRepository_CreateOrderExplicitTotal(t *testing.T) {
	repo, _ := newTestRepository(t)
	total := decimal.NewFromInt(42)

	order, err := repo.CreateOrder(context.Background(), NewOrder{
		Customer:    "Acme Corp",
		TotalAmount: &total,
		Items:       []OrderItem{{ID: "l1", SKU: "X", Price: decimal.NewFromInt(10), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if !order.TotalAmount.Equal(total) {
		t.Errorf("TotalAmount = %s, want 42", order.TotalAmount)
	}
}

func TestRepository_CreateOrderValidation(t *testing.T) {
	repo, srv := newTestRepository(t)

	tests := []struct {
		name string
		in   NewOrder
	}{
		{"missing customer", NewOrder{}},
		{"unknown status", NewOrder{Customer: "A", Status: "Lost"}},
		{"unknown priority", NewOrder{Customer: "A", Priority: "Whenever"}},
		{"item without sku", NewOrder{Customer: "A", Items: []OrderItem{{ID: "l1"}}}},
		{"negative quantity", NewOrder{Customer: "A", Items: []OrderItem{{ID: "l1", SKU: "X", Quantity: -1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.CreateOrder(context.Background(), tt.in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("CreateOrder() error = %v, want ErrInvalidInput", err)
			}
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Errorf("error does not carry validation details: %v", err)
			}
		})
	}
	if srv.Calls(http.MethodPost) != 0 {
		t.Error("invalid orders reached the store")
	}
}

func TestRepository_UpdateOrder(t *testing.T) {
	repo, srv := newTestRepository(t)
	srv.Put(orion.NewEntity("Order:1", TypeOrder).
		Set("status", orion.Text("New")).
		Set("totalAmount", orion.Number(5)))

	shipped := OrderShipped
	items := []OrderItem{{ID: "l1", SKU: "X", Price: decimal.RequireFromString("2.50"), Quantity: 4}}
	err := repo.UpdateOrder(context.Background(), "Order:1", OrderUpdate{Status: &shipped, Items: &items})
	if err != nil {
		t.Fatalf("UpdateOrder() error = %v", err)
	}

	o := NewNormalizer().Order(mustEntity(t, srv, "Order:1"))
	if o.Status != OrderShipped {
		t.Errorf("Status = %q", o.Status)
	}
	if !o.TotalAmount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("TotalAmount = %s, want 10", o.TotalAmount)
	}
	if !o.UpdatedAt.Equal(fixedNow) {
		t.Errorf("UpdatedAt = %v, want %v", o.UpdatedAt, fixedNow)
	}

	err = repo.UpdateOrder(context.Background(), "Order:missing", OrderUpdate{})
	if !errors.Is(err, orion.ErrNotFound) {
		t.Errorf("UpdateOrder(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRepository_Shipments(t *testing.T) {
	repo, _ := newTestRepository(t)

	created, err := repo.CreateShipment(context.Background(), NewShipment{
		Destination: "Berlin",
		Carrier:     "DHL",
		Items:       []ShipmentItem{{ID: "s1", ProductID: "InventoryItem:1", ProductName: "Winter Jacket", Quantity: 3, SKU: "CLOTH-001"}},
	})
	if err != nil {
		t.Fatalf("CreateShipment() error = %v", err)
	}
	if created.Origin != "Warehouse" || created.TrackingNumber != "N/A" || created.ActualDate != nil {
		t.Errorf("defaults = %+v", created)
	}
	if created.ShipmentID != "SHP-"+fixedRefSuffix() {
		t.Errorf("ShipmentID = %q", created.ShipmentID)
	}

	inTransit := ShipmentInTransit
	tracking := "1Z999"
	delivered := fixedNow.Add(48 * time.Hour)
	err = repo.UpdateShipment(context.Background(), created.ID, ShipmentUpdate{
		Status:         &inTransit,
		TrackingNumber: &tracking,
		ActualDate:     &delivered,
	})
	if err != nil {
		t.Fatalf("UpdateShipment() error = %v", err)
	}

	shipments, err := repo.Shipments(context.Background())
	if err != nil {
		t.Fatalf("Shipments() error = %v", err)
	}
	if len(shipments) != 1 {
		t.Fatalf("len = %d, want 1", len(shipments))
	}
	s := shipments[0]
	if s.Status != ShipmentInTransit || s.TrackingNumber != "1Z999" {
		t.Errorf("shipment = %+v", s)
	}
	if s.ActualDate == nil || !s.ActualDate.Equal(delivered) {
		t.Errorf("ActualDate = %v, want %v", s.ActualDate, delivered)
	}
	if len(s.Items) != 1 || s.Items[0].SKU != "CLOTH-001" {
		t.Errorf("Items = %+v", s.Items)
	}

	if _, err := repo.CreateShipment(context.Background(), NewShipment{Carrier: "DHL"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("CreateShipment(no destination) error = %v, want ErrInvalidInput", err)
	}
}

func TestRepository_CreateReportAndUser(t *testing.T) {
	repo, srv := newTestRepository(t)
	ctx := context.Background()

	report, err := repo.CreateReport(ctx, NewReport{Type: ReportInventory, Format: FormatExcel})
	if err != nil {
		t.Fatalf("CreateReport() error = %v", err)
	}
	if report.Name != "New Report" || report.Type != ReportInventory || report.Format != FormatExcel {
		t.Errorf("report = %+v", report)
	}
	if report.LastRun != nil {
		t.Errorf("LastRun = %v, want nil", report.LastRun)
	}

	user, err := repo.CreateUser(ctx, NewUser{FirstName: "Ada", Role: RoleOperator})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.Username != "user_"+fixedRefSuffix() || user.Status != UserActive || user.Role != RoleOperator {
		t.Errorf("user = %+v", user)
	}
	if user.LastLogin != nil {
		t.Errorf("LastLogin = %v, want nil", user.LastLogin)
	}
	if srv.Count(TypeUser) != 1 || srv.Count(TypeReport) != 1 {
		t.Errorf("stored users/reports = %d/%d", srv.Count(TypeUser), srv.Count(TypeReport))
	}

	if _, err := repo.CreateUser(ctx, NewUser{Email: "not-an-email"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("CreateUser(bad email) error = %v, want ErrInvalidInput", err)
	}
	if _, err := repo.CreateUser(ctx, NewUser{Role: "Root"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("CreateUser(bad role) error = %v, want ErrInvalidInput", err)
	}
}

func TestRepository_DeleteInventoryItem(t *testing.T) {
	repo, srv := newTestRepository(t)
	srv.Put(orion.NewEntity("InventoryItem:1", TypeInventoryItem))

	if err := repo.DeleteInventoryItem(context.Background(), "InventoryItem:1"); err != nil {
		t.Fatalf("DeleteInventoryItem() error = %v", err)
	}
	if srv.Count(TypeInventoryItem) != 0 {
		t.Error("item still stored")
	}
	if err := repo.DeleteInventoryItem(context.Background(), "InventoryItem:1"); !errors.Is(err, orion.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteInventoryItem(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty id error = %v, want ErrInvalidInput", err)
	}
}

func TestRepository_WritesRequireEntityType(t *testing.T) {
	repo, srv := newTestRepository(t)
	srv.Put(orion.NewEntity("Order:1", TypeOrder))
	srv.Put(orion.NewEntity("InventoryItem:1", TypeInventoryItem).Set("quantity", orion.Number(3)))
	ctx := context.Background()
	shipped := OrderShipped
	delivered := ShipmentDelivered

	if err := repo.DeleteInventoryItem(ctx, "Order:1"); !errors.Is(err, orion.ErrNotFound) {
		t.Errorf("DeleteInventoryItem(order) error = %v, want ErrNotFound", err)
	}
	if _, ok := srv.Entity("Order:1"); !ok {
		t.Error("order deleted as an inventory item")
	}

	if err := repo.UpdateOrder(ctx, "InventoryItem:1", OrderUpdate{Status: &shipped}); !errors.Is(err, orion.ErrNotFound) {
		t.Errorf("UpdateOrder(item) error = %v, want ErrNotFound", err)
	}
	if err := repo.UpdateShipment(ctx, "Order:1", ShipmentUpdate{Status: &delivered}); !errors.Is(err, orion.ErrNotFound) {
		t.Errorf("UpdateShipment(order) error = %v, want ErrNotFound", err)
	}
	item, _ := srv.Entity("InventoryItem:1")
	if _, ok := item.Attr("status"); ok {
		t.Error("order status written onto an inventory item")
	}
	if srv.Calls(http.MethodPatch) != 0 || srv.Calls(http.MethodDelete) != 0 {
		t.Errorf("writes issued: PATCH=%d DELETE=%d, want none", srv.Calls(http.MethodPatch), srv.Calls(http.MethodDelete))
	}
}

func TestOrderTotal(t *testing.T) {
	items := []OrderItem{
		{Price: decimal.RequireFromString("0.1"), Quantity: 3},
		{Price: decimal.RequireFromString("0.2"), Quantity: 1},
	}
	if got := OrderTotal(items); !got.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("OrderTotal() = %s, want 0.5", got)
	}
	if got := OrderTotal(nil); !got.IsZero() {
		t.Errorf("OrderTotal(nil) = %s, want 0", got)
	}
}

func mustEntity(t *testing.T, srv *oriontest.Server, id string) orion.Entity {
	t.Helper()
	e, ok := srv.Entity(id)
	if !ok {
		t.Fatalf("entity %s not stored", id)
	}
	return e
}

func fixedRefSuffix() string {
	return shortRef("X", fixedNow)[2:]
}
