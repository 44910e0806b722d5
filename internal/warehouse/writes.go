package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/nerrad567/warehouse-core/internal/orion"
)

// defaultShipWindow is added to the order date when no ship-by date is given.
const defaultShipWindow = 7 * 24 * time.Hour

// NewOrder is the input for CreateOrder. Zero fields take their defaults.
type NewOrder struct {
	OrderID       string           `json:"orderId"`
	Customer      string           `json:"customer" validate:"required"`
	Status        OrderStatus      `json:"status" validate:"omitempty,enum"`
	Items         []OrderItem      `json:"items" validate:"dive"`
	TotalAmount   *decimal.Decimal `json:"totalAmount"`
	PaymentStatus PaymentStatus    `json:"paymentStatus" validate:"omitempty,enum"`
	OrderDate     *time.Time       `json:"orderDate"`
	ShipByDate    *time.Time       `json:"shipByDate"`
	Priority      Priority         `json:"priority" validate:"omitempty,enum"`
	Notes         string           `json:"notes"`
}

// OrderUpdate lists the order fields to change. Nil fields are left alone.
type OrderUpdate struct {
	Status        *OrderStatus     `json:"status" validate:"omitempty,enum"`
	PaymentStatus *PaymentStatus   `json:"paymentStatus" validate:"omitempty,enum"`
	Items         *[]OrderItem     `json:"items" validate:"omitempty,dive"`
	TotalAmount   *decimal.Decimal `json:"totalAmount"`
	Priority      *Priority        `json:"priority" validate:"omitempty,enum"`
	Notes         *string          `json:"notes"`
	ShipByDate    *time.Time       `json:"shipByDate"`
}

// NewShipment is the input for CreateShipment.
type NewShipment struct {
	ShipmentID     string         `json:"shipmentId"`
	Status         ShipmentStatus `json:"status" validate:"omitempty,enum"`
	Origin         string         `json:"origin"`
	Destination    string         `json:"destination" validate:"required"`
	Carrier        string         `json:"carrier" validate:"required"`
	TrackingNumber string         `json:"trackingNumber"`
	Items          []ShipmentItem `json:"items" validate:"dive"`
	ScheduledDate  *time.Time     `json:"scheduledDate"`
	ActualDate     *time.Time     `json:"actualDate"`
}

// ShipmentUpdate lists the shipment fields to change. Nil fields are left alone.
type ShipmentUpdate struct {
	Status         *ShipmentStatus `json:"status" validate:"omitempty,enum"`
	TrackingNumber *string         `json:"trackingNumber"`
	ActualDate     *time.Time      `json:"actualDate"`
	Items          *[]ShipmentItem `json:"items" validate:"omitempty,dive"`
}

// NewReport is the input for CreateReport.
type NewReport struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        ReportType   `json:"type" validate:"omitempty,enum"`
	CreatedBy   string       `json:"createdBy"`
	Schedule    Schedule     `json:"schedule" validate:"omitempty,enum"`
	Format      ReportFormat `json:"format" validate:"omitempty,enum"`
	URL         string       `json:"url"`
}

// NewUser is the input for CreateUser.
type NewUser struct {
	Username   string `json:"username" validate:"omitempty,max=64"`
	Email      string `json:"email" validate:"omitempty,email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       Role   `json:"role" validate:"omitempty,enum"`
	Department string `json:"department"`
}

// CreateOrder stores a new order and returns its normalized form.
// The total is computed from the items unless a non-zero total is given.
func (r *Repository) CreateOrder(ctx context.Context, in NewOrder) (Order, error) {
	if err := r.check(in); err != nil {
		return Order{}, err
	}

	now := r.now().UTC()
	total := OrderTotal(in.Items)
	if in.TotalAmount != nil && !in.TotalAmount.IsZero() {
		total = *in.TotalAmount
	}
	orderDate := valueOr(in.OrderDate, now)
	shipBy := valueOr(in.ShipByDate, orderDate.Add(defaultShipWindow))

	e := orion.NewEntity(TypeOrder+":"+r.newID(), TypeOrder).
		Set("orderId", orion.Text(orDefault(in.OrderID, shortRef("ORD", now)))).
		Set("customer", orion.Text(in.Customer)).
		Set("status", orion.Text(string(orDefault(in.Status, OrderNew)))).
		Set("items", orderItemsValue(in.Items)).
		Set("totalAmount", orion.Number(total.InexactFloat64())).
		Set("paymentStatus", orion.Text(string(orDefault(in.PaymentStatus, PaymentPending)))).
		Set("orderDate", orion.DateTimeOf(orderDate)).
		Set("shipByDate", orion.DateTimeOf(shipBy)).
		Set("priority", orion.Text(string(orDefault(in.Priority, PriorityNormal)))).
		Set("notes", orion.Text(in.Notes)).
		Set("dateCreated", orion.DateTimeOf(now)).
		Set("dateModified", orion.DateTimeOf(now))

	if err := r.store.Create(ctx, e); err != nil {
		return Order{}, fmt.Errorf("creating order: %w", err)
	}
	return r.norm.Order(e), nil
}

// UpdateOrder patches an order. Changing the items recomputes the total;
// dateModified is always refreshed.
func (r *Repository) UpdateOrder(ctx context.Context, id string, in OrderUpdate) error {
	if err := r.check(in); err != nil {
		return err
	}

	attrs := map[string]orion.AttributeValue{}
	if in.Status != nil {
		attrs["status"] = orion.Text(string(*in.Status))
	}
	if in.PaymentStatus != nil {
		attrs["paymentStatus"] = orion.Text(string(*in.PaymentStatus))
	}
	switch {
	case in.Items != nil:
		attrs["items"] = orderItemsValue(*in.Items)
		attrs["totalAmount"] = orion.Number(OrderTotal(*in.Items).InexactFloat64())
	case in.TotalAmount != nil:
		attrs["totalAmount"] = orion.Number(in.TotalAmount.InexactFloat64())
	}
	if in.Priority != nil {
		attrs["priority"] = orion.Text(string(*in.Priority))
	}
	if in.Notes != nil {
		attrs["notes"] = orion.Text(*in.Notes)
	}
	if in.ShipByDate != nil {
		attrs["shipByDate"] = orion.DateTimeOf(*in.ShipByDate)
	}
	attrs["dateModified"] = orion.DateTimeOf(r.now())

	if err := r.requireType(ctx, id, TypeOrder); err != nil {
		return fmt.Errorf("updating order: %w", err)
	}
	if err := r.store.PatchAttributes(ctx, id, attrs); err != nil {
		return fmt.Errorf("updating order: %w", err)
	}
	return nil
}

// OrderTotal sums price × quantity over the items.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// CreateShipment stores a new shipment and returns its normalized form.
func (r *Repository) CreateShipment(ctx context.Context, in NewShipment) (Shipment, error) {
	if err := r.check(in); err != nil {
		return Shipment{}, err
	}

	now := r.now().UTC()
	e := orion.NewEntity(TypeShipment+":"+r.newID(), TypeShipment).
		Set("shipmentId", orion.Text(orDefault(in.ShipmentID, shortRef("SHP", now)))).
		Set("status", orion.Text(string(orDefault(in.Status, ShipmentPending)))).
		Set("origin", orion.Text(orDefault(in.Origin, "Warehouse"))).
		Set("destination", orion.Text(in.Destination)).
		Set("carrier", orion.Text(in.Carrier)).
		Set("trackingNumber", orion.Text(orDefault(in.TrackingNumber, "N/A"))).
		Set("items", shipmentItemsValue(in.Items)).
		Set("scheduledDate", orion.DateTimeOf(valueOr(in.ScheduledDate, now))).
		Set("actualDate", optionalDateTime(in.ActualDate)).
		Set("dateCreated", orion.DateTimeOf(now)).
		Set("dateModified", orion.DateTimeOf(now))

	if err := r.store.Create(ctx, e); err != nil {
		return Shipment{}, fmt.Errorf("creating shipment: %w", err)
	}
	return r.norm.Shipment(e), nil
}

// UpdateShipment patches a shipment; dateModified is always refreshed.
func (r *Repository) UpdateShipment(ctx context.Context, id string, in ShipmentUpdate) error {
	if err := r.check(in); err != nil {
		return err
	}

	attrs := map[string]orion.AttributeValue{}
	if in.Status != nil {
		attrs["status"] = orion.Text(string(*in.Status))
	}
	if in.TrackingNumber != nil {
		attrs["trackingNumber"] = orion.Text(*in.TrackingNumber)
	}
	if in.ActualDate != nil {
		attrs["actualDate"] = orion.DateTimeOf(*in.ActualDate)
	}
	if in.Items != nil {
		attrs["items"] = shipmentItemsValue(*in.Items)
	}
	attrs["dateModified"] = orion.DateTimeOf(r.now())

	if err := r.requireType(ctx, id, TypeShipment); err != nil {
		return fmt.Errorf("updating shipment: %w", err)
	}
	if err := r.store.PatchAttributes(ctx, id, attrs); err != nil {
		return fmt.Errorf("updating shipment: %w", err)
	}
	return nil
}

// CreateReport stores a new report definition and returns its normalized form.
func (r *Repository) CreateReport(ctx context.Context, in NewReport) (Report, error) {
	if err := r.check(in); err != nil {
		return Report{}, err
	}

	now := r.now().UTC()
	e := orion.NewEntity(TypeReport+":"+r.newID(), TypeReport).
		Set("name", orion.Text(orDefault(in.Name, "New Report"))).
		Set("description", orion.Text(in.Description)).
		Set("reportType", orion.Text(string(orDefault(in.Type, ReportCustom)))).
		Set("createdBy", orion.Text(orDefault(in.CreatedBy, "System"))).
		Set("dateCreated", orion.DateTimeOf(now)).
		Set("lastRun", orion.Null(orion.KindDateTime)).
		Set("schedule", orion.Text(string(orDefault(in.Schedule, ScheduleOnDemand)))).
		Set("format", orion.Text(string(orDefault(in.Format, FormatPDF)))).
		Set("url", orion.Text(orDefault(in.URL, "#")))

	if err := r.store.Create(ctx, e); err != nil {
		return Report{}, fmt.Errorf("creating report: %w", err)
	}
	return r.norm.Report(e), nil
}

// CreateUser stores a new active user and returns its normalized form.
func (r *Repository) CreateUser(ctx context.Context, in NewUser) (User, error) {
	if err := r.check(in); err != nil {
		return User{}, err
	}

	now := r.now().UTC()
	suffix := fmt.Sprintf("%06d", now.UnixMilli()%1_000_000)
	e := orion.NewEntity(TypeUser+":"+r.newID(), TypeUser).
		Set("username", orion.Text(orDefault(in.Username, "user_"+suffix))).
		Set("email", orion.Text(orDefault(in.Email, "user_"+suffix+"@example.com"))).
		Set("firstName", orion.Text(orDefault(in.FirstName, "New"))).
		Set("lastName", orion.Text(orDefault(in.LastName, "User"))).
		Set("role", orion.Text(string(orDefault(in.Role, RoleViewer)))).
		Set("department", orion.Text(orDefault(in.Department, "General"))).
		Set("lastLogin", orion.Null(orion.KindDateTime)).
		Set("status", orion.Text(string(UserActive))).
		Set("dateCreated", orion.DateTimeOf(now))

	if err := r.store.Create(ctx, e); err != nil {
		return User{}, fmt.Errorf("creating user: %w", err)
	}
	return r.norm.User(e), nil
}

// DeleteInventoryItem removes an inventory item. A missing id is orion.ErrNotFound.
func (r *Repository) DeleteInventoryItem(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if err := r.requireType(ctx, id, TypeInventoryItem); err != nil {
		return fmt.Errorf("deleting inventory item: %w", err)
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting inventory item: %w", err)
	}
	return nil
}

// requireType confirms id names an entity of entityType. An entity of any
// other type is reported as orion.ErrNotFound so a typed route never writes
// to a record of a different kind.
func (r *Repository) requireType(ctx context.Context, id, entityType string) error {
	e, err := r.store.Get(ctx, id, entityType)
	if err != nil {
		return err
	}
	if e.Type != entityType {
		return fmt.Errorf("%w: %s is a %s, not a %s", orion.ErrNotFound, id, e.Type, entityType)
	}
	return nil
}

// check validates a write input and wraps failures in ErrInvalidInput.
// The validator.ValidationErrors remain reachable through errors.As.
func (r *Repository) check(in any) error {
	if err := r.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// newValidator returns a validator with the "enum" rule registered. The rule
// accepts any field whose type reports Valid() true.
func newValidator() *validator.Validate {
	v := validator.New()
	//nolint:errcheck // Only fails on an empty tag or nil func
	v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(interface{ Valid() bool })
		return ok && e.Valid()
	})
	return v
}

// orderItemsValue encodes order lines for the store. Prices are written as
// JSON numbers rather than decimal strings.
func orderItemsValue(items []OrderItem) orion.AttributeValue {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{
			"id":          item.ID,
			"sku":         item.SKU,
			"productName": item.ProductName,
			"price":       item.Price.InexactFloat64(),
			"quantity":    item.Quantity,
		})
	}
	return orion.Structured(out)
}

func shipmentItemsValue(items []ShipmentItem) orion.AttributeValue {
	if items == nil {
		items = []ShipmentItem{}
	}
	return orion.Structured(items)
}

func optionalDateTime(t *time.Time) orion.AttributeValue {
	if t == nil {
		return orion.Null(orion.KindDateTime)
	}
	return orion.DateTimeOf(*t)
}

// shortRef builds a human-facing reference such as ORD-123456 from the
// last six digits of the millisecond clock.
func shortRef(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%06d", prefix, now.UnixMilli()%1_000_000)
}

func orDefault[S ~string](v, def S) S {
	if v == "" {
		return def
	}
	return v
}

func valueOr(t *time.Time, def time.Time) time.Time {
	if t == nil {
		return def
	}
	return t.UTC()
}
