package orion_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nerrad567/warehouse-core/internal/orion"
	"github.com/nerrad567/warehouse-core/internal/orion/oriontest"
)

func sensor(id string, value float64) orion.Entity {
	return orion.NewEntity(id, "Sensor").
		Set("name", orion.Text(id)).
		Set("value", orion.Number(value))
}

func TestClient_SendsTenancyHeaders(t *testing.T) {
	srv := oriontest.NewServer(t)
	client := srv.NewClient(t)

	if _, err := client.List(context.Background(), "Sensor"); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	h := srv.LastHeaders()
	if got := h.Get("Fiware-Service"); got != "warehouse" {
		t.Errorf("Fiware-Service = %q", got)
	}
	if got := h.Get("Fiware-ServicePath"); got != "/" {
		t.Errorf("Fiware-ServicePath = %q", got)
	}
}

func TestClient_ListEmptyIsNotNil(t *testing.T) {
	srv := oriontest.NewServer(t)
	client := srv.NewClient(t)

	got, err := client.List(context.Background(), "Sensor")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("List() = %#v, want empty non-nil slice", got)
	}
}

func TestClient_ListPages(t *testing.T) {
	srv := oriontest.NewServer(t)
	cfg := srv.Config()
	cfg.PageSize = 2
	client, err := orion.New(cfg, srv.Client())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, id := range []string{"S1", "S2", "S3", "S4", "S5"} {
		srv.Put(sensor(id, 1))
	}
	srv.Put(orion.NewEntity("Z1", "WarehouseZone").Set("name", orion.Text("Z")))

	got, err := client.List(context.Background(), "Sensor")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("List() returned %d entities, want 5", len(got))
	}
	// 2 + 2 + 1: the short page ends the walk.
	if calls := srv.Calls(http.MethodGet); calls != 3 {
		t.Errorf("GET calls = %d, want 3", calls)
	}
}

func TestClient_ListKeyValues(t *testing.T) {
	srv := oriontest.NewServer(t)
	client := srv.NewClient(t)
	srv.Put(sensor("S1", 12.5))

	got, err := client.List(context.Background(), "Sensor", orion.KeyValues())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	v, _ := got[0].Attr("value")
	if n, ok := v.AsNumber(); !ok || n != 12.5 {
		t.Errorf("value = %v, %v, want 12.5", n, ok)
	}
}

func TestClient_ListTransportFailure(t *testing.T) {
	srv := oriontest.NewServer(t)
	client := srv.NewClient(t)
	srv.FailMethod(http.MethodGet, http.StatusInternalServerError)

	got, err := client.List(context.Background(), "Sensor")
	if !errors.Is(err, orion.ErrTransport) {
		t.Fatalf("List() error = %v, want ErrTransport", err)
	}
	if got != nil {
		t.Errorf("List() = %v on failure, want nil", got)
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := oriontest.NewServer(t)
	cfg := srv.Config()
	srv.Close()

	client, err := orion.New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := client.List(context.Background(), "Sensor"); !errors.Is(err, orion.ErrTransport) {
		t.Errorf("List() error = %v, want ErrTransport", err)
	}
}

func TestClient_GetCreatePatchDelete(t *testing.T) {
	srv := oriontest.NewServer(t)
	client := srv.NewClient(t)
	ctx := context.Background()

	if _, err := client.Get(ctx, "S1", "Sensor"); !errors.Is(err, orion.ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := client.Create(ctx, sensor("S1", 20)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := client.Create(ctx, sensor("S1", 20)); !errors.Is(err, orion.ErrConflict) {
		t.Fatalf("Create(duplicate) error = %v, want ErrConflict", err)
	}

	err := client.PatchAttributes(ctx, "S1", map[string]orion.AttributeValue{
		"id":    orion.Text("ignored"),
		"value": orion.Number(25),
	})
	if err != nil {
		t.Fatalf("PatchAttributes() error = %v", err)
	}

	got, err := client.Get(ctx, "S1", "Sensor")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	v, _ := got.Attr("value")
	if n, ok := v.AsNumber(); !ok || n != 25 {
		t.Errorf("value after patch = %v, %v, want 25", n, ok)
	}
	if got.ID != "S1" {
		t.Errorf("ID = %q, patch must not change identity", got.ID)
	}

	if err := client.PatchAttributes(ctx, "S9", map[string]orion.AttributeValue{"value": orion.Number(1)}); !errors.Is(err, orion.ErrNotFound) {
		t.Errorf("PatchAttributes(missing) error = %v, want ErrNotFound", err)
	}

	if err := client.Delete(ctx, "S1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := client.Delete(ctx, "S1"); !errors.Is(err, orion.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestClient_CreateRequiresIdentity(t *testing.T) {
	srv := oriontest.NewServer(t)
	client := srv.NewClient(t)

	if err := client.Create(context.Background(), orion.NewEntity("", "Sensor")); !errors.Is(err, orion.ErrInvalidEntity) {
		t.Errorf("Create() error = %v, want ErrInvalidEntity", err)
	}
	if srv.Calls(http.MethodPost) != 0 {
		t.Error("invalid entity should not reach the store")
	}
}

func TestClient_Types(t *testing.T) {
	srv := oriontest.NewServer(t)
	client := srv.NewClient(t)
	srv.Put(sensor("S1", 1))
	srv.Put(orion.NewEntity("A1", "Alert").Set("severity", orion.Text("low")))

	got, err := client.Types(context.Background())
	if err != nil {
		t.Fatalf("Types() error = %v", err)
	}
	if len(got) != 2 || got[0] != "Alert" || got[1] != "Sensor" {
		t.Errorf("Types() = %v", got)
	}
}

func TestClient_Probe(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()
	gone := httptest.NewServer(http.NotFoundHandler())
	goneURL := gone.URL
	gone.Close()

	srv := oriontest.NewServer(t)
	client := srv.NewClient(t)
	ctx := context.Background()

	if !client.Probe(ctx, up.URL) {
		t.Error("Probe(up) = false")
	}
	if client.Probe(ctx, broken.URL) {
		t.Error("Probe(503) = true")
	}
	if client.Probe(ctx, goneURL) {
		t.Error("Probe(unreachable) = true")
	}
	if client.Probe(ctx, "://bad") {
		t.Error("Probe(malformed) = true")
	}
}

func TestNew_RequiresURL(t *testing.T) {
	srv := oriontest.NewServer(t)
	cfg := srv.Config()
	cfg.URL = ""
	if _, err := orion.New(cfg, nil); err == nil {
		t.Error("New() with empty URL should fail")
	}
}
