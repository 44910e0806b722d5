package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/config"
	"github.com/nerrad567/warehouse-core/internal/infrastructure/database"
	"github.com/nerrad567/warehouse-core/internal/orion/oriontest"
	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("WAREHOUSE_CONFIG", "/nonexistent/path/config.yaml")

	if err := run(context.Background()); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_PublishesAndPersists runs the simulator against a fake store with
// an on-disk state database and stops it through context cancellation.
func TestRun_PublishesAndPersists(t *testing.T) {
	store := oriontest.NewServer(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "simulator.db")

	configPath := filepath.Join(dir, "config.yaml")
	configContent := fmt.Sprintf(`
orion:
  url: %q
simulator:
  tick_interval: 20ms
  items_per_tick: 3
  alert_probability: 0
  seed: 7
  persist: true
  metrics_addr: ""
database:
  path: %q
  wal_mode: true
  busy_timeout: 5
logging:
  level: error
  format: text
`, store.URL, dbPath)
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("WAREHOUSE_CONFIG", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for store.Count(warehouse.TypeWarehouseZone) < 5 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not return after cancellation")
	}

	if n := store.Count(warehouse.TypeSensor); n != 10 {
		t.Errorf("sensors in store = %d, want 10", n)
	}
	if n := store.Count(warehouse.TypeWarehouseZone); n != 5 {
		t.Errorf("zones in store = %d, want 5", n)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("state database not created: %v", err)
	}
}

func TestHealthRouter(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{Path: database.MemoryPath, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	router := newRouter(&dependencies{db: db})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	if w := get("/health"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("healthy /health = %d %s", w.Code, w.Body.String())
	}
	if w := get("/metrics"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Errorf("/metrics = %d", w.Code)
	}

	db.Close() //nolint:errcheck // closing to force an unhealthy check
	if w := get("/health"); w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "database") {
		t.Errorf("unhealthy /health = %d %s", w.Code, w.Body.String())
	}
}
