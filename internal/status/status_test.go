package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/config"
	"github.com/nerrad567/warehouse-core/internal/metrics"
	"github.com/nerrad567/warehouse-core/internal/orion/oriontest"
)

func TestCheck(t *testing.T) {
	var methods []string
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	gone := httptest.NewServer(http.NotFoundHandler())
	goneURL := gone.URL
	gone.Close()

	checker := NewChecker(oriontest.NewServer(t).NewClient(t), []config.ComponentConfig{
		{Name: "store", URL: up.URL + "/version", Description: "entity store"},
		{Name: "dashboard", URL: failing.URL + "/api"},
		{Name: "analytics", URL: goneURL + "/api"},
	})

	if checker.Last() != nil {
		t.Error("Last() before Check should be nil")
	}

	got := checker.Check(context.Background())

	want := []struct {
		name    string
		healthy bool
	}{
		{"store", true},
		{"dashboard", false},
		{"analytics", false},
	}
	if len(got) != len(want) {
		t.Fatalf("results = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Name != w.name || got[i].Healthy != w.healthy {
			t.Errorf("result[%d] = %s/%v, want %s/%v", i, got[i].Name, got[i].Healthy, w.name, w.healthy)
		}
		if got[i].CheckedAt.IsZero() {
			t.Errorf("result[%d] has no check time", i)
		}
		wantUp := 0.0
		if w.healthy {
			wantUp = 1
		}
		if v := testutil.ToFloat64(metrics.ComponentUp.WithLabelValues(w.name)); v != wantUp {
			t.Errorf("component_up{%s} = %v, want %v", w.name, v, wantUp)
		}
	}
	if got[0].Endpoint != up.URL+"/version" || got[0].Description != "entity store" {
		t.Errorf("store result = %+v", got[0])
	}
	if len(methods) != 1 || methods[0] != http.MethodHead {
		t.Errorf("probe methods = %v, want one HEAD", methods)
	}

	last := checker.Last()
	last[0].Healthy = false
	if !checker.Last()[0].Healthy {
		t.Error("Last() must return a copy")
	}
}

func TestCheck_NoComponents(t *testing.T) {
	checker := NewChecker(oriontest.NewServer(t).NewClient(t), nil)
	if got := checker.Check(context.Background()); len(got) != 0 {
		t.Errorf("Check() = %v, want empty", got)
	}
}
