package orion

import (
	"context"
	"errors"
	"testing"
)

// countingWriter is an in-memory Writer that records calls and can inject failures.
type countingWriter struct {
	existing map[string]Entity

	gets, creates, patches int

	getErr    error
	createErr error
	patchErr  error
}

func newCountingWriter() *countingWriter {
	return &countingWriter{existing: make(map[string]Entity)}
}

func (w *countingWriter) Get(_ context.Context, id, _ string) (Entity, error) {
	w.gets++
	if w.getErr != nil {
		return Entity{}, w.getErr
	}
	e, ok := w.existing[id]
	if !ok {
		return Entity{}, ErrNotFound
	}
	return e, nil
}

func (w *countingWriter) Create(_ context.Context, e Entity) error {
	w.creates++
	if w.createErr != nil {
		return w.createErr
	}
	w.existing[e.ID] = e
	return nil
}

func (w *countingWriter) PatchAttributes(_ context.Context, id string, attrs map[string]AttributeValue) error {
	w.patches++
	if w.patchErr != nil {
		return w.patchErr
	}
	e := w.existing[id]
	for k, v := range attrs {
		e = e.Set(k, v)
	}
	w.existing[id] = e
	return nil
}

func TestUpsert(t *testing.T) {
	entity := NewEntity("WarehouseZone:1", "WarehouseZone").Set("currentOccupancy", Number(10))

	tests := []struct {
		name        string
		setup       func(w *countingWriter)
		wantOutcome Outcome
		wantErr     error
		wantCreates int
		wantPatches int
	}{
		{
			name:        "absent entity is created",
			setup:       func(*countingWriter) {},
			wantOutcome: OutcomeCreated,
			wantCreates: 1,
		},
		{
			name: "existing entity is patched",
			setup: func(w *countingWriter) {
				w.existing[entity.ID] = entity
			},
			wantOutcome: OutcomePatched,
			wantPatches: 1,
		},
		{
			name: "create conflict retries as patch",
			setup: func(w *countingWriter) {
				w.createErr = ErrConflict
			},
			wantOutcome: OutcomePatchedAfterConflict,
			wantCreates: 1,
			wantPatches: 1,
		},
		{
			name: "conflict then failed patch is dropped",
			setup: func(w *countingWriter) {
				w.createErr = ErrConflict
				w.patchErr = ErrTransport
			},
			wantOutcome: OutcomeFailed,
			wantErr:     ErrTransport,
			wantCreates: 1,
			wantPatches: 1,
		},
		{
			name: "create transport failure is not retried",
			setup: func(w *countingWriter) {
				w.createErr = ErrTransport
			},
			wantOutcome: OutcomeFailed,
			wantErr:     ErrTransport,
			wantCreates: 1,
		},
		{
			name: "probe failure writes nothing",
			setup: func(w *countingWriter) {
				w.getErr = ErrTransport
			},
			wantOutcome: OutcomeFailed,
			wantErr:     ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newCountingWriter()
			tt.setup(w)

			outcome, err := Upsert(context.Background(), w, entity)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Upsert() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("Upsert() unexpected error = %v", err)
			}
			if outcome != tt.wantOutcome {
				t.Errorf("outcome = %q, want %q", outcome, tt.wantOutcome)
			}
			if w.gets != 1 {
				t.Errorf("gets = %d, want 1", w.gets)
			}
			if w.creates != tt.wantCreates {
				t.Errorf("creates = %d, want %d", w.creates, tt.wantCreates)
			}
			if w.patches != tt.wantPatches {
				t.Errorf("patches = %d, want %d", w.patches, tt.wantPatches)
			}
		})
	}
}

func TestUpsert_RejectsMissingIdentity(t *testing.T) {
	w := newCountingWriter()
	if _, err := Upsert(context.Background(), w, NewEntity("", "Sensor")); !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("Upsert() error = %v, want ErrInvalidEntity", err)
	}
	if w.gets != 0 {
		t.Error("invalid entity should not be probed")
	}
}

func TestUpsert_Idempotent(t *testing.T) {
	w := newCountingWriter()
	e := NewEntity("Alert:1", "Alert").Set("severity", Text("high"))

	for i := 0; i < 3; i++ {
		if _, err := Upsert(context.Background(), w, e); err != nil {
			t.Fatalf("Upsert #%d error = %v", i, err)
		}
	}
	if len(w.existing) != 1 {
		t.Errorf("entities = %d, want 1", len(w.existing))
	}
	if w.creates != 1 || w.patches != 2 {
		t.Errorf("creates/patches = %d/%d, want 1/2", w.creates, w.patches)
	}
}
