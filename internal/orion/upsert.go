package orion

import (
	"context"
	"errors"
	"fmt"
)

// Writer is the subset of the store used by the upsert protocol.
type Writer interface {
	Get(ctx context.Context, id, entityType string) (Entity, error)
	Create(ctx context.Context, e Entity) error
	PatchAttributes(ctx context.Context, id string, attrs map[string]AttributeValue) error
}

// Outcome describes which write an upsert ended with.
type Outcome string

// Upsert outcomes.
const (
	OutcomeCreated              Outcome = "created"
	OutcomePatched              Outcome = "patched"
	OutcomePatchedAfterConflict Outcome = "patched_after_conflict"
	OutcomeFailed               Outcome = "failed"
)

// Upsert publishes e without knowing whether it exists yet.
//
// It probes with Get; a not-found answer selects Create, anything else
// selects PatchAttributes with every non-identity attribute. The sequence
// is check-then-act, so a concurrent writer may create the entity between
// the probe and the create. A Create that fails with ErrConflict is retried
// exactly once as a patch; if that also fails the error is returned and the
// caller drops this entity's update. A probe failure other than not-found
// is returned without attempting a write.
func Upsert(ctx context.Context, w Writer, e Entity) (Outcome, error) {
	if e.ID == "" || e.Type == "" {
		return OutcomeFailed, ErrInvalidEntity
	}

	_, err := w.Get(ctx, e.ID, e.Type)
	switch {
	case err == nil:
		if err := w.PatchAttributes(ctx, e.ID, e.PatchBody()); err != nil {
			return OutcomeFailed, fmt.Errorf("upserting %s: %w", e.ID, err)
		}
		return OutcomePatched, nil

	case errors.Is(err, ErrNotFound):
		createErr := w.Create(ctx, e)
		if createErr == nil {
			return OutcomeCreated, nil
		}
		if !errors.Is(createErr, ErrConflict) {
			return OutcomeFailed, fmt.Errorf("upserting %s: %w", e.ID, createErr)
		}
		if err := w.PatchAttributes(ctx, e.ID, e.PatchBody()); err != nil {
			return OutcomeFailed, fmt.Errorf("upserting %s after conflict: %w", e.ID, err)
		}
		return OutcomePatchedAfterConflict, nil

	default:
		return OutcomeFailed, fmt.Errorf("upserting %s: probing: %w", e.ID, err)
	}
}
