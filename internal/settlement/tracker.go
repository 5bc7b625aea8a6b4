package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/internal/storage"
)

// maxAttempts bounds how often a transition is re-read and re-applied after losing a
// race with another writer.
const maxAttempts = 3

// Store is the subset of the record store the tracker needs. Lookups return an error
// wrapping storage.ErrNotFound when no record matches; writes that lose a race return
// one wrapping storage.ErrConflict.
type Store interface {
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	FindSettlement(ctx context.Context, key models.SettlementKey) (*models.Settlement, error)
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	UpdateSettlement(ctx context.Context, settlement *models.Settlement, from models.Status) error
}

// Tracker applies settlement transitions against a store. Each transition reads the
// record, applies the pure transition and writes it back only if the stored status is
// unchanged; otherwise it starts over from a fresh read.
type Tracker struct {
	store Store
	now   func() time.Time
}

// NewTracker creates a Tracker backed by store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// MarkPaid records that the debtor paid the creditor, creating the record if needed.
func (t *Tracker) MarkPaid(ctx context.Context, req MarkPaid) (*models.Settlement, error) {
	next, err := retryOnConflict(ctx, func() (*models.Settlement, error) {
		existing, err := t.store.FindSettlement(ctx, req.Key)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("failed to look up settlement: %w", err)
			}
			existing = nil
		}

		next, err := ApplyMarkPaid(existing, req, t.now())
		if err != nil {
			return nil, err
		}
		if err := t.save(ctx, existing, &next); err != nil {
			return nil, err
		}
		return &next, nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Settlement marked paid",
		"settlement_id", next.ID,
		"debtor", next.Debtor,
		"creditor", next.Creditor,
		"period", next.Period,
		"status", next.Status,
	)
	return next, nil
}

// Confirm moves the settlement with the given id from paid to confirmed.
func (t *Tracker) Confirm(ctx context.Context, settlementID string) (*models.Settlement, error) {
	return retryOnConflict(ctx, func() (*models.Settlement, error) {
		existing, err := t.store.GetSettlement(ctx, settlementID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, settlementID)
			}
			return nil, fmt.Errorf("failed to get settlement: %w", err)
		}
		return t.confirm(ctx, existing)
	})
}

// ConfirmPair confirms the settlement for key. It fails with ErrNotFound when the
// debtor never marked the pair as paid.
func (t *Tracker) ConfirmPair(ctx context.Context, key models.SettlementKey) (*models.Settlement, error) {
	return retryOnConflict(ctx, func() (*models.Settlement, error) {
		existing, err := t.store.FindSettlement(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s -> %s in %s", ErrNotFound, key.Debtor, key.Creditor, key.Period)
			}
			return nil, fmt.Errorf("failed to look up settlement: %w", err)
		}
		return t.confirm(ctx, existing)
	})
}

func (t *Tracker) confirm(ctx context.Context, existing *models.Settlement) (*models.Settlement, error) {
	next, err := ApplyConfirm(existing, t.now())
	if err != nil {
		return nil, err
	}
	if err := t.save(ctx, existing, &next); err != nil {
		return nil, err
	}

	slog.Debug("Settlement confirmed", "settlement_id", next.ID, "period", next.Period)
	return &next, nil
}

// save creates next when existing is nil, and otherwise updates it on the condition
// that the stored status still matches existing.
func (t *Tracker) save(ctx context.Context, existing, next *models.Settlement) error {
	if existing == nil {
		if err := t.store.CreateSettlement(ctx, next); err != nil {
			return fmt.Errorf("failed to create settlement: %w", err)
		}
		return nil
	}
	if err := t.store.UpdateSettlement(ctx, next, existing.Status); err != nil {
		return fmt.Errorf("failed to save settlement: %w", err)
	}
	return nil
}

// retryOnConflict runs fn until it succeeds, fails with an error other than
// storage.ErrConflict, or maxAttempts is reached.
func retryOnConflict(ctx context.Context, fn func() (*models.Settlement, error)) (*models.Settlement, error) {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var st *models.Settlement
		st, err = fn()
		if !errors.Is(err, storage.ErrConflict) {
			return st, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		slog.Debug("Settlement changed concurrently, retrying", "attempt", attempt, "error", err)
	}
	return nil, err
}

// Status returns the status of key and the record behind it, if any.
func (t *Tracker) Status(ctx context.Context, key models.SettlementKey) (models.Status, *models.Settlement, error) {
	existing, err := t.store.FindSettlement(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.StatusPending, nil, nil
		}
		return "", nil, fmt.Errorf("failed to look up settlement: %w", err)
	}
	return existing.Status, existing, nil
}
