// Package notify publishes record changes so that live views can re-snapshot the store
// and rebuild their reports.
package notify

import (
	"context"

	"github.com/mmynk/housesplit/internal/models"
)

// Kind is the record type that changed.
type Kind string

const (
	KindExpense    Kind = "expense"
	KindSettlement Kind = "settlement"
)

// Op is what happened to the record.
type Op string

const (
	OpCreated   Op = "created"
	OpUpdated   Op = "updated"
	OpDeleted   Op = "deleted"
	OpPaid      Op = "paid"
	OpConfirmed Op = "confirmed"
)

// Change describes one successful mutation of the record store.
type Change struct {
	Kind   Kind          `json:"kind"`
	Op     Op            `json:"op"`
	Period models.Period `json:"period"`
	ID     string        `json:"id"`
}

// Publisher announces changes. Publishing is best effort; the store stays the source
// of truth.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Subscriber delivers changes until ctx is cancelled, then closes the channel.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan Change, error)
}

// Nop discards every change. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Change) error { return nil }
