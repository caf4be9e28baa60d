// Package plugin provides an extensible plugin system for token ledgers.
// Plugins hook into lifecycle and ledger events to extend functionality.
// Hooks run after a mutation has committed; they observe, never veto.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the ledger stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Balance hooks
// ──────────────────────────────────────────────────

// OnMint is called after new supply is credited to an account.
type OnMint interface {
	Plugin
	OnMint(ctx context.Context, ev *event.Event, t event.Transfer) error
}

// OnTransfer is called after value moves between two accounts, either by
// the owner or through an allowance. Mints are reported via OnMint only.
type OnTransfer interface {
	Plugin
	OnTransfer(ctx context.Context, ev *event.Event, t event.Transfer) error
}

// OnApproval is called after an allowance is set or adjusted.
type OnApproval interface {
	Plugin
	OnApproval(ctx context.Context, ev *event.Event, a event.Approval) error
}

// ──────────────────────────────────────────────────
// Administrative hooks
// ──────────────────────────────────────────────────

// OnPaused is called after transfers are halted.
type OnPaused interface {
	Plugin
	OnPaused(ctx context.Context, ev *event.Event, account id.AccountID) error
}

// OnUnpaused is called after transfers resume.
type OnUnpaused interface {
	Plugin
	OnUnpaused(ctx context.Context, ev *event.Event, account id.AccountID) error
}

// OnOwnershipTransferred is called after the administrator role changes hands.
type OnOwnershipTransferred interface {
	Plugin
	OnOwnershipTransferred(ctx context.Context, ev *event.Event, previous, next id.AccountID) error
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnRejected is called when an operation fails. The ledger state is
// unchanged and no event was emitted.
type OnRejected interface {
	Plugin
	OnRejected(ctx context.Context, op string, caller id.AccountID, err error) error
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalFlushed is called after a batch of events is written to the journal.
type OnJournalFlushed interface {
	Plugin
	OnJournalFlushed(ctx context.Context, count int, lastSequence uint64, elapsed time.Duration) error
}
