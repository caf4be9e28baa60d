// Package store defines the journal that persists a ledger's emitted events
// for external indexing and audit. The journal never feeds back into ledger
// state; it is an append-only copy of the event stream.
package store

import (
	"context"

	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
)

// Store is the journal storage interface.
//
// Records are keyed by (ledger ID, sequence). Append is idempotent on that
// key: re-appending an existing record is a no-op, so a flush that is retried
// after a partial failure never duplicates events.
type Store interface {
	// Append writes records in sequence order.
	Append(ctx context.Context, records []*event.Record) error

	// List returns records matching opts in ascending sequence order.
	List(ctx context.Context, opts ListOpts) ([]*event.Record, error)

	// Last returns the newest record of a ledger, or an error satisfying
	// token.IsNotFound if the ledger has none.
	Last(ctx context.Context, ledgerID id.LedgerID) (*event.Record, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// ListOpts filters journal queries. Zero values mean "no filter".
type ListOpts struct {
	LedgerID      id.LedgerID
	Account       id.AccountID // events where the account is a party
	Kind          event.Kind
	AfterSequence uint64
	Limit         int
}

// Match reports whether rec satisfies the filters. Backends that cannot push
// a filter down to the database apply it with Match.
func (o ListOpts) Match(rec *event.Record) bool {
	ev := rec.Event
	if ev == nil {
		return false
	}
	if !o.LedgerID.IsNil() && !ev.LedgerID.Equal(o.LedgerID) {
		return false
	}
	if ev.Sequence <= o.AfterSequence {
		return false
	}
	if o.Kind != "" && ev.Kind() != o.Kind {
		return false
	}
	if !o.Account.IsNil() && !ev.Involves(o.Account) {
		return false
	}
	return true
}
