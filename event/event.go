// Package event defines the observable events a token ledger emits, the
// in-memory log that orders them, and the deterministic encoding and hash
// chaining used when they are journaled for indexing and audit.
package event

import (
	"time"

	"github.com/xraph/token/id"
	"github.com/xraph/token/types"
)

// Kind names an event type.
type Kind string

const (
	KindTransfer             Kind = "transfer"
	KindApproval             Kind = "approval"
	KindPaused               Kind = "paused"
	KindUnpaused             Kind = "unpaused"
	KindOwnershipTransferred Kind = "ownership_transferred"
)

// Payload is the kind-specific body of an event.
type Payload interface {
	Kind() Kind
	// Parties returns the non-void accounts the event concerns, used for
	// per-account journal queries.
	Parties() []id.AccountID
}

// Transfer records value moving between accounts. A mint is a Transfer whose
// From is id.Nil.
type Transfer struct {
	From   id.AccountID `json:"from"`
	To     id.AccountID `json:"to"`
	Amount types.Amount `json:"amount"`
}

// Approval records an owner setting a spender's allowance.
type Approval struct {
	Owner   id.AccountID `json:"owner"`
	Spender id.AccountID `json:"spender"`
	Amount  types.Amount `json:"amount"`
}

// Paused records the administrator halting transfers.
type Paused struct {
	Account id.AccountID `json:"account"`
}

// Unpaused records the administrator resuming transfers.
type Unpaused struct {
	Account id.AccountID `json:"account"`
}

// OwnershipTransferred records the administrator role changing hands.
type OwnershipTransferred struct {
	Previous id.AccountID `json:"previous_administrator"`
	New      id.AccountID `json:"new_administrator"`
}

func (Transfer) Kind() Kind             { return KindTransfer }
func (Approval) Kind() Kind             { return KindApproval }
func (Paused) Kind() Kind               { return KindPaused }
func (Unpaused) Kind() Kind             { return KindUnpaused }
func (OwnershipTransferred) Kind() Kind { return KindOwnershipTransferred }

func (p Transfer) Parties() []id.AccountID             { return parties(p.From, p.To) }
func (p Approval) Parties() []id.AccountID             { return parties(p.Owner, p.Spender) }
func (p Paused) Parties() []id.AccountID               { return parties(p.Account) }
func (p Unpaused) Parties() []id.AccountID             { return parties(p.Account) }
func (p OwnershipTransferred) Parties() []id.AccountID { return parties(p.Previous, p.New) }

// IsMint reports whether the transfer created new supply.
func (p Transfer) IsMint() bool { return p.From.IsNil() }

// Event is a committed, sequenced ledger event. Events are immutable once
// appended to a Log.
type Event struct {
	ID        id.EventID  `json:"id"`
	LedgerID  id.LedgerID `json:"ledger_id"`
	Sequence  uint64      `json:"sequence"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   Payload     `json:"payload"`
}

// Kind returns the payload kind.
func (e *Event) Kind() Kind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

// Involves reports whether account is one of the event's parties.
func (e *Event) Involves(account id.AccountID) bool {
	if e.Payload == nil {
		return false
	}
	for _, p := range e.Payload.Parties() {
		if p.Equal(account) {
			return true
		}
	}
	return false
}

func parties(ids ...id.AccountID) []id.AccountID {
	out := make([]id.AccountID, 0, len(ids))
	for _, i := range ids {
		if i.IsNil() {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen.Equal(i) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, i)
		}
	}
	return out
}
