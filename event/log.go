package event

import (
	"time"

	"github.com/xraph/token/id"
)

// Log is the append-only, gap-free event sequence of a single ledger.
//
// Log does no locking of its own. The owning ledger appends under its write
// lock and reads under its read lock.
type Log struct {
	ledgerID id.LedgerID
	events   []*Event
}

// NewLog creates an empty log for the given ledger.
func NewLog(ledgerID id.LedgerID) *Log {
	return &Log{ledgerID: ledgerID}
}

// Append sequences payload as the next event and returns a copy of it.
func (l *Log) Append(p Payload, at time.Time) *Event {
	ev := &Event{
		ID:        id.NewEventID(),
		LedgerID:  l.ledgerID,
		Sequence:  uint64(len(l.events)) + 1,
		Timestamp: at.UTC(),
		Payload:   p,
	}
	l.events = append(l.events, ev)

	out := *ev
	return &out
}

// Since returns up to limit events with a sequence greater than after, in
// sequence order. A limit of zero or less returns all of them.
func (l *Log) Since(after uint64, limit int) []*Event {
	if after >= uint64(len(l.events)) {
		return nil
	}
	tail := l.events[after:]
	if limit > 0 && len(tail) > limit {
		tail = tail[:limit]
	}

	out := make([]*Event, len(tail))
	for i, ev := range tail {
		cp := *ev
		out[i] = &cp
	}
	return out
}

// LastSequence returns the sequence of the newest event, or zero if empty.
func (l *Log) LastSequence() uint64 {
	return uint64(len(l.events))
}
