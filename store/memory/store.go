// Package memory provides an in-process journal store, intended for tests
// and single-process deployments that do not need durability.
package memory

import (
	"context"
	"sort"
	"sync"

	token "github.com/xraph/token"
	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
	"github.com/xraph/token/store"
)

// Ensure Store implements store.Store at compile time.
var _ store.Store = (*Store)(nil)

// Store keeps journal records per ledger in sequence order.
type Store struct {
	mu      sync.RWMutex
	ledgers map[string][]*event.Record
	closed  bool
}

// New creates an empty memory store.
func New() *Store {
	return &Store{
		ledgers: make(map[string][]*event.Record),
	}
}

// Append implements store.Store. Records whose sequence is already stored
// are skipped; a record that would leave a gap is rejected.
func (s *Store) Append(_ context.Context, records []*event.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return token.ErrStoreClosed
	}

	for _, rec := range records {
		if rec.Event == nil {
			return token.ErrJournalCorrupt
		}
		key := rec.Event.LedgerID.String()
		existing := s.ledgers[key]
		next := uint64(len(existing)) + 1

		switch {
		case rec.Event.Sequence < next:
			continue
		case rec.Event.Sequence > next:
			return token.ErrJournalCorrupt
		}

		cp := *rec
		s.ledgers[key] = append(existing, &cp)
	}
	return nil
}

// List implements store.Store.
func (s *Store) List(_ context.Context, opts store.ListOpts) ([]*event.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, token.ErrStoreClosed
	}

	var candidates [][]*event.Record
	if !opts.LedgerID.IsNil() {
		candidates = append(candidates, s.ledgers[opts.LedgerID.String()])
	} else {
		for _, recs := range s.ledgers {
			candidates = append(candidates, recs)
		}
	}

	result := make([]*event.Record, 0)
	for _, recs := range candidates {
		for _, rec := range recs {
			if !opts.Match(rec) {
				continue
			}
			cp := *rec
			result = append(result, &cp)
		}
	}

	sortRecords(result)

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// Last implements store.Store.
func (s *Store) Last(_ context.Context, ledgerID id.LedgerID) (*event.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, token.ErrStoreClosed
	}

	recs := s.ledgers[ledgerID.String()]
	if len(recs) == 0 {
		return nil, token.ErrNotFound
	}
	cp := *recs[len(recs)-1]
	return &cp, nil
}

// Migrate implements store.Store. It is a no-op.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping implements store.Store.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return token.ErrStoreClosed
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Len returns the number of records held for a ledger.
func (s *Store) Len(ledgerID id.LedgerID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ledgers[ledgerID.String()])
}

// sortRecords orders records by ledger, then sequence.
func sortRecords(recs []*event.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].Event, recs[j].Event
		if al, bl := a.LedgerID.String(), b.LedgerID.String(); al != bl {
			return al < bl
		}
		return a.Sequence < b.Sequence
	})
}
