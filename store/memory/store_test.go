package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	token "github.com/xraph/token"
	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
	"github.com/xraph/token/store"
	"github.com/xraph/token/types"
)

func chained(t *testing.T, ledger id.LedgerID, payloads ...event.Payload) []*event.Record {
	t.Helper()
	log := event.NewLog(ledger)
	evs := make([]*event.Event, 0, len(payloads))
	for _, p := range payloads {
		evs = append(evs, log.Append(p, time.Now()))
	}
	recs, err := event.ChainAll(event.Digest{}, evs)
	require.NoError(t, err)
	return recs
}

func TestAppendAndList(t *testing.T) {
	ctx := context.Background()
	s := New()
	ledger := id.NewLedgerID()
	a, b := id.NewAccountID(), id.NewAccountID()

	recs := chained(t, ledger,
		event.Transfer{To: a, Amount: types.NewAmount(10)},
		event.Transfer{From: a, To: b, Amount: types.NewAmount(4)},
		event.Paused{Account: a},
	)
	require.NoError(t, s.Append(ctx, recs))
	assert.Equal(t, 3, s.Len(ledger))

	all, err := s.List(ctx, store.ListOpts{LedgerID: ledger})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NoError(t, event.VerifyChain(event.Digest{}, all))

	transfers, err := s.List(ctx, store.ListOpts{LedgerID: ledger, Kind: event.KindTransfer})
	require.NoError(t, err)
	assert.Len(t, transfers, 2)

	forB, err := s.List(ctx, store.ListOpts{Account: b})
	require.NoError(t, err)
	require.Len(t, forB, 1)
	assert.Equal(t, uint64(2), forB[0].Event.Sequence)

	page, err := s.List(ctx, store.ListOpts{LedgerID: ledger, AfterSequence: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, uint64(2), page[0].Event.Sequence)

	last, err := s.Last(ctx, ledger)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), last.Event.Sequence)
}

func TestAppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	ledger := id.NewLedgerID()
	recs := chained(t, ledger, event.Paused{Account: id.NewAccountID()}, event.Unpaused{Account: id.NewAccountID()})

	require.NoError(t, s.Append(ctx, recs[:1]))
	require.NoError(t, s.Append(ctx, recs))
	assert.Equal(t, 2, s.Len(ledger))
}

func TestAppendRejectsGap(t *testing.T) {
	ctx := context.Background()
	s := New()
	ledger := id.NewLedgerID()
	recs := chained(t, ledger, event.Paused{Account: id.NewAccountID()}, event.Unpaused{Account: id.NewAccountID()})

	err := s.Append(ctx, recs[1:])
	require.ErrorIs(t, err, token.ErrJournalCorrupt)
	assert.Equal(t, 0, s.Len(ledger))
}

func TestListAcrossLedgers(t *testing.T) {
	ctx := context.Background()
	s := New()
	l1, l2 := id.NewLedgerID(), id.NewLedgerID()
	a := id.NewAccountID()

	require.NoError(t, s.Append(ctx, chained(t, l1, event.Paused{Account: a}, event.Unpaused{Account: a})))
	require.NoError(t, s.Append(ctx, chained(t, l2, event.Paused{Account: a})))

	all, err := s.List(ctx, store.ListOpts{Account: a})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1].Event, all[i].Event
		if prev.LedgerID.Equal(cur.LedgerID) {
			assert.Less(t, prev.Sequence, cur.Sequence)
		} else {
			assert.Less(t, prev.LedgerID.String(), cur.LedgerID.String())
		}
	}
}

func TestLastNotFound(t *testing.T) {
	_, err := New().Last(context.Background(), id.NewLedgerID())
	require.True(t, token.IsNotFound(err))
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.Ping(ctx), token.ErrStoreClosed)
	require.ErrorIs(t, s.Append(ctx, nil), token.ErrStoreClosed)
	_, err := s.List(ctx, store.ListOpts{})
	require.ErrorIs(t, err, token.ErrStoreClosed)
	_, err = s.Last(ctx, id.NewLedgerID())
	require.ErrorIs(t, err, token.ErrStoreClosed)
}
