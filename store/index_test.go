package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
	"github.com/xraph/token/store"
	"github.com/xraph/token/types"
)

func TestIndex(t *testing.T) {
	a, b := id.NewAccountID(), id.NewAccountID()
	log := event.NewLog(id.NewLedgerID())
	now := time.Now()

	tests := []struct {
		name    string
		payload event.Payload
		want    store.IndexFields
	}{
		{
			"mint",
			event.Transfer{From: id.Nil, To: a, Amount: types.NewAmount(7)},
			store.IndexFields{Kind: "transfer", PartyA: "", PartyB: a.String(), Amount: "7"},
		},
		{
			"approval",
			event.Approval{Owner: a, Spender: b, Amount: types.NewAmount(3)},
			store.IndexFields{Kind: "approval", PartyA: a.String(), PartyB: b.String(), Amount: "3"},
		},
		{
			"paused",
			event.Paused{Account: a},
			store.IndexFields{Kind: "paused", PartyA: a.String()},
		},
		{
			"ownership",
			event.OwnershipTransferred{Previous: a, New: b},
			store.IndexFields{Kind: "ownership_transferred", PartyA: a.String(), PartyB: b.String()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.Index(log.Append(tt.payload, now)))
		})
	}
}

func TestListOptsMatch(t *testing.T) {
	ledger := id.NewLedgerID()
	a, b := id.NewAccountID(), id.NewAccountID()
	log := event.NewLog(ledger)
	now := time.Now()

	rec := &event.Record{Event: log.Append(event.Approval{Owner: a, Spender: b, Amount: types.NewAmount(1)}, now)}

	assert.True(t, store.ListOpts{}.Match(rec))
	assert.True(t, store.ListOpts{LedgerID: ledger, Account: b, Kind: event.KindApproval}.Match(rec))
	assert.False(t, store.ListOpts{LedgerID: id.NewLedgerID()}.Match(rec))
	assert.False(t, store.ListOpts{AfterSequence: 1}.Match(rec))
	assert.False(t, store.ListOpts{Kind: event.KindTransfer}.Match(rec))
	assert.False(t, store.ListOpts{Account: id.NewAccountID()}.Match(rec))
	assert.False(t, store.ListOpts{}.Match(&event.Record{}))
}

func TestDecodeRecord(t *testing.T) {
	log := event.NewLog(id.NewLedgerID())
	ev := log.Append(event.Paused{Account: id.NewAccountID()}, time.Now())
	rec, err := event.Chain(event.Digest{}, ev)
	require.NoError(t, err)

	got, err := store.DecodeRecord(rec.Payload, rec.PrevDigest.String(), rec.Digest.String())
	require.NoError(t, err)
	assert.Equal(t, rec.Digest, got.Digest)
	assert.True(t, got.PrevDigest.IsZero())
	assert.Equal(t, ev.Sequence, got.Event.Sequence)
	assert.True(t, got.Event.ID.Equal(ev.ID))
	require.NoError(t, event.VerifyChain(event.Digest{}, []*event.Record{got}))

	_, err = store.DecodeRecord(rec.Payload, "zz", rec.Digest.String())
	require.Error(t, err)

	_, err = store.DecodeRecord([]byte{0xff}, "", "")
	require.Error(t, err)
}
