package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/token/event"
	"github.com/xraph/token/store"
)

type eventModel struct {
	grove.BaseModel `grove:"table:token_events"`

	EventID    string    `grove:"event_id,pk"`
	LedgerID   string    `grove:"ledger_id"`
	Sequence   int64     `grove:"sequence"`
	Kind       string    `grove:"kind"`
	PartyA     string    `grove:"party_a"`
	PartyB     string    `grove:"party_b"`
	Amount     *string   `grove:"amount"`
	Payload    []byte    `grove:"payload"`
	PrevDigest string    `grove:"prev_digest"`
	Digest     string    `grove:"digest"`
	Timestamp  time.Time `grove:"timestamp"`
	CreatedAt  time.Time `grove:"created_at"`
}

func toEventModel(rec *event.Record) *eventModel {
	f := store.Index(rec.Event)
	m := &eventModel{
		EventID:    rec.Event.ID.String(),
		LedgerID:   rec.Event.LedgerID.String(),
		Sequence:   int64(rec.Event.Sequence), //nolint:gosec // sequences stay far below MaxInt64
		Kind:       f.Kind,
		PartyA:     f.PartyA,
		PartyB:     f.PartyB,
		Payload:    rec.Payload,
		PrevDigest: rec.PrevDigest.String(),
		Digest:     rec.Digest.String(),
		Timestamp:  rec.Event.Timestamp,
		CreatedAt:  time.Now().UTC(),
	}
	if f.Amount != "" {
		m.Amount = &f.Amount
	}
	return m
}

func fromEventModel(m *eventModel) (*event.Record, error) {
	return store.DecodeRecord(m.Payload, m.PrevDigest, m.Digest)
}
