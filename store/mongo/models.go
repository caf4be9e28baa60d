package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/token/event"
	"github.com/xraph/token/store"
)

// eventModel is one journal record. Parties holds every non-void account the
// event concerns so account queries hit a single multikey index.
type eventModel struct {
	grove.BaseModel `grove:"table:token_events"`

	EventID    string    `grove:"event_id,pk"  bson:"_id"`
	LedgerID   string    `grove:"ledger_id"    bson:"ledger_id"`
	Sequence   int64     `grove:"sequence"     bson:"sequence"`
	Kind       string    `grove:"kind"         bson:"kind"`
	PartyA     string    `grove:"party_a"      bson:"party_a,omitempty"`
	PartyB     string    `grove:"party_b"      bson:"party_b,omitempty"`
	Parties    []string  `grove:"parties"      bson:"parties"`
	Amount     string    `grove:"amount"       bson:"amount,omitempty"`
	Payload    []byte    `grove:"payload"      bson:"payload"`
	PrevDigest string    `grove:"prev_digest"  bson:"prev_digest"`
	Digest     string    `grove:"digest"       bson:"digest"`
	Timestamp  time.Time `grove:"timestamp"    bson:"timestamp"`
	CreatedAt  time.Time `grove:"created_at"   bson:"created_at"`
}

func toEventModel(rec *event.Record) *eventModel {
	f := store.Index(rec.Event)
	parties := make([]string, 0, 2)
	for _, p := range rec.Event.Payload.Parties() {
		parties = append(parties, p.String())
	}
	return &eventModel{
		EventID:    rec.Event.ID.String(),
		LedgerID:   rec.Event.LedgerID.String(),
		Sequence:   int64(rec.Event.Sequence), //nolint:gosec // sequences stay far below MaxInt64
		Kind:       f.Kind,
		PartyA:     f.PartyA,
		PartyB:     f.PartyB,
		Parties:    parties,
		Amount:     f.Amount,
		Payload:    rec.Payload,
		PrevDigest: rec.PrevDigest.String(),
		Digest:     rec.Digest.String(),
		Timestamp:  rec.Event.Timestamp,
		CreatedAt:  time.Now().UTC(),
	}
}

func fromEventModel(m *eventModel) (*event.Record, error) {
	return store.DecodeRecord(m.Payload, m.PrevDigest, m.Digest)
}
