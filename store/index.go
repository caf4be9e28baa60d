package store

import (
	"github.com/xraph/token/event"
)

// IndexFields are the queryable columns backends derive from an event.
// PartyA and PartyB are empty for the void account; Amount is empty for
// events that carry none.
type IndexFields struct {
	Kind   string
	PartyA string
	PartyB string
	Amount string
}

// Index extracts the indexed columns of ev.
func Index(ev *event.Event) IndexFields {
	f := IndexFields{Kind: string(ev.Kind())}
	switch p := ev.Payload.(type) {
	case event.Transfer:
		f.PartyA, f.PartyB, f.Amount = p.From.String(), p.To.String(), p.Amount.String()
	case event.Approval:
		f.PartyA, f.PartyB, f.Amount = p.Owner.String(), p.Spender.String(), p.Amount.String()
	case event.Paused:
		f.PartyA = p.Account.String()
	case event.Unpaused:
		f.PartyA = p.Account.String()
	case event.OwnershipTransferred:
		f.PartyA, f.PartyB = p.Previous.String(), p.New.String()
	}
	return f
}

// DecodeRecord rebuilds a record from its stored columns. The payload is the
// source of truth; the event is decoded from it.
func DecodeRecord(payload []byte, prevDigest, digest string) (*event.Record, error) {
	ev, err := event.Decode(payload)
	if err != nil {
		return nil, err
	}
	prev, err := event.ParseDigest(prevDigest)
	if err != nil {
		return nil, err
	}
	d, err := event.ParseDigest(digest)
	if err != nil {
		return nil, err
	}
	return &event.Record{
		Event:      ev,
		Payload:    payload,
		PrevDigest: prev,
		Digest:     d,
	}, nil
}
