package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/xraph/token/id"
	"github.com/xraph/token/types"
)

// ErrUnknownKind is returned when decoding an event of an unrecognized kind.
var ErrUnknownKind = errors.New("event: unknown kind")

// wireEvent is the canonical CBOR layout. The array form keeps the encoding
// independent of field names.
type wireEvent struct {
	_        struct{} `cbor:",toarray"`
	ID       string
	LedgerID string
	Sequence uint64
	UnixNano int64
	Kind     string
	A        string
	B        string
	Amount   []byte
}

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("event: cbor enc mode: %v", err))
	}
	return em
}

// Encode returns the deterministic CBOR encoding of ev. Equal events always
// encode to identical bytes, which is what the journal hash chain relies on.
func Encode(ev *Event) ([]byte, error) {
	w := wireEvent{
		ID:       ev.ID.String(),
		LedgerID: ev.LedgerID.String(),
		Sequence: ev.Sequence,
		UnixNano: ev.Timestamp.UnixNano(),
	}

	var amount *types.Amount
	switch p := ev.Payload.(type) {
	case Transfer:
		w.Kind, w.A, w.B, amount = string(KindTransfer), p.From.String(), p.To.String(), &p.Amount
	case Approval:
		w.Kind, w.A, w.B, amount = string(KindApproval), p.Owner.String(), p.Spender.String(), &p.Amount
	case Paused:
		w.Kind, w.A = string(KindPaused), p.Account.String()
	case Unpaused:
		w.Kind, w.A = string(KindUnpaused), p.Account.String()
	case OwnershipTransferred:
		w.Kind, w.A, w.B = string(KindOwnershipTransferred), p.Previous.String(), p.New.String()
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, ev.Payload)
	}
	if amount != nil {
		b := amount.Bytes32()
		w.Amount = b[:]
	}

	return encMode.Marshal(w)
}

// Decode parses an encoding produced by Encode.
func Decode(data []byte) (*Event, error) {
	var w wireEvent
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("event: decode: %w", err)
	}

	evID, err := id.ParseEventID(w.ID)
	if err != nil {
		return nil, fmt.Errorf("event: decode: %w", err)
	}
	ledgerID, err := id.ParseLedgerID(w.LedgerID)
	if err != nil {
		return nil, fmt.Errorf("event: decode: %w", err)
	}
	a, err := id.ParseOptional(w.A)
	if err != nil {
		return nil, fmt.Errorf("event: decode: %w", err)
	}
	b, err := id.ParseOptional(w.B)
	if err != nil {
		return nil, fmt.Errorf("event: decode: %w", err)
	}

	ev := &Event{
		ID:        evID,
		LedgerID:  ledgerID,
		Sequence:  w.Sequence,
		Timestamp: time.Unix(0, w.UnixNano).UTC(),
	}

	switch Kind(w.Kind) {
	case KindTransfer, KindApproval:
		amount, err := types.AmountFromBytes32(w.Amount)
		if err != nil {
			return nil, fmt.Errorf("event: decode: %w", err)
		}
		if Kind(w.Kind) == KindTransfer {
			ev.Payload = Transfer{From: a, To: b, Amount: amount}
		} else {
			ev.Payload = Approval{Owner: a, Spender: b, Amount: amount}
		}
	case KindPaused:
		ev.Payload = Paused{Account: a}
	case KindUnpaused:
		ev.Payload = Unpaused{Account: a}
	case KindOwnershipTransferred:
		ev.Payload = OwnershipTransferred{Previous: a, New: b}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, w.Kind)
	}

	return ev, nil
}
