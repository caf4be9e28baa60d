package event

import (
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ErrChainBroken is returned when journal records fail verification.
var ErrChainBroken = errors.New("event: journal chain broken")

// Digest is a blake2b-256 hash linking a record to its predecessor.
type Digest [32]byte

// String returns the lowercase hex form.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d is the genesis digest.
func (d Digest) IsZero() bool { return d == Digest{} }

// ParseDigest parses a hex digest. The empty string is the zero digest.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	if s == "" {
		return d, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("event: parse digest: %w", err)
	}
	if len(b) != len(d) {
		return d, fmt.Errorf("event: parse digest: want %d bytes, got %d", len(d), len(b))
	}
	copy(d[:], b)
	return d, nil
}

// Record is an event prepared for the journal: its canonical encoding plus
// the hash chain position. Digest = blake2b-256(PrevDigest || Payload).
type Record struct {
	Event      *Event
	Payload    []byte
	PrevDigest Digest
	Digest     Digest
}

// Chain encodes ev and links it after prev.
func Chain(prev Digest, ev *Event) (*Record, error) {
	payload, err := Encode(ev)
	if err != nil {
		return nil, err
	}
	return &Record{
		Event:      ev,
		Payload:    payload,
		PrevDigest: prev,
		Digest:     digest(prev, payload),
	}, nil
}

// ChainAll links a contiguous batch of events after prev.
func ChainAll(prev Digest, events []*Event) ([]*Record, error) {
	out := make([]*Record, 0, len(events))
	for _, ev := range events {
		rec, err := Chain(prev, ev)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
		prev = rec.Digest
	}
	return out, nil
}

// VerifyChain checks that records form an unbroken chain starting after the
// given digest: sequences are contiguous, each record links to its
// predecessor, each digest matches its payload, and each payload decodes to
// the event it claims to hold.
func VerifyChain(start Digest, records []*Record) error {
	prev := start
	var prevSeq uint64
	for i, rec := range records {
		if rec.PrevDigest != prev {
			return fmt.Errorf("%w: record %d links to %s, want %s", ErrChainBroken, i, rec.PrevDigest, prev)
		}
		if got := digest(rec.PrevDigest, rec.Payload); got != rec.Digest {
			return fmt.Errorf("%w: record %d digest mismatch", ErrChainBroken, i)
		}
		decoded, err := Decode(rec.Payload)
		if err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrChainBroken, i, err)
		}
		if rec.Event != nil && decoded.Sequence != rec.Event.Sequence {
			return fmt.Errorf("%w: record %d payload sequence %d, want %d", ErrChainBroken, i, decoded.Sequence, rec.Event.Sequence)
		}
		if i > 0 && decoded.Sequence != prevSeq+1 {
			return fmt.Errorf("%w: sequence gap after %d", ErrChainBroken, prevSeq)
		}
		prevSeq = decoded.Sequence
		prev = rec.Digest
	}
	return nil
}

func digest(prev Digest, payload []byte) Digest {
	h, _ := blake2b.New256(nil) //nolint:errcheck // unkeyed New256 cannot fail
	h.Write(prev[:])
	h.Write(payload)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}
