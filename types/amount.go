// Package types provides common value types used across the token ledger.
package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Amount is an unsigned 256-bit quantity of the ledger's unit of account,
// expressed in its smallest indivisible unit. All arithmetic is checked:
// operations report overflow or underflow instead of wrapping.
//
// The zero value is a valid zero amount.
type Amount struct {
	v uint256.Int
}

// NewAmount creates an Amount from a uint64.
func NewAmount(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// ZeroAmount returns the zero Amount.
func ZeroAmount() Amount { return Amount{} }

// MaxAmount returns the largest representable Amount (2^256 - 1).
func MaxAmount() Amount {
	var a Amount
	a.v.SetAllOne()
	return a
}

// ParseAmount parses a base-10 string of digits. Values wider than 256 bits
// are rejected.
func ParseAmount(s string) (Amount, error) {
	digits, err := normalizeDigits(s)
	if err != nil {
		return Amount{}, err
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return Amount{}, fmt.Errorf("types: parse amount %q: %w", s, err)
	}
	return Amount{v: *v}, nil
}

// MustParseAmount is like ParseAmount but panics on error. Use for constants.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseUnits parses a human decimal such as "10000" or "1.5" into the smallest
// unit for a token with the given number of decimals. ParseUnits("1.5", 18)
// yields 1500000000000000000. Fractions finer than the decimals are rejected.
func ParseUnits(s string, decimals uint8) (Amount, error) {
	whole, frac, hasPoint := strings.Cut(s, ".")
	if hasPoint && frac == "" {
		return Amount{}, fmt.Errorf("types: parse units %q: missing fraction digits", s)
	}
	if len(frac) > int(decimals) {
		return Amount{}, fmt.Errorf("types: parse units %q: more than %d fraction digits", s, decimals)
	}
	if whole == "" {
		whole = "0"
	}
	return ParseAmount(whole + frac + strings.Repeat("0", int(decimals)-len(frac)))
}

// AmountFromBytes32 decodes a big-endian 32-byte representation.
func AmountFromBytes32(b []byte) (Amount, error) {
	if len(b) != 32 {
		return Amount{}, fmt.Errorf("types: amount bytes: want 32, got %d", len(b))
	}
	var a Amount
	a.v.SetBytes32(b)
	return a, nil
}

// Arithmetic

// Add returns a+b and whether the addition overflowed 256 bits. On overflow
// the returned Amount is meaningless and must not be stored.
func (a Amount) Add(b Amount) (Amount, bool) {
	var out Amount
	_, overflow := out.v.AddOverflow(&a.v, &b.v)
	return out, overflow
}

// Sub returns a-b and whether the subtraction underflowed below zero.
func (a Amount) Sub(b Amount) (Amount, bool) {
	var out Amount
	_, underflow := out.v.SubOverflow(&a.v, &b.v)
	return out, underflow
}

// Comparison methods

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }

// Equal reports whether a == b.
func (a Amount) Equal(b Amount) bool { return a.v.Eq(&b.v) }

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool { return a.v.Lt(&b.v) }

// GreaterThan reports whether a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.v.Gt(&b.v) }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.v.IsZero() }

// Formatting methods

// String returns the base-10 representation.
func (a Amount) String() string { return a.v.Dec() }

// Bytes32 returns the big-endian 32-byte representation.
func (a Amount) Bytes32() [32]byte { return a.v.Bytes32() }

// FormatUnits renders the amount in whole units for a token with the given
// decimals, trimming trailing fractional zeros: 1500000000000000000 with 18
// decimals is "1.5", 10^22 is "10000".
func (a Amount) FormatUnits(decimals uint8) string {
	s := a.v.Dec()
	if decimals == 0 {
		return s
	}
	d := int(decimals)
	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}
	whole, frac := s[:len(s)-d], strings.TrimRight(s[len(s)-d:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// MarshalText implements encoding.TextMarshaler using the decimal form.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.v.Dec()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(data []byte) error {
	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON implements json.Marshaler. Amounts are encoded as decimal
// strings since they exceed the precision of JSON numbers.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.v.Dec())
}

// UnmarshalJSON implements json.Unmarshaler. Both quoted decimal strings and
// bare integer literals are accepted.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if numErr := json.Unmarshal(data, &n); numErr != nil {
			return fmt.Errorf("types: amount json: %w", err)
		}
		s = n.String()
	}
	return a.UnmarshalText([]byte(s))
}

// Sum adds all values and reports whether any intermediate sum overflowed.
func Sum(values ...Amount) (Amount, bool) {
	var total Amount
	for _, v := range values {
		next, overflow := total.Add(v)
		if overflow {
			return Amount{}, true
		}
		total = next
	}
	return total, false
}

// Helper functions

// normalizeDigits validates s as a run of ASCII digits and strips leading
// zeros, keeping a single "0" for zero.
func normalizeDigits(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("types: parse amount: empty string")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", fmt.Errorf("types: parse amount %q: invalid digit %q", s, s[i])
		}
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0", nil
	}
	return trimmed, nil
}
