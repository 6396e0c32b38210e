package mintr

import (
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// MaxDecimals is the largest mint precision mintr creates.
const MaxDecimals = 9

// ToRaw converts a whole-token amount to raw units: floor(amount * 10^decimals).
// The arithmetic is decimal, so "1000" at 0 decimals is exactly 1000 and
// "0.1" at 9 decimals is exactly 100000000.
func ToRaw(amount string, decimals uint8) (uint64, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0, invalid("amount", "required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, invalid("amount", "not a number: %q", s)
	}
	if d.IsNegative() {
		return 0, invalid("amount", "must be positive")
	}

	raw := d.Shift(int32(decimals)).Floor()
	if raw.IsZero() {
		return 0, invalid("amount", "%s is below the smallest unit (%d decimals)", s, decimals)
	}
	bi := raw.BigInt()
	if !bi.IsUint64() {
		return 0, invalid("amount", "%s overflows a token amount", s)
	}
	return bi.Uint64(), nil
}

// CheckAmount rejects amounts that can never be valid, before the mint's
// decimals are known.
func CheckAmount(amount string) error {
	s := strings.TrimSpace(amount)
	if s == "" {
		return invalid("amount", "required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return invalid("amount", "not a number: %q", s)
	}
	if !d.IsPositive() {
		return invalid("amount", "must be positive")
	}
	return nil
}

// FormatRaw renders raw units as a whole-token string without trailing zeros.
func FormatRaw(raw uint64, decimals uint8) string {
	return decimal.NewFromUint64(raw).Shift(-int32(decimals)).String()
}

func ParseAddress(field, s string) (solana.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return solana.PublicKey{}, invalid(field, "required")
	}
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, invalid(field, "malformed address %q", s)
	}
	return pk, nil
}

func ParseDecimals(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, invalid("decimals", "required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(MaxDecimals)) {
		return 0, invalid("decimals", "must be an integer between 0 and %d", MaxDecimals)
	}
	return uint8(d.IntPart()), nil
}

// Short truncates an address for notifications.
func Short(pk solana.PublicKey) string {
	return pk.Short(4)
}
