// Package validate provides stateless request-argument checkers used by the
// API handlers before any state is touched.
package validate

import (
	"fmt"
	"math/big"
	"strings"
)

// mistPerUnit converts whole settlement units to MIST (1e9).
var mistPerUnit = big.NewFloat(1_000_000_000)

// IsSettlementAddress reports whether addr is a well-formed settlement
// address: 0x followed by 64 hex characters (32 bytes).
func IsSettlementAddress(addr string) bool {
	s := strings.TrimSpace(addr)
	if !strings.HasPrefix(s, "0x") {
		return false
	}
	hex := s[2:]
	if len(hex) != 64 {
		return false
	}
	for _, c := range hex {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// IsObjectID reports whether id is a well-formed ledger object ID.
// Object IDs share the settlement address format.
func IsObjectID(id string) bool {
	return IsSettlementAddress(id)
}

// SettlementAddress validates addr and returns a reason when it is rejected.
func SettlementAddress(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return fmt.Errorf("settlement address is required")
	}
	if !IsSettlementAddress(addr) {
		return fmt.Errorf("invalid settlement address format (expected 0x + 64 hex)")
	}
	return nil
}

// ProfileID validates a profile object ID.
func ProfileID(profileID string) error {
	if strings.TrimSpace(profileID) == "" {
		return fmt.Errorf("profileId is required")
	}
	if !IsObjectID(profileID) {
		return fmt.Errorf("invalid profileId (expected object ID: 0x + 64 hex)")
	}
	return nil
}

// Amount parses a payment amount and returns its value in MIST.
// A string containing a decimal point is treated as whole units and scaled
// by 1e9; anything else is taken as an integer MIST amount. The result must
// be positive.
func Amount(amount string) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return nil, fmt.Errorf("amount is required")
	}

	if strings.Contains(s, ".") {
		f, ok := new(big.Float).SetString(s)
		if !ok {
			return nil, fmt.Errorf("amount must be a number")
		}
		mist, _ := new(big.Float).Mul(f, mistPerUnit).Int(nil)
		if mist.Sign() <= 0 {
			return nil, fmt.Errorf("amount must be greater than 0")
		}
		return mist, nil
	}

	mist, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("amount must be a number")
	}
	if mist.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}
	return mist, nil
}
