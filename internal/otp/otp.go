// Package otp generates the 6-digit one-time codes used for email
// verification.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// Length is the number of decimal digits in a code.
const Length = 6

var codeSpace = big.NewInt(1_000_000)

var codeShape = regexp.MustCompile(`^\d{6}$`)

// New returns a uniformly random code in 000000-999999, rendered as exactly
// six digits. Leading zeros are kept.
func New() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ValidShape reports whether s looks like a code: exactly six ASCII digits.
func ValidShape(s string) bool {
	return codeShape.MatchString(s)
}
