// Package ticket implements sequential ticket-code allocation. Codes are
// drawn from the bounded sequence A000..Z999; the successor function is
// pure, and all persistence goes through the counter store so issuance
// stays collision-free under concurrent confirmations.
package ticket

import (
	"errors"
	"fmt"
)

// ErrInvalidCodeFormat is returned when a code does not match
// <letter A-Z><three digits>. Malformed counter state fails loudly
// instead of silently producing garbage successors.
var ErrInvalidCodeFormat = errors.New("invalid ticket code format")

// NextCode returns the successor of a ticket code. The number part
// advances first; past 999 it resets to 000 and the letter advances.
// After Z999 the sequence wraps to A000 (capacity is assumed to never be
// reached; the issuer logs loudly when the wrap happens).
func NextCode(code string) (string, error) {
	if len(code) != 4 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCodeFormat, code)
	}
	letter := code[0]
	if letter < 'A' || letter > 'Z' {
		return "", fmt.Errorf("%w: %q", ErrInvalidCodeFormat, code)
	}
	num := 0
	for i := 1; i < 4; i++ {
		d := code[i]
		if d < '0' || d > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCodeFormat, code)
		}
		num = num*10 + int(d-'0')
	}

	num++
	if num <= 999 {
		return fmt.Sprintf("%c%03d", letter, num), nil
	}
	if letter == 'Z' {
		return "A000", nil
	}
	return fmt.Sprintf("%c%03d", letter+1, 0), nil
}
