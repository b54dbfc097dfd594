package keyring

import (
	"errors"
	"fmt"
	"unicode"
)

// DefaultMinPassphraseLength is the minimum passphrase length when none is
// configured.
const DefaultMinPassphraseLength = 12

// ErrWeakPassphrase is returned when a passphrase fails the strength policy.
var ErrWeakPassphrase = errors.New("passphrase is too weak")

// Policy is the passphrase strength policy for sealing keys.
type Policy struct {
	MinLength int
}

// Check returns ErrWeakPassphrase, with the rule that failed, unless
// passphrase is at least MinLength characters and mixes upper case, lower
// case, digits and symbols.
func (p Policy) Check(passphrase string) error {
	minLen := p.MinLength
	if minLen <= 0 {
		minLen = DefaultMinPassphraseLength
	}
	if n := len([]rune(passphrase)); n < minLen {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassphrase, minLen)
	}
	if !isSecurePassphrase(passphrase) {
		return fmt.Errorf("%w: must include upper, lower, number, and symbol", ErrWeakPassphrase)
	}
	return nil
}

// isSecurePassphrase checks the character-class mix.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}
