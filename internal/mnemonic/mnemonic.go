// Package mnemonic parses and generates seed phrases.
//
// Word-list and checksum validation is delegated to go-bip39. Phrases of
// LegacyWordCount words come from the ledger's pre-BIP-39 scheme; they are
// accepted and flagged Legacy but not validated, since that scheme uses its
// own word list.
package mnemonic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"
)

// LegacyWordCount is the length of a legacy phrase.
const LegacyWordCount = 22

var (
	ErrEmpty           = errors.New("mnemonic is empty")
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	ErrWordCount       = errors.New("unsupported mnemonic word count")
)

// Mnemonic is an ordered sequence of normalized words.
type Mnemonic struct {
	Words  []string
	Legacy bool
}

// Parse normalizes phrase (NFKD, lower case, single spaces) and validates it.
func Parse(phrase string) (Mnemonic, error) {
	words := strings.Fields(strings.ToLower(norm.NFKD.String(phrase)))
	if len(words) == 0 {
		return Mnemonic{}, ErrEmpty
	}
	return FromWords(words)
}

// FromWords validates an already split word list.
func FromWords(words []string) (Mnemonic, error) {
	m := Mnemonic{Words: make([]string, len(words))}
	for i, w := range words {
		m.Words[i] = strings.ToLower(norm.NFKD.String(strings.TrimSpace(w)))
	}

	switch len(m.Words) {
	case LegacyWordCount:
		m.Legacy = true
		return m, nil
	case 12, 15, 18, 21, 24:
		if !bip39.IsMnemonicValid(m.String()) {
			return Mnemonic{}, ErrInvalidMnemonic
		}
		return m, nil
	default:
		return Mnemonic{}, fmt.Errorf("%w: %d", ErrWordCount, len(m.Words))
	}
}

// Generate returns a fresh 24-word phrase.
func Generate() (Mnemonic, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return Mnemonic{}, err
	}
	phrase, err := bip39.NewMnemonic(entropy)
	clear(entropy)
	if err != nil {
		return Mnemonic{}, err
	}
	return Parse(phrase)
}

// String joins the words with single spaces.
func (m Mnemonic) String() string {
	return strings.Join(m.Words, " ")
}

// Seed returns the 64-byte BIP-39 seed: PBKDF2-HMAC-SHA512 over the phrase,
// 2048 rounds, salt "mnemonic"+passphrase.
func (m Mnemonic) Seed(passphrase string) []byte {
	return bip39.NewSeed(m.String(), norm.NFKD.String(passphrase))
}
