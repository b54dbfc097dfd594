package keys

import (
	"crypto/ed25519"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"edkey/internal/crypto"
)

// publicDERPrefix is the SubjectPublicKeyInfo header for a raw Ed25519 key.
const publicDERPrefix = "302a300506032b6570032100"

var publicDERPrefixBytes = mustDecodeHex(publicDERPrefix)

// PublicKey is a 32-byte Ed25519 public key.
type PublicKey struct {
	key ed25519.PublicKey
}

// PublicKeyFromBytes accepts 32 raw bytes or a 44-byte DER
// SubjectPublicKeyInfo.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	switch len(b) {
	case crypto.PublicKeySize:
		return &PublicKey{key: append(ed25519.PublicKey(nil), b...)}, nil
	case len(publicDERPrefixBytes) + crypto.PublicKeySize:
		if subtle.ConstantTimeCompare(b[:len(publicDERPrefixBytes)], publicDERPrefixBytes) != 1 {
			return nil, fmt.Errorf("%w: public key DER prefix mismatch", ErrBadKey)
		}
		return &PublicKey{key: append(ed25519.PublicKey(nil), b[len(publicDERPrefixBytes):]...)}, nil
	default:
		return nil, fmt.Errorf("%w: public key of %d bytes", ErrBadKey, len(b))
	}
}

// PublicKeyFromString accepts 64 hex characters, or 88 starting with the
// DER prefix.
func PublicKeyFromString(s string) (*PublicKey, error) {
	s = trimHex(s)
	switch len(s) {
	case 2 * crypto.PublicKeySize, len(publicDERPrefix) + 2*crypto.PublicKeySize:
	default:
		return nil, fmt.Errorf("%w: public key string of %d characters", ErrBadKey, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	return PublicKeyFromBytes(b)
}

// Bytes returns a copy of the 32 raw key bytes.
func (k *PublicKey) Bytes() []byte {
	return append([]byte(nil), k.key...)
}

// BytesDER returns the DER SubjectPublicKeyInfo encoding.
func (k *PublicKey) BytesDER() []byte {
	return append(append([]byte(nil), publicDERPrefixBytes...), k.key...)
}

// String returns the hex DER encoding.
func (k *PublicKey) String() string {
	return publicDERPrefix + hex.EncodeToString(k.key)
}

// StringRaw returns the hex of the 32 raw bytes.
func (k *PublicKey) StringRaw() string {
	return hex.EncodeToString(k.key)
}

// Equal reports whether k and other hold the same key.
func (k *PublicKey) Equal(other *PublicKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	return subtle.ConstantTimeCompare(k.key, other.key) == 1
}

// Verify reports whether sig is a valid signature of msg by k.
func (k *PublicKey) Verify(msg, sig []byte) bool {
	return crypto.Verify(k.key, msg, sig)
}

// Fingerprint returns a short display fingerprint of the key.
func (k *PublicKey) Fingerprint() string {
	return crypto.Fingerprint(k.key)
}

func trimHex(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	return s
}

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
