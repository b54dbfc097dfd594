package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"io"
)

const (
	SeedSize      = ed25519.SeedSize
	SecretSize    = ed25519.PrivateKeySize
	PublicKeySize = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
)

var (
	ErrInvalidSeedSize   = errors.New("invalid ed25519 seed size")
	ErrInvalidSecretSize = errors.New("invalid ed25519 secret size")
	// ErrPublicMismatch is returned when the public half of a 64-byte secret
	// is not the key derived from its seed half.
	ErrPublicMismatch = errors.New("ed25519 public half does not match seed")
)

// KeyPairFromSeed derives an Ed25519 keypair from a 32-byte seed.
func KeyPairFromSeed(seed []byte) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	if len(seed) != SeedSize {
		return nil, nil, ErrInvalidSeedSize
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return priv, pub, nil
}

// KeyPairFromSecret rebuilds a keypair from seed(32) || public(32).
//
// The public half is recomputed from the seed and must match.
func KeyPairFromSecret(secret []byte) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	if len(secret) != SecretSize {
		return nil, nil, ErrInvalidSecretSize
	}
	priv, pub, err := KeyPairFromSeed(secret[:SeedSize])
	if err != nil {
		return nil, nil, err
	}
	if subtle.ConstantTimeCompare(pub, secret[SeedSize:]) != 1 {
		Wipe(priv)
		return nil, nil, ErrPublicMismatch
	}
	return priv, pub, nil
}

// GenerateSeed reads a fresh 32-byte seed from rand (crypto/rand when nil).
func GenerateSeed(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, err
	}
	return seed, nil
}

// Sign signs msg with priv and returns the signature.
func Sign(priv ed25519.PrivateKey, msg []byte) []byte {
	return ed25519.Sign(priv, msg)
}

// Verify verifies sig over msg with pub.
func Verify(pub ed25519.PublicKey, msg, sig []byte) bool {
	if len(pub) != PublicKeySize || len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}
