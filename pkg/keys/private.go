package keys

import (
	"crypto/ed25519"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"edkey/internal/crypto"
	"edkey/internal/slip10"
)

// privateDERPrefix is the PrivateKeyInfo header (RFC 8410) that precedes a
// 32-byte Ed25519 seed.
const privateDERPrefix = "302e020100300506032b657004220420"

var privateDERPrefixBytes = mustDecodeHex(privateDERPrefix)

// PrivateKey is an Ed25519 private key, optionally carrying a SLIP-0010
// chain code. It is immutable and safe for concurrent use.
type PrivateKey struct {
	secret    ed25519.PrivateKey // seed || public
	public    *PublicKey
	chainCode *slip10.ChainCode

	der       func() string
	destroyed atomic.Bool
}

// inputShape is a recognized private key encoding.
type inputShape int

const (
	shapeUnknown inputShape = iota
	shapeSeed               // 32 bytes
	shapeDERSeed            // 16-byte DER prefix + 32-byte seed
	shapeSecret             // 32-byte seed + 32-byte public key
)

func shapeOf(n int) inputShape {
	switch n {
	case crypto.SeedSize:
		return shapeSeed
	case len(privateDERPrefixBytes) + crypto.SeedSize:
		return shapeDERSeed
	case crypto.SecretSize:
		return shapeSecret
	default:
		return shapeUnknown
	}
}

// Generate returns a new random key. It carries no chain code.
func Generate() (*PrivateKey, error) {
	seed, err := crypto.GenerateSeed(nil)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(seed)
	return fromSeed(seed, nil)
}

// FromBytes builds a key from a 32-byte seed, a 64-byte seed||public pair,
// or a 48-byte DER-prefixed seed. b is not retained.
func FromBytes(b []byte) (*PrivateKey, error) {
	switch shapeOf(len(b)) {
	case shapeSeed:
		return fromSeed(b, nil)
	case shapeDERSeed:
		prefix, seed := b[:len(privateDERPrefixBytes)], b[len(privateDERPrefixBytes):]
		if subtle.ConstantTimeCompare(prefix, privateDERPrefixBytes) != 1 {
			return nil, fmt.Errorf("%w: DER prefix mismatch", ErrBadKey)
		}
		return fromSeed(seed, nil)
	case shapeSecret:
		priv, pub, err := crypto.KeyPairFromSecret(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadKey, err)
		}
		return newPrivateKey(priv, pub, nil), nil
	default:
		return nil, fmt.Errorf("%w: private key of %d bytes", ErrBadKey, len(b))
	}
}

// FromString builds a key from 64 hex characters (seed), 128 (seed||public)
// or 96 starting with the DER prefix. A leading 0x is ignored.
func FromString(s string) (*PrivateKey, error) {
	s = trimHex(s)
	switch len(s) {
	case 2 * crypto.SeedSize, 2 * crypto.SecretSize:
	case len(privateDERPrefix) + 2*crypto.SeedSize:
		if !strings.EqualFold(s[:len(privateDERPrefix)], privateDERPrefix) {
			return nil, fmt.Errorf("%w: DER prefix mismatch", ErrBadKey)
		}
		s = s[len(privateDERPrefix):]
	default:
		return nil, fmt.Errorf("%w: private key string of %d characters", ErrBadKey, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	defer crypto.Wipe(b)
	return FromBytes(b)
}

func fromSeed(seed []byte, chain *slip10.ChainCode) (*PrivateKey, error) {
	priv, pub, err := crypto.KeyPairFromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadKey, err)
	}
	return newPrivateKey(priv, pub, chain), nil
}

func newPrivateKey(priv ed25519.PrivateKey, pub ed25519.PublicKey, chain *slip10.ChainCode) *PrivateKey {
	k := &PrivateKey{
		secret: priv,
		public: &PublicKey{key: pub},
	}
	if chain != nil {
		c := *chain
		k.chainCode = &c
	}
	k.der = sync.OnceValue(func() string {
		return privateDERPrefix + hex.EncodeToString(k.secret.Seed())
	})
	return k
}

// PublicKey returns the paired public key.
func (k *PrivateKey) PublicKey() *PublicKey {
	return k.public
}

// Bytes returns a copy of the 32-byte seed.
func (k *PrivateKey) Bytes() []byte {
	return k.secret.Seed()
}

// BytesDER returns the 48-byte DER-prefixed seed.
func (k *PrivateKey) BytesDER() []byte {
	return append(append([]byte(nil), privateDERPrefixBytes...), k.secret.Seed()...)
}

// String returns the hex DER form. It is computed once. After Destroy it
// returns the empty string.
func (k *PrivateKey) String() string {
	if k.destroyed.Load() {
		return ""
	}
	return k.der()
}

// StringRaw returns the hex of the 32-byte seed.
func (k *PrivateKey) StringRaw() string {
	return hex.EncodeToString(k.secret.Seed())
}

// Sign signs msg.
func (k *PrivateKey) Sign(msg []byte) []byte {
	return crypto.Sign(k.secret, msg)
}

// Equal reports whether k and other hold the same secret. Chain codes are
// not compared.
func (k *PrivateKey) Equal(other *PrivateKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	return subtle.ConstantTimeCompare(k.secret, other.secret) == 1
}

// SupportsDerivation reports whether the key carries a chain code.
func (k *PrivateKey) SupportsDerivation() bool {
	return k.chainCode != nil
}

// ChainCode returns a copy of the chain code, or nil.
func (k *PrivateKey) ChainCode() []byte {
	if k.chainCode == nil {
		return nil
	}
	return append([]byte(nil), k.chainCode[:]...)
}

// Destroy zeroes the secret and chain code. The key must not be used
// afterwards. Strings already returned by String or StringRaw are immutable
// and are not wiped, including the memoized DER form.
func (k *PrivateKey) Destroy() {
	k.destroyed.Store(true)
	crypto.Wipe(k.secret)
	if k.chainCode != nil {
		crypto.Wipe(k.chainCode[:])
	}
}
