// Package slip10 implements SLIP-0010 hardened key derivation for Ed25519.
//
// Every child index is treated as hardened: the top bit is forced on
// whatever the caller passes, since Ed25519 has no public (non-hardened)
// derivation.
package slip10

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
)

const (
	// KeySize is the size of a derived private key seed in bytes.
	KeySize = 32
	// ChainCodeSize is the size of a chain code in bytes.
	ChainCodeSize = 32
	// HardenedOffset is the first hardened child index.
	HardenedOffset uint32 = 0x80000000

	// SeedMinSize and SeedMaxSize bound the master seed (128 to 512 bits).
	SeedMinSize = 16
	SeedMaxSize = 64
)

// CurveKey keys the HMAC that turns a seed into the master key.
var CurveKey = []byte("ed25519 seed")

// LedgerPath is purpose 44, coin type 3030, account 0, change 0. All
// components are hardened on use.
var LedgerPath = []uint32{44, 3030, 0, 0}

// ErrInvalidSeed is returned for master seeds outside [SeedMinSize, SeedMaxSize].
var ErrInvalidSeed = errors.New("slip10: invalid seed length")

// Key is a derived 32-byte Ed25519 seed.
type Key [KeySize]byte

// ChainCode is the 32-byte auxiliary entropy carried alongside a Key.
type ChainCode [ChainCodeSize]byte

// Harden returns index with the hardened bit set.
func Harden(index uint32) uint32 {
	return index | HardenedOffset
}

// MasterKey computes I = HMAC-SHA512("ed25519 seed", seed) and splits it
// into the master key and chain code.
func MasterKey(seed []byte) (Key, ChainCode, error) {
	if n := len(seed); n < SeedMinSize || n > SeedMaxSize {
		return Key{}, ChainCode{}, ErrInvalidSeed
	}
	mac := hmac.New(sha512.New, CurveKey)
	_, _ = mac.Write(seed)
	k, c := split(mac.Sum(nil))
	return k, c, nil
}

// ChildKey computes I = HMAC-SHA512(c, 0x00 || k || ser32(index')) and
// splits it into the child key and chain code. It is pure: equal inputs
// always give equal outputs.
func ChildKey(key Key, chain ChainCode, index uint32) (Key, ChainCode) {
	var data [1 + KeySize + 4]byte
	copy(data[1:], key[:])
	binary.BigEndian.PutUint32(data[1+KeySize:], Harden(index))

	mac := hmac.New(sha512.New, chain[:])
	_, _ = mac.Write(data[:])
	clear(data[:])
	return split(mac.Sum(nil))
}

// DerivePath folds path left to right through ChildKey.
func DerivePath(key Key, chain ChainCode, path []uint32) (Key, ChainCode) {
	for _, index := range path {
		key, chain = ChildKey(key, chain, index)
	}
	return key, chain
}

// FromSeed derives the master key from seed and folds path through it.
func FromSeed(seed []byte, path []uint32) (Key, ChainCode, error) {
	key, chain, err := MasterKey(seed)
	if err != nil {
		return Key{}, ChainCode{}, err
	}
	key, chain = DerivePath(key, chain, path)
	return key, chain, nil
}

func split(digest []byte) (Key, ChainCode) {
	var (
		key   Key
		chain ChainCode
	)
	copy(key[:], digest[:KeySize])
	copy(chain[:], digest[KeySize:])
	clear(digest)
	return key, chain
}
