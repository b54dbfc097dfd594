package slip10

import (
	"encoding/hex"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// SLIP-0010 test vector 1 for ed25519.
func TestMasterKey_Vector1(t *testing.T) {
	seed := decodeHex(t, "000102030405060708090a0b0c0d0e0f")

	key, chain, err := MasterKey(seed)
	require.NoError(t, err)
	assert.Equal(t, "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7", hex.EncodeToString(key[:]))
	assert.Equal(t, "90046a93de5380a72b5e45010748567d5ea02bbf6522f979e05c0d8d8ca9fffb", hex.EncodeToString(chain[:]))

	key, chain = ChildKey(key, chain, 0)
	assert.Equal(t, "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3", hex.EncodeToString(key[:]))
	assert.Equal(t, "8b59aa11380b624e81507a27fedda59fea6d0b779a778918a2fd3590e16e9c69", hex.EncodeToString(chain[:]))
}

func TestMasterKey_SeedBounds(t *testing.T) {
	_, _, err := MasterKey(make([]byte, SeedMinSize-1))
	require.ErrorIs(t, err, ErrInvalidSeed)
	_, _, err = MasterKey(make([]byte, SeedMaxSize+1))
	require.ErrorIs(t, err, ErrInvalidSeed)
	_, _, err = MasterKey(make([]byte, SeedMaxSize))
	require.NoError(t, err)
}

func TestChildKey_HardenedBitForced(t *testing.T) {
	var key Key
	var chain ChainCode
	key[0], chain[0] = 1, 2

	k1, c1 := ChildKey(key, chain, 7)
	k2, c2 := ChildKey(key, chain, Harden(7))
	assert.Equal(t, k1, k2)
	assert.Equal(t, c1, c2)
}

func TestChildKey_Deterministic(t *testing.T) {
	var key Key
	var chain ChainCode
	for i := range key {
		key[i] = byte(i)
		chain[i] = byte(255 - i)
	}
	k1, c1 := ChildKey(key, chain, 3030)
	for i := 0; i < 5; i++ {
		k2, c2 := ChildKey(key, chain, 3030)
		require.Equal(t, k1, k2)
		require.Equal(t, c1, c2)
	}
	// Inputs are passed by value and stay untouched.
	assert.Equal(t, byte(1), key[1])
	assert.Equal(t, byte(254), chain[1])
}

func hamming(a, b [32]byte) int {
	n := 0
	for i := range a {
		n += bits.OnesCount8(a[i] ^ b[i])
	}
	return n
}

// Flipping any single input bit should change roughly half the output bits.
func TestChildKey_Avalanche(t *testing.T) {
	var key Key
	var chain ChainCode
	for i := range key {
		key[i] = byte(i * 7)
		chain[i] = byte(i * 13)
	}
	baseKey, baseChain := ChildKey(key, chain, 44)

	total, samples := 0, 0
	for i := 0; i < KeySize; i++ {
		k := key
		k[i] ^= 0x01
		nk, nc := ChildKey(k, chain, 44)
		require.NotEqual(t, baseKey, nk)
		require.NotEqual(t, baseChain, nc)
		total += hamming(baseKey, nk)
		samples++

		c := chain
		c[i] ^= 0x80
		nk, _ = ChildKey(key, c, 44)
		require.NotEqual(t, baseKey, nk)
		total += hamming(baseKey, nk)
		samples++
	}
	for _, index := range []uint32{45, 43, 44 | 1<<20} {
		nk, _ := ChildKey(key, chain, index)
		require.NotEqual(t, baseKey, nk)
		total += hamming(baseKey, nk)
		samples++
	}

	mean := float64(total) / float64(samples)
	assert.InDelta(t, 128, mean, 20, "mean hamming distance %.1f", mean)
}

func TestDerivePath_MatchesStepwise(t *testing.T) {
	seed := decodeHex(t, "fffcf9f6f3f0edeae7e4e1dedbd8d5d2cfccc9c6c3c0bdbab7b4b1aeaba8a5a29f9c999693908d8a8784817e7b7875726f6c696663605d5a5754514e4b484542")

	key, chain, err := FromSeed(seed, LedgerPath)
	require.NoError(t, err)

	k, c, err := MasterKey(seed)
	require.NoError(t, err)
	for _, index := range LedgerPath {
		k, c = ChildKey(k, c, index)
	}
	assert.Equal(t, k, key)
	assert.Equal(t, c, chain)

	k0, _, err := FromSeed(seed, nil)
	require.NoError(t, err)
	assert.NotEqual(t, k0, key)
}
