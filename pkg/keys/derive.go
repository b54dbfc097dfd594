package keys

import (
	"context"
	"fmt"

	"edkey/internal/crypto"
	"edkey/internal/mnemonic"
	"edkey/internal/slip10"
)

// FromMnemonic derives the account key m/44'/3030'/0'/0' from m and the
// optional BIP-39 passphrase. The result supports Derive.
//
// Legacy mnemonics use a separate scheme that is not implemented here and
// fail with ErrUnsupportedOperation.
func FromMnemonic(m mnemonic.Mnemonic, passphrase string) (*PrivateKey, error) {
	if m.Legacy {
		return nil, fmt.Errorf("%w: legacy mnemonic derivation", ErrUnsupportedOperation)
	}
	seed := m.Seed(passphrase)
	defer crypto.Wipe(seed)

	key, chain, err := slip10.FromSeed(seed, slip10.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadKey, err)
	}
	defer crypto.WipeAll(key[:], chain[:])
	return fromSeed(key[:], &chain)
}

// Derive returns the hardened child at index. The top bit of index is
// forced on. k is left untouched.
func (k *PrivateKey) Derive(index uint32) (*PrivateKey, error) {
	if k.chainCode == nil {
		return nil, fmt.Errorf("%w: key has no chain code", ErrUnsupportedOperation)
	}
	var parent slip10.Key
	copy(parent[:], k.secret[:crypto.SeedSize])
	child, chain := slip10.ChildKey(parent, *k.chainCode, index)
	defer crypto.WipeAll(parent[:], child[:], chain[:])
	return fromSeed(child[:], &chain)
}

// DeriveContext is Derive run off the calling goroutine. It returns
// ctx.Err() if ctx ends before the derivation does; the result is the same
// as Derive's otherwise.
func (k *PrivateKey) DeriveContext(ctx context.Context, index uint32) (*PrivateKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type result struct {
		key *PrivateKey
		err error
	}
	done := make(chan result, 1)
	go func() {
		key, err := k.Derive(index)
		done <- result{key, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.key, r.err
	}
}
