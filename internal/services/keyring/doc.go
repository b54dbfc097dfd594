// Package keyring manages named Ed25519 keys on behalf of the CLI.
//
// Keys enter the keyring by generation, from a hex string, a BIP-39 mnemonic
// or a PEM file, and are stored sealed in keystore blobs under a passphrase
// that must satisfy the strength policy. Loading, signing and exporting all
// go through the same passphrase.
package keyring
