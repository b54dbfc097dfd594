// Package store provides file-based persistence for the keyring.
//
// KeyFileStore keeps one JSON file per key under <home>/keys. Each file holds
// the key's public metadata and its passphrase-sealed keystore blob; nothing
// here ever sees a plaintext secret. Writes go through a temp file that is
// hard-linked into place, so a record is never replaced, even by another
// process. All methods are safe for concurrent use.
package store
