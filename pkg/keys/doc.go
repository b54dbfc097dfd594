// Package keys holds the Ed25519 key entities handed to ledger clients.
//
// A PrivateKey is built by one of the import functions and never changes
// afterwards:
//
//	FromBytes          32-byte seed, 64-byte seed||public, 48-byte DER-prefixed seed
//	FromString         hex of the above (64, 128 or 96 characters)
//	FromMnemonic       SLIP-0010 derivation along m/44'/3030'/0'/0'
//	FromKeystore       passphrase-protected JSON keystore
//	FromPEM            plain PKCS #8 PEM
//	FromEncryptedPEM   PBES2-encrypted PKCS #8 PEM
//
// Keys built from a mnemonic, and their children, carry a chain code and
// support Derive. Every other import path yields keys that do not.
//
// # Errors
//
// Failures match one of ErrBadKey, ErrBadPemFile, ErrKeyMismatch or
// ErrUnsupportedOperation with errors.Is, so callers can tell format
// problems from passphrase problems.
package keys
