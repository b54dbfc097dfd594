package keys

import "errors"

var (
	// ErrBadKey covers unrecognized lengths, prefix mismatches, malformed
	// DER and unexpected algorithm identifiers.
	ErrBadKey = errors.New("bad key")
	// ErrBadPemFile is returned when the expected PEM markers are missing.
	ErrBadPemFile = errors.New("bad pem file")
	// ErrKeyMismatch is returned when a passphrase check fails.
	ErrKeyMismatch = errors.New("key mismatch: wrong passphrase or corrupted data")
	// ErrUnsupportedOperation is returned for derivation on a key without a
	// chain code, and for legacy mnemonics.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)
