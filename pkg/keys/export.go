package keys

import (
	"errors"
	"fmt"

	"edkey/internal/crypto"
	"edkey/internal/keystore"
	"edkey/internal/pkcs8"
)

type exportOptions struct {
	iterations int
}

// ExportOption tunes the KDF cost of ToKeystore and ToEncryptedPEM.
type ExportOption func(*exportOptions)

// WithIterations sets the PBKDF2 round count. Zero keeps the format's
// default.
func WithIterations(n int) ExportOption {
	return func(o *exportOptions) { o.iterations = n }
}

func collect(opts []ExportOption) exportOptions {
	var o exportOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ToKeystore seals the 32-byte seed in a passphrase-protected keystore
// blob. The chain code is not stored.
func (k *PrivateKey) ToKeystore(passphrase string, opts ...ExportOption) ([]byte, error) {
	var ksOpts []keystore.Option
	if o := collect(opts); o.iterations != 0 {
		ksOpts = append(ksOpts, keystore.WithIterations(o.iterations))
	}
	seed := k.Bytes()
	defer crypto.Wipe(seed)
	return keystore.Encrypt(seed, passphrase, ksOpts...)
}

// FromKeystore opens a keystore blob. A wrong passphrase or any change to
// the blob fails with ErrKeyMismatch; an unreadable blob with ErrBadKey.
// The result never supports derivation.
func FromKeystore(data []byte, passphrase string) (*PrivateKey, error) {
	seed, err := keystore.Decrypt(data, passphrase)
	switch {
	case errors.Is(err, keystore.ErrMACMismatch):
		return nil, fmt.Errorf("%w: %w", ErrKeyMismatch, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrBadKey, err)
	}
	defer crypto.Wipe(seed)
	return FromBytes(seed)
}

// FromPEM reads the first "PRIVATE KEY" block of text. Its body must be
// one of the FromBytes encodings; a standard Ed25519 PKCS #8 body is the
// 48-byte DER-prefixed form.
func FromPEM(text string) (*PrivateKey, error) {
	body, err := pkcs8.FindBlock([]byte(text), pkcs8.BlockPlain)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPemFile, err)
	}
	return FromBytes(body)
}

// FromEncryptedPEM reads the first "ENCRYPTED PRIVATE KEY" block of text
// and decrypts it with passphrase.
func FromEncryptedPEM(text, passphrase string) (*PrivateKey, error) {
	body, err := pkcs8.FindBlock([]byte(text), pkcs8.BlockEncrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPemFile, err)
	}

	pki, err := pkcs8.Decrypt(body, passphrase)
	switch {
	case errors.Is(err, pkcs8.ErrDecrypt):
		return nil, fmt.Errorf("%w: %w", ErrKeyMismatch, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrBadKey, err)
	}
	defer crypto.Wipe(pki)

	// A wrong passphrase can still leave valid padding; the garbage then
	// is not DER at all. DER of the wrong shape is a format problem.
	raw, err := pkcs8.ParsePrivateKeyInfo(pki)
	switch {
	case errors.Is(err, pkcs8.ErrNotDER):
		return nil, fmt.Errorf("%w: %w", ErrKeyMismatch, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrBadKey, err)
	}
	return FromBytes(raw)
}

// ToPEM returns the key as an unencrypted PKCS #8 PEM block.
func (k *PrivateKey) ToPEM() (string, error) {
	seed := k.Bytes()
	defer crypto.Wipe(seed)
	der, err := pkcs8.MarshalPrivateKeyInfo(seed)
	if err != nil {
		return "", err
	}
	defer crypto.Wipe(der)
	return string(pkcs8.EncodePEM(pkcs8.BlockPlain, der)), nil
}

// ToEncryptedPEM returns the key as a PBES2-encrypted PKCS #8 PEM block.
func (k *PrivateKey) ToEncryptedPEM(passphrase string, opts ...ExportOption) (string, error) {
	var encOpts []pkcs8.EncryptOption
	if o := collect(opts); o.iterations != 0 {
		encOpts = append(encOpts, pkcs8.WithIterations(o.iterations))
	}
	seed := k.Bytes()
	defer crypto.Wipe(seed)
	der, err := pkcs8.MarshalPrivateKeyInfo(seed)
	if err != nil {
		return "", err
	}
	defer crypto.Wipe(der)

	enc, err := pkcs8.Encrypt(der, passphrase, encOpts...)
	if err != nil {
		return "", err
	}
	return string(pkcs8.EncodePEM(pkcs8.BlockEncrypted, enc)), nil
}
