// Package keystore encodes a private key seed into a passphrase-protected,
// integrity-checked JSON container and decodes it back.
//
// Layout:
//
//	{
//	  "version": 1,
//	  "crypto": {
//	    "ciphertext": "<hex>",
//	    "cipherparams": {"iv": "<hex>"},
//	    "cipher": "aes-128-ctr",
//	    "kdf": "pbkdf2",
//	    "kdfparams": {"dkLen": 32, "salt": "<hex>", "c": 262144, "prf": "hmac-sha256"},
//	    "mac": "<hex>"
//	  }
//	}
//
// The PBKDF2 output is split into a 16-byte AES key and a 16-byte MAC key.
// The MAC is HMAC-SHA384 over iv || ciphertext and is checked before
// anything is decrypted.
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"edkey/internal/crypto"
)

const (
	formatVersion = 1

	cipherName = "aes-128-ctr"
	kdfName    = "pbkdf2"
	prfName    = "hmac-sha256"

	// DefaultIterations is the PBKDF2 round count used when none is given.
	DefaultIterations = 262144
	// MaxIterations bounds the round count accepted from a blob.
	MaxIterations = 10_000_000

	derivedKeySize = 32
	saltSize       = 32
)

var (
	// ErrMalformed is returned when a blob cannot be parsed or uses
	// parameters this package does not support.
	ErrMalformed = errors.New("keystore: malformed blob")
	// ErrMACMismatch is returned for a wrong passphrase or a modified blob.
	ErrMACMismatch = errors.New("keystore: mac mismatch (wrong passphrase or corrupted blob)")
)

// blob is the JSON document.
type blob struct {
	Version int        `json:"version"`
	Crypto  cryptoJSON `json:"crypto"`
}

type cryptoJSON struct {
	Ciphertext   string       `json:"ciphertext"`
	CipherParams cipherParams `json:"cipherparams"`
	Cipher       string       `json:"cipher"`
	KDF          string       `json:"kdf"`
	KDFParams    kdfParams    `json:"kdfparams"`
	MAC          string       `json:"mac"`
}

type cipherParams struct {
	IV string `json:"iv"`
}

type kdfParams struct {
	DKLen int    `json:"dkLen"`
	Salt  string `json:"salt"`
	C     int    `json:"c"`
	PRF   string `json:"prf"`
}

type options struct {
	iterations int
	rand       io.Reader
}

// Option tunes Encrypt.
type Option func(*options)

// WithIterations sets the PBKDF2 round count.
func WithIterations(n int) Option {
	return func(o *options) { o.iterations = n }
}

// WithRand sets the source for salt and IV (crypto/rand by default).
func WithRand(r io.Reader) Option {
	return func(o *options) { o.rand = r }
}

// Encrypt seals secret under passphrase and returns the JSON blob.
func Encrypt(secret []byte, passphrase string, opts ...Option) ([]byte, error) {
	o := options{iterations: DefaultIterations, rand: rand.Reader}
	for _, opt := range opts {
		opt(&o)
	}
	if o.iterations < 1 || o.iterations > MaxIterations {
		return nil, fmt.Errorf("keystore: iteration count %d out of range", o.iterations)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(o.rand, salt); err != nil {
		return nil, err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(o.rand, iv); err != nil {
		return nil, err
	}

	dk := deriveKey(passphrase, salt, o.iterations)
	defer crypto.Wipe(dk)

	ciphertext, err := ctr(dk[:16], iv, secret)
	if err != nil {
		return nil, err
	}

	return json.Marshal(blob{
		Version: formatVersion,
		Crypto: cryptoJSON{
			Ciphertext:   hex.EncodeToString(ciphertext),
			CipherParams: cipherParams{IV: hex.EncodeToString(iv)},
			Cipher:       cipherName,
			KDF:          kdfName,
			KDFParams: kdfParams{
				DKLen: derivedKeySize,
				Salt:  hex.EncodeToString(salt),
				C:     o.iterations,
				PRF:   prfName,
			},
			MAC: hex.EncodeToString(computeMAC(dk[16:], iv, ciphertext)),
		},
	})
}

// Decrypt verifies the blob's MAC under passphrase and returns the secret.
func Decrypt(data []byte, passphrase string) ([]byte, error) {
	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	p, err := b.parse()
	if err != nil {
		return nil, err
	}

	dk := deriveKey(passphrase, p.salt, p.iterations)
	defer crypto.Wipe(dk)

	if !hmac.Equal(computeMAC(dk[16:], p.iv, p.ciphertext), p.mac) {
		return nil, ErrMACMismatch
	}
	return ctr(dk[:16], p.iv, p.ciphertext)
}

type parsed struct {
	salt, iv, ciphertext, mac []byte
	iterations                int
}

func (b blob) parse() (parsed, error) {
	if b.Version != formatVersion {
		return parsed{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, b.Version)
	}
	c := b.Crypto
	if c.Cipher != cipherName {
		return parsed{}, fmt.Errorf("%w: unsupported cipher %q", ErrMalformed, c.Cipher)
	}
	if c.KDF != kdfName {
		return parsed{}, fmt.Errorf("%w: unsupported kdf %q", ErrMalformed, c.KDF)
	}
	if c.KDFParams.PRF != prfName {
		return parsed{}, fmt.Errorf("%w: unsupported prf %q", ErrMalformed, c.KDFParams.PRF)
	}
	if c.KDFParams.DKLen != derivedKeySize {
		return parsed{}, fmt.Errorf("%w: unsupported dkLen %d", ErrMalformed, c.KDFParams.DKLen)
	}
	if c.KDFParams.C < 1 || c.KDFParams.C > MaxIterations {
		return parsed{}, fmt.Errorf("%w: iteration count %d out of range", ErrMalformed, c.KDFParams.C)
	}

	var (
		p   = parsed{iterations: c.KDFParams.C}
		err error
	)
	fields := []struct {
		name string
		src  string
		dst  *[]byte
	}{
		{"salt", c.KDFParams.Salt, &p.salt},
		{"iv", c.CipherParams.IV, &p.iv},
		{"ciphertext", c.Ciphertext, &p.ciphertext},
		{"mac", c.MAC, &p.mac},
	}
	for _, f := range fields {
		if *f.dst, err = hex.DecodeString(f.src); err != nil {
			return parsed{}, fmt.Errorf("%w: %s: %v", ErrMalformed, f.name, err)
		}
	}
	if len(p.iv) != aes.BlockSize {
		return parsed{}, fmt.Errorf("%w: iv must be %d bytes", ErrMalformed, aes.BlockSize)
	}
	if len(p.salt) == 0 || len(p.ciphertext) == 0 {
		return parsed{}, fmt.Errorf("%w: empty salt or ciphertext", ErrMalformed)
	}
	return p, nil
}

func deriveKey(passphrase string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, derivedKeySize, sha256.New)
}

func computeMAC(key, iv, ciphertext []byte) []byte {
	mac := hmac.New(sha512.New384, key)
	_, _ = mac.Write(iv)
	_, _ = mac.Write(ciphertext)
	return mac.Sum(nil)
}

func ctr(key, iv, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)
	return out, nil
}
