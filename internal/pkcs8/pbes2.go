package pkcs8

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	encoding_asn1 "encoding/asn1"
	"fmt"
	"hash"
	"io"
	"math/big"

	"golang.org/x/crypto/pbkdf2"

	"edkey/internal/asn1der"
	"edkey/internal/crypto"
)

var (
	oidPBES2  = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 5, 13}
	oidPBKDF2 = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 5, 12}

	oidHMACWithSHA1   = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 7}
	oidHMACWithSHA224 = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 8}
	oidHMACWithSHA256 = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 9}
	oidHMACWithSHA384 = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 10}
	oidHMACWithSHA512 = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 11}

	oidAES128CBC = encoding_asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 1, 2}
	oidAES192CBC = encoding_asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 1, 22}
	oidAES256CBC = encoding_asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 1, 42}
)

const (
	// DefaultIterations is the PBKDF2 round count used by Encrypt.
	DefaultIterations = 2048
	// MaxIterations bounds the round count accepted on decryption.
	MaxIterations = 10_000_000

	saltSize = 16
)

var prfs = []struct {
	oid  encoding_asn1.ObjectIdentifier
	hash func() hash.Hash
}{
	{oidHMACWithSHA1, sha1.New},
	{oidHMACWithSHA224, sha256.New224},
	{oidHMACWithSHA256, sha256.New},
	{oidHMACWithSHA384, sha512.New384},
	{oidHMACWithSHA512, sha512.New},
}

var ciphers = []struct {
	oid     encoding_asn1.ObjectIdentifier
	keySize int
}{
	{oidAES128CBC, 16},
	{oidAES192CBC, 24},
	{oidAES256CBC, 32},
}

// pbes2Params is the decoded PBES2-params of an EncryptedPrivateKeyInfo.
type pbes2Params struct {
	salt       []byte
	iterations int
	keySize    int
	prf        func() hash.Hash
	iv         []byte
}

func (p pbes2Params) key(passphrase string) []byte {
	return pbkdf2.Key([]byte(passphrase), p.salt, p.iterations, p.keySize, p.prf)
}

// Decrypt parses an EncryptedPrivateKeyInfo, derives the key from
// passphrase with the parameters it carries, and returns the decrypted
// PrivateKeyInfo DER.
func Decrypt(der []byte, passphrase string) ([]byte, error) {
	root, err := asn1der.Decode(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if root.Kind != asn1der.KindSequence || len(root.Children) != 2 {
		return nil, fmt.Errorf("%w: EncryptedPrivateKeyInfo is not a 2-element sequence", ErrMalformed)
	}
	alg, data := root.Children[0], root.Children[1]
	if data.Kind != asn1der.KindOctetString {
		return nil, fmt.Errorf("%w: encryptedData is not an OCTET STRING", ErrMalformed)
	}

	oid, params, err := algorithmIdentifier(alg)
	if err != nil {
		return nil, err
	}
	if !oid.Equal(oidPBES2) {
		return nil, fmt.Errorf("%w: encryption scheme %s", ErrUnsupportedAlgorithm, oid)
	}
	if params == nil {
		return nil, fmt.Errorf("%w: PBES2 without parameters", ErrMalformed)
	}
	p, err := parsePBES2(*params)
	if err != nil {
		return nil, err
	}

	ct := data.Bytes
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d", ErrMalformed, len(ct))
	}

	key := p.key(passphrase)
	defer crypto.Wipe(key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, p.iv).CryptBlocks(out, ct)

	plain, err := unpad(out)
	if err != nil {
		crypto.Wipe(out)
		return nil, err
	}
	return plain, nil
}

func parsePBES2(n asn1der.Node) (pbes2Params, error) {
	if n.Kind != asn1der.KindSequence || len(n.Children) != 2 {
		return pbes2Params{}, fmt.Errorf("%w: bad PBES2-params", ErrMalformed)
	}

	kdfOID, kdfParams, err := algorithmIdentifier(n.Children[0])
	if err != nil {
		return pbes2Params{}, err
	}
	if !kdfOID.Equal(oidPBKDF2) {
		return pbes2Params{}, fmt.Errorf("%w: key derivation %s", ErrUnsupportedAlgorithm, kdfOID)
	}
	if kdfParams == nil {
		return pbes2Params{}, fmt.Errorf("%w: PBKDF2 without parameters", ErrMalformed)
	}

	encOID, encParams, err := algorithmIdentifier(n.Children[1])
	if err != nil {
		return pbes2Params{}, err
	}
	var p pbes2Params
	for _, c := range ciphers {
		if c.oid.Equal(encOID) {
			p.keySize = c.keySize
		}
	}
	if p.keySize == 0 {
		return pbes2Params{}, fmt.Errorf("%w: cipher %s", ErrUnsupportedAlgorithm, encOID)
	}
	if encParams == nil || encParams.Kind != asn1der.KindOctetString || len(encParams.Bytes) != aes.BlockSize {
		return pbes2Params{}, fmt.Errorf("%w: cipher IV", ErrMalformed)
	}
	p.iv = encParams.Bytes

	if err := p.parsePBKDF2(*kdfParams); err != nil {
		return pbes2Params{}, err
	}
	return p, nil
}

// parsePBKDF2 reads PBKDF2-params: salt, iterationCount, keyLength OPTIONAL,
// prf DEFAULT hmacWithSHA1.
func (p *pbes2Params) parsePBKDF2(n asn1der.Node) error {
	if n.Kind != asn1der.KindSequence || len(n.Children) < 2 || len(n.Children) > 4 {
		return fmt.Errorf("%w: bad PBKDF2-params", ErrMalformed)
	}
	salt, iter := n.Children[0], n.Children[1]
	if salt.Kind != asn1der.KindOctetString || len(salt.Bytes) == 0 {
		return fmt.Errorf("%w: PBKDF2 salt", ErrMalformed)
	}
	if iter.Kind != asn1der.KindInteger || !iter.Integer.IsInt64() ||
		iter.Integer.Int64() < 1 || iter.Integer.Int64() > MaxIterations {
		return fmt.Errorf("%w: PBKDF2 iteration count", ErrMalformed)
	}
	p.salt = salt.Bytes
	p.iterations = int(iter.Integer.Int64())
	p.prf = sha1.New

	for _, opt := range n.Children[2:] {
		switch opt.Kind {
		case asn1der.KindInteger:
			if !opt.Integer.IsInt64() || opt.Integer.Int64() != int64(p.keySize) {
				return fmt.Errorf("%w: PBKDF2 key length does not match cipher", ErrMalformed)
			}
		case asn1der.KindSequence:
			oid, _, err := algorithmIdentifier(opt)
			if err != nil {
				return err
			}
			p.prf = nil
			for _, f := range prfs {
				if f.oid.Equal(oid) {
					p.prf = f.hash
				}
			}
			if p.prf == nil {
				return fmt.Errorf("%w: PRF %s", ErrUnsupportedAlgorithm, oid)
			}
		default:
			return fmt.Errorf("%w: unexpected %s in PBKDF2-params", ErrMalformed, opt.Kind)
		}
	}
	return nil
}

type encryptOptions struct {
	iterations int
	rand       io.Reader
}

// EncryptOption tunes Encrypt.
type EncryptOption func(*encryptOptions)

// WithIterations sets the PBKDF2 round count.
func WithIterations(n int) EncryptOption {
	return func(o *encryptOptions) { o.iterations = n }
}

// WithRand sets the source for salt and IV (crypto/rand by default).
func WithRand(r io.Reader) EncryptOption {
	return func(o *encryptOptions) { o.rand = r }
}

// Encrypt wraps a PrivateKeyInfo in an EncryptedPrivateKeyInfo using
// PBES2 with PBKDF2-HMAC-SHA256 and AES-256-CBC.
func Encrypt(privateKeyInfo []byte, passphrase string, opts ...EncryptOption) ([]byte, error) {
	o := encryptOptions{iterations: DefaultIterations, rand: rand.Reader}
	for _, opt := range opts {
		opt(&o)
	}
	if o.iterations < 1 || o.iterations > MaxIterations {
		return nil, fmt.Errorf("pkcs8: iteration count %d out of range", o.iterations)
	}

	p := pbes2Params{
		salt:       make([]byte, saltSize),
		iterations: o.iterations,
		keySize:    32,
		prf:        sha256.New,
		iv:         make([]byte, aes.BlockSize),
	}
	if _, err := io.ReadFull(o.rand, p.salt); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(o.rand, p.iv); err != nil {
		return nil, err
	}

	key := p.key(passphrase)
	defer crypto.Wipe(key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := pad(privateKeyInfo)
	defer crypto.Wipe(padded)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, p.iv).CryptBlocks(ct, padded)

	return asn1der.Encode(asn1der.Sequence(
		asn1der.Sequence(
			asn1der.ObjectIdentifier(oidPBES2),
			asn1der.Sequence(
				asn1der.Sequence(
					asn1der.ObjectIdentifier(oidPBKDF2),
					asn1der.Sequence(
						asn1der.OctetString(p.salt),
						asn1der.Integer(big.NewInt(int64(p.iterations))),
						asn1der.Sequence(asn1der.ObjectIdentifier(oidHMACWithSHA256), asn1der.Null()),
					),
				),
				asn1der.Sequence(
					asn1der.ObjectIdentifier(oidAES256CBC),
					asn1der.OctetString(p.iv),
				),
			),
		),
		asn1der.OctetString(ct),
	))
}

func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(b []byte) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, ErrDecrypt
	}
	want := make([]byte, n)
	for i := range want {
		want[i] = byte(n)
	}
	if subtle.ConstantTimeCompare(b[len(b)-n:], want) != 1 {
		return nil, ErrDecrypt
	}
	return b[:len(b)-n], nil
}
