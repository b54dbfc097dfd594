// Package pkcs8 reads and writes Ed25519 keys in PKCS #8 form: plain
// PrivateKeyInfo, and PBES2-encrypted EncryptedPrivateKeyInfo (PBKDF2 with
// an HMAC-SHA family PRF, AES-CBC), optionally wrapped in PEM.
//
// All DER work goes through internal/asn1der; this package only interprets
// the resulting trees.
package pkcs8

import (
	encoding_asn1 "encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"

	"edkey/internal/asn1der"
)

// PEM block types.
const (
	BlockPlain     = "PRIVATE KEY"
	BlockEncrypted = "ENCRYPTED PRIVATE KEY"
)

// OIDEd25519 is id-Ed25519 from RFC 8410.
var OIDEd25519 = encoding_asn1.ObjectIdentifier{1, 3, 101, 112}

var (
	// ErrNoBlock is returned when the PEM text holds no block of the wanted type.
	ErrNoBlock = errors.New("pkcs8: no matching PEM block")
	// ErrMalformed is returned for DER that does not have the PKCS #8 shape.
	ErrMalformed = errors.New("pkcs8: malformed structure")
	// ErrNotDER is returned, alongside ErrMalformed, when a PrivateKeyInfo
	// is not a DER element at all.
	ErrNotDER = errors.New("pkcs8: not DER")
	// ErrUnsupportedAlgorithm is returned for KDFs, PRFs or ciphers not handled here.
	ErrUnsupportedAlgorithm = errors.New("pkcs8: unsupported algorithm")
	// ErrNotEd25519 is returned when the decrypted key is for another algorithm.
	ErrNotEd25519 = errors.New("pkcs8: not an Ed25519 key")
	// ErrDecrypt is returned when the decrypted payload has invalid padding,
	// which in practice means the passphrase is wrong.
	ErrDecrypt = errors.New("pkcs8: decryption failed")
)

// FindBlock returns the body of the first PEM block of type typ in text.
func FindBlock(text []byte, typ string) ([]byte, error) {
	rest := text
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, fmt.Errorf("%w: %q", ErrNoBlock, typ)
		}
		if block.Type == typ {
			return block.Bytes, nil
		}
	}
}

// EncodePEM wraps der in a PEM block of type typ.
func EncodePEM(typ string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der})
}

// ParsePrivateKeyInfo checks that der is an Ed25519 PrivateKeyInfo and
// returns the key bytes nested inside its privateKey OCTET STRING.
func ParsePrivateKeyInfo(der []byte) ([]byte, error) {
	root, err := asn1der.Decode(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrMalformed, ErrNotDER, err)
	}
	if root.Kind != asn1der.KindSequence || len(root.Children) < 3 {
		return nil, fmt.Errorf("%w: PrivateKeyInfo is not a sequence of at least 3 elements", ErrMalformed)
	}
	version, _ := root.Child(0)
	alg, _ := root.Child(1)
	key, _ := root.Child(2)

	if version.Kind != asn1der.KindInteger || !version.Integer.IsInt64() || version.Integer.Int64() > 1 || version.Integer.Sign() < 0 {
		return nil, fmt.Errorf("%w: unsupported PrivateKeyInfo version", ErrMalformed)
	}
	oid, _, err := algorithmIdentifier(alg)
	if err != nil {
		return nil, err
	}
	if !oid.Equal(OIDEd25519) {
		return nil, fmt.Errorf("%w: algorithm %s", ErrNotEd25519, oid)
	}
	if key.Kind != asn1der.KindOctetString {
		return nil, fmt.Errorf("%w: privateKey is not an OCTET STRING", ErrMalformed)
	}

	inner, err := asn1der.Decode(key.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: CurvePrivateKey: %w", ErrMalformed, err)
	}
	if inner.Kind != asn1der.KindOctetString {
		return nil, fmt.Errorf("%w: CurvePrivateKey is not an OCTET STRING", ErrMalformed)
	}
	return inner.Bytes, nil
}

// MarshalPrivateKeyInfo encodes an Ed25519 seed as a version 0
// PrivateKeyInfo (RFC 8410).
func MarshalPrivateKeyInfo(seed []byte) ([]byte, error) {
	inner, err := asn1der.Encode(asn1der.OctetString(seed))
	if err != nil {
		return nil, err
	}
	return asn1der.Encode(asn1der.Sequence(
		asn1der.Integer(big.NewInt(0)),
		asn1der.Sequence(asn1der.ObjectIdentifier(OIDEd25519)),
		asn1der.OctetString(inner),
	))
}

// algorithmIdentifier splits an AlgorithmIdentifier into its OID and the
// optional parameters node.
func algorithmIdentifier(n asn1der.Node) (encoding_asn1.ObjectIdentifier, *asn1der.Node, error) {
	if n.Kind != asn1der.KindSequence || len(n.Children) < 1 || len(n.Children) > 2 {
		return nil, nil, fmt.Errorf("%w: bad AlgorithmIdentifier", ErrMalformed)
	}
	oid, _ := n.Child(0)
	if oid.Kind != asn1der.KindObjectIdentifier {
		return nil, nil, fmt.Errorf("%w: AlgorithmIdentifier without OID", ErrMalformed)
	}
	params, ok := n.Child(1)
	if !ok {
		return oid.OID, nil, nil
	}
	return oid.OID, &params, nil
}
