// Package asn1der decodes DER byte strings into a tree of tagged nodes and
// encodes such trees back to DER.
//
// The decoder is purely structural: it checks tags, lengths and the
// encoding rules of the primitive types it understands, and leaves the
// meaning of OIDs and fields to callers. Framing is done by
// golang.org/x/crypto/cryptobyte, which rejects truncated, over-long,
// non-minimal and indefinite-length encodings.
package asn1der

import (
	encoding_asn1 "encoding/asn1"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// maxDepth bounds sequence nesting.
const maxDepth = 32

var (
	// ErrMalformed is returned for input that is not well-formed DER.
	ErrMalformed = errors.New("asn1der: malformed DER")
	// ErrTooDeep is returned when sequences nest deeper than maxDepth.
	ErrTooDeep = errors.New("asn1der: nesting too deep")
)

// Kind identifies the variant held by a Node.
type Kind int

const (
	KindInteger Kind = iota + 1
	KindOctetString
	KindBitString
	KindNull
	KindObjectIdentifier
	KindSequence
	KindSet
	// KindRaw holds any other tag with its content bytes left undecoded.
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "INTEGER"
	case KindOctetString:
		return "OCTET STRING"
	case KindBitString:
		return "BIT STRING"
	case KindNull:
		return "NULL"
	case KindObjectIdentifier:
		return "OBJECT IDENTIFIER"
	case KindSequence:
		return "SEQUENCE"
	case KindSet:
		return "SET"
	case KindRaw:
		return "RAW"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is one decoded DER element. Only the field matching Kind is set.
type Node struct {
	Kind Kind
	// Tag is the identifier octet as read from the input.
	Tag cbasn1.Tag

	Integer  *big.Int
	Bytes    []byte // OCTET STRING content, or RAW content
	Bits     encoding_asn1.BitString
	OID      encoding_asn1.ObjectIdentifier
	Children []Node
}

// Integer returns an INTEGER node.
func Integer(v *big.Int) Node {
	return Node{Kind: KindInteger, Tag: cbasn1.INTEGER, Integer: v}
}

// OctetString returns an OCTET STRING node.
func OctetString(b []byte) Node {
	return Node{Kind: KindOctetString, Tag: cbasn1.OCTET_STRING, Bytes: b}
}

// BitString returns a BIT STRING node over whole bytes.
func BitString(b []byte) Node {
	return Node{Kind: KindBitString, Tag: cbasn1.BIT_STRING, Bits: encoding_asn1.BitString{Bytes: b, BitLength: 8 * len(b)}}
}

// Null returns a NULL node.
func Null() Node {
	return Node{Kind: KindNull, Tag: cbasn1.NULL}
}

// ObjectIdentifier returns an OBJECT IDENTIFIER node.
func ObjectIdentifier(oid encoding_asn1.ObjectIdentifier) Node {
	return Node{Kind: KindObjectIdentifier, Tag: cbasn1.OBJECT_IDENTIFIER, OID: oid}
}

// Sequence returns a SEQUENCE node holding children in order.
func Sequence(children ...Node) Node {
	return Node{Kind: KindSequence, Tag: cbasn1.SEQUENCE, Children: children}
}

// Child returns the i-th child of a SEQUENCE or SET node.
func (n Node) Child(i int) (Node, bool) {
	if n.Kind != KindSequence && n.Kind != KindSet {
		return Node{}, false
	}
	if i < 0 || i >= len(n.Children) {
		return Node{}, false
	}
	return n.Children[i], true
}

// Decode parses exactly one DER element from b. Trailing bytes are an error.
func Decode(b []byte) (Node, error) {
	input := cryptobyte.String(b)
	n, err := decodeElement(&input, 0)
	if err != nil {
		return Node{}, err
	}
	if !input.Empty() {
		return Node{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(input))
	}
	return n, nil
}

func decodeElement(input *cryptobyte.String, depth int) (Node, error) {
	if depth > maxDepth {
		return Node{}, ErrTooDeep
	}
	var (
		elem cryptobyte.String
		tag  cbasn1.Tag
	)
	if !input.ReadAnyASN1Element(&elem, &tag) {
		return Node{}, fmt.Errorf("%w: bad tag or length", ErrMalformed)
	}

	n := Node{Tag: tag}
	switch tag {
	case cbasn1.INTEGER:
		n.Kind = KindInteger
		n.Integer = new(big.Int)
		if !elem.ReadASN1Integer(n.Integer) {
			return Node{}, fmt.Errorf("%w: invalid INTEGER", ErrMalformed)
		}
	case cbasn1.OCTET_STRING:
		n.Kind = KindOctetString
		var content cryptobyte.String
		if !elem.ReadASN1(&content, cbasn1.OCTET_STRING) {
			return Node{}, fmt.Errorf("%w: invalid OCTET STRING", ErrMalformed)
		}
		n.Bytes = append([]byte(nil), content...)
	case cbasn1.BIT_STRING:
		n.Kind = KindBitString
		if !elem.ReadASN1BitString(&n.Bits) {
			return Node{}, fmt.Errorf("%w: invalid BIT STRING", ErrMalformed)
		}
		n.Bits.Bytes = append([]byte(nil), n.Bits.Bytes...)
	case cbasn1.NULL:
		n.Kind = KindNull
		var content cryptobyte.String
		if !elem.ReadASN1(&content, cbasn1.NULL) || !content.Empty() {
			return Node{}, fmt.Errorf("%w: invalid NULL", ErrMalformed)
		}
	case cbasn1.OBJECT_IDENTIFIER:
		n.Kind = KindObjectIdentifier
		if !elem.ReadASN1ObjectIdentifier(&n.OID) {
			return Node{}, fmt.Errorf("%w: invalid OBJECT IDENTIFIER", ErrMalformed)
		}
	case cbasn1.SEQUENCE, cbasn1.SET:
		n.Kind = KindSequence
		if tag == cbasn1.SET {
			n.Kind = KindSet
		}
		var content cryptobyte.String
		if !elem.ReadASN1(&content, tag) {
			return Node{}, fmt.Errorf("%w: invalid %s", ErrMalformed, n.Kind)
		}
		for !content.Empty() {
			child, err := decodeElement(&content, depth+1)
			if err != nil {
				return Node{}, err
			}
			n.Children = append(n.Children, child)
		}
	default:
		n.Kind = KindRaw
		var content cryptobyte.String
		if !elem.ReadAnyASN1(&content, &tag) {
			return Node{}, fmt.Errorf("%w: bad element", ErrMalformed)
		}
		n.Bytes = append([]byte(nil), content...)
	}
	return n, nil
}

// Encode serializes n and its children to DER.
func Encode(n Node) ([]byte, error) {
	var b cryptobyte.Builder
	if err := encodeNode(&b, n, 0); err != nil {
		return nil, err
	}
	return b.Bytes()
}

func encodeNode(b *cryptobyte.Builder, n Node, depth int) error {
	if depth > maxDepth {
		return ErrTooDeep
	}
	switch n.Kind {
	case KindInteger:
		if n.Integer == nil {
			return fmt.Errorf("asn1der: INTEGER node without value")
		}
		b.AddASN1BigInt(n.Integer)
	case KindOctetString:
		b.AddASN1OctetString(n.Bytes)
	case KindBitString:
		if n.Bits.BitLength != 8*len(n.Bits.Bytes) {
			return fmt.Errorf("asn1der: partial-byte BIT STRING not supported")
		}
		b.AddASN1BitString(n.Bits.Bytes)
	case KindNull:
		b.AddASN1NULL()
	case KindObjectIdentifier:
		b.AddASN1ObjectIdentifier(n.OID)
	case KindSequence, KindSet:
		tag := cbasn1.SEQUENCE
		if n.Kind == KindSet {
			tag = cbasn1.SET
		}
		var childErr error
		b.AddASN1(tag, func(child *cryptobyte.Builder) {
			for _, c := range n.Children {
				if childErr = encodeNode(child, c, depth+1); childErr != nil {
					return
				}
			}
		})
		if childErr != nil {
			return childErr
		}
	case KindRaw:
		b.AddASN1(n.Tag, func(child *cryptobyte.Builder) {
			child.AddBytes(n.Bytes)
		})
	default:
		return fmt.Errorf("asn1der: cannot encode %s", n.Kind)
	}
	return nil
}
