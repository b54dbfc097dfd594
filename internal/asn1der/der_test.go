package asn1der

import (
	encoding_asn1 "encoding/asn1"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDecode_SequenceOfInteger(t *testing.T) {
	// SEQUENCE { INTEGER 5 }
	n, err := Decode([]byte{0x30, 0x03, 0x02, 0x01, 0x05})
	require.NoError(t, err)
	require.Equal(t, KindSequence, n.Kind)
	require.Len(t, n.Children, 1)

	c, ok := n.Child(0)
	require.True(t, ok)
	require.Equal(t, KindInteger, c.Kind)
	require.Equal(t, int64(5), c.Integer.Int64())

	_, ok = n.Child(1)
	require.False(t, ok)
}

func TestDecode_Ed25519PrivateKeyInfo(t *testing.T) {
	der := mustHex(t, "302e020100300506032b657004220420"+
		"9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60")

	n, err := Decode(der)
	require.NoError(t, err)
	require.Len(t, n.Children, 3)

	version := n.Children[0]
	assert.Equal(t, KindInteger, version.Kind)
	assert.Equal(t, 0, version.Integer.Sign())

	alg := n.Children[1]
	require.Equal(t, KindSequence, alg.Kind)
	require.Len(t, alg.Children, 1)
	assert.True(t, alg.Children[0].OID.Equal(encoding_asn1.ObjectIdentifier{1, 3, 101, 112}))

	key := n.Children[2]
	require.Equal(t, KindOctetString, key.Kind)
	inner, err := Decode(key.Bytes)
	require.NoError(t, err)
	require.Equal(t, KindOctetString, inner.Kind)
	assert.Len(t, inner.Bytes, 32)
}

func TestDecode_Primitives(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind Kind
	}{
		{"null", "0500", KindNull},
		{"octet string", "0403010203", KindOctetString},
		{"bit string", "03020080", KindBitString},
		{"oid", "06032b6570", KindObjectIdentifier},
		{"set", "3103020101", KindSet},
		{"context specific", "810100", KindRaw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Decode(mustHex(t, tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, n.Kind)
		})
	}
}

func TestDecode_LongFormLength(t *testing.T) {
	payload := make([]byte, 200)
	der := append([]byte{0x04, 0x81, 200}, payload...)
	n, err := Decode(der)
	require.NoError(t, err)
	require.Equal(t, KindOctetString, n.Kind)
	require.Len(t, n.Bytes, 200)

	_, err = Decode(der[:len(der)-1])
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"tag only", "30"},
		{"truncated payload", "300502010102"},
		{"length past end", "0410aabb"},
		{"truncated long form length", "0482"},
		{"non-minimal long form", "048101ff"},
		{"indefinite length", "30800201000000"},
		{"trailing bytes", "050000"},
		{"empty integer", "0200"},
		{"non-minimal integer", "02020001"},
		{"null with content", "050100"},
		{"truncated child", "30030201"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := hex.DecodeString(tt.in)
			_, err := Decode(b)
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecode_TooDeep(t *testing.T) {
	// NULL wrapped in 40 sequences.
	b := []byte{0x05, 0x00}
	for i := 0; i < 40; i++ {
		b = append([]byte{0x30, byte(len(b))}, b...)
	}
	_, err := Decode(b)
	require.ErrorIs(t, err, ErrTooDeep)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tree := Sequence(
		Integer(big.NewInt(0)),
		Sequence(ObjectIdentifier(encoding_asn1.ObjectIdentifier{1, 3, 101, 112}), Null()),
		OctetString([]byte{0x04, 0x02, 0xaa, 0xbb}),
		BitString([]byte{0xde, 0xad}),
		Integer(big.NewInt(-129)),
	)
	der, err := Encode(tree)
	require.NoError(t, err)

	got, err := Decode(der)
	require.NoError(t, err)
	require.Len(t, got.Children, 5)
	assert.Equal(t, int64(0), got.Children[0].Integer.Int64())
	assert.True(t, got.Children[1].Children[0].OID.Equal(encoding_asn1.ObjectIdentifier{1, 3, 101, 112}))
	assert.Equal(t, KindNull, got.Children[1].Children[1].Kind)
	assert.Equal(t, []byte{0x04, 0x02, 0xaa, 0xbb}, got.Children[2].Bytes)
	assert.Equal(t, []byte{0xde, 0xad}, got.Children[3].Bits.Bytes)
	assert.Equal(t, int64(-129), got.Children[4].Integer.Int64())

	again, err := Encode(got)
	require.NoError(t, err)
	assert.Equal(t, der, again)
}

func TestEncode_Literal(t *testing.T) {
	der, err := Encode(Sequence(Integer(big.NewInt(5))))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30, 0x03, 0x02, 0x01, 0x05}, der)
}

func TestEncode_Rejects(t *testing.T) {
	_, err := Encode(Node{Kind: KindInteger})
	require.Error(t, err)
	_, err = Encode(Node{Kind: KindBitString, Bits: encoding_asn1.BitString{Bytes: []byte{0x80}, BitLength: 1}})
	require.Error(t, err)
	_, err = Encode(Node{})
	require.Error(t, err)
}
