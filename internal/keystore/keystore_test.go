package keystore

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIterations = 1024

var testSecret = bytes.Repeat([]byte{0x42}, 32)

func seal(t *testing.T, pass string) []byte {
	t.Helper()
	data, err := Encrypt(testSecret, pass, WithIterations(testIterations))
	require.NoError(t, err)
	return data
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	data := seal(t, "correct horse")

	got, err := Decrypt(data, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, testSecret, got)
}

func TestEncrypt_FreshSaltAndIV(t *testing.T) {
	a := seal(t, "pass")
	b := seal(t, "pass")
	assert.NotEqual(t, a, b)
}

func TestEncrypt_DefaultIterations(t *testing.T) {
	data, err := Encrypt(testSecret, "pass")
	require.NoError(t, err)

	var b blob
	require.NoError(t, json.Unmarshal(data, &b))
	assert.Equal(t, DefaultIterations, b.Crypto.KDFParams.C)
	assert.Equal(t, "aes-128-ctr", b.Crypto.Cipher)
	assert.Equal(t, "hmac-sha256", b.Crypto.KDFParams.PRF)
}

func TestEncrypt_BadIterations(t *testing.T) {
	_, err := Encrypt(testSecret, "pass", WithIterations(0))
	require.Error(t, err)
}

func TestDecrypt_WrongPassphrase(t *testing.T) {
	data := seal(t, "right")
	_, err := Decrypt(data, "wrong")
	require.ErrorIs(t, err, ErrMACMismatch)
}

func mutate(t *testing.T, data []byte, fn func(*blob)) []byte {
	t.Helper()
	var b blob
	require.NoError(t, json.Unmarshal(data, &b))
	fn(&b)
	out, err := json.Marshal(b)
	require.NoError(t, err)
	return out
}

func flipHexByte(t *testing.T, s string, i int) string {
	t.Helper()
	raw, err := hex.DecodeString(s)
	require.NoError(t, err)
	raw[i] ^= 0x01
	return hex.EncodeToString(raw)
}

func TestDecrypt_TamperedFails(t *testing.T) {
	data := seal(t, "pass")

	var b blob
	require.NoError(t, json.Unmarshal(data, &b))

	ctLen := len(b.Crypto.Ciphertext) / 2
	for i := 0; i < ctLen; i++ {
		tampered := mutate(t, data, func(b *blob) {
			b.Crypto.Ciphertext = flipHexByte(t, b.Crypto.Ciphertext, i)
		})
		_, err := Decrypt(tampered, "pass")
		require.ErrorIs(t, err, ErrMACMismatch, "ciphertext byte %d", i)
	}

	macLen := len(b.Crypto.MAC) / 2
	for i := 0; i < macLen; i++ {
		tampered := mutate(t, data, func(b *blob) {
			b.Crypto.MAC = flipHexByte(t, b.Crypto.MAC, i)
		})
		_, err := Decrypt(tampered, "pass")
		require.ErrorIs(t, err, ErrMACMismatch, "mac byte %d", i)
	}

	tampered := mutate(t, data, func(b *blob) {
		b.Crypto.CipherParams.IV = flipHexByte(t, b.Crypto.CipherParams.IV, 0)
	})
	_, err := Decrypt(tampered, "pass")
	require.ErrorIs(t, err, ErrMACMismatch)

	tampered = mutate(t, data, func(b *blob) {
		b.Crypto.KDFParams.Salt = flipHexByte(t, b.Crypto.KDFParams.Salt, 0)
	})
	_, err = Decrypt(tampered, "pass")
	require.ErrorIs(t, err, ErrMACMismatch)
}

func TestDecrypt_Malformed(t *testing.T) {
	data := seal(t, "pass")

	tests := []struct {
		name string
		fn   func(*blob)
	}{
		{"version", func(b *blob) { b.Version = 2 }},
		{"cipher", func(b *blob) { b.Crypto.Cipher = "aes-256-gcm" }},
		{"kdf", func(b *blob) { b.Crypto.KDF = "scrypt" }},
		{"prf", func(b *blob) { b.Crypto.KDFParams.PRF = "hmac-sha1" }},
		{"dkLen", func(b *blob) { b.Crypto.KDFParams.DKLen = 16 }},
		{"iterations", func(b *blob) { b.Crypto.KDFParams.C = 0 }},
		{"iv hex", func(b *blob) { b.Crypto.CipherParams.IV = "zz" }},
		{"iv size", func(b *blob) { b.Crypto.CipherParams.IV = "00" }},
		{"ciphertext", func(b *blob) { b.Crypto.Ciphertext = "" }},
		{"mac hex", func(b *blob) { b.Crypto.MAC = "xyz" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(mutate(t, data, tt.fn), "pass")
			require.ErrorIs(t, err, ErrMalformed)
		})
	}

	_, err := Decrypt([]byte("not json"), "pass")
	require.ErrorIs(t, err, ErrMalformed)
}
