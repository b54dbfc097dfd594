package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// KeyRecord is one named key as persisted in the keyring. The private key
// only ever appears inside Keystore, sealed under the owner's passphrase.
type KeyRecord struct {
	Name        string          `json:"name"`
	PublicKey   string          `json:"public_key"` // hex DER SubjectPublicKeyInfo
	Fingerprint string          `json:"fingerprint"`
	Source      KeySource       `json:"source"`
	CreatedAt   time.Time       `json:"created_at"`
	Keystore    json.RawMessage `json:"keystore"`
}

// KeySource records how a key entered the keyring.
type KeySource string

const (
	SourceGenerated KeySource = "generated"
	SourceMnemonic  KeySource = "mnemonic"
	SourceHex       KeySource = "hex"
	SourcePEM       KeySource = "pem"
)

// ExportFormat selects the encoding produced by an export.
type ExportFormat string

const (
	FormatKeystore     ExportFormat = "keystore"
	FormatPEM          ExportFormat = "pem"
	FormatEncryptedPEM ExportFormat = "encrypted-pem"
	FormatHex          ExportFormat = "hex"
)

// ParseExportFormat validates s as an ExportFormat.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case FormatKeystore, FormatPEM, FormatEncryptedPEM, FormatHex:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// KeyInfo is the public view of a stored key.
type KeyInfo struct {
	Name        string
	PublicKey   string
	Fingerprint string
	Source      KeySource
	CreatedAt   time.Time
}

// Info drops the sealed material from r.
func (r KeyRecord) Info() KeyInfo {
	return KeyInfo{
		Name:        r.Name,
		PublicKey:   r.PublicKey,
		Fingerprint: r.Fingerprint,
		Source:      r.Source,
		CreatedAt:   r.CreatedAt,
	}
}
