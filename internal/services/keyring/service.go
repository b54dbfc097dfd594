package keyring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"edkey/internal/domain"
	"edkey/internal/mnemonic"
	"edkey/internal/store"
	"edkey/pkg/keys"
)

// Options configures a Service. Zero values select defaults.
type Options struct {
	Policy             Policy
	KeystoreIterations int
	PEMIterations      int
	Logger             *zap.Logger
}

// Service manages named keys using a backing store.
type Service struct {
	store   domain.KeyStore
	policy  Policy
	ksIter  int
	pemIter int
	log     *zap.Logger
	now     func() time.Time
}

// New returns a keyring service backed by the given store.
func New(s domain.KeyStore, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:   s,
		policy:  opts.Policy,
		ksIter:  opts.KeystoreIterations,
		pemIter: opts.PEMIterations,
		log:     log.Named("keyring"),
		now:     time.Now,
	}
}

// Generate creates a key from a fresh 24-word mnemonic and stores it under
// name. The mnemonic is returned so the caller can show it once for backup;
// it is not stored.
func (s *Service) Generate(name, passphrase string) (domain.KeyInfo, mnemonic.Mnemonic, error) {
	if err := s.precheck(name, passphrase); err != nil {
		return domain.KeyInfo{}, mnemonic.Mnemonic{}, err
	}
	m, err := mnemonic.Generate()
	if err != nil {
		return domain.KeyInfo{}, mnemonic.Mnemonic{}, err
	}
	k, err := keys.FromMnemonic(m, "")
	if err != nil {
		return domain.KeyInfo{}, mnemonic.Mnemonic{}, err
	}
	defer k.Destroy()

	info, err := s.put(name, passphrase, k, domain.SourceGenerated)
	if err != nil {
		return domain.KeyInfo{}, mnemonic.Mnemonic{}, err
	}
	return info, m, nil
}

// ImportKey stores a key given in any hex form keys.FromString accepts.
func (s *Service) ImportKey(name, passphrase, keyHex string) (domain.KeyInfo, error) {
	if err := s.precheck(name, passphrase); err != nil {
		return domain.KeyInfo{}, err
	}
	k, err := keys.FromString(keyHex)
	if err != nil {
		return domain.KeyInfo{}, err
	}
	defer k.Destroy()
	return s.put(name, passphrase, k, domain.SourceHex)
}

// ImportMnemonic stores the account key derived from phrase and its
// optional BIP-39 passphrase.
func (s *Service) ImportMnemonic(name, passphrase, phrase, mnemonicPass string) (domain.KeyInfo, error) {
	if err := s.precheck(name, passphrase); err != nil {
		return domain.KeyInfo{}, err
	}
	m, err := mnemonic.Parse(phrase)
	if err != nil {
		return domain.KeyInfo{}, err
	}
	k, err := keys.FromMnemonic(m, mnemonicPass)
	if err != nil {
		return domain.KeyInfo{}, err
	}
	defer k.Destroy()
	return s.put(name, passphrase, k, domain.SourceMnemonic)
}

// ImportPEM stores the key in pemText. A non-empty pemPass selects the
// ENCRYPTED PRIVATE KEY block; otherwise the plain PRIVATE KEY block is read.
func (s *Service) ImportPEM(name, passphrase, pemText, pemPass string) (domain.KeyInfo, error) {
	if err := s.precheck(name, passphrase); err != nil {
		return domain.KeyInfo{}, err
	}
	var (
		k   *keys.PrivateKey
		err error
	)
	if pemPass != "" {
		k, err = keys.FromEncryptedPEM(pemText, pemPass)
	} else {
		k, err = keys.FromPEM(pemText)
	}
	if err != nil {
		return domain.KeyInfo{}, err
	}
	defer k.Destroy()
	return s.put(name, passphrase, k, domain.SourcePEM)
}

// Load opens the key stored under name. The caller owns the result and
// should Destroy it when done.
func (s *Service) Load(name, passphrase string) (*keys.PrivateKey, error) {
	rec, err := s.store.Load(name)
	if err != nil {
		return nil, err
	}
	k, err := keys.FromKeystore(rec.Keystore, passphrase)
	if err != nil {
		if errors.Is(err, keys.ErrKeyMismatch) {
			s.log.Warn("keystore rejected passphrase", zap.String("name", name))
		}
		return nil, fmt.Errorf("open key %q: %w", name, err)
	}
	if pub := k.PublicKey().String(); pub != rec.PublicKey {
		k.Destroy()
		return nil, fmt.Errorf("open key %q: %w: stored public key does not match", name, keys.ErrKeyMismatch)
	}
	return k, nil
}

// Export returns the key under name in format. exportPass seals the
// keystore and encrypted-pem formats and must satisfy the policy; the
// other formats ignore it.
func (s *Service) Export(name, passphrase string, format domain.ExportFormat, exportPass string) (string, error) {
	if format == domain.FormatKeystore || format == domain.FormatEncryptedPEM {
		if err := s.policy.Check(exportPass); err != nil {
			return "", err
		}
	}
	k, err := s.Load(name, passphrase)
	if err != nil {
		return "", err
	}
	defer k.Destroy()

	var out string
	switch format {
	case domain.FormatKeystore:
		var blob []byte
		blob, err = k.ToKeystore(exportPass, keys.WithIterations(s.ksIter))
		out = string(blob)
	case domain.FormatPEM:
		out, err = k.ToPEM()
	case domain.FormatEncryptedPEM:
		out, err = k.ToEncryptedPEM(exportPass, keys.WithIterations(s.pemIter))
	case domain.FormatHex:
		out = k.String()
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return "", err
	}
	s.log.Info("key exported", zap.String("name", name), zap.String("format", string(format)))
	return out, nil
}

// Sign signs msg with the key under name.
func (s *Service) Sign(name, passphrase string, msg []byte) ([]byte, error) {
	k, err := s.Load(name, passphrase)
	if err != nil {
		return nil, err
	}
	defer k.Destroy()
	return k.Sign(msg), nil
}

// Verify checks sig over msg against a public key in hex, or against the
// stored public key when publicKey names a key in the keyring.
func (s *Service) Verify(publicKey string, msg, sig []byte) (bool, error) {
	if store.ValidateName(publicKey) == nil {
		if rec, err := s.store.Load(publicKey); err == nil {
			publicKey = rec.PublicKey
		} else if !errors.Is(err, store.ErrNotFound) {
			return false, err
		}
	}
	pub, err := keys.PublicKeyFromString(publicKey)
	if err != nil {
		return false, err
	}
	return pub.Verify(msg, sig), nil
}

// Derive walks path from the account key of phrase. Every index is
// hardened. ctx is checked between steps.
func (s *Service) Derive(ctx context.Context, phrase, mnemonicPass string, path []uint32) (*keys.PrivateKey, error) {
	m, err := mnemonic.Parse(phrase)
	if err != nil {
		return nil, err
	}
	k, err := keys.FromMnemonic(m, mnemonicPass)
	if err != nil {
		return nil, err
	}
	for _, index := range path {
		child, err := k.DeriveContext(ctx, index)
		k.Destroy()
		if err != nil {
			return nil, err
		}
		k = child
	}
	s.log.Debug("derived key",
		zap.Int("depth", len(path)),
		zap.String("fingerprint", k.PublicKey().Fingerprint()))
	return k, nil
}

// List returns the public view of every stored key.
func (s *Service) List() ([]domain.KeyInfo, error) {
	recs, err := s.store.List()
	if err != nil {
		return nil, err
	}
	out := make([]domain.KeyInfo, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Info())
	}
	return out, nil
}

// Info returns the public view of the key under name.
func (s *Service) Info(name string) (domain.KeyInfo, error) {
	rec, err := s.store.Load(name)
	if err != nil {
		return domain.KeyInfo{}, err
	}
	return rec.Info(), nil
}

// Delete removes the key under name.
func (s *Service) Delete(name string) error {
	if err := s.store.Delete(name); err != nil {
		return err
	}
	s.log.Info("key deleted", zap.String("name", name))
	return nil
}

// precheck rejects a bad name, an existing name or a weak passphrase before
// any key material is produced.
func (s *Service) precheck(name, passphrase string) error {
	exists, err := s.store.Has(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q", store.ErrExists, name)
	}
	return s.policy.Check(passphrase)
}

func (s *Service) put(name, passphrase string, k *keys.PrivateKey, src domain.KeySource) (domain.KeyInfo, error) {
	blob, err := k.ToKeystore(passphrase, keys.WithIterations(s.ksIter))
	if err != nil {
		return domain.KeyInfo{}, err
	}
	rec := domain.KeyRecord{
		Name:        name,
		PublicKey:   k.PublicKey().String(),
		Fingerprint: k.PublicKey().Fingerprint(),
		Source:      src,
		CreatedAt:   s.now().UTC(),
		Keystore:    json.RawMessage(blob),
	}
	if err := s.store.Save(rec); err != nil {
		return domain.KeyInfo{}, err
	}
	s.log.Info("key stored",
		zap.String("name", name),
		zap.String("fingerprint", rec.Fingerprint),
		zap.String("source", string(src)))
	return rec.Info(), nil
}
