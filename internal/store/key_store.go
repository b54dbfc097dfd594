package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"edkey/internal/domain"
)

const (
	keysDir = "keys"
	keyExt  = ".json"
)

var (
	ErrInvalidName = errors.New("invalid key name (1-64 characters from A-Z a-z 0-9 . _ -)")
	ErrNotFound    = errors.New("key not found")
	ErrExists      = errors.New("key already exists")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// ValidateName reports whether name can be used as a key name.
func ValidateName(name string) error {
	if !validName.MatchString(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// KeyFileStore persists key records as <dir>/keys/<name>.json.
type KeyFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewKeyFileStore returns a KeyFileStore rooted at dir.
func NewKeyFileStore(dir string) *KeyFileStore {
	return &KeyFileStore{dir: filepath.Join(dir, keysDir)}
}

func (s *KeyFileStore) path(name string) string {
	return filepath.Join(s.dir, name+keyExt)
}

// Save writes rec. It refuses to replace an existing record.
func (s *KeyFileStore) Save(rec domain.KeyRecord) error {
	if err := ValidateName(rec.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := createJSON(s.path(rec.Name), rec, 0o600)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %q", ErrExists, rec.Name)
	}
	return err
}

// Load reads the record stored under name.
func (s *KeyFileStore) Load(name string) (domain.KeyRecord, error) {
	if err := ValidateName(name); err != nil {
		return domain.KeyRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec domain.KeyRecord
	if err := readJSON(s.path(name), &rec); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.KeyRecord{}, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return domain.KeyRecord{}, fmt.Errorf("read key %q: %w", name, err)
	}
	return rec, nil
}

// Has reports whether a record named name exists.
func (s *KeyFileStore) Has(name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// List returns every record, sorted by name. A missing keys directory is an
// empty keyring.
func (s *KeyFileStore) List() ([]domain.KeyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []domain.KeyRecord
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), keyExt)
		if e.IsDir() || !ok || ValidateName(name) != nil {
			continue
		}
		var rec domain.KeyRecord
		if err := readJSON(filepath.Join(s.dir, e.Name()), &rec); err != nil {
			return nil, fmt.Errorf("read key %q: %w", name, err)
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the record stored under name.
func (s *KeyFileStore) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return err
}

// Compile-time assertion that KeyFileStore implements domain.KeyStore.
var _ domain.KeyStore = (*KeyFileStore)(nil)
