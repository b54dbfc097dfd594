package app

import (
	"go.uber.org/zap"

	"edkey/internal/services/keyring"
	"edkey/internal/store"
)

// Wire bundles the services for the CLI.
type Wire struct {
	Keyring *keyring.Service
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, log *zap.Logger) *Wire {
	keyStore := store.NewKeyFileStore(cfg.Home)

	svc := keyring.New(keyStore, keyring.Options{
		Policy:             keyring.Policy{MinLength: cfg.PassphrasePolicy.MinLength},
		KeystoreIterations: cfg.Keystore.Iterations,
		PEMIterations:      cfg.PEM.Iterations,
		Logger:             log,
	})

	return &Wire{Keyring: svc}
}
