package app

import (
	"io"
	"os"

	"go.uber.org/zap"
)

// App is what commands run against.
type App struct {
	Config Config
	Log    *zap.Logger
	*Wire
}

// New creates home if needed, loads its config, applies a non-empty
// logLevel override, and wires the services. Logs go to logOut.
func New(home, logLevel string, logOut io.Writer) (*App, error) {
	if err := os.MkdirAll(home, 0o700); err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	log, err := NewLogger(cfg.LogLevel, logOut)
	if err != nil {
		return nil, err
	}
	return &App{
		Config: cfg,
		Log:    log,
		Wire:   NewWire(cfg, log),
	}, nil
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.Log.Sync()
}
