package audit

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/rengatools/geometry/internal/config"
)

// DefaultSQLiteFile is the journal file created under logsDir when no
// explicit sqlite path is configured.
const DefaultSQLiteFile = "renga_geometry_audit.db"

// NewBackend creates an uninitialized backend based on configuration.
func NewBackend(cfg config.AuditConfig, logsDir string, logger *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "", "none":
		return Noop{}, nil
	case "memory":
		return NewMemory(cfg.Memory.Capacity), nil
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(logsDir, DefaultSQLiteFile)
		}
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return NewGorm(db, cfg.FlushInterval, logger), nil
	case "postgres":
		db, err := OpenPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return NewGorm(db, cfg.FlushInterval, logger), nil
	case "influx":
		return NewInflux(cfg.Influx), nil
	default:
		return nil, fmt.Errorf("unknown audit type: %s", cfg.Type)
	}
}

// Open creates and starts the configured backend.
func Open(cfg config.AuditConfig, logsDir string, logger *slog.Logger) (Backend, error) {
	b, err := NewBackend(cfg, logsDir, logger)
	if err != nil {
		return nil, err
	}
	if err := Start(b); err != nil {
		return nil, fmt.Errorf("starting %s audit backend: %w", cfg.Type, err)
	}
	return b, nil
}
