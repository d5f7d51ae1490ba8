package store

import (
	"context"
	"fmt"

	"gastos/internal/client/session"
	"gastos/internal/config"
	"gastos/internal/db"
	"gastos/internal/logging"
)

// Backend modes.
const (
	ModeAuto   = "auto"
	ModeRemote = "remote"
	ModeDevice = "device"
	ModeMemory = "memory"
)

// Open selects and constructs the persistence backend, once, at startup.
// With ModeAuto the device database is probed first; if it cannot be opened
// the remote API is used when configured, with the in-memory snapshot as the
// final fallback. The chosen backend is never switched mid-session.
func Open(ctx context.Context, cfg *config.ClientConfig, sessions *session.Manager, log logging.Logger) (Store, string, error) {
	switch cfg.Mode {
	case ModeRemote:
		return NewRemoteStore(cfg.APIBaseURL, sessions), ModeRemote, nil
	case ModeDevice:
		conn, err := db.NewSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, "", fmt.Errorf("open device database: %w", err)
		}
		return NewSQLiteStore(conn, sessions), ModeDevice, nil
	case ModeMemory:
		s, err := NewMemoryStore(cfg.SnapshotPath, sessions)
		if err != nil {
			return nil, "", fmt.Errorf("open memory snapshot: %w", err)
		}
		return s, ModeMemory, nil
	case ModeAuto:
		if conn, err := db.NewSQLite(ctx, cfg.DBPath); err == nil {
			return NewSQLiteStore(conn, sessions), ModeDevice, nil
		} else {
			log.Warn(ctx, "device database unavailable", "path", cfg.DBPath, "error", err)
		}
		if cfg.APIBaseURL != "" {
			return NewRemoteStore(cfg.APIBaseURL, sessions), ModeRemote, nil
		}
		s, err := NewMemoryStore(cfg.SnapshotPath, sessions)
		if err != nil {
			return nil, "", fmt.Errorf("open memory snapshot: %w", err)
		}
		return s, ModeMemory, nil
	default:
		return nil, "", fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}
