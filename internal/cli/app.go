package cli

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/memstore"
	"github.com/Makepad-fr/tada/internal/store/sqlstore"
	"github.com/Makepad-fr/tada/internal/ui"
)

// app is the per-process host: one store, one slot, one logger.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
	slot  store.Slot
	out   io.Writer
	err   io.Writer
}

// open builds the logger, the slot and the store, then loads what was persisted.
func (a *app) open() error {
	if err := a.cfg.Validate(); err != nil {
		return usageErrorf("config: %v", err)
	}
	ui.SetTheme(a.cfg.UI.Theme)

	log, err := logging.New(a.cfg.Log.Level)
	if err != nil {
		return usageErrorf("%v", err)
	}
	a.log = log

	slot, err := openSlot(a.cfg.Storage)
	if err != nil {
		return err
	}
	a.slot = slot
	a.store = store.New(slot, store.WithLogger(log))

	res, err := a.store.Load()
	if err != nil {
		if res == store.LoadMalformed {
			return fmt.Errorf("load: %w (inspect or reset the %q entry in %s storage)", err, store.Key, a.cfg.Storage.Backend)
		}
		return fmt.Errorf("load: %w", err)
	}
	a.log.Debug("store ready",
		zap.String("backend", a.cfg.Storage.Backend),
		zap.Stringer("load", res),
		zap.Int("todos", a.store.Len()))
	return nil
}

// close releases the slot and flushes the logger.
func (a *app) close() error {
	var errs []error
	if c, ok := a.slot.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return errors.Join(errs...)
}

func openSlot(cfg config.StorageConfig) (store.Slot, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memstore.New(), nil
	case config.BackendFile:
		path := cfg.Path
		if path == "" {
			p, err := jsonstore.DefaultPath()
			if err != nil {
				return nil, fmt.Errorf("open storage: %w", err)
			}
			path = p
		}
		return jsonstore.New(path), nil
	case config.BackendSQLite:
		s, err := sqlstore.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		return s, nil
	case config.BackendMySQL:
		s, err := sqlstore.OpenMySQL(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		return s, nil
	}
	return nil, usageErrorf("unknown storage backend %q", cfg.Backend)
}
