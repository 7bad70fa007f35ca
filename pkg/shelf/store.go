package shelf

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/jsonfile"
	"github.com/mesh-intelligence/shelf/internal/migrate"
	"github.com/mesh-intelligence/shelf/internal/sqlite"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Selection reports which backend OpenStore chose and what migration did.
type Selection struct {
	Backend   string         // types.BackendJSON or types.BackendSQLite
	Path      string         // file backing the store
	Migration migrate.Result // zero unless the database backend was chosen
}

// OpenStore opens the record store named by cfg.Backend:
//
//   - json: the flat file only.
//   - sqlite: the database, created if missing, after migrating the flat file.
//   - auto: the database if its file already exists, otherwise the flat file.
//
// The choice is made once; it does not change for the life of the store.
// The caller must Close the returned store.
func OpenStore(cfg types.Config, logger *zap.Logger) (types.RecordStore, Selection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, Selection{}, fmt.Errorf("invalid config: %w", err)
	}

	backend := cfg.Backend
	if backend == types.BackendAuto {
		backend = types.BackendJSON
		if dbExists(cfg.DBPath()) {
			backend = types.BackendSQLite
		}
	}

	if backend == types.BackendJSON {
		store, err := jsonfile.Open(cfg.JSONPath())
		if err != nil {
			return nil, Selection{}, err
		}
		sel := Selection{Backend: backend, Path: store.Path()}
		logger.Info("record store opened", zap.String("backend", sel.Backend), zap.String("path", sel.Path))
		return store, sel, nil
	}

	db, err := sqlite.Open(cfg.DBPath())
	if err != nil {
		return nil, Selection{}, err
	}
	res, err := migrate.Run(db, cfg.JSONPath(), logger.Named("migrate"))
	if err != nil {
		db.Close()
		return nil, Selection{}, err
	}
	sel := Selection{Backend: backend, Path: db.Path(), Migration: res}
	logger.Info("record store opened",
		zap.String("backend", sel.Backend),
		zap.String("path", sel.Path),
		zap.Int("migrated", res.Migrated),
	)
	return db, sel, nil
}

// InitDatabase creates the database file and schema so that later
// auto selection picks the database. Existing data is kept.
func InitDatabase(cfg types.Config) (string, error) {
	cfg = cfg.WithDefaults()
	db, err := sqlite.Open(cfg.DBPath())
	if err != nil {
		return "", err
	}
	return db.Path(), db.Close()
}

func dbExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return !errors.Is(err, os.ErrNotExist)
	}
	return !info.IsDir()
}
