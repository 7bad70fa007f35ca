// Package migrate moves projects from the legacy flat JSON file into the
// SQLite database. It runs once at startup, before any request is served.
//
// Unreadable or malformed legacy content is treated as "nothing to
// migrate": a corrupt file must never keep the application from starting.
package migrate

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/jsonfile"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// BackupSuffix is appended to the legacy file name once it is migrated.
const BackupSuffix = ".backup"

// Target is the write side of the database backend used by the migrator.
type Target interface {
	UpsertProjects(projects []types.Project) (written, skipped int, err error)
}

// Result summarises one migration run.
type Result struct {
	Found      int    // records parsed from the legacy file
	Migrated   int    // records written to the database
	Skipped    int    // records rejected (missing id, name or url)
	BackupPath string // where the legacy file was moved; empty if untouched
}

// Run migrates the legacy file at legacyPath into target. The schema must
// already exist. A missing, empty, or unparseable file is a no-op and
// leaves the file in place. After a successful write the file is renamed
// to legacyPath + BackupSuffix.
//
// Errors are returned only when the database write or the rename fails;
// callers decide whether that is fatal.
func Run(target Target, legacyPath string, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("legacy_file", legacyPath))

	records, err := jsonfile.ReadLegacy(legacyPath)
	if err != nil {
		log.Warn("legacy file unreadable, nothing to migrate", zap.Error(err))
		return Result{}, nil
	}
	if len(records) == 0 {
		log.Debug("no legacy records to migrate")
		return Result{}, nil
	}

	projects := make([]types.Project, 0, len(records))
	for _, r := range records {
		projects = append(projects, r.Project())
	}

	written, skipped, err := target.UpsertProjects(projects)
	if err != nil {
		return Result{Found: len(records)}, fmt.Errorf("migrating %s: %w", legacyPath, err)
	}

	res := Result{
		Found:    len(records),
		Migrated: written,
		Skipped:  skipped,
	}

	backup := legacyPath + BackupSuffix
	if err := os.Rename(legacyPath, backup); err != nil && !errors.Is(err, os.ErrNotExist) {
		return res, fmt.Errorf("%w: retiring legacy file: %w", types.ErrStorage, err)
	}
	res.BackupPath = backup

	if res.Skipped > 0 {
		log.Warn("legacy records skipped",
			zap.Int("skipped", res.Skipped),
			zap.Int("found", res.Found),
		)
	}
	log.Info("migrated legacy projects",
		zap.Int("found", res.Found),
		zap.Int("migrated", res.Migrated),
		zap.Int("skipped", res.Skipped),
		zap.String("backup", backup),
	)
	return res, nil
}
