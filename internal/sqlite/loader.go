package sqlite

import (
	"database/sql"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// upsertProject writes a project under its own id. Data columns always take
// the incoming values (last write wins). Timestamps take the incoming value
// when present (?7, ?8), otherwise keep the existing row's value, otherwise
// fall back to the load time (?9). Re-running a load therefore leaves the
// table unchanged.
const upsertProject = `
INSERT INTO projects (` + projectColumns + `)
VALUES (?1, ?2, ?3, ?4, ?5, ?6, COALESCE(?7, ?9), COALESCE(?8, ?7, ?9))
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	description = excluded.description,
	url = excluded.url,
	path = excluded.path,
	image = excluded.image,
	created_at = COALESCE(?7, projects.created_at),
	updated_at = COALESCE(?8, ?7, projects.updated_at)`

// UpsertProjects writes projects with their existing ids using insert-or-
// replace semantics, so a later record with the same id overwrites an
// earlier one. Loading is transactional: either every accepted record is
// committed or none is. Records that violate the schema (missing id, name
// or url) are skipped and counted rather than aborting the load.
func (b *Backend) UpsertProjects(projects []types.Project) (written, skipped int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	loadedAt := formatTime(b.now())
	err = b.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(upsertProject)
		if err != nil {
			return storageErr("preparing upsert", err)
		}
		defer stmt.Close()

		for _, p := range projects {
			if p.ID <= 0 || p.Name == "" || p.URL == "" {
				skipped++
				continue
			}
			if _, err := stmt.Exec(p.ID, p.Name, p.Description, p.URL, p.Path, p.Image,
				nullTime(p.CreatedAt), nullTime(p.UpdatedAt), loadedAt); err != nil {
				return storageErr("upserting project", err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return written, skipped, nil
}

// nullTime maps the zero time to SQL NULL.
func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}
