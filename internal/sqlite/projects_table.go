package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (types.Project, error) {
	var p types.Project
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.URL, &p.Path, &p.Image, &createdAt, &updatedAt); err != nil {
		return types.Project{}, err
	}
	var err error
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return types.Project{}, fmt.Errorf("parsing project created_at: %w", err)
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return types.Project{}, fmt.Errorf("parsing project updated_at: %w", err)
	}
	return p, nil
}

// List returns every project ordered by id.
func (b *Backend) List() ([]types.Project, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, storageErr("list", errClosed)
	}
	rows, err := b.db.Query("SELECT " + projectColumns + " FROM projects ORDER BY id ASC")
	if err != nil {
		return nil, storageErr("listing projects", err)
	}
	defer rows.Close()

	projects := []types.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, storageErr("scanning project", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("listing projects", err)
	}
	return projects, nil
}

// Get returns the project with the given id, or false if absent.
func (b *Backend) Get(id int64) (types.Project, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return types.Project{}, false, storageErr("get", errClosed)
	}
	p, err := scanProject(b.db.QueryRow("SELECT "+projectColumns+" FROM projects WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Project{}, false, nil
	}
	if err != nil {
		return types.Project{}, false, storageErr("getting project", err)
	}
	return p, true, nil
}

// Create inserts a project and returns it with its assigned id.
func (b *Backend) Create(in types.ProjectInput) (types.Project, error) {
	if err := in.Validate(); err != nil {
		return types.Project{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	p := in.Project()
	p.CreatedAt = b.now()
	p.UpdatedAt = p.CreatedAt

	err := b.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO projects (name, description, url, path, image, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.Name, p.Description, p.URL, p.Path, p.Image,
			formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
		if err != nil {
			return storageErr("inserting project", err)
		}
		p.ID, err = res.LastInsertId()
		if err != nil {
			return storageErr("reading project id", err)
		}
		return nil
	})
	if err != nil {
		return types.Project{}, err
	}
	return p, nil
}

// Update applies the supplied fields in one transaction.
func (b *Backend) Update(id int64, patch types.ProjectPatch) (types.Project, error) {
	if err := patch.Validate(); err != nil {
		return types.Project{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var p types.Project
	err := b.withTx(func(tx *sql.Tx) error {
		var err error
		p, err = getTx(tx, id)
		if err != nil {
			return err
		}
		patch.Apply(&p)
		p.UpdatedAt = b.now()
		_, err = tx.Exec(`
			UPDATE projects SET name = ?, description = ?, url = ?, path = ?, updated_at = ?
			WHERE id = ?`,
			p.Name, p.Description, p.URL, p.Path, formatTime(p.UpdatedAt), id)
		if err != nil {
			return storageErr("updating project", err)
		}
		return nil
	})
	if err != nil {
		return types.Project{}, err
	}
	return p, nil
}

// Delete removes the project with the given id.
func (b *Backend) Delete(id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM projects WHERE id = ?", id)
		if err != nil {
			return storageErr("deleting project", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storageErr("deleting project", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: id %d", types.ErrNotFound, id)
		}
		return nil
	})
}

// SetImage replaces the image reference and returns the previous one.
func (b *Backend) SetImage(id int64, ref string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var previous string
	err := b.withTx(func(tx *sql.Tx) error {
		p, err := getTx(tx, id)
		if err != nil {
			return err
		}
		previous = p.Image
		_, err = tx.Exec("UPDATE projects SET image = ?, updated_at = ? WHERE id = ?",
			ref, formatTime(b.now()), id)
		if err != nil {
			return storageErr("updating project image", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

func getTx(tx *sql.Tx, id int64) (types.Project, error) {
	p, err := scanProject(tx.QueryRow("SELECT "+projectColumns+" FROM projects WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Project{}, fmt.Errorf("%w: id %d", types.ErrNotFound, id)
	}
	if err != nil {
		return types.Project{}, storageErr("getting project", err)
	}
	return p, nil
}
