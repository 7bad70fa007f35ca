// Package jsonfile implements the flat-file storage backend for shelf: a
// single JSON document holding every project, rewritten wholesale on each
// mutation.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Record is one project as it appears in projects.json. Legacy files carry
// no timestamps, so both are optional.
type Record struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Path        string `json:"path"`
	Image       string `json:"image"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Project converts the record to the entity type. Missing or unparseable
// timestamps become the zero time.
func (r Record) Project() types.Project {
	p := types.Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		URL:         r.URL,
		Path:        r.Path,
		Image:       r.Image,
	}
	p.CreatedAt, _ = parseTime(r.CreatedAt)
	p.UpdatedAt, _ = parseTime(r.UpdatedAt)
	return p
}

func recordFrom(p types.Project) Record {
	return Record{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		URL:         p.URL,
		Path:        p.Path,
		Image:       p.Image,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// ReadLegacy reads every record from the file at path. A missing or
// whitespace-only file yields no records and no error. Content that is not a
// JSON array of project objects is returned as an error; the caller decides
// whether that is fatal.
func ReadLegacy(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

// writeRecords atomically writes records to path using the temp-file,
// fsync, rename pattern. A failure leaves the previous file untouched.
func writeRecords(path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".projects-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing records: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
