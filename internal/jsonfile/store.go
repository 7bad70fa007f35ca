package jsonfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Store implements types.RecordStore on top of a single JSON file.
// Mutations hold mu across the whole read-modify-write so that concurrent
// callers in this process never overwrite each other. Other processes
// writing the same file are not coordinated.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

var _ types.RecordStore = (*Store)(nil)

// Open returns a Store backed by the file at path. The file itself is not
// created until the first mutation; its directory is created eagerly.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", types.ErrStorage, err)
	}
	return &Store{
		path: path,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string { return s.path }

// List returns every project sorted by ID.
func (s *Store) List() ([]types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	projects := make([]types.Project, 0, len(records))
	for _, r := range records {
		projects = append(projects, r.Project())
	}
	return projects, nil
}

// Get returns the project with the given ID, or false if absent.
func (s *Store) Get(id int64) (types.Project, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return types.Project{}, false, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return types.Project{}, false, nil
	}
	return records[i].Project(), true, nil
}

// Create assigns max(ID)+1 and appends the project.
//
// The file keeps no high-water mark, so deleting the highest id and then
// creating hands that id out again. The database backend never reuses ids.
func (s *Store) Create(in types.ProjectInput) (types.Project, error) {
	if err := in.Validate(); err != nil {
		return types.Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return types.Project{}, err
	}

	var maxID int64
	for _, r := range records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}

	p := in.Project()
	p.ID = maxID + 1
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt

	if err := s.save(append(records, recordFrom(p))); err != nil {
		return types.Project{}, err
	}
	return p, nil
}

// Update applies the supplied fields and refreshes UpdatedAt.
func (s *Store) Update(id int64, patch types.ProjectPatch) (types.Project, error) {
	if err := patch.Validate(); err != nil {
		return types.Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return types.Project{}, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return types.Project{}, fmt.Errorf("%w: id %d", types.ErrNotFound, id)
	}

	p := records[i].Project()
	patch.Apply(&p)
	p.UpdatedAt = s.now()
	records[i] = recordFrom(p)

	if err := s.save(records); err != nil {
		return types.Project{}, err
	}
	return p, nil
}

// Delete removes the project with the given ID.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(records, id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", types.ErrNotFound, id)
	}
	remaining := append(records[:i:i], records[i+1:]...)
	return s.save(remaining)
}

// SetImage replaces the image reference and returns the previous one.
func (s *Store) SetImage(id int64, ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return "", err
	}
	i := indexOf(records, id)
	if i < 0 {
		return "", fmt.Errorf("%w: id %d", types.ErrNotFound, id)
	}

	p := records[i].Project()
	previous := p.Image
	p.Image = ref
	p.UpdatedAt = s.now()
	records[i] = recordFrom(p)

	if err := s.save(records); err != nil {
		return "", err
	}
	return previous, nil
}

// Close is a no-op; the file is not held open between calls.
func (s *Store) Close() error { return nil }

// load reads and sorts the records. The caller must hold s.mu.
func (s *Store) load() ([]Record, error) {
	records, err := ReadLegacy(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrStorage, err)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// save persists the records. The caller must hold s.mu.
func (s *Store) save(records []Record) error {
	if err := writeRecords(s.path, records); err != nil {
		return fmt.Errorf("%w: %w", types.ErrStorage, err)
	}
	return nil
}

func indexOf(records []Record, id int64) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
