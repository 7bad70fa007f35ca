package types

import "errors"

// RecordStore is the single source of truth for project records.
// Implementations must be safe for concurrent use; every mutation is applied
// atomically from the caller's point of view.
type RecordStore interface {
	// List returns every project ordered by ID ascending. A store that has
	// never been written returns an empty slice, not an error.
	List() ([]Project, error)

	// Get returns the project with the given ID. The bool is false when no
	// such project exists; absence is not an error.
	Get(id int64) (Project, bool, error)

	// Create validates the input, assigns the next ID, stamps both
	// timestamps, and persists the record.
	// Returns ErrValidation if name or url is missing.
	Create(in ProjectInput) (Project, error)

	// Update applies the non-nil fields of patch and refreshes UpdatedAt.
	// Returns ErrNotFound if no project exists with that ID.
	Update(id int64, patch ProjectPatch) (Project, error)

	// Delete removes the project with the given ID.
	// Returns ErrNotFound if no project exists with that ID.
	Delete(id int64) error

	// SetImage replaces the image reference of a project and returns the
	// previous reference (possibly empty).
	// Returns ErrNotFound if no project exists with that ID.
	SetImage(id int64, ref string) (string, error)

	// Close releases backend resources.
	Close() error
}

// Store errors. Handlers map them to HTTP status codes:
// ErrValidation and ErrUnsupportedType to 400, ErrNotFound to 404,
// ErrStorage to 500.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("project not found")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrStorage         = errors.New("storage failure")
)

// Backend selection errors.
var (
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDataDirEmpty   = errors.New("data directory must not be empty")
	ErrUploadPrefix   = errors.New("upload prefix must start with /")
	ErrNoExtensions   = errors.New("allowed extensions must not be empty")
)
