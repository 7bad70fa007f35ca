package types

import (
	"path/filepath"
	"strings"
)

// Config holds backend selection and storage locations for the record store
// and the asset manager. Relative file names resolve against DataDir.
type Config struct {
	Backend           string   `json:"backend" yaml:"backend"`
	DataDir           string   `json:"data_dir" yaml:"data_dir"`
	JSONFile          string   `json:"json_file" yaml:"json_file"`
	DBFile            string   `json:"db_file" yaml:"db_file"`
	UploadDir         string   `json:"upload_dir" yaml:"upload_dir"`
	UploadPrefix      string   `json:"upload_prefix" yaml:"upload_prefix"`
	AllowedExtensions []string `json:"allowed_extensions" yaml:"allowed_extensions"`
	MaxUploadBytes    int64    `json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// Supported backend names.
const (
	BackendAuto   = "auto"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Defaults applied by WithDefaults.
const (
	DefaultJSONFile       = "projects.json"
	DefaultDBFile         = "projects.db"
	DefaultUploadDir      = "uploads"
	DefaultUploadPrefix   = "/static/uploads"
	DefaultMaxUploadBytes = 16 << 20
)

// DefaultAllowedExtensions is the image extension allow-list.
var DefaultAllowedExtensions = []string{"png", "jpg", "jpeg", "gif"}

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendAuto:   true,
	BackendJSON:   true,
	BackendSQLite: true,
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendAuto
	}
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.JSONFile == "" {
		c.JSONFile = DefaultJSONFile
	}
	if c.DBFile == "" {
		c.DBFile = DefaultDBFile
	}
	if c.UploadDir == "" {
		c.UploadDir = DefaultUploadDir
	}
	if c.UploadPrefix == "" {
		c.UploadPrefix = DefaultUploadPrefix
	}
	c.UploadPrefix = "/" + strings.Trim(c.UploadPrefix, "/")
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = append([]string(nil), DefaultAllowedExtensions...)
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return c
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if !strings.HasPrefix(c.UploadPrefix, "/") {
		return ErrUploadPrefix
	}
	if len(c.AllowedExtensions) == 0 {
		return ErrNoExtensions
	}
	return nil
}

// JSONPath returns the location of the flat-file store.
func (c Config) JSONPath() string { return c.resolve(c.JSONFile) }

// DBPath returns the location of the SQLite database file.
func (c Config) DBPath() string { return c.resolve(c.DBFile) }

// UploadPath returns the upload root directory.
func (c Config) UploadPath() string { return c.resolve(c.UploadDir) }

// IsAllowedExtension reports whether ext (with or without a leading dot)
// is in the allow-list, ignoring case.
func (c Config) IsAllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return false
	}
	for _, allowed := range c.AllowedExtensions {
		if strings.ToLower(strings.TrimPrefix(allowed, ".")) == ext {
			return true
		}
	}
	return false
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}
