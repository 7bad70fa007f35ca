// Package assets manages uploaded project thumbnails: it validates and
// stores image files under the upload root, points the project record at
// the new file, and removes the file it replaces.
package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// tokenLen is the number of hex characters of the random disambiguator.
const tokenLen = 8

// Manager owns the files under the upload root. It never writes record
// fields itself; the image reference goes through RecordStore.SetImage.
type Manager struct {
	cfg      types.Config
	store    types.RecordStore
	logger   *zap.Logger
	newToken func() (string, error)
}

// New returns a Manager for the upload root and prefix in cfg.
func New(cfg types.Config, store types.RecordStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:      cfg.WithDefaults(),
		store:    store,
		logger:   logger.Named("assets"),
		newToken: randomToken,
	}
}

// Root returns the upload directory.
func (m *Manager) Root() string { return m.cfg.UploadPath() }

// Prefix returns the web path prefix of every reference.
func (m *Manager) Prefix() string { return m.cfg.UploadPrefix }

// MaxBytes returns the largest accepted file size.
func (m *Manager) MaxBytes() int64 { return m.cfg.MaxUploadBytes }

// Accept stores src as the new thumbnail of the project and returns its
// reference path. The previous thumbnail file, if any, is removed.
//
// Returns ErrValidation when no file or filename is supplied or the file is
// empty or too large, ErrUnsupportedType when the extension is not allowed,
// and ErrNotFound when the project does not exist. Nothing is left on disk
// when Accept fails.
func (m *Manager) Accept(projectID int64, filename string, src io.Reader) (string, error) {
	if src == nil || strings.TrimSpace(filename) == "" {
		return "", fmt.Errorf("%w: no file supplied", types.ErrValidation)
	}
	stem, ext := splitName(filename)
	if !m.cfg.IsAllowedExtension(ext) {
		return "", fmt.Errorf("%w: %q (allowed: %s)", types.ErrUnsupportedType,
			ext, strings.Join(m.cfg.AllowedExtensions, ", "))
	}

	if _, ok, err := m.store.Get(projectID); err != nil {
		return "", err
	} else if !ok {
		return "", fmt.Errorf("%w: id %d", types.ErrNotFound, projectID)
	}

	token, err := m.newToken()
	if err != nil {
		return "", fmt.Errorf("%w: generating file name: %w", types.ErrStorage, err)
	}
	name := fmt.Sprintf("%d_%s_%s%s", projectID, token, stem, ext)
	dst := filepath.Join(m.Root(), name)

	if err := m.write(dst, src); err != nil {
		return "", err
	}

	ref := m.cfg.UploadPrefix + "/" + name
	previous, err := m.store.SetImage(projectID, ref)
	if err != nil {
		os.Remove(dst)
		return "", err
	}

	if previous != "" && previous != ref {
		if err := m.Release(previous); err != nil {
			// The record already points at the new file; a leftover is harmless.
			m.logger.Warn("removing previous image", zap.String("ref", previous), zap.Error(err))
		}
	}

	m.logger.Info("image stored",
		zap.Int64("project_id", projectID),
		zap.String("ref", ref),
		zap.String("previous", previous),
	)
	return ref, nil
}

// Release removes the file behind ref. References outside the upload
// prefix or naming nested paths are ignored, as are files already gone.
func (m *Manager) Release(ref string) error {
	path, ok := m.resolve(ref)
	if !ok {
		m.logger.Debug("ignoring foreign image reference", zap.String("ref", ref))
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: removing %s: %w", types.ErrStorage, path, err)
	}
	return nil
}

// resolve maps a reference back to a file directly inside the upload root.
func (m *Manager) resolve(ref string) (string, bool) {
	name, found := strings.CutPrefix(ref, m.cfg.UploadPrefix+"/")
	if !found || name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return filepath.Join(m.Root(), name), true
}

// write copies src to dst, enforcing the size limit. dst must not exist.
func (m *Manager) write(dst string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: creating upload directory: %w", types.ErrStorage, err)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", types.ErrStorage, dst, err)
	}

	limit := m.cfg.MaxUploadBytes
	written, err := io.Copy(out, &io.LimitedReader{R: src, N: limit + 1})
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	switch {
	case err != nil:
		os.Remove(dst)
		return fmt.Errorf("%w: writing %s: %w", types.ErrStorage, dst, err)
	case written > limit:
		os.Remove(dst)
		return fmt.Errorf("%w: file exceeds %d bytes", types.ErrValidation, limit)
	case written == 0:
		os.Remove(dst)
		return fmt.Errorf("%w: file is empty", types.ErrValidation)
	}
	return nil
}

func randomToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id.String(), "-", "")[:tokenLen], nil
}
