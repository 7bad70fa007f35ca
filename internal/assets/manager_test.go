package assets

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/jsonfile"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake image body")

// newTestManager returns a manager whose store already holds project 7.
func newTestManager(t *testing.T) (*Manager, *jsonfile.Store) {
	t.Helper()
	dir := t.TempDir()
	cfg := types.Config{DataDir: dir, MaxUploadBytes: 64}.WithDefaults()

	require.NoError(t, os.WriteFile(cfg.JSONPath(),
		[]byte(`[{"id": 7, "name": "seven", "url": "http://7"}]`), 0o644))
	store, err := jsonfile.Open(cfg.JSONPath())
	require.NoError(t, err)

	return New(cfg, store, zap.NewNop()), store
}

func storedFiles(t *testing.T, m *Manager) []string {
	t.Helper()
	entries, err := os.ReadDir(m.Root())
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestAccept_StoresImageAndUpdatesRecord(t *testing.T) {
	m, store := newTestManager(t)

	ref, err := m.Accept(7, "photo.PNG", bytes.NewReader(pngBytes))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "/static/uploads/7_"), ref)
	assert.True(t, strings.HasSuffix(ref, "_photo.png"), ref)

	data, err := os.ReadFile(filepath.Join(m.Root(), filepath.Base(ref)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	p, ok, err := store.Get(7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ref, p.Image)
}

func TestAccept_RejectsUnsupportedType(t *testing.T) {
	m, _ := newTestManager(t)

	for _, name := range []string{"malware.exe", "noext", "image.png.exe", "vector.svg"} {
		_, err := m.Accept(7, name, bytes.NewReader(pngBytes))
		assert.ErrorIs(t, err, types.ErrUnsupportedType, name)
	}
	assert.Empty(t, storedFiles(t, m))
}

func TestAccept_RejectsMissingFile(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Accept(7, "", bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = m.Accept(7, "photo.png", nil)
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = m.Accept(7, "empty.png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Empty(t, storedFiles(t, m))
}

func TestAccept_RejectsOversizedFile(t *testing.T) {
	m, store := newTestManager(t)

	_, err := m.Accept(7, "big.gif", bytes.NewReader(bytes.Repeat([]byte("x"), 65)))
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Empty(t, storedFiles(t, m))

	p, _, err := store.Get(7)
	require.NoError(t, err)
	assert.Empty(t, p.Image)
}

func TestAccept_UnknownProject(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Accept(99, "photo.png", bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Empty(t, storedFiles(t, m), "no orphan file for unknown project")
}

func TestAccept_ReplacesPreviousImage(t *testing.T) {
	m, store := newTestManager(t)

	first, err := m.Accept(7, "photo.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	second, err := m.Accept(7, "photo.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "identical names must not collide")
	_, err = os.Stat(filepath.Join(m.Root(), filepath.Base(first)))
	assert.True(t, os.IsNotExist(err), "first image should be removed")
	assert.Equal(t, []string{filepath.Base(second)}, storedFiles(t, m))

	p, _, err := store.Get(7)
	require.NoError(t, err)
	assert.Equal(t, second, p.Image)
}

func TestAccept_PreviousImageAlreadyGone(t *testing.T) {
	m, store := newTestManager(t)
	_, err := store.SetImage(7, "/static/uploads/7_deadbeef_missing.png")
	require.NoError(t, err)

	ref, err := m.Accept(7, "new.jpg", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Contains(t, ref, "7_")
}

func TestAccept_SanitizesFilename(t *testing.T) {
	m, _ := newTestManager(t)
	m.newToken = func() (string, error) { return "abcd1234", nil }

	ref, err := m.Accept(7, `..\..\windows\my photo (1).JPG`, bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/7_abcd1234_my_photo_1.jpg", ref)
}

func TestAccept_TokenFailure(t *testing.T) {
	m, _ := newTestManager(t)
	m.newToken = func() (string, error) { return "", errors.New("entropy exhausted") }

	_, err := m.Accept(7, "photo.png", bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, types.ErrStorage)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestAccept_ReadFailureLeavesNothing(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Accept(7, "photo.png", failingReader{})
	assert.ErrorIs(t, err, types.ErrStorage)
	assert.Empty(t, storedFiles(t, m))
}

func TestRelease(t *testing.T) {
	m, _ := newTestManager(t)
	ref, err := m.Accept(7, "photo.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)

	require.NoError(t, m.Release(ref))
	assert.Empty(t, storedFiles(t, m))

	// Already removed, foreign, or traversing references are ignored.
	assert.NoError(t, m.Release(ref))
	assert.NoError(t, m.Release("https://cdn.example.com/x.png"))
	assert.NoError(t, m.Release("/static/uploads/../projects.json"))
	_, err = os.Stat(filepath.Join(filepath.Dir(m.Root()), "projects.json"))
	assert.NoError(t, err, "traversal must not delete files outside the upload root")
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in, stem, ext string
	}{
		{"photo.PNG", "photo", ".png"},
		{"../../etc/passwd.png", "passwd", ".png"},
		{`C:\Users\me\shot.jpeg`, "shot", ".jpeg"},
		{"截图.gif", "image", ".gif"},
		{".png", "image", ".png"},
		{"...hidden..jpg", "hidden.", ".jpg"},
		{"a  b--c.jpg", "a_b--c", ".jpg"},
		{"noext", "noext", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			stem, ext := splitName(tt.in)
			assert.Equal(t, tt.stem, stem)
			assert.Equal(t, tt.ext, ext)
		})
	}
}
