package shelf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/migrate"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

const legacyJSON = `[
  {"id": 1, "name": "alpha", "url": "http://a", "path": "/src/alpha"},
  {"id": 4, "name": "delta", "url": "http://d"}
]`

func open(t *testing.T, cfg types.Config) (types.RecordStore, Selection) {
	t.Helper()
	store, sel, err := OpenStore(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, sel
}

func TestOpenStore_AutoWithoutDatabaseUsesFile(t *testing.T) {
	dir := t.TempDir()
	store, sel := open(t, types.Config{DataDir: dir})

	assert.Equal(t, types.BackendJSON, sel.Backend)
	assert.Equal(t, filepath.Join(dir, types.DefaultJSONFile), sel.Path)

	_, err := store.Create(types.ProjectInput{Name: "n", URL: "u"})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, types.DefaultJSONFile))
	assert.NoFileExists(t, filepath.Join(dir, types.DefaultDBFile))
}

func TestOpenStore_AutoWithDatabaseMigrates(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{DataDir: dir}
	_, err := InitDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, types.DefaultJSONFile), []byte(legacyJSON), 0o644))

	store, sel := open(t, cfg)

	assert.Equal(t, types.BackendSQLite, sel.Backend)
	assert.Equal(t, 2, sel.Migration.Migrated)
	assert.Equal(t, filepath.Join(dir, types.DefaultJSONFile)+migrate.BackupSuffix, sel.Migration.BackupPath)
	assert.NoFileExists(t, filepath.Join(dir, types.DefaultJSONFile))

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(4), list[1].ID)

	created, err := store.Create(types.ProjectInput{Name: "e", URL: "http://e"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID, "ids continue after migrated records")
}

func TestOpenStore_ExplicitSQLiteCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	_, sel := open(t, types.Config{DataDir: dir, Backend: types.BackendSQLite})

	assert.Equal(t, types.BackendSQLite, sel.Backend)
	assert.FileExists(t, filepath.Join(dir, types.DefaultDBFile))
	assert.Zero(t, sel.Migration)
}

func TestOpenStore_ExplicitJSONIgnoresDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{DataDir: dir}
	_, err := InitDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, types.DefaultJSONFile), []byte(legacyJSON), 0o644))

	cfg.Backend = types.BackendJSON
	store, sel := open(t, cfg)

	assert.Equal(t, types.BackendJSON, sel.Backend)
	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.FileExists(t, filepath.Join(dir, types.DefaultJSONFile), "file backend never migrates")
}

func TestOpenStore_MalformedLegacyFileStillStarts(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, types.DefaultJSONFile)
	require.NoError(t, os.WriteFile(legacy, []byte("{not json"), 0o644))

	store, sel := open(t, types.Config{DataDir: dir, Backend: types.BackendSQLite})

	assert.Zero(t, sel.Migration.Migrated)
	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.FileExists(t, legacy)
}

func TestOpenStore_RejectsUnknownBackend(t *testing.T) {
	_, _, err := OpenStore(types.Config{DataDir: t.TempDir(), Backend: "postgres"}, nil)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestInitDatabase_KeepsData(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{DataDir: dir, Backend: types.BackendSQLite}
	store, _, err := OpenStore(cfg, nil)
	require.NoError(t, err)
	_, err = store.Create(types.ProjectInput{Name: "keep", URL: "http://k"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	path, err := InitDatabase(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, types.DefaultDBFile), path)

	store, _ = open(t, cfg)
	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
