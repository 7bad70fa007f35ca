package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/internal/storetest"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "projects.json"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) types.RecordStore {
		return openTestStore(t)
	})
}

func TestStore_CreateReusesDeletedHighestID(t *testing.T) {
	s := openTestStore(t)

	first, err := s.Create(types.ProjectInput{Name: "first", URL: "http://a"})
	require.NoError(t, err)
	require.Equal(t, int64(1), first.ID)
	require.NoError(t, s.Delete(first.ID))

	again, err := s.Create(types.ProjectInput{Name: "again", URL: "http://b"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.ID)
}

func TestStore_NoFileUntilFirstWrite(t *testing.T) {
	s := openTestStore(t)

	_, err := s.List()
	require.NoError(t, err)
	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err), "list must not create the file")

	_, err = s.Create(types.ProjectInput{Name: "a", URL: "http://a"})
	require.NoError(t, err)
	_, err = os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestStore_WritesIndentedArray(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Create(types.ProjectInput{Name: "项目", URL: "http://a"})
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n")

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "项目", raw[0]["name"])
	assert.Contains(t, raw[0], "created_at")
	assert.Contains(t, raw[0], "image")
}

func TestStore_ReadsLegacyFileWithoutTimestamps(t *testing.T) {
	s := openTestStore(t)
	legacy := `[
  {"id": 4, "name": "four", "url": "http://4"},
  {"id": 2, "name": "two", "description": "d", "url": "http://2", "path": "/two"}
]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(legacy), 0o644))

	projects, err := s.List()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, int64(2), projects[0].ID)
	assert.Equal(t, "/two", projects[0].Path)
	assert.True(t, projects[0].CreatedAt.IsZero())

	p, err := s.Create(types.ProjectInput{Name: "five", URL: "http://5"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
}

func TestStore_MalformedFileIsStorageError(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, err := s.List()
	assert.ErrorIs(t, err, types.ErrStorage)

	_, err = s.Create(types.ProjectInput{Name: "a", URL: "http://a"})
	assert.ErrorIs(t, err, types.ErrStorage)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "corrupt file must not be overwritten")
}

func TestStore_EmptyFileIsEmptyList(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("  \n"), 0o644))

	projects, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestWriteRecords_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "projects.json")

	require.NoError(t, writeRecords(path, []Record{{ID: 1, Name: "a", URL: "http://a"}}))
	require.NoError(t, writeRecords(path, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "projects.json", entries[0].Name())

	records, err := ReadLegacy(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}
