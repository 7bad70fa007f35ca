// Package storetest holds the behavioural contract every types.RecordStore
// implementation must satisfy. Backend packages call Run from their tests.
package storetest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Factory returns a fresh, empty store. Cleanup is registered on t.
type Factory func(t *testing.T) types.RecordStore

func strPtr(s string) *string { return &s }

// Run executes the contract suite against stores produced by open.
func Run(t *testing.T, open Factory) {
	t.Run("list on empty store", func(t *testing.T) {
		s := open(t)
		projects, err := s.List()
		require.NoError(t, err)
		assert.Empty(t, projects)
	})

	t.Run("create assigns ids starting at 1", func(t *testing.T) {
		s := open(t)
		p, err := s.Create(types.ProjectInput{Name: "Foo", URL: "http://x"})
		require.NoError(t, err)

		assert.Equal(t, int64(1), p.ID)
		assert.Equal(t, "Foo", p.Name)
		assert.Equal(t, "", p.Description)
		assert.Equal(t, "http://x", p.URL)
		assert.Equal(t, "", p.Path)
		assert.Equal(t, "", p.Image)
		assert.False(t, p.CreatedAt.IsZero())
		assert.True(t, p.CreatedAt.Equal(p.UpdatedAt))
	})

	t.Run("create rejects missing required fields", func(t *testing.T) {
		s := open(t)
		_, err := s.Create(types.ProjectInput{Name: "no url"})
		assert.ErrorIs(t, err, types.ErrValidation)
		_, err = s.Create(types.ProjectInput{URL: "http://x"})
		assert.ErrorIs(t, err, types.ErrValidation)

		projects, err := s.List()
		require.NoError(t, err)
		assert.Empty(t, projects, "failed create must not persist anything")
	})

	t.Run("ids strictly increase", func(t *testing.T) {
		s := open(t)
		var last int64
		for i := 0; i < 5; i++ {
			p, err := s.Create(types.ProjectInput{Name: "p", URL: "http://p"})
			require.NoError(t, err)
			assert.Greater(t, p.ID, last)
			last = p.ID
		}
	})

	t.Run("create then get round trips", func(t *testing.T) {
		s := open(t)
		created, err := s.Create(types.ProjectInput{
			Name:        "Shelf",
			Description: "bookmark manager",
			URL:         "https://example.com/shelf",
			Path:        "/home/dev/shelf",
		})
		require.NoError(t, err)

		got, ok, err := s.Get(created.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Shelf", got.Name)
		assert.Equal(t, "bookmark manager", got.Description)
		assert.Equal(t, "https://example.com/shelf", got.URL)
		assert.Equal(t, "/home/dev/shelf", got.Path)
		assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
		assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
	})

	t.Run("get unknown id is absent", func(t *testing.T) {
		s := open(t)
		_, ok, err := s.Get(42)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("update changes only supplied fields", func(t *testing.T) {
		s := open(t)
		created, err := s.Create(types.ProjectInput{Name: "a", Description: "d", URL: "http://a", Path: "/a"})
		require.NoError(t, err)

		updated, err := s.Update(created.ID, types.ProjectPatch{Name: strPtr("X")})
		require.NoError(t, err)

		assert.Equal(t, "X", updated.Name)
		assert.Equal(t, "d", updated.Description)
		assert.Equal(t, "http://a", updated.URL)
		assert.Equal(t, "/a", updated.Path)
		assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

		got, ok, err := s.Get(created.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "X", got.Name)
		assert.Equal(t, "d", got.Description)
	})

	t.Run("update rejects emptying required fields", func(t *testing.T) {
		s := open(t)
		created, err := s.Create(types.ProjectInput{Name: "a", URL: "http://a"})
		require.NoError(t, err)

		_, err = s.Update(created.ID, types.ProjectPatch{URL: strPtr("")})
		assert.ErrorIs(t, err, types.ErrValidation)

		got, _, err := s.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "http://a", got.URL)
	})

	t.Run("update unknown id", func(t *testing.T) {
		s := open(t)
		_, err := s.Update(9, types.ProjectPatch{Name: strPtr("X")})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("delete then get update delete", func(t *testing.T) {
		s := open(t)
		created, err := s.Create(types.ProjectInput{Name: "gone", URL: "http://gone"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(created.ID))

		_, ok, err := s.Get(created.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = s.Update(created.ID, types.ProjectPatch{Name: strPtr("X")})
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.ErrorIs(t, s.Delete(created.ID), types.ErrNotFound)
	})

	t.Run("list is ordered by id", func(t *testing.T) {
		s := open(t)
		for _, name := range []string{"c", "a", "b"} {
			_, err := s.Create(types.ProjectInput{Name: name, URL: "http://" + name})
			require.NoError(t, err)
		}
		require.NoError(t, s.Delete(2))

		projects, err := s.List()
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, int64(1), projects[0].ID)
		assert.Equal(t, int64(3), projects[1].ID)
		assert.Equal(t, "c", projects[0].Name)
		assert.Equal(t, "b", projects[1].Name)
	})

	t.Run("set image returns previous reference", func(t *testing.T) {
		s := open(t)
		created, err := s.Create(types.ProjectInput{Name: "img", URL: "http://img"})
		require.NoError(t, err)

		prev, err := s.SetImage(created.ID, "/static/uploads/1_aa_first.png")
		require.NoError(t, err)
		assert.Equal(t, "", prev)

		prev, err = s.SetImage(created.ID, "/static/uploads/1_bb_second.png")
		require.NoError(t, err)
		assert.Equal(t, "/static/uploads/1_aa_first.png", prev)

		got, _, err := s.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "/static/uploads/1_bb_second.png", got.Image)

		_, err = s.SetImage(99, "/static/uploads/x.png")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("end to end", func(t *testing.T) {
		s := open(t)
		p, err := s.Create(types.ProjectInput{Name: "Foo", URL: "http://x"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), p.ID)

		p, err = s.Update(1, types.ProjectPatch{Description: strPtr("bar")})
		require.NoError(t, err)
		assert.Equal(t, "Foo", p.Name)
		assert.Equal(t, "bar", p.Description)
		assert.Equal(t, "http://x", p.URL)

		require.NoError(t, s.Delete(1))
		_, ok, err := s.Get(1)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("concurrent creates keep every record", func(t *testing.T) {
		s := open(t)
		const n = 20
		var wg sync.WaitGroup
		ids := make(chan int64, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p, err := s.Create(types.ProjectInput{Name: "c", URL: "http://c"})
				if assert.NoError(t, err) {
					ids <- p.ID
				}
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[int64]bool)
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		projects, err := s.List()
		require.NoError(t, err)
		assert.Len(t, projects, n)
	})
}
