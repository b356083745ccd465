package main

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("new store is empty", func(t *testing.T) {
		store := NewMemoryStore()
		docs, err := store.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)

		_, err = store.Get(ctx, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("insert and get", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Insert(ctx, Document{"id": int64(1), "title": "a"}))

		doc, err := store.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "a", doc["title"])

		// Mutating the returned document must not touch stored state.
		doc["title"] = "mutated"
		doc2, err := store.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "a", doc2["title"])
	})

	t.Run("insert requires an integer id", func(t *testing.T) {
		store := NewMemoryStore()
		assert.Error(t, store.Insert(ctx, Document{"title": "no id"}))
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Insert(ctx, Document{"id": int64(1), "title": "a"}))
		assert.Error(t, store.Insert(ctx, Document{"id": int64(1), "title": "b"}))
	})

	t.Run("all is ordered by id", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Insert(ctx, Document{"id": int64(3), "title": "c"}))
		require.NoError(t, store.Insert(ctx, Document{"id": int64(1), "title": "a"}))
		require.NoError(t, store.Insert(ctx, Document{"id": int64(2), "title": "b"}))

		docs, err := store.All(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "a", docs[0]["title"])
		assert.Equal(t, "b", docs[1]["title"])
		assert.Equal(t, "c", docs[2]["title"])
	})

	t.Run("find by title", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Insert(ctx, Document{"id": int64(1), "title": "findme"}))

		doc, err := store.FindByTitle(ctx, "findme")
		require.NoError(t, err)
		assert.EqualValues(t, 1, doc["id"])

		_, err = store.FindByTitle(ctx, "absent")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("replace swaps the whole document", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Insert(ctx, Document{"id": int64(1), "title": "a", "body": "old"}))

		doc, err := store.Replace(ctx, 1, Document{"title": "b"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, doc["id"])
		assert.Equal(t, "b", doc["title"])
		_, hadBody := doc["body"]
		assert.False(t, hadBody, "replace must drop fields absent from the new document")

		_, err = store.Replace(ctx, 9, Document{"title": "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("patch merges fields", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Insert(ctx, Document{"id": int64(1), "title": "a", "body": "kept"}))

		doc, err := store.Patch(ctx, 1, Document{"title": "b"})
		require.NoError(t, err)
		assert.Equal(t, "b", doc["title"])
		assert.Equal(t, "kept", doc["body"])
		assert.EqualValues(t, 1, doc["id"])

		_, err = store.Patch(ctx, 9, Document{"title": "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Insert(ctx, Document{"id": int64(1), "title": "a"}))
		require.NoError(t, store.Delete(ctx, 1))
		assert.ErrorIs(t, store.Delete(ctx, 1), ErrNotFound)
	})

	t.Run("concurrent writers and readers", func(t *testing.T) {
		store := NewMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func(id int64) {
				defer wg.Done()
				_ = store.Insert(ctx, Document{"id": id, "title": "t"})
			}(int64(i))
			go func() {
				defer wg.Done()
				_, _ = store.All(ctx)
			}()
		}
		wg.Wait()

		docs, err := store.All(ctx)
		require.NoError(t, err)
		assert.Len(t, docs, 20)
	})
}
