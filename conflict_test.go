package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every title lookup, for exercising the lookup-failure
// policies.
type brokenStore struct {
	*MemoryStore
}

func (b *brokenStore) FindByTitle(context.Context, string) (Document, error) {
	return nil, errors.New("lookup exploded")
}

func conflictContext(t *testing.T) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/posts", nil)
	return c
}

func TestDetectConflict(t *testing.T) {
	cfg := testConfig()
	store := seedStore(t, Document{"id": int64(1), "title": "taken", "userId": int64(1)})
	p := newPipeline(cfg, store, NewOpaqueIssuer())

	t.Run("new title passes", func(t *testing.T) {
		st := &requestState{method: http.MethodPost, body: Document{"id": int64(2), "title": "fresh"}}
		assert.Nil(t, p.detectConflict(conflictContext(t), st))
	})

	t.Run("existing title conflicts", func(t *testing.T) {
		st := &requestState{method: http.MethodPost, body: Document{"id": int64(2), "title": "taken"}}
		apiErr := p.detectConflict(conflictContext(t), st)
		require.NotNil(t, apiErr)
		assert.Equal(t, http.StatusConflict, apiErr.Status)
		assert.Equal(t, "title already exists", apiErr.Message)
	})

	t.Run("a record keeps its own title", func(t *testing.T) {
		st := &requestState{method: http.MethodPut, body: Document{"id": int64(1), "title": "taken"}}
		assert.Nil(t, p.detectConflict(conflictContext(t), st))
	})

	t.Run("partial updates are not checked", func(t *testing.T) {
		st := &requestState{method: http.MethodPatch, body: Document{"id": int64(2), "title": "taken"}}
		assert.Nil(t, p.detectConflict(conflictContext(t), st))
	})

	t.Run("missing title skips the check", func(t *testing.T) {
		st := &requestState{method: http.MethodPost, body: Document{"id": int64(2)}}
		assert.Nil(t, p.detectConflict(conflictContext(t), st))
	})
}

func TestConflictLookupFailurePolicy(t *testing.T) {
	broken := &brokenStore{NewMemoryStore()}

	t.Run("fail-open allows the write", func(t *testing.T) {
		cfg := testConfig()
		p := newPipeline(cfg, broken, NewOpaqueIssuer())
		st := &requestState{method: http.MethodPost, body: Document{"id": int64(1), "title": "anything"}}
		assert.Nil(t, p.detectConflict(conflictContext(t), st))
	})

	t.Run("fail-closed surfaces a 500", func(t *testing.T) {
		cfg := testConfig()
		cfg.ConflictFailClosed = true
		p := newPipeline(cfg, broken, NewOpaqueIssuer())
		st := &requestState{method: http.MethodPost, body: Document{"id": int64(1), "title": "anything"}}
		apiErr := p.detectConflict(conflictContext(t), st)
		require.NotNil(t, apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
		assert.Equal(t, "conflict check failed", apiErr.Message)
	})
}
