package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore implements Store with an in-memory map. It backs tests and the
// STORE=memory deployment mode. A sync.RWMutex guards every access; documents
// are copied on the way in and out so callers can never alias stored state.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[int64]Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[int64]Document)}
}

// All returns copies of every document, ordered by id.
func (m *MemoryStore) All(_ context.Context) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyDocument(m.docs[id]))
	}
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (m *MemoryStore) FindByTitle(_ context.Context, title string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Scan in id order so duplicates (which the pipeline prevents going
	// forward) resolve deterministically.
	ids := make([]int64, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if t, ok := m.docs[id]["title"].(string); ok && t == title {
			return copyDocument(m.docs[id]), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Insert(_ context.Context, doc Document) error {
	id, ok := asInt64(doc["id"])
	if !ok {
		return fmt.Errorf("document has no integer id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.docs[id]; exists {
		return fmt.Errorf("duplicate id %d", id)
	}
	m.docs[id] = copyDocument(doc)
	return nil
}

func (m *MemoryStore) Replace(_ context.Context, id int64, doc Document) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return nil, ErrNotFound
	}
	stored := copyDocument(doc)
	stored["id"] = id
	m.docs[id] = stored
	return copyDocument(stored), nil
}

func (m *MemoryStore) Patch(_ context.Context, id int64, fields Document) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	doc["id"] = id
	return copyDocument(doc), nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}
