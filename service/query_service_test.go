package service

import (
	"context"
	"testing"

	"github.com/chatpdf/chatpdf-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStore serves canned passages keyed by the pdfName filter value
// and records every filter it was queried with.
type scriptedStore struct {
	passages  map[string][]types.Passage
	triedRefs []string
}

func (s *scriptedStore) AddChunks(ctx context.Context, chunks []types.DocumentChunk) error {
	return nil
}

func (s *scriptedStore) Query(ctx context.Context, query string, filter types.ChunkFilter, limit int) ([]types.Passage, error) {
	s.triedRefs = append(s.triedRefs, filter.PDFName)
	return s.passages[filter.PDFName], nil
}

func (s *scriptedStore) HasDocument(ctx context.Context, filter types.ChunkFilter) (bool, error) {
	return len(s.passages[filter.PDFName]) > 0, nil
}

func newScriptedStore(storedKey string) *scriptedStore {
	return &scriptedStore{
		passages: map[string][]types.Passage{
			storedKey: {{Content: "a relevant passage", ChunkID: storedKey + "_0"}},
		},
	}
}

func TestQueryExactReference(t *testing.T) {
	store := newScriptedStore("abc123")
	qs := NewQueryService(store, NewAnalyticsService(""))

	results, err := qs.Query(context.Background(), "abc123", "anything")
	require.NoError(t, err)
	assert.Equal(t, []string{"a relevant passage"}, results)
	assert.Equal(t, []string{"abc123"}, store.triedRefs)
}

func TestQueryStripsExtensionFallback(t *testing.T) {
	store := newScriptedStore("abc123")
	qs := NewQueryService(store, NewAnalyticsService(""))

	results, err := qs.Query(context.Background(), "abc123.pdf", "anything")
	require.NoError(t, err)
	assert.Len(t, results, 1)
	// identity, then %20 decode (no-op, deduplicated), then strip-ext hit
	assert.Equal(t, []string{"abc123.pdf", "abc123"}, store.triedRefs)
}

func TestQueryEncodedSpaceFallback(t *testing.T) {
	store := newScriptedStore("a document.pdf")
	qs := NewQueryService(store, NewAnalyticsService(""))

	results, err := qs.Query(context.Background(), "a%20document.pdf", "anything")
	require.NoError(t, err)
	assert.Len(t, results, 1)
	// The first fallback (decode %20) must produce the hit.
	assert.Equal(t, "a document.pdf", store.triedRefs[len(store.triedRefs)-1])
	assert.Equal(t, 2, len(store.triedRefs))
}

func TestQueryAppendExtensionFallback(t *testing.T) {
	store := newScriptedStore("a document.pdf")
	qs := NewQueryService(store, NewAnalyticsService(""))

	results, err := qs.Query(context.Background(), "a document", "anything")
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "a document.pdf", store.triedRefs[len(store.triedRefs)-1])
	assert.Greater(t, len(store.triedRefs), 2, "should hit via a later fallback")
}

func TestQueryExhaustsFallbacks(t *testing.T) {
	store := newScriptedStore("something else entirely")
	qs := NewQueryService(store, NewAnalyticsService(""))

	_, err := qs.Query(context.Background(), "never ingested.pdf", "anything")
	assert.ErrorIs(t, err, types.ErrNoResults)
	assert.NotEmpty(t, store.triedRefs)
}
