package database

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/chatpdf/chatpdf-be/types"
)

const chunkBlobSuffix = ".chunks.gob"

// storedChunk is the on-disk representation of an indexed chunk.
type storedChunk struct {
	Chunk  types.DocumentChunk
	Vector []float32
}

// FileStore is a file-backed fallback store: one gob blob of chunks per
// document under dir, mirrored in memory. Similarity uses cosine distance
// over embeddings when an Embedder is configured, otherwise a lexical
// term-overlap score. Good enough for single-node deployments and tests;
// not a replacement for a real vector database.
type FileStore struct {
	dir      string
	embedder Embedder

	mu   sync.RWMutex
	docs map[string][]storedChunk // keyed by pdfName (stem)
}

func NewFileStore(dir string, embedder Embedder) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chunk directory: %v", err)
	}
	s := &FileStore{
		dir:      dir,
		embedder: embedder,
		docs:     make(map[string][]storedChunk),
	}
	if err := s.loadBlobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) loadBlobs() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read chunk directory: %v", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, chunkBlobSuffix) {
			continue
		}
		f, err := os.Open(filepath.Join(s.dir, name))
		if err != nil {
			return fmt.Errorf("failed to open chunk blob %s: %v", name, err)
		}
		var chunks []storedChunk
		err = gob.NewDecoder(f).Decode(&chunks)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to decode chunk blob %s: %v", name, err)
		}
		s.docs[strings.TrimSuffix(name, chunkBlobSuffix)] = chunks
	}
	return nil
}

// AddChunks embeds (when configured) and persists all chunks of a call as
// one blob per document, then publishes them to the in-memory index. The
// blob write happens before publication, so a crash cannot leave queryable
// chunks that are missing on disk.
func (s *FileStore) AddChunks(ctx context.Context, chunks []types.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	var vectors [][]float32
	if s.embedder != nil {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		var err error
		vectors, err = s.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunks: %w", err)
		}
	}

	byDoc := make(map[string][]storedChunk)
	for i, c := range chunks {
		sc := storedChunk{Chunk: c}
		if vectors != nil {
			sc.Vector = vectors[i]
		}
		byDoc[c.Metadata.PDFName] = append(byDoc[c.Metadata.PDFName], sc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for pdfName, docChunks := range byDoc {
		merged := append(append([]storedChunk{}, s.docs[pdfName]...), docChunks...)
		if err := s.writeBlob(pdfName, merged); err != nil {
			return err
		}
		s.docs[pdfName] = merged
	}
	return nil
}

// ReInit drops all indexed chunks and removes their on-disk blobs.
func (s *FileStore) ReInit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read chunk directory: %v", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), chunkBlobSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove chunk blob %s: %v", entry.Name(), err)
		}
	}
	s.docs = make(map[string][]storedChunk)
	return nil
}

func (s *FileStore) writeBlob(pdfName string, chunks []storedChunk) error {
	path := filepath.Join(s.dir, pdfName+chunkBlobSuffix)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chunk blob: %v", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(chunks); err != nil {
		return fmt.Errorf("failed to encode chunk blob: %v", err)
	}
	return nil
}

func (s *FileStore) Query(ctx context.Context, query string, filter types.ChunkFilter, limit int) ([]types.Passage, error) {
	if limit <= 0 {
		limit = 5
	}

	var queryVec []float32
	if s.embedder != nil {
		vecs, err := s.embedder.Embed(ctx, []string{query})
		if err != nil {
			return nil, fmt.Errorf("failed to embed query: %w", err)
		}
		queryVec = vecs[0]
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		passage types.Passage
		score   float64
	}
	var matches []scored
	for pdfName, docChunks := range s.docs {
		if filter.PDFName != "" && filter.PDFName != pdfName {
			continue
		}
		for _, sc := range docChunks {
			if filter.Source != "" && filter.Source != sc.Chunk.Metadata.Source {
				continue
			}
			var score float64
			if queryVec != nil && sc.Vector != nil {
				score = cosineSimilarity(queryVec, sc.Vector)
			} else {
				score = lexicalScore(query, sc.Chunk.Content)
			}
			if score <= 0 {
				continue
			}
			matches = append(matches, scored{
				passage: types.Passage{
					Content:  sc.Chunk.Content,
					Page:     sc.Chunk.Metadata.Page,
					ChunkID:  sc.Chunk.Metadata.ChunkID,
					Distance: float32(1 - score),
				},
				score: score,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	passages := make([]types.Passage, len(matches))
	for i, m := range matches {
		passages[i] = m.passage
	}
	return passages, nil
}

func (s *FileStore) HasDocument(ctx context.Context, filter types.ChunkFilter) (bool, error) {
	if filter.PDFName == "" && filter.Source == "" {
		return false, fmt.Errorf("empty chunk filter")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for pdfName, docChunks := range s.docs {
		if filter.PDFName != "" && filter.PDFName != pdfName {
			continue
		}
		if filter.Source == "" {
			if len(docChunks) > 0 {
				return true, nil
			}
			continue
		}
		for _, sc := range docChunks {
			if sc.Chunk.Metadata.Source == filter.Source {
				return true, nil
			}
		}
	}
	return false, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// lexicalScore is the fraction of query terms present in the text.
func lexicalScore(query, text string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}
