package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/chatpdf/chatpdf-be/database"
	"github.com/chatpdf/chatpdf-be/types"
)

const defaultTopK = 5

// refTransforms is the ordered fallback chain for document references.
// Clients name documents inconsistently (URL-encoded spaces, with or
// without the extension); each transform is pure and is applied to the
// original reference, and the identical similarity query is re-issued
// with the transformed filter value.
var refTransforms = []func(string) string{
	func(ref string) string { return strings.ReplaceAll(ref, "%20", " ") },
	func(ref string) string { return strings.TrimSuffix(ref, ".pdf") },
	func(ref string) string { return strings.ReplaceAll(ref, " ", "%20") },
	func(ref string) string {
		if strings.HasSuffix(ref, ".pdf") {
			return ref
		}
		return ref + ".pdf"
	},
}

// QueryService resolves natural-language queries against a single
// document's indexed chunks.
type QueryService struct {
	store     database.VectorStore
	analytics *AnalyticsService
	topK      int
}

func NewQueryService(store database.VectorStore, analytics *AnalyticsService) *QueryService {
	return &QueryService{
		store:     store,
		analytics: analytics,
		topK:      defaultTopK,
	}
}

// Query returns the top passages for query scoped to pdfRef, walking the
// fallback chain on empty results. Ranking order is the store's; no
// re-ranking happens here.
func (s *QueryService) Query(ctx context.Context, pdfRef, query string) ([]string, error) {
	for _, ref := range candidateRefs(pdfRef) {
		passages, err := s.store.Query(ctx, query, types.ChunkFilter{PDFName: ref}, s.topK)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}
		if len(passages) == 0 {
			log.Printf("[query] no results for %q as %q", pdfRef, ref)
			continue
		}
		results := make([]string, len(passages))
		for i, p := range passages {
			results[i] = p.Content
		}
		s.analytics.Track("pdf_query", pdfRef, map[string]interface{}{"results": len(results)})
		return results, nil
	}
	return nil, fmt.Errorf("%w: document %q", types.ErrNoResults, pdfRef)
}

// candidateRefs is the reference itself followed by its fallback
// transforms, deduplicated in order.
func candidateRefs(pdfRef string) []string {
	refs := []string{pdfRef}
	seen := map[string]bool{pdfRef: true}
	for _, transform := range refTransforms {
		ref := transform(pdfRef)
		if !seen[ref] {
			refs = append(refs, ref)
			seen[ref] = true
		}
	}
	return refs
}
