package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chatpdf/chatpdf-be/database"
	"github.com/chatpdf/chatpdf-be/types"
	"github.com/chatpdf/chatpdf-be/utils"
)

// Ingest statuses observable via the status endpoint.
const (
	IngestStatusPending = "pending"
	IngestStatusDone    = "done"
	IngestStatusFailed  = "failed"
)

// IngestResult describes the outcome of an ingest call.
type IngestResult struct {
	Filename      string  // canonical pdf name, empty when AlreadyExists
	Queued        bool    // indexing continues in the background
	AlreadyExists bool    // document was indexed before, nothing to do
	TimeToLoad    float64 // download duration in seconds
}

// IngestService runs the full pipeline: existence check, fetch, validate,
// persist, chunk, index. Downloads slower than asyncThreshold push the
// chunk+index stage to a background goroutine; its completion is recorded
// in an in-memory status registry keyed by pdf name.
type IngestService struct {
	fetcher        *FetchService
	pdfService     *PDFService
	storage        *StorageService
	store          database.VectorStore
	analytics      *AnalyticsService
	asyncThreshold time.Duration

	mu       sync.Mutex
	statuses map[string]string
}

func NewIngestService(
	fetcher *FetchService,
	pdfService *PDFService,
	storage *StorageService,
	store database.VectorStore,
	analytics *AnalyticsService,
	asyncThreshold time.Duration,
) *IngestService {
	return &IngestService{
		fetcher:        fetcher,
		pdfService:     pdfService,
		storage:        storage,
		store:          store,
		analytics:      analytics,
		asyncThreshold: asyncThreshold,
		statuses:       make(map[string]string),
	}
}

// Ingest registers the document at pdfURL. Idempotent per origin URL: a
// URL whose chunks are already indexed short-circuits before downloading,
// and identical bytes reached through a different URL are caught by the
// content-hash probe after download.
func (s *IngestService) Ingest(ctx context.Context, pdfURL string) (*IngestResult, error) {
	if err := validatePDFURL(pdfURL); err != nil {
		return nil, err
	}
	s.analytics.Track("pdf_load_requested", pdfURL, nil)

	exists, err := s.store.HasDocument(ctx, types.ChunkFilter{Source: pdfURL})
	if err != nil {
		return nil, fmt.Errorf("existence check failed: %w", err)
	}
	if exists {
		log.Printf("[ingest] PDF %s already indexed, skipping download", pdfURL)
		return &IngestResult{AlreadyExists: true}, nil
	}

	start := time.Now()
	data, err := s.fetcher.Fetch(ctx, pdfURL)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	pages, err := s.pdfService.Validate(data)
	if err != nil {
		return nil, err
	}
	log.Printf("[ingest] downloaded %s in %.2fs, %d pages", pdfURL, elapsed.Seconds(), pages)

	pdfName, err := s.storage.Save(data)
	if err != nil {
		return nil, err
	}

	// Same bytes seen before under another URL: the chunks are already in
	// the store under this content hash.
	stem := utils.FileNameWithoutExt(pdfName)
	if exists, err := s.store.HasDocument(ctx, types.ChunkFilter{PDFName: stem}); err == nil && exists {
		log.Printf("[ingest] content of %s already indexed as %s", pdfURL, pdfName)
		s.setStatus(pdfName, IngestStatusDone)
		return &IngestResult{Filename: pdfName, AlreadyExists: true, TimeToLoad: elapsed.Seconds()}, nil
	}

	if elapsed > s.asyncThreshold {
		s.setStatus(pdfName, IngestStatusPending)
		go s.indexInBackground(pdfName, pdfURL)
		return &IngestResult{
			Filename:   pdfName,
			Queued:     true,
			TimeToLoad: elapsed.Seconds(),
		}, nil
	}

	if err := s.chunkAndIndex(ctx, pdfName, pdfURL); err != nil {
		s.setStatus(pdfName, IngestStatusFailed)
		return nil, err
	}
	s.setStatus(pdfName, IngestStatusDone)
	s.analytics.Track("pdf_load_completed", pdfURL, map[string]interface{}{"filename": pdfName})
	return &IngestResult{Filename: pdfName, TimeToLoad: elapsed.Seconds()}, nil
}

func (s *IngestService) chunkAndIndex(ctx context.Context, pdfName, source string) error {
	chunks, tokens, err := s.pdfService.Chunk(pdfName, source)
	if err != nil {
		return err
	}
	if err := s.store.AddChunks(ctx, chunks); err != nil {
		return fmt.Errorf("failed to index chunks: %w", err)
	}
	log.Printf("[ingest] indexed %d chunks (~%d tokens) for %s", len(chunks), tokens, pdfName)
	return nil
}

// indexInBackground finishes the queued stage of a slow ingest. There is
// no caller left to report to; the outcome lands in the status registry.
func (s *IngestService) indexInBackground(pdfName, source string) {
	if err := s.chunkAndIndex(context.Background(), pdfName, source); err != nil {
		log.Printf("[ingest] background indexing of %s failed: %v", pdfName, err)
		s.setStatus(pdfName, IngestStatusFailed)
		return
	}
	s.setStatus(pdfName, IngestStatusDone)
	s.analytics.Track("pdf_load_completed", source, map[string]interface{}{"filename": pdfName, "background": true})
}

// Status reports the ingest state for a pdf name (with or without the
// .pdf extension). The registry only covers documents ingested by this
// process.
func (s *IngestService) Status(pdfName string) (string, bool) {
	if !strings.HasSuffix(pdfName, ".pdf") {
		pdfName += ".pdf"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[pdfName]
	return status, ok
}

func (s *IngestService) setStatus(pdfName, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[pdfName] = status
}

func validatePDFURL(pdfURL string) error {
	u, err := url.ParseRequestURI(pdfURL)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", types.ErrInvalidURL, pdfURL)
	}
	return nil
}
