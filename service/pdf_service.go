package service

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/chatpdf/chatpdf-be/types"
	"github.com/chatpdf/chatpdf-be/utils"
	"github.com/ledongthuc/pdf"
)

// Documents past this page count are accepted but flagged; chunking still
// runs over the full content.
const largeDocumentPages = 250

var pdfMagic = []byte("%PDF-")

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	MaxChunkSize: 1000,
	OverlapSize:  0,
}

// PDFService validates PDF containers and turns persisted documents into
// indexable chunks.
type PDFService struct {
	maxChunkSize int // Maximum size of each text chunk
	overlapSize  int // Size of overlap between chunks
	storage      *StorageService
	tokenCount   atomic.Int64 // advisory running total across ingests
}

// NewPDFService creates a new PDF service with configurable chunk sizes
func NewPDFService(config types.DocumentServiceConfig, storage *StorageService) *PDFService {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = DefaultDocumentServiceConfig.MaxChunkSize
	}
	if config.OverlapSize < 0 {
		config.OverlapSize = 0
	}
	return &PDFService{
		maxChunkSize: config.MaxChunkSize,
		overlapSize:  config.OverlapSize,
		storage:      storage,
	}
}

// Validate confirms data is a structurally sound PDF and returns its page
// count. Pass/fail only: no text is extracted here.
func (s *PDFService) Validate(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty document", types.ErrInvalidPDF)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return 0, fmt.Errorf("%w: missing %%PDF header", types.ErrInvalidPDF)
	}

	reader, err := readPDF(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrInvalidPDF, err)
	}

	pages := reader.NumPage()
	if pages == 0 {
		return 0, fmt.Errorf("%w: document has no pages", types.ErrInvalidPDF)
	}
	if pages > largeDocumentPages {
		log.Printf("Warning: document has %d pages (more than %d), indexing may be slow", pages, largeDocumentPages)
	}
	return pages, nil
}

// Chunk loads the persisted document and splits its extracted text into
// bounded chunks with page and sequence metadata. Returns the chunks and
// an approximate token count for this call.
func (s *PDFService) Chunk(pdfName, source string) ([]types.DocumentChunk, int, error) {
	data, err := s.storage.Load(pdfName)
	if err != nil {
		return nil, 0, err
	}

	pages, err := s.ExtractPages(data)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", types.ErrInvalidPDF, err)
	}

	// Heuristic: an empty first page usually means a scanned, image-only
	// document. Only the first page is checked.
	if len(pages) == 0 || strings.TrimSpace(pages[0]) == "" {
		return nil, 0, fmt.Errorf("%w: first page has no text, document is likely scanned", types.ErrUnparsable)
	}

	stem := utils.FileNameWithoutExt(pdfName)
	var chunks []types.DocumentChunk
	seq := 0
	totalChars := 0
	for i, pageText := range pages {
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		for _, piece := range s.splitText(pageText) {
			chunks = append(chunks, types.DocumentChunk{
				Content: piece,
				Metadata: types.ChunkMetadata{
					PDFName:    stem,
					Source:     source,
					Page:       i + 1,
					TotalPages: len(pages),
					Seq:        seq,
					ChunkID:    fmt.Sprintf("%s_%d", stem, seq),
				},
			})
			totalChars += len(piece)
			seq++
		}
	}

	// Rough 4-chars-per-token estimate; advisory only.
	tokens := totalChars / 4
	s.tokenCount.Add(int64(tokens))
	return chunks, tokens, nil
}

// TokenCount returns the approximate number of tokens processed across
// all ingests since process start.
func (s *PDFService) TokenCount() int64 {
	return s.tokenCount.Load()
}

// ExtractPages extracts per-page plain text. Pages that fail extraction
// are logged and yield empty text instead of failing the document.
func (s *PDFService) ExtractPages(data []byte) ([]string, error) {
	reader, err := readPDF(data)
	if err != nil {
		return nil, err
	}

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for pageNum := 1; pageNum <= total; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("Warning: failed to extract text from page %d: %v", pageNum, err)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, cleanText(text))
	}
	return pages, nil
}

// splitText splits text into chunks of at most maxChunkSize, preferring
// sentence boundaries, then word boundaries, then a hard cut.
func (s *PDFService) splitText(text string) []string {
	if len(text) <= s.maxChunkSize {
		return []string{text}
	}

	var chunks []string
	currentPos := 0
	for currentPos < len(text) {
		chunkEnd := currentPos + s.maxChunkSize
		if chunkEnd >= len(text) {
			if chunk := strings.TrimSpace(text[currentPos:]); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		// Find nearest sentence end before the size limit
		sentenceEnd := -1
		for i := chunkEnd - 1; i > currentPos; i-- {
			if text[i] == '.' || text[i] == '?' || text[i] == '!' {
				sentenceEnd = i + 1
				break
			}
		}

		// If no sentence end found, use word boundary
		if sentenceEnd == -1 {
			for i := chunkEnd - 1; i > currentPos; i-- {
				if text[i] == ' ' {
					sentenceEnd = i
					break
				}
			}
		}
		if sentenceEnd == -1 {
			sentenceEnd = chunkEnd
		}

		if chunk := strings.TrimSpace(text[currentPos:sentenceEnd]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := sentenceEnd - s.overlapSize
		if next <= currentPos {
			next = sentenceEnd
		}
		currentPos = next
	}

	return chunks
}

// readPDF opens a structural parse over raw bytes. The parser panics on
// some malformed inputs, so the panic is converted to an error here.
func readPDF(data []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			reader = nil
			err = fmt.Errorf("pdf parse failed: %v", r)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// textReplacements are applied in order; control characters are stripped
// before whitespace is collapsed.
var textReplacements = []struct{ old, new string }{
	{"\u0000", ""}, // Null character
	{"\ufffd", ""}, // Unicode replacement character
	{"\u001b", ""}, // Escape character
	{"\r", ""},     // Carriage return
	{"\f", "\n"},   // Form feed to newline
	{"  ", " "},    // Multiple spaces to single space
}

func cleanText(text string) string {
	cleaned := text
	for _, r := range textReplacements {
		cleaned = strings.ReplaceAll(cleaned, r.old, r.new)
	}
	return strings.TrimSpace(cleaned)
}
