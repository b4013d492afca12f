package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/chatpdf/chatpdf-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPDFService(t *testing.T, cfg types.DocumentServiceConfig) (*PDFService, *StorageService) {
	t.Helper()
	storage, err := NewStorageService(t.TempDir())
	require.NoError(t, err)
	return NewPDFService(cfg, storage), storage
}

func TestValidate(t *testing.T) {
	s, _ := newTestPDFService(t, DefaultDocumentServiceConfig)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty buffer", nil},
		{"missing magic header", []byte("this is definitely not a pdf")},
		{"corrupt structure", []byte("%PDF-1.4\ngarbage with no xref")},
		{"zero pages", buildPDF()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Validate(tt.data)
			assert.ErrorIs(t, err, types.ErrInvalidPDF)
		})
	}
}

func TestValidatePageCount(t *testing.T) {
	s, _ := newTestPDFService(t, DefaultDocumentServiceConfig)

	pages, err := s.Validate(buildPDF("chapter one", "chapter two", "chapter three"))
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
}

func TestSplitTextRespectsMaxSize(t *testing.T) {
	s, _ := newTestPDFService(t, types.DocumentServiceConfig{MaxChunkSize: 50})

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "Sentence number %d ends here. ", i)
	}
	chunks := s.splitText(sb.String())
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 50)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestSplitTextShortInput(t *testing.T) {
	s, _ := newTestPDFService(t, types.DocumentServiceConfig{MaxChunkSize: 100})

	chunks := s.splitText("short text")
	assert.Equal(t, []string{"short text"}, chunks)
}

func TestSplitTextWithOverlapMakesProgress(t *testing.T) {
	s, _ := newTestPDFService(t, types.DocumentServiceConfig{MaxChunkSize: 40, OverlapSize: 10})

	text := strings.Repeat("Some words here. ", 30)
	chunks := s.splitText(text)
	require.Greater(t, len(chunks), 1)
	total := 0
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 40)
		total += len(chunk)
	}
	// Overlap duplicates some text, so the sum exceeds the input.
	assert.Greater(t, total, 0)
}

func TestChunkMetadata(t *testing.T) {
	s, storage := newTestPDFService(t, DefaultDocumentServiceConfig)

	pdfName, err := storage.Save(buildPDF("chapter one starts here", "chapter two starts here"))
	require.NoError(t, err)

	chunks, tokens, err := s.Chunk(pdfName, "https://example.com/notes.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Greater(t, tokens, 0)

	stem := strings.TrimSuffix(pdfName, ".pdf")
	for i, chunk := range chunks {
		assert.Equal(t, stem, chunk.Metadata.PDFName)
		assert.Equal(t, "https://example.com/notes.pdf", chunk.Metadata.Source)
		assert.Equal(t, i, chunk.Metadata.Seq)
		assert.Equal(t, fmt.Sprintf("%s_%d", stem, i), chunk.Metadata.ChunkID)
		assert.Equal(t, 2, chunk.Metadata.TotalPages)
		assert.NotEmpty(t, chunk.Content)
	}
	assert.Equal(t, int64(tokens), s.TokenCount())
}

func TestChunkFirstPageEmpty(t *testing.T) {
	s, storage := newTestPDFService(t, DefaultDocumentServiceConfig)

	pdfName, err := storage.Save(buildPDF("", "text only on the second page"))
	require.NoError(t, err)

	_, _, err = s.Chunk(pdfName, "https://example.com/scan.pdf")
	assert.ErrorIs(t, err, types.ErrUnparsable)
}

func TestChunkMissingFile(t *testing.T) {
	s, _ := newTestPDFService(t, DefaultDocumentServiceConfig)

	_, _, err := s.Chunk("nope.pdf", "https://example.com/nope.pdf")
	assert.ErrorIs(t, err, types.ErrFileNotFound)
}

func TestExtractPages(t *testing.T) {
	s, _ := newTestPDFService(t, DefaultDocumentServiceConfig)

	pages, err := s.ExtractPages(buildPDF("first page words", "second page words"))
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "first page words")
	assert.Contains(t, pages[1], "second page words")
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b", cleanText("  a\u0000 b\r "))
	assert.Equal(t, "a\nb", cleanText("a\fb"))
	assert.Equal(t, "a b", cleanText("a\u0000 \u001bb\ufffd"))
	// Carriage returns are stripped before spaces are collapsed.
	assert.Equal(t, "a b", cleanText("a \r b"))
}
