package types

// DocumentChunk is the unit of indexing: a bounded span of extracted PDF
// text plus the metadata that ties it back to its source document.
type DocumentChunk struct {
	Content  string        // The actual text content
	Metadata ChunkMetadata // Provenance for the chunk
}

// ChunkMetadata carries provenance for a chunk. PDFName is the canonical
// document key and the sole scoping mechanism isolating queries between
// documents, so every chunk must carry it.
type ChunkMetadata struct {
	PDFName    string // Canonical document key (content-hash stem, no extension)
	Source     string // Origin URL the document was downloaded from
	Page       int    // Page number the chunk was extracted from (1-based)
	TotalPages int    // Total number of pages in the document
	Seq        int    // Zero-based chunk sequence index within the document
	ChunkID    string // Composite identifier "{PDFName}_{Seq}"
}

// Passage is a retrieved chunk as returned by a similarity query.
type Passage struct {
	Content  string
	Page     int
	ChunkID  string
	Distance float32
}

// ChunkFilter selects indexed chunks by exact metadata match. Zero-valued
// fields are ignored.
type ChunkFilter struct {
	PDFName string
	Source  string
}

// DocumentServiceConfig contains configuration options for PDF processing
type DocumentServiceConfig struct {
	MaxChunkSize int // Maximum size for text chunks
	OverlapSize  int // Size of overlap between chunks
}
