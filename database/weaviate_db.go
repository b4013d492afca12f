package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/chatpdf/chatpdf-be/config"
	"github.com/chatpdf/chatpdf-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

var (
	PDF_CHUNK_CLASS        = "PdfChunk"
	PDF_CHUNK_CLASS_OBJECT = &models.Class{
		Class: PDF_CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "pdfName", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "chunkId", DataType: []string{"text"}},
			{Name: "page", DataType: []string{"int"}},
			{Name: "seq", DataType: []string{"int"}},
		},
		VectorIndexType: "hnsw",
	}
)

// WeaviateStore keeps all indexed chunks in a single PdfChunk class,
// scoped per document by the pdfName property.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(config config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	PDF_CHUNK_CLASS_OBJECT.Vectorizer = config.Text2Vec
	PDF_CHUNK_CLASS_OBJECT.ModuleConfig = config.ModuleConfig
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == PDF_CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	// Create PdfChunk class if it doesn't exist
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(PDF_CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create PdfChunk class: %v", err)
		}
	}
	return &WeaviateStore{
		client: client,
	}, nil
}

func (s *WeaviateStore) ReInit() error {
	err := s.client.Schema().ClassDeleter().WithClassName(PDF_CHUNK_CLASS).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete PdfChunk class: %v", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(PDF_CHUNK_CLASS_OBJECT).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create PdfChunk class: %v", err)
	}
	return nil
}

// AddChunks bulk-inserts chunks in batches of BATCH_SIZE. The batcher is
// not transactional: a failure mid-way can leave earlier batches indexed.
func (s *WeaviateStore) AddChunks(ctx context.Context, chunks []types.DocumentChunk) error {
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class:      PDF_CHUNK_CLASS,
				Properties: chunkProperties(chunks[j]),
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}

		log.Printf("Inserted batch %d-%d of %d chunks", i, end, total)
	}

	return nil
}

func (s *WeaviateStore) Query(ctx context.Context, query string, filter types.ChunkFilter, limit int) ([]types.Passage, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "pdfName"},
		{Name: "chunkId"},
		{Name: "page"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}
	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	getBuilder := s.client.GraphQL().Get().
		WithClassName(PDF_CHUNK_CLASS).
		WithFields(fields...).
		WithNearText(nearText)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}
	if where := buildChunkFilter(filter); where != nil {
		getBuilder = getBuilder.WithWhere(where)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	return passagesFromResult(result.Data), nil
}

// passagesFromResult converts a raw GraphQL Get payload into passages.
// Entries with a missing or null content property are skipped.
func passagesFromResult(data map[string]models.JSONObject) []types.Passage {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	items, ok := get[PDF_CHUNK_CLASS].([]interface{})
	if !ok {
		return nil
	}

	var passages []types.Passage
	for _, item := range items {
		chunk, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		content, ok := chunk["content"].(string)
		if !ok {
			continue
		}
		passage := types.Passage{Content: content}
		if chunkID, ok := chunk["chunkId"].(string); ok {
			passage.ChunkID = chunkID
		}
		if page, ok := chunk["page"].(float64); ok {
			passage.Page = int(page)
		}
		if additional, ok := chunk["_additional"].(map[string]interface{}); ok {
			if distance, ok := additional["distance"].(float64); ok {
				passage.Distance = float32(distance)
			}
		}
		passages = append(passages, passage)
	}
	return passages
}

// HasDocument runs a plain filtered lookup with limit 1, no similarity.
func (s *WeaviateStore) HasDocument(ctx context.Context, filter types.ChunkFilter) (bool, error) {
	where := buildChunkFilter(filter)
	if where == nil {
		return false, fmt.Errorf("empty chunk filter")
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(PDF_CHUNK_CLASS).
		WithFields(graphql.Field{Name: "chunkId"}).
		WithWhere(where).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return false, err
	}
	if result.Errors != nil {
		return false, fmt.Errorf("lookup failed: %v", result.Errors[0].Message)
	}

	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return false, nil
	}
	data, ok := get[PDF_CHUNK_CLASS].([]interface{})
	return ok && len(data) > 0, nil
}

func chunkProperties(chunk types.DocumentChunk) map[string]interface{} {
	return map[string]interface{}{
		"content": chunk.Content,
		"pdfName": chunk.Metadata.PDFName,
		"source":  chunk.Metadata.Source,
		"chunkId": chunk.Metadata.ChunkID,
		"page":    chunk.Metadata.Page,
		"seq":     chunk.Metadata.Seq,
	}
}

func buildChunkFilter(filter types.ChunkFilter) *filters.WhereBuilder {
	var operands []*filters.WhereBuilder

	if filter.PDFName != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"pdfName"}).
			WithOperator(filters.Equal).
			WithValueString(filter.PDFName))
	}
	if filter.Source != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"source"}).
			WithOperator(filters.Equal).
			WithValueString(filter.Source))
	}

	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	default:
		return filters.Where().WithOperator(filters.And).WithOperands(operands)
	}
}
