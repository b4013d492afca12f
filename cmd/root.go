/*
Copyright © 2025 chatpdf
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/chatpdf/chatpdf-be/config"
	"github.com/chatpdf/chatpdf-be/database"
	"github.com/chatpdf/chatpdf-be/service"
	"github.com/chatpdf/chatpdf-be/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatpdf-be",
	Short: "Register PDFs by URL and query them in natural language",
	Long: `chatpdf-be downloads PDF documents from URLs, chunks their text into a
vector store and answers natural-language queries with the most relevant
passages, scoped to a single document.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.AutomaticEnv() // read in environment variables that match
}

// pipeline wires the services every subcommand needs, choosing the vector
// store backend from config.
type pipeline struct {
	cfg     *config.Config
	storage *service.StorageService
	pdf     *service.PDFService
	store   database.VectorStore
	ingest  *service.IngestService
	query   *service.QueryService
}

func buildPipeline(cfg *config.Config) (*pipeline, error) {
	storage, err := service.NewStorageService(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	pdfService := service.NewPDFService(types.DocumentServiceConfig{
		MaxChunkSize: cfg.MaxChunkSize,
		OverlapSize:  cfg.OverlapSize,
	}, storage)

	var store database.VectorStore
	switch cfg.VectorStore {
	case "weaviate":
		store, err = database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			return nil, err
		}
	case "file", "":
		var embedder database.Embedder
		if cfg.OpenAIAPIKey != "" {
			embedder = database.NewOpenAIEmbedder(cfg.OpenAIAPIKey)
		}
		store, err = database.NewFileStore(cfg.ChunkDir, embedder)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown vector store backend: %s", cfg.VectorStore)
	}

	analytics := service.NewAnalyticsService(cfg.AnalyticsEndpoint)
	fetcher := service.NewFetchService(cfg.UploadDir)
	ingestService := service.NewIngestService(
		fetcher,
		pdfService,
		storage,
		store,
		analytics,
		time.Duration(cfg.AsyncThresholdSeconds)*time.Second,
	)
	queryService := service.NewQueryService(store, analytics)

	return &pipeline{
		cfg:     cfg,
		storage: storage,
		pdf:     pdfService,
		store:   store,
		ingest:  ingestService,
		query:   queryService,
	}, nil
}
