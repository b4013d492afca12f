/*
Copyright © 2025 chatpdf
*/
package cmd

import (
	"context"
	"log"

	"github.com/chatpdf/chatpdf-be/config"
	"github.com/chatpdf/chatpdf-be/database"
	"github.com/spf13/cobra"
)

var reinitStore bool

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <pdf-url>...",
	Short: "Download and index PDFs without starting the server",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			log.Fatalf("Failed to build pipeline: %v", err)
		}

		if reinitStore {
			r, ok := p.store.(database.Reinitializer)
			if !ok {
				log.Fatalf("Vector store %q does not support reinitialization", cfg.VectorStore)
			}
			if err := r.ReInit(); err != nil {
				log.Fatalf("Failed to reinitialize vector store: %v", err)
			}
			log.Println("Vector store reinitialized")
		}

		for _, pdfURL := range args {
			result, err := p.ingest.Ingest(context.Background(), pdfURL)
			if err != nil {
				log.Fatalf("Failed to ingest %s: %v", pdfURL, err)
			}
			switch {
			case result.AlreadyExists:
				log.Printf("Already indexed: %s", pdfURL)
			case result.Queued:
				log.Printf("Queued for background indexing: %s as %s", pdfURL, result.Filename)
			default:
				log.Printf("Indexed %s as %s (%.2fs download)", pdfURL, result.Filename, result.TimeToLoad)
			}
		}
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&reinitStore, "reinit", false, "drop and recreate the vector store index before ingesting")
	rootCmd.AddCommand(ingestCmd)
}
