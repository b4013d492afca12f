/*
Copyright © 2025 chatpdf
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/chatpdf/chatpdf-be/config"
	"github.com/spf13/cobra"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <pdf-name>",
	Short: "Print the extracted text of a persisted PDF, page by page",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			log.Fatalf("Failed to build pipeline: %v", err)
		}

		data, err := p.storage.Load(args[0])
		if err != nil {
			log.Fatalf("Failed to load %s: %v", args[0], err)
		}
		pages, err := p.pdf.ExtractPages(data)
		if err != nil {
			log.Fatalf("Failed to extract text: %v", err)
		}

		for i, text := range pages {
			fmt.Printf("--- page %d ---\n%s\n", i+1, text)
		}
		fmt.Printf("Number of pages: %d\n", len(pages))
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
