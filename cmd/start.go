/*
Copyright © 2025 chatpdf
*/
package cmd

import (
	"log"

	"github.com/chatpdf/chatpdf-be/config"
	"github.com/chatpdf/chatpdf-be/handler"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the PDF query server",
	Long:  `Starts the HTTP server that ingests PDFs by URL and answers queries against them.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			log.Fatalf("Failed to build pipeline: %v", err)
		}

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		healthHandler := handler.NewHealthHandler()
		pdfHandler := handler.NewPDFHandler(p.ingest, p.query, p.storage)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		router.GET("/health", healthHandler.HandleHealth)

		pdfRoutes := router.Group("/pdf")
		{
			pdfRoutes.POST("/load", pdfHandler.HandleLoadPDF)
			pdfRoutes.POST("/:pdf_name/query", pdfHandler.HandleQueryPDF)
			pdfRoutes.GET("/:pdf_name/status", pdfHandler.HandleIngestStatus)
			pdfRoutes.GET("/:pdf_name", pdfHandler.HandleServePDF)
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
