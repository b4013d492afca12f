package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/chatpdf/chatpdf-be/service"
	"github.com/chatpdf/chatpdf-be/types"
	"github.com/gin-gonic/gin"
)

type PDFHandler struct {
	ingestService *service.IngestService
	queryService  *service.QueryService
	storage       *service.StorageService
}

func NewPDFHandler(
	ingestService *service.IngestService,
	queryService *service.QueryService,
	storage *service.StorageService,
) *PDFHandler {
	return &PDFHandler{
		ingestService: ingestService,
		queryService:  queryService,
		storage:       storage,
	}
}

// HandleLoadPDF ingests the PDF at pdf_url. Responds with a plain success
// when the document is indexed (or already was), or with a queued body
// when indexing continues in the background after a slow download.
func (h *PDFHandler) HandleLoadPDF(c *gin.Context) {
	var req types.LoadPDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
		return
	}

	log.Printf("[load_pdf] Loading PDF from URL: %s", req.PDFURL)
	result, err := h.ingestService.Ingest(c.Request.Context(), req.PDFURL)
	if err != nil {
		log.Printf("[load_pdf] Error occurred: %v", err)
		c.JSON(statusForError(err), types.ErrorResponse{Error: err.Error()})
		return
	}

	if result.Queued {
		c.JSON(http.StatusOK, types.LoadPDFResponse{
			Status:     "success",
			Message:    "download was slow, indexing continues in background; poll the status endpoint",
			TimeToLoad: result.TimeToLoad,
			Filename:   result.Filename,
		})
		return
	}
	c.JSON(http.StatusOK, types.LoadPDFResponse{Status: "success"})
}

// HandleQueryPDF answers a natural-language query scoped to one document.
// The document reference comes from the path, or from the body for
// clients that cannot set it there.
func (h *PDFHandler) HandleQueryPDF(c *gin.Context) {
	var req types.QueryPDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
		return
	}
	pdfName := c.Param("pdf_name")
	if pdfName == "" {
		pdfName = req.PDFName
	}
	if pdfName == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "missing pdf name"})
		return
	}

	log.Printf("[query_pdf] Querying PDF %s with query: %s", pdfName, req.Query)
	results, err := h.queryService.Query(c.Request.Context(), pdfName, req.Query)
	if err != nil {
		log.Printf("[query_pdf] Error occurred: %v", err)
		c.JSON(statusForError(err), types.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, types.QueryPDFResponse{Results: results})
}

// HandleIngestStatus reports pending/done/failed for a document ingested
// by this process.
func (h *PDFHandler) HandleIngestStatus(c *gin.Context) {
	pdfName := c.Param("pdf_name")
	status, ok := h.ingestService.Status(pdfName)
	if !ok {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: fmt.Sprintf("no ingest recorded for %s", pdfName)})
		return
	}
	c.JSON(http.StatusOK, types.IngestStatusResponse{Filename: pdfName, Status: status})
}

// HandleServePDF streams a persisted raw PDF back to the client.
func (h *PDFHandler) HandleServePDF(c *gin.Context) {
	pdfName := c.Param("pdf_name")
	if !strings.HasSuffix(pdfName, ".pdf") {
		pdfName += ".pdf"
	}
	path := h.storage.Path(pdfName)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "file not found"})
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", pdfName))
	c.File(path)
}

// statusForError maps pipeline failure kinds to HTTP status codes:
// caller faults are 400, empty results 404, transport and everything
// unexpected 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidURL),
		errors.Is(err, types.ErrNotAPDF),
		errors.Is(err, types.ErrInvalidPDF),
		errors.Is(err, types.ErrUnparsable):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNoResults):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
