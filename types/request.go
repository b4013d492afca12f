package types

type LoadPDFRequest struct {
	PDFURL string `json:"pdf_url" binding:"required"`
}

type QueryPDFRequest struct {
	// PDFName is accepted in the body for clients that cannot set the
	// path parameter; the path value wins when both are present.
	PDFName string `json:"pdf_name,omitempty"`
	Query   string `json:"query" binding:"required"`
}
