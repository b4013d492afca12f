package types

type LoadPDFResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
	TimeToLoad float64 `json:"time_to_load,omitempty"`
	Filename   string  `json:"filename,omitempty"`
}

type QueryPDFResponse struct {
	Results []string `json:"results"`
}

type IngestStatusResponse struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
