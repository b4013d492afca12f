package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chatpdf/chatpdf-be/types"
	"github.com/chatpdf/chatpdf-be/utils"
	"github.com/google/uuid"
)

const fetchTimeout = 10 * time.Second

// allowedContentTypes is the allow-list for a downloaded document's
// declared content type.
var allowedContentTypes = map[string]bool{
	"application/pdf":          true,
	"application/octet-stream": true,
}

var driveFilePattern = regexp.MustCompile(`drive\.google\.com/(?:file/d/([a-zA-Z0-9_-]+)|[^\s]*[?&]id=([a-zA-Z0-9_-]+))`)

// FetchService resolves a URL into raw PDF bytes.
type FetchService struct {
	client       *http.Client
	uploadDir    string
	driveBaseURL string
}

func NewFetchService(uploadDir string) *FetchService {
	return &FetchService{
		client:       &http.Client{Timeout: fetchTimeout},
		uploadDir:    uploadDir,
		driveBaseURL: "https://drive.google.com",
	}
}

// Fetch downloads the document at pdfURL. The caller is expected to have
// validated URL syntax already. Google Drive share links go through the
// direct-download rewrite; everything else is a plain streamed GET.
func (s *FetchService) Fetch(ctx context.Context, pdfURL string) ([]byte, error) {
	if id := driveFileID(pdfURL); id != "" {
		return s.fetchFromDrive(ctx, id)
	}

	resp, err := s.get(ctx, pdfURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkContentType(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.FetchError{URL: pdfURL, Err: err}
	}
	return data, nil
}

// fetchFromDrive downloads a Google Drive file via the uc?export=download
// form, staging it as a temp file under the upload dir before reading it
// back. The temp file is kept, matching the share-link transfer mechanism.
func (s *FetchService) fetchFromDrive(ctx context.Context, fileID string) ([]byte, error) {
	dlURL := fmt.Sprintf("%s/uc?export=download&id=%s", s.driveBaseURL, fileID)

	resp, err := s.get(ctx, dlURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkContentType(resp); err != nil {
		return nil, err
	}

	if err := utils.EnsureDir(s.uploadDir); err != nil {
		return nil, err
	}
	tempPath := filepath.Join(s.uploadDir, "drive_"+uuid.NewString()+".pdf")
	f, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %v", err)
	}
	_, copyErr := io.Copy(f, resp.Body)
	f.Close()
	if copyErr != nil {
		return nil, &types.FetchError{URL: dlURL, Err: copyErr}
	}
	log.Printf("[fetch] Drive file %s staged at %s", fileID, tempPath)

	data, err := os.ReadFile(tempPath)
	if err != nil {
		return nil, &types.FetchError{URL: dlURL, Err: err}
	}
	return data, nil
}

func (s *FetchService) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &types.FetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return resp, nil
}

func checkContentType(resp *http.Response) error {
	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	if !allowedContentTypes[mediaType] {
		return fmt.Errorf("%w: content type %q", types.ErrNotAPDF, contentType)
	}
	return nil
}

// driveFileID extracts the file id from a Google Drive share link, or ""
// when the URL is not a Drive link.
func driveFileID(pdfURL string) string {
	matches := driveFilePattern.FindStringSubmatch(pdfURL)
	if matches == nil {
		return ""
	}
	if matches[1] != "" {
		return matches[1]
	}
	return matches[2]
}
