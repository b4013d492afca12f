package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/chatpdf/chatpdf-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPDF(t *testing.T) {
	payload := []byte("%PDF-1.4 fake body")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(payload)
	}))
	defer server.Close()

	s := NewFetchService(t.TempDir())
	data, err := s.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetchOctetStreamAllowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	s := NewFetchService(t.TempDir())
	_, err := s.Fetch(context.Background(), server.URL)
	assert.NoError(t, err)
}

func TestFetchRejectsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not a pdf</html>"))
	}))
	defer server.Close()

	s := NewFetchService(t.TempDir())
	_, err := s.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, types.ErrNotAPDF)
}

func TestFetchWrapsTransportFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	s := NewFetchService(t.TempDir())
	_, err := s.Fetch(context.Background(), server.URL+"/gone.pdf")
	var fetchErr *types.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, server.URL+"/gone.pdf", fetchErr.URL)
}

func TestDriveFileID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://drive.google.com/file/d/1AbC_d-9xyz/view?usp=sharing", "1AbC_d-9xyz"},
		{"https://drive.google.com/open?id=1AbC_d-9xyz", "1AbC_d-9xyz"},
		{"https://drive.google.com/uc?export=download&id=1AbC_d-9xyz", "1AbC_d-9xyz"},
		{"https://example.com/file/d/123/view", ""},
		{"https://example.com/notes.pdf", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, driveFileID(tt.url), tt.url)
	}
}

func TestFetchDriveShareLink(t *testing.T) {
	payload := []byte("%PDF-1.4 drive body")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(payload)
	}))
	defer server.Close()

	uploadDir := t.TempDir()
	s := NewFetchService(uploadDir)
	s.driveBaseURL = server.URL

	data, err := s.Fetch(context.Background(), "https://drive.google.com/file/d/1AbC_d-9xyz/view")
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	// The staged copy is retained under the upload dir.
	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "drive_"))
}

func TestFetchDriveWrapsTransportFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	s := NewFetchService(t.TempDir())
	s.driveBaseURL = server.URL

	_, err := s.Fetch(context.Background(), "https://drive.google.com/open?id=1AbC_d-9xyz")
	var fetchErr *types.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.URL, "uc?export=download&id=1AbC_d-9xyz")
}
