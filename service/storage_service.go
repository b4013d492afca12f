package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chatpdf/chatpdf-be/types"
	"github.com/chatpdf/chatpdf-be/utils"
)

// StorageService persists validated raw PDF bytes under a content-derived
// identifier. The identifier is a truncated sha256 of the bytes plus the
// .pdf extension, so the same document always maps to the same name and
// re-downloads deduplicate naturally.
type StorageService struct {
	uploadDir string
}

func NewStorageService(uploadDir string) (*StorageService, error) {
	if err := utils.EnsureDir(uploadDir); err != nil {
		return nil, err
	}
	return &StorageService{uploadDir: uploadDir}, nil
}

// Save writes data to the upload dir and returns the canonical pdf name.
func (s *StorageService) Save(data []byte) (string, error) {
	pdfName := PDFNameFor(data)
	if err := os.WriteFile(s.Path(pdfName), data, 0644); err != nil {
		return "", fmt.Errorf("failed to persist pdf: %v", err)
	}
	return pdfName, nil
}

// Load reads back persisted bytes by pdf name.
func (s *StorageService) Load(pdfName string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(pdfName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrFileNotFound, pdfName)
		}
		return nil, fmt.Errorf("failed to read pdf %s: %v", pdfName, err)
	}
	return data, nil
}

// Path resolves a pdf name to its location under the upload dir. The name
// is reduced to its sanitized base so caller-supplied references cannot
// escape the directory.
func (s *StorageService) Path(pdfName string) string {
	return filepath.Join(s.uploadDir, utils.SanitizeFileName(filepath.Base(pdfName)))
}

// PDFNameFor derives the canonical identifier for a document's bytes.
func PDFNameFor(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:24] + ".pdf"
}
