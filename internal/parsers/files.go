package parsers

import (
	"os"
	"path/filepath"
	"strings"

	"invoice-reconciliation-service/internal/models"
	apperrors "invoice-reconciliation-service/pkg/errors"
)

// ListPdfFiles returns the PDF files directly inside dir, by name order.
// Subdirectories are not walked.
func ListPdfFiles(dir string) ([]models.PdfFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileError(apperrors.CodeFileNotFound, dir, err)
		}
		return nil, apperrors.FileError(apperrors.CodeFilePermission, dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	return models.PdfFilesFromNames(names), nil
}
