package core

import (
	"context"
	"io"

	"github.com/markdave123-py/pdfcsv/internal/models"
)

// FileReader turns an uploaded file into base64 content plus metadata.
type FileReader interface {
	// ReadFile consumes r completely. name and mimeType are taken as given by the client.
	ReadFile(ctx context.Context, name, mimeType string, r io.Reader) (*models.FileMetadata, error)
}
