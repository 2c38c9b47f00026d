package conversion_engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/markdave123-py/pdfcsv/internal/core"
	"github.com/markdave123-py/pdfcsv/internal/models"
)

var _ core.FileReader = (*PDFReader)(nil)

// PDFReader implements core.FileReader. It base64-encodes the upload and asks
// pdfcpu for a page count on the side.
type PDFReader struct {
	maxBytes int64
	logger   *slog.Logger
}

var disablePDFConfigDir sync.Once

// NewPDFReader builds a reader; maxBytes <= 0 disables the size check.
func NewPDFReader(maxBytes int64, logger *slog.Logger) *PDFReader {
	// pdfcpu otherwise writes a config dir under the user's home.
	disablePDFConfigDir.Do(api.DisableConfigDir)
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFReader{maxBytes: maxBytes, logger: logger}
}

// ReadFile reads body to the end and returns its metadata and base64 content.
func (r *PDFReader) ReadFile(ctx context.Context, name, mimeType string, body io.Reader) (*models.FileMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("read %q: no content", name)
	}

	src := body
	if r.maxBytes > 0 {
		src = io.LimitReader(body, r.maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", name, err)
	}
	if r.maxBytes > 0 && int64(len(data)) > r.maxBytes {
		return nil, fmt.Errorf("read %q: %w", name, ErrTooLarge)
	}

	return &models.FileMetadata{
		Name:      name,
		Size:      int64(len(data)),
		MimeType:  mimeType,
		PageCount: r.pageCount(name, data),
		Content:   base64.StdEncoding.EncodeToString(data),
	}, nil
}

// pageCount returns 0 when pdfcpu cannot make sense of the document; the
// model may still read files pdfcpu rejects.
func (r *PDFReader) pageCount(name string, data []byte) (n int) {
	defer func() {
		// pdfcpu can panic on malformed input.
		if rec := recover(); rec != nil {
			r.logger.Warn("conversion.read.page_count_panic", "file", name, "panic", fmt.Sprint(rec))
			n = 0
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		r.logger.Warn("conversion.read.page_count_failed", "file", name, "error", err)
		return 0
	}
	if err := pctx.EnsurePageCount(); err != nil {
		r.logger.Warn("conversion.read.page_count_failed", "file", name, "error", err)
		return 0
	}
	return pctx.PageCount
}

func decodeContent(b64 string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return data, nil
}
