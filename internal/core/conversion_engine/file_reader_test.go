package conversion_engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFReader_ReadFile(t *testing.T) {
	r := NewPDFReader(1024, discardLogger())

	meta, err := r.ReadFile(context.Background(), "invoice.pdf", "application/pdf", bytes.NewReader(samplePDF))
	require.NoError(t, err)
	assert.Equal(t, "invoice.pdf", meta.Name)
	assert.Equal(t, "application/pdf", meta.MimeType)
	assert.Equal(t, int64(len(samplePDF)), meta.Size)
	assert.Equal(t, base64.StdEncoding.EncodeToString(samplePDF), meta.Content)
	assert.Zero(t, meta.PageCount, "unparseable documents report no page count")
}

func TestPDFReader_EmptyFile(t *testing.T) {
	meta, err := NewPDFReader(0, discardLogger()).ReadFile(context.Background(), "empty.pdf", "application/pdf", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Zero(t, meta.Size)
	assert.Empty(t, meta.Content)
}

func TestPDFReader_SizeLimit(t *testing.T) {
	r := NewPDFReader(8, discardLogger())

	_, err := r.ReadFile(context.Background(), "big.pdf", "application/pdf", bytes.NewReader(make([]byte, 9)))
	assert.ErrorIs(t, err, ErrTooLarge)

	meta, err := r.ReadFile(context.Background(), "exact.pdf", "application/pdf", bytes.NewReader(make([]byte, 8)))
	require.NoError(t, err)
	assert.Equal(t, int64(8), meta.Size)
}

func TestPDFReader_NilBodyAndCancelledContext(t *testing.T) {
	r := NewPDFReader(0, discardLogger())

	_, err := r.ReadFile(context.Background(), "x.pdf", "application/pdf", nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.ReadFile(ctx, "x.pdf", "application/pdf", bytes.NewReader(samplePDF))
	assert.ErrorIs(t, err, context.Canceled)
}
