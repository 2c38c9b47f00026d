package core

import "context"

// TableExtractor sends a base64 encoded PDF to a model and returns the CSV text it produced.
type TableExtractor interface {
	ExtractCSV(ctx context.Context, pdfBase64 string) (string, error)
}
