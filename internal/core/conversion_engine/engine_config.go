package conversion_engine

import (
	"io"
	"log/slog"
	"time"

	"github.com/markdave123-py/pdfcsv/internal/core"
)

// EngineConfig tunes the conversion pipeline.
//
// Workers:        goroutines draining the job queue.
// QueueSize:      capacity of the in-memory job queue.
// ExtractTimeout: optional deadline for the remote call (0 leaves it to the caller's context).
// Bucket:         object storage bucket for archived PDFs and CSVs (empty disables archiving).
type EngineConfig struct {
	Workers        int
	QueueSize      int
	ExtractTimeout time.Duration
	Bucket         string
}

// job is one queued conversion: the session already moved to Processing.
type job struct {
	session *Session
	upload  Upload
}

// Converter orchestrates read -> extract -> tokenize for a session:
//
// reader:    turns the upload into base64 content and metadata.
// extractor: remote model that returns CSV text.
// db:        optional history store.
// obj:       optional object storage for archiving.
// now:       clock used to time the remote call.
// jobs:      in-memory queue consumed by Start.
type Converter struct {
	reader    core.FileReader
	extractor core.TableExtractor
	db        core.DbClient
	obj       core.ObjectClient
	cfg       EngineConfig
	logger    *slog.Logger
	now       func() time.Time
	jobs      chan job
}

// Upload is a file selection. Body must stay readable after the HTTP request
// that produced it has returned, so handlers pass an in-memory reader.
type Upload struct {
	Name     string
	MimeType string
	Body     io.Reader
	UserID   string
}
