package conversion_engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/pdfcsv/internal/core"
	"github.com/markdave123-py/pdfcsv/internal/core/csvparse"
	"github.com/markdave123-py/pdfcsv/internal/models"
)

// NewConverter constructs the converter with a bounded job queue (cfg.QueueSize, default 64).
// db and obj may be nil; history and archiving are then skipped.
func NewConverter(reader core.FileReader, extractor core.TableExtractor, db core.DbClient, obj core.ObjectClient, cfg EngineConfig, logger *slog.Logger) *Converter {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		reader: reader, extractor: extractor, db: db, obj: obj, cfg: cfg, logger: logger,
		now:  time.Now,
		jobs: make(chan job, cfg.QueueSize),
	}
}

// Start runs numWorkers goroutines reading from the job queue until ctx is done.
// numWorkers <= 0 falls back to cfg.Workers, then to one.
func (c *Converter) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = c.cfg.Workers
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					c.logger.Info("conversion.worker.stop", "worker", w)
					return
				case j := <-c.jobs:
					c.logger.Info("conversion.worker.pick", "worker", w, "session_id", j.session.ID())
					_ = c.run(ctx, j.session, j.upload)
				}
			}
		}(w)
	}
}

// Submit moves the session to PROCESSING and queues the remaining steps.
// It returns ErrBusy without touching the session if a run is in flight.
// If the queue is full, this call blocks until space frees up or ctx ends.
func (c *Converter) Submit(ctx context.Context, s *Session, up Upload) error {
	if err := s.begin(); err != nil {
		return err
	}
	select {
	case c.jobs <- job{session: s, upload: up}:
		return nil
	case <-ctx.Done():
		s.fail(&StepError{Step: StepRead, Err: fmt.Errorf("queue conversion: %w", ctx.Err())})
		return ctx.Err()
	}
}

// Convert runs the whole conversion on the calling goroutine and returns the
// step error, if any. The session ends in SUCCESS or ERROR either way.
func (c *Converter) Convert(ctx context.Context, s *Session, up Upload) error {
	if err := s.begin(); err != nil {
		return err
	}
	return c.run(ctx, s, up)
}

// run performs read -> extract -> tokenize in order. Any failure aborts into ERROR.
func (c *Converter) run(ctx context.Context, s *Session, up Upload) error {
	log := c.logger.With("session_id", s.ID(), "file", up.Name)

	// 1. read
	meta, err := c.reader.ReadFile(ctx, up.Name, up.MimeType, up.Body)
	if err != nil {
		serr := &StepError{Step: StepRead, Err: err}
		log.Error("conversion.read.failed", "error", err)
		s.fail(serr)
		c.afterRun(ctx, s, up, nil)
		return serr
	}
	s.loaded(meta)
	log.Info("conversion.read.ok", "bytes", meta.Size, "pages", meta.PageCount)

	// 2. extract; only this call is timed
	extractCtx := ctx
	if c.cfg.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		extractCtx, cancel = context.WithTimeout(ctx, c.cfg.ExtractTimeout)
		defer cancel()
	}
	start := c.now()
	raw, err := c.extractor.ExtractCSV(extractCtx, meta.Content)
	elapsed := c.now().Sub(start).Seconds()
	if err != nil {
		serr := &StepError{Step: StepExtract, Err: err}
		log.Error("conversion.extract.failed", "error", err, "elapsed_s", elapsed)
		s.fail(serr)
		c.afterRun(ctx, s, up, nil)
		return serr
	}

	// 3. tokenize; cannot fail
	result := csvparse.Parse(raw)
	s.succeed(result, elapsed)
	log.Info("conversion.extract.ok", "rows", len(result.Rows), "columns", len(result.Headers), "elapsed_s", elapsed)

	c.afterRun(ctx, s, up, meta)
	return nil
}

// afterRun archives and records a finished run. Failures here are logged and
// never change the session.
func (c *Converter) afterRun(ctx context.Context, s *Session, up Upload, meta *models.FileMetadata) {
	if c.db == nil && c.obj == nil {
		return
	}
	state := s.State()

	conv := &models.Conversion{
		ID:           uuid.NewString(),
		SessionID:    state.ID,
		UserID:       up.UserID,
		FileName:     up.Name,
		Status:       state.Status,
		ProcessTime:  state.ProcessTime,
		ErrorMessage: state.Error,
		ErrorSource:  state.ErrorSource,
		CreatedAt:    time.Now(),
	}
	if state.File != nil {
		conv.FileSize = state.File.Size
		conv.PageCount = state.File.PageCount
	}
	if state.Result != nil {
		conv.RowCount = len(state.Result.Rows)
	}

	if state.Status == models.StatusSuccess && meta != nil && state.Result != nil {
		if err := c.archive(ctx, conv, meta, state.Result.RawText); err != nil {
			c.logger.Warn("conversion.archive.failed", "session_id", state.ID, "error", err)
		}
	}

	if c.db != nil {
		if err := c.db.CreateConversion(ctx, conv); err != nil {
			c.logger.Warn("conversion.history.failed", "session_id", state.ID, "error", err)
		}
	}
}

// archive uploads the source PDF and the CSV text side by side.
func (c *Converter) archive(ctx context.Context, conv *models.Conversion, meta *models.FileMetadata, rawCSV string) error {
	if c.obj == nil || c.cfg.Bucket == "" {
		return nil
	}
	pdf, err := decodeContent(meta.Content)
	if err != nil {
		return err
	}

	pdfKey, csvKey := ArchiveKeys(conv.SessionID, conv.ID, meta.Name)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := c.obj.UploadFile(gctx, c.cfg.Bucket, pdfKey, bytes.NewReader(pdf), "application/pdf")
		if err != nil {
			return fmt.Errorf("archive pdf: %w", err)
		}
		conv.PDFURL = url
		return nil
	})
	g.Go(func() error {
		url, err := c.obj.UploadFile(gctx, c.cfg.Bucket, csvKey, strings.NewReader(rawCSV), "text/csv; charset=utf-8")
		if err != nil {
			return fmt.Errorf("archive csv: %w", err)
		}
		conv.CSVURL = url
		return nil
	})
	return g.Wait()
}

// ArchiveKeys returns the object keys for a conversion's PDF and CSV.
func ArchiveKeys(sessionID, conversionID, fileName string) (pdfKey, csvKey string) {
	base := sanitizeName(fileName)
	prefix := path.Join("conversions", sessionID, conversionID)
	return path.Join(prefix, base), path.Join(prefix, CSVFileName(base))
}

var pdfSuffix = regexp.MustCompile(`(?i)\.pdf$`)

// CSVFileName derives the download name: the upload's name without a
// trailing .pdf (any case) plus "_converted.csv".
func CSVFileName(name string) string {
	return pdfSuffix.ReplaceAllString(name, "") + "_converted.csv"
}

// sanitizeName drops path components and spaces from a client-supplied name.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" || name == "" {
		return "document.pdf"
	}
	return name
}
