// Command pdf2csv converts one PDF to CSV without starting the server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/markdave123-py/pdfcsv/internal/api/view"
	"github.com/markdave123-py/pdfcsv/internal/config"
	"github.com/markdave123-py/pdfcsv/internal/core/conversion_engine"
	"github.com/markdave123-py/pdfcsv/internal/core/llm"
	"github.com/markdave123-py/pdfcsv/internal/export"
	"github.com/markdave123-py/pdfcsv/internal/models"
)

type options struct {
	out     string
	model   string
	xlsx    bool
	stdout  bool
	timeout time.Duration
	verbose bool
}

func main() {
	cfg := config.LoadConfig()

	var opts options
	pflag.StringVarP(&opts.out, "out", "o", "", "output path (default: <name>_converted.csv next to the input)")
	pflag.StringVar(&opts.model, "model", cfg.GenModel, "Gemini model")
	pflag.BoolVar(&opts.xlsx, "xlsx", false, "also write an .xlsx workbook next to the CSV")
	pflag.BoolVar(&opts.stdout, "stdout", false, "print the CSV instead of writing a file")
	pflag.DurationVar(&opts.timeout, "timeout", cfg.ExtractTimeout, "deadline for the model call (0 = none)")
	pflag.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <file.pdf>\n\n", filepath.Base(os.Args[0]))
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	level := "warn"
	if opts.verbose {
		level = "info"
	}
	logger := config.NewLogger(os.Stderr, level, "text")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, opts, pflag.Arg(0), logger); err != nil {
		fmt.Fprintln(os.Stderr, "pdf2csv:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	extractor, err := llm.NewGeminiExtractor(ctx, cfg.AIAPIKey, opts.model, logger)
	if err != nil {
		return err
	}
	defer extractor.Close()

	conv := conversion_engine.NewConverter(
		conversion_engine.NewPDFReader(cfg.MaxUploadBytes(), logger),
		extractor, nil, nil,
		conversion_engine.EngineConfig{ExtractTimeout: opts.timeout},
		logger,
	)

	s := conversion_engine.NewSession("cli", "")
	up := conversion_engine.Upload{Name: filepath.Base(path), MimeType: "application/pdf", Body: f}
	if err := conv.Convert(ctx, s, up); err != nil {
		return err
	}

	st := s.State()
	if st.Status != models.StatusSuccess || st.Result == nil {
		return fmt.Errorf("conversion ended in %s: %s", st.Status, st.Error)
	}
	if len(st.Result.Headers) == 0 && len(st.Result.Rows) == 0 {
		fmt.Fprintln(os.Stderr, view.EmptyMessage)
	}

	if opts.stdout {
		_, err := fmt.Fprint(os.Stdout, st.Result.RawText)
		return err
	}

	out := opts.out
	if out == "" {
		out = filepath.Join(filepath.Dir(path), conversion_engine.CSVFileName(filepath.Base(path)))
	}
	if err := os.WriteFile(out, []byte(st.Result.RawText), 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d rows, %.2fs)\n", out, len(st.Result.Rows), st.ProcessTime)

	if opts.xlsx {
		data, err := export.WorkbookFromResult(*st.Result)
		if err != nil {
			return err
		}
		xlsxPath := export.XLSXFileName(out)
		if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", xlsxPath)
	}
	return nil
}
