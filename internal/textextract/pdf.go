// Package textextract turns PDF bytes into plain text for the text-mode
// extraction prompt.
package textextract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ErrNoText is returned when pdftotext ran but produced nothing.
var ErrNoText = errors.New("pdf has no text layer")

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxPages  int    // 0 = no limit
	TempDir   string // where the PDF is staged for pdftotext; "" = os.TempDir()
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdftotext"
	Duration time.Duration
}

// Extractor shells out to poppler's pdftotext.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// ExtractPDF stages b in a temp file and runs pdftotext on it.
func (e *Extractor) ExtractPDF(ctx context.Context, b []byte) (Result, error) {
	start := time.Now()
	f, err := os.CreateTemp(e.cfg.TempDir, "covera-*.pdf")
	if err != nil {
		return Result{}, fmt.Errorf("stage pdf: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			e.logger.Warn("textextract.cleanup_failed", "path", path, "error", err)
		}
	}()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return Result{}, fmt.Errorf("stage pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("stage pdf: %w", err)
	}

	// pdftotext -layout -enc UTF-8 -eol unix [-l N] <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	args = append(args, path, "-")
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		return Result{}, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}

	text := string(out)
	// A form-feed \f is used as page separator by default
	pages := 1 + strings.Count(strings.TrimRight(text, "\f"), "\f")
	text = Normalize(text)
	if text == "" {
		return Result{Pages: pages, Method: "pdftotext", Duration: time.Since(start)}, ErrNoText
	}

	e.logger.Debug("textextract.pdf.ok", "pages", pages, "chars", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return Result{Text: text, Pages: pages, Method: "pdftotext", Duration: time.Since(start)}, nil
}
