// Package extraction turns an uploaded document into ExtractedFields with a
// single model call. PDFs go through text extraction first; images go
// straight to a vision request.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/common"
	"github.com/covera-app/covera/internal/llm"
	"github.com/covera-app/covera/internal/textextract"
)

// TextExtractor is the PDF-to-text collaborator.
type TextExtractor interface {
	ExtractPDF(ctx context.Context, b []byte) (textextract.Result, error)
}

// Document is one file submitted for extraction.
type Document struct {
	Bytes    []byte
	MimeType string
	Kind     constants.DocumentKind
	Filename string
}

// Result is the outcome of a successful Extract. Degraded is set when the
// PDF had too little readable text and the model was never called.
type Result struct {
	Fields   llm.ExtractedFields
	Raw      []byte
	Method   string // "pdf-text" | "pdf-naive" | "vision" | "skipped"
	Degraded bool
}

type Config struct {
	// Timeout bounds the whole extraction; 0 disables it.
	Timeout time.Duration
	// MaxImageBytes caps images inlined for vision; 0 means constants.MaxVisionMBDefault.
	MaxImageBytes int64
}

type Service struct {
	cfg    Config
	text   TextExtractor
	fields llm.FieldExtractor
	log    *slog.Logger
}

func NewService(cfg Config, text TextExtractor, fields llm.FieldExtractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = int64(constants.MaxVisionMBDefault) << 20
	}
	return &Service{cfg: cfg, text: text, fields: fields, log: logger}
}

// Extract runs the PDF or image path for doc. Each call is independent: no
// retries, no caching.
func (s *Service) Extract(ctx context.Context, doc Document) (Result, error) {
	log := common.LoggerFrom(ctx, s.log).With("kind", doc.Kind, "mime", doc.MimeType, "bytes", len(doc.Bytes))

	if !doc.Kind.Valid() {
		return Result{}, common.InvalidInput("unknown document kind %q", doc.Kind)
	}
	if len(doc.Bytes) == 0 {
		return Result{}, common.InvalidInput("empty document")
	}
	format := constants.MapMimeToFormat(doc.MimeType)
	if format == "" {
		return Result{}, common.InvalidInput("unsupported document type %q", doc.MimeType)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	var (
		res Result
		err error
	)
	switch format {
	case constants.PDF:
		res, err = s.extractPDF(ctx, doc, log)
	default:
		res, err = s.extractImage(ctx, doc, log)
	}
	if err != nil {
		log.Error("extraction.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Result{}, err
	}
	log.Info("extraction.ok", "method", res.Method, "degraded", res.Degraded, "elapsed_ms", time.Since(start).Milliseconds())
	return res, nil
}

func (s *Service) extractPDF(ctx context.Context, doc Document, log *slog.Logger) (Result, error) {
	method := "pdf-text"
	var text string
	if s.text != nil {
		r, err := s.text.ExtractPDF(ctx, doc.Bytes)
		switch {
		case err != nil:
			log.Warn("extraction.pdf.text_failed", "error", err)
		case !textextract.IsUsable(r.Text):
			log.Warn("extraction.pdf.text_unusable", "chars", len(r.Text), "usable", textextract.UsableChars(r.Text))
		default:
			text = r.Text
		}
	}

	if text == "" {
		method = "pdf-naive"
		text = textextract.NaiveStrip(doc.Bytes)
		if textextract.UsableChars(text) < textextract.MinUsableChars {
			// Not an error: the caller gets an all-null result and falls back to manual entry.
			log.Warn("extraction.pdf.degraded", "usable", textextract.UsableChars(text))
			return Result{Fields: llm.Empty(doc.Kind), Method: "skipped", Degraded: true}, nil
		}
	}

	fields, raw, err := s.fields.ExtractFields(ctx, llm.ExtractRequest{
		Kind:         doc.Kind,
		Text:         text,
		FilenameHint: doc.Filename,
	})
	if err != nil {
		return Result{}, upstream(err)
	}
	return Result{Fields: fields, Raw: raw, Method: method}, nil
}

func (s *Service) extractImage(ctx context.Context, doc Document, _ *slog.Logger) (Result, error) {
	if int64(len(doc.Bytes)) > s.cfg.MaxImageBytes {
		return Result{}, common.InvalidInput("image exceeds %d bytes", s.cfg.MaxImageBytes)
	}
	fields, raw, err := s.fields.ExtractFields(ctx, llm.ExtractRequest{
		Kind:         doc.Kind,
		ImageDataURL: llm.ToDataURL(doc.Bytes, doc.MimeType),
		FilenameHint: doc.Filename,
	})
	if err != nil {
		return Result{}, upstream(err)
	}
	return Result{Fields: fields, Raw: raw, Method: "vision"}, nil
}

func upstream(err error) error {
	if errors.Is(err, common.ErrInvalidInput) {
		return err
	}
	return common.NewAppError(common.CodeUpstream, "document extraction failed", fmt.Errorf("%w: %w", common.ErrUpstream, err))
}
