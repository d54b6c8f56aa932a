// Package documents holds the attach-and-extract flow shared by the vendor
// and contract services. Extraction here is advisory: its failure is
// reported on the Outcome and never fails the attach itself.
package documents

import (
	"context"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/common"
	"github.com/covera-app/covera/internal/entity"
	"github.com/covera-app/covera/internal/extraction"
	"github.com/covera-app/covera/internal/llm"
	"github.com/covera-app/covera/internal/normalize"
)

// Extractor is the document extraction collaborator.
type Extractor interface {
	Extract(ctx context.Context, doc extraction.Document) (extraction.Result, error)
}

// Upload is a file handed to AttachDocument. Path is an opaque reference to
// wherever the caller stored the blob.
type Upload struct {
	Filename string
	MimeType string
	Bytes    []byte
	Path     string
}

// Outcome describes what extraction did for one attach.
type Outcome struct {
	Method   string               `json:"method,omitempty"`
	Degraded bool                 `json:"degraded"`
	Fields   *llm.ExtractedFields `json:"fields,omitempty"`
	Patch    *normalize.Patch     `json:"patch,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// Applied reports whether a patch was produced.
func (o *Outcome) Applied() bool {
	return o != nil && o.Patch != nil
}

// ResolveMime returns the upload's mime type, falling back to the file
// extension when the client sent none or a generic one.
func ResolveMime(u Upload) string {
	if constants.MapMimeToFormat(u.MimeType) != "" {
		return u.MimeType
	}
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if constants.MapExtToFormat(ext) == "" {
		return u.MimeType
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return u.MimeType
}

// NewDocument validates u and builds the stored reference for it.
func NewDocument(u Upload, now time.Time) (entity.Document, string, error) {
	name := strings.TrimSpace(filepath.Base(u.Filename))
	if name == "" || name == "." {
		return entity.Document{}, "", common.InvalidInput("document name is required")
	}
	if len(u.Bytes) == 0 {
		return entity.Document{}, "", common.InvalidInput("document %q is empty", name)
	}
	mt := ResolveMime(u)
	format := constants.MapMimeToFormat(mt)
	if format == "" {
		return entity.Document{}, "", common.InvalidInput("unsupported document type %q", u.MimeType)
	}
	return entity.Document{
		ID:         uuid.NewString(),
		Name:       name,
		Type:       format,
		Size:       int64(len(u.Bytes)),
		UploadedAt: now.UTC(),
		Path:       u.Path,
	}, mt, nil
}

// Extract runs extraction and normalization for u. A nil extractor yields a
// nil Outcome, which callers treat as "extraction disabled".
func Extract(ctx context.Context, ex Extractor, u Upload, mimeType string, kind constants.DocumentKind, today time.Time, logger *slog.Logger) *Outcome {
	if ex == nil {
		return nil
	}
	log := common.LoggerFrom(ctx, logger).With("kind", kind, "document", u.Filename)
	res, err := ex.Extract(ctx, extraction.Document{
		Bytes:    u.Bytes,
		MimeType: mimeType,
		Kind:     kind,
		Filename: u.Filename,
	})
	if err != nil {
		log.Warn("documents.extract.failed", "error", err)
		return &Outcome{Error: common.MessageOf(err)}
	}
	fields := res.Fields
	patch := normalize.NormalizeAt(fields, kind, today)
	log.Info("documents.extract.ok", "method", res.Method, "degraded", res.Degraded)
	return &Outcome{
		Method:   res.Method,
		Degraded: res.Degraded,
		Fields:   &fields,
		Patch:    &patch,
	}
}
