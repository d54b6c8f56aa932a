package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/common"
	"github.com/covera-app/covera/internal/extraction"
	"github.com/covera-app/covera/internal/llm"
	"github.com/covera-app/covera/internal/normalize"
	"github.com/covera-app/covera/internal/services/documents"
)

type ExtractHandler struct {
	extractor  documents.Extractor
	normalizer *normalize.Normalizer
	uploads    uploads
	logger     *slog.Logger
}

type extractResponse struct {
	Kind     constants.DocumentKind `json:"kind"`
	Method   string                 `json:"method"`
	Degraded bool                   `json:"degraded"`
	Fields   llm.ExtractedFields    `json:"fields"`
	Patch    normalize.Patch        `json:"patch"`
}

// HandleExtract runs extraction on an uploaded file and returns the raw
// fields plus the normalized patch. Nothing is persisted. Unlike attach,
// extraction errors are returned to the caller here.
func (h *ExtractHandler) HandleExtract(c echo.Context) error {
	if h.extractor == nil {
		return common.NewAppError(common.CodeConfig, "document extraction is not configured", common.ErrConfig)
	}
	kind := constants.DocumentKind(strings.ToLower(strings.TrimSpace(c.FormValue("kind"))))
	if !kind.Valid() {
		return common.InvalidInput("kind must be %q or %q", constants.KindInsurance, constants.KindContract)
	}
	up, err := h.uploads.read(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	res, err := h.extractor.Extract(ctx, extraction.Document{
		Bytes:    up.Bytes,
		MimeType: documents.ResolveMime(up),
		Kind:     kind,
		Filename: up.Filename,
	})
	if err != nil {
		return err
	}
	common.LoggerFrom(ctx, h.logger).Info("http.extract.ok", "kind", kind, "method", res.Method, "degraded", res.Degraded)
	return c.JSON(http.StatusOK, extractResponse{
		Kind:     kind,
		Method:   res.Method,
		Degraded: res.Degraded,
		Fields:   res.Fields,
		Patch:    h.normalizer.Normalize(res.Fields, kind),
	})
}
