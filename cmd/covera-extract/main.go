package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/common"
	"github.com/covera-app/covera/internal/compliance"
	"github.com/covera-app/covera/internal/extraction"
	"github.com/covera-app/covera/internal/llm"
	"github.com/covera-app/covera/internal/normalize"
	"github.com/covera-app/covera/internal/services/documents"
)

type output struct {
	File     string              `json:"file"`
	Method   string              `json:"method"`
	Degraded bool                `json:"degraded"`
	Raw      json.RawMessage     `json:"raw,omitempty"`
	Fields   llm.ExtractedFields `json:"fields"`
	Patch    normalize.Patch     `json:"patch"`
}

func main() {
	kind := flag.String("kind", "insurance", "document kind: insurance | contract")
	mimeType := flag.String("mime", "", "mime type; guessed from the extension when empty")
	flag.Parse()

	cfg, err := common.LoadConfig(os.Getenv("COVERA_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	// stdout carries the JSON result, so logs go to stderr
	logger := common.NewLogger(cfg.Log.Level, "text", os.Stderr)
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage: covera-extract [-kind insurance|contract] [-mime type] <file>")
		os.Exit(2)
	}
	dk := constants.DocumentKind(*kind)
	if !dk.Valid() {
		logger.Error("invalid kind", "kind", *kind)
		os.Exit(2)
	}

	svc, err := extraction.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Error("extraction unavailable", "error", err)
		os.Exit(2)
	}

	path := flag.Arg(0)
	b, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}
	up := documents.Upload{Filename: filepath.Base(path), MimeType: *mimeType, Bytes: b}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Extraction.Timeout+cfg.LLM.Timeout)
	defer cancel()
	res, err := svc.Extract(ctx, extraction.Document{
		Bytes:    b,
		MimeType: documents.ResolveMime(up),
		Kind:     dk,
		Filename: up.Filename,
	})
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	out := output{
		File:     path,
		Method:   res.Method,
		Degraded: res.Degraded,
		Fields:   res.Fields,
		Patch:    normalize.New(compliance.NewEngine(nil)).Normalize(res.Fields, dk),
	}
	if json.Valid(res.Raw) {
		out.Raw = res.Raw
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("write output", "error", err)
		os.Exit(1)
	}
}
