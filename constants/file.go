package constants

import (
	"mime"
	"strings"
)

// Document formats accepted for extraction.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// AllowedExtensions holds the file extensions accepted for document uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
	"gif":  {},
}

// MaxVisionMBDefault caps the image size we are willing to inline as a data URL.
const MaxVisionMBDefault = 10

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to PDF or IMAGE; "" when unsupported.
func MapExtToFormat(ext string) string {
	e := NormalizeExt(ext)
	if _, ok := AllowedExtensions[e]; !ok {
		return ""
	}
	if e == "pdf" {
		return PDF
	}
	return IMAGE
}

// MapMimeToFormat maps a MIME type (parameters allowed) to PDF or IMAGE; "" when unsupported.
func MapMimeToFormat(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mimeType))
	}
	switch {
	case mt == "application/pdf":
		return PDF
	case mt == "image/jpeg", mt == "image/png", mt == "image/webp", mt == "image/gif":
		return IMAGE
	default:
		return ""
	}
}
