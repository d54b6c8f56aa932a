package llm

import (
	"encoding/base64"
	"strings"
)

// ToDataURL inlines raw image bytes as a base64 data URL for vision requests.
func ToDataURL(b []byte, mimeType string) string {
	mt := strings.TrimSpace(mimeType)
	if mt == "" {
		mt = "application/octet-stream"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(b)
}
