package textextract

import (
	"strings"
	"unicode"
)

// MinUsableChars is the floor below which a document's text is not worth an LLM call.
const MinUsableChars = 50

// minUsableRatio separates real text from binary noise decoded as text.
const minUsableRatio = 0.6

// UsableChars counts letters and digits: the characters that carry meaning
// for field extraction.
func UsableChars(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// IsUsable reports whether extracted text is worth sending to the model:
// at least MinUsableChars usable characters, and not dominated by symbols
// (the high-entropy output of a PDF without a real text layer).
func IsUsable(s string) bool {
	usable := UsableChars(s)
	if usable < MinUsableChars {
		return false
	}
	nonSpace := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			nonSpace++
		}
	}
	return float64(usable)/float64(nonSpace) >= minUsableRatio
}

// NaiveStrip is the fallback decoder: it keeps runs of printable ASCII of at
// least four characters from the raw bytes and drops everything else.
func NaiveStrip(b []byte) string {
	const minRun = 4
	var out, run strings.Builder
	flush := func() {
		if run.Len() >= minRun {
			if out.Len() > 0 {
				out.WriteByte(' ')
			}
			out.WriteString(strings.TrimSpace(run.String()))
		}
		run.Reset()
	}
	for _, c := range b {
		if c >= 0x20 && c <= 0x7e {
			run.WriteByte(c)
			continue
		}
		flush()
	}
	flush()
	return reMultiSpace.ReplaceAllString(out.String(), " ")
}
