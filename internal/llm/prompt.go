package llm

import (
	"strings"
	"unicode/utf8"

	"github.com/covera-app/covera/constants"
)

// maxPromptText bounds the document text sent in text mode.
const maxPromptText = 12000

// BuildSystemPrompt composes the strict extraction rules for kind.
func BuildSystemPrompt(kind constants.DocumentKind, vision bool) string {
	var role, shape string
	switch kind {
	case constants.KindContract:
		role = "You extract fields from business contracts."
		shape = `{"contractType": string|null, "startDate": "YYYY-MM-DD"|null, "endDate": "YYYY-MM-DD"|null, ` +
			`"value": number|null, "autoRenewal": boolean|null, "parties": [{"name": string|null, "role": string|null}], ` +
			`"description": string|null}`
	default:
		role = "You extract fields from certificates of insurance (ACORD 25 and similar)."
		shape = `{"expirationDate": "YYYY-MM-DD"|null, "policies": [{"type": string|null, "coverageLimit": number|null, ` +
			`"expiryDate": "YYYY-MM-DD"|null, "carrier": string|null, "policyNumber": string|null}], ` +
			`"insuredName": string|null, "certificateHolder": string|null}`
	}

	source := "the document text below"
	if vision {
		source = "the attached document image"
	}

	parts := []string{
		role,
		"Extract ONLY information that is explicitly visible in " + source + ". Never infer, guess or fill in plausible values.",
		"Use null for any field that is missing, illegible or uncertain.",
		"Respond with a single JSON object with exactly these keys: " + shape,
		"Dates MUST be ISO-8601 (YYYY-MM-DD). Read numeric dates written with slashes as MM/DD/YYYY (US order).",
		"Amounts MUST be plain numbers without currency symbols or thousands separators.",
	}
	switch kind {
	case constants.KindContract:
		parts = append(parts,
			"For 'value' use the total contract value if stated.",
			"For 'contractType' prefer one of: "+strings.Join(constants.ContractTypes(), ", ")+".",
		)
	default:
		parts = append(parts,
			"List every coverage line as its own policy, using the policy type wording as printed (e.g. COMMERCIAL GENERAL LIABILITY).",
			"For 'coverageLimit' use the each-occurrence or per-accident limit when several limits are printed.",
			"For 'expirationDate' use the earliest policy expiration date on the certificate.",
		)
	}
	parts = append(parts, "Do not include any other keys, comments or text outside the JSON object.")
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the filename hint and, in text mode, the document text.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if f := strings.TrimSpace(req.FilenameHint); f != "" {
		b.WriteString("Filename: ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	if req.Vision() {
		b.WriteString("The document is attached as an image. Return ONLY the JSON object.")
		return b.String()
	}
	text := strings.TrimSpace(req.Text)
	b.WriteString("\nDocument text:\n")
	if len(text) > maxPromptText {
		b.WriteString(truncateUTF8(text, maxPromptText))
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n\nReturn ONLY the JSON object.")
	return b.String()
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
