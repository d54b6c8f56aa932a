package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/covera-app/covera/constants"
)

// snake_case and near-miss keys models commonly emit instead of ours
var keySynonyms = map[string]string{
	"expiration_date":    "expirationDate",
	"expiry_date":        "expiryDate",
	"expirationdate":     "expirationDate",
	"insured_name":       "insuredName",
	"insured":            "insuredName",
	"certificate_holder": "certificateHolder",
	"coverage_limit":     "coverageLimit",
	"limit":              "coverageLimit",
	"policy_number":      "policyNumber",
	"insurer":            "carrier",
	"policy_type":        "type",
	"contract_type":      "contractType",
	"start_date":         "startDate",
	"effective_date":     "startDate",
	"end_date":           "endDate",
	"expiry":             "expiryDate",
	"auto_renewal":       "autoRenewal",
	"auto_renew":         "autoRenewal",
	"contract_value":     "value",
}

var nullish = map[string]struct{}{
	"": {}, "null": {}, "n/a": {}, "na": {}, "none": {}, "unknown": {}, "-": {},
}

// NormalizeAndSanitizeJSON tidies a model response before schema validation:
//   - renames known key synonyms to our camelCase keys
//   - turns "", "null", "N/A" and similar placeholder strings into JSON null
//   - removes keys we did not ask for (including any status the model claims)
//
// It never invents keys; a response missing a required key still fails validation.
func NormalizeAndSanitizeJSON(raw []byte, kind constants.DocumentKind, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)
	allowedTop := toSet(TopLevelKeys(kind))
	sanitizeObject(m, allowedTop, "", &dropped)

	var listKey string
	var itemKeys map[string]struct{}
	if kind == constants.KindContract {
		listKey, itemKeys = "parties", toSet([]string{"name", "role"})
	} else {
		listKey, itemKeys = "policies", toSet([]string{"type", "coverageLimit", "expiryDate", "carrier", "policyNumber"})
	}
	switch items := m[listKey].(type) {
	case nil:
		// a null list means "nothing found"; keep the key so validation passes
		if _, present := m[listKey]; present {
			m[listKey] = []any{}
		}
	case []any:
		kept := items[:0]
		for i, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				dropped = append(dropped, fmt.Sprintf("%s[%d](type)", listKey, i))
				continue
			}
			sanitizeObject(obj, itemKeys, fmt.Sprintf("%s[%d].", listKey, i), &dropped)
			kept = append(kept, obj)
		}
		m[listKey] = kept
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		slices.Sort(dropped)
		logger.Warn("llm.extract.normalize_sanitize", "kind", kind, "dropped", dropped)
	}
	return out, dropped, nil
}

func sanitizeObject(m map[string]any, allowed map[string]struct{}, prefix string, dropped *[]string) {
	for k, v := range maps.Clone(m) {
		if to, ok := keySynonyms[strings.ToLower(k)]; ok && to != k {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, k)
			*dropped = append(*dropped, prefix+k+"->"+to)
		}
	}
	for k, v := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			*dropped = append(*dropped, prefix+k+"(unknown)")
			continue
		}
		if s, ok := v.(string); ok {
			t := strings.TrimSpace(s)
			if _, isNull := nullish[strings.ToLower(t)]; isNull {
				m[k] = nil
				continue
			}
			m[k] = t
		}
	}
}

func toSet(keys []string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out
}
