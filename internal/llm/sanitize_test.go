package llm

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covera-app/covera/constants"
)

func TestNormalizeAndSanitizeJSON_Insurance(t *testing.T) {
	raw := []byte(`{
		"expiration_date": "2026-01-01",
		"policies": [
			{"type": "COMMERCIAL GENERAL LIABILITY", "coverage_limit": "$1,000,000", "expiryDate": "2026-01-01", "carrier": "N/A", "policyNumber": " GL-1 ", "status": "compliant"},
			"garbage"
		],
		"insuredName": "Acme Roofing",
		"certificateHolder": "",
		"confidence": 0.9
	}`)

	out, dropped, err := NormalizeAndSanitizeJSON(raw, constants.KindInsurance, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, dropped)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "2026-01-01", m["expirationDate"])
	assert.Nil(t, m["certificateHolder"])
	assert.NotContains(t, m, "confidence")

	policies := m["policies"].([]any)
	require.Len(t, policies, 1)
	p := policies[0].(map[string]any)
	assert.Equal(t, "$1,000,000", p["coverageLimit"])
	assert.Nil(t, p["carrier"])
	assert.Equal(t, "GL-1", p["policyNumber"])
	assert.NotContains(t, p, "status")

	require.NoError(t, ValidateFields(constants.KindInsurance, out))
}

func TestNormalizeAndSanitizeJSON_NullListBecomesEmpty(t *testing.T) {
	raw := []byte(`{"contractType":null,"startDate":null,"endDate":null,"value":null,"autoRenewal":null,"parties":null,"description":null}`)
	out, _, err := NormalizeAndSanitizeJSON(raw, constants.KindContract, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"contractType":null,"startDate":null,"endDate":null,"value":null,"autoRenewal":null,"parties":[],"description":null}`, string(out))
	require.NoError(t, ValidateFields(constants.KindContract, out))
}

func TestValidateFields_MissingKeyIsInvalid(t *testing.T) {
	err := ValidateFields(constants.KindInsurance, []byte(`{"policies": []}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	err = ValidateFields(constants.KindContract, []byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestValidateFields_AllNullIsValid(t *testing.T) {
	b, err := json.Marshal(Empty(constants.KindInsurance).Insurance)
	require.NoError(t, err)
	assert.NoError(t, ValidateFields(constants.KindInsurance, b))

	b, err = json.Marshal(Empty(constants.KindContract).Contract)
	require.NoError(t, err)
	assert.NoError(t, ValidateFields(constants.KindContract, b))
}

func TestAmount_UnmarshalNumberOrString(t *testing.T) {
	var p PolicyFields
	require.NoError(t, json.Unmarshal([]byte(`{"coverageLimit": 2000000}`), &p))
	require.NotNil(t, p.CoverageLimit)
	assert.Equal(t, Amount("2000000"), *p.CoverageLimit)

	require.NoError(t, json.Unmarshal([]byte(`{"coverageLimit": "$1,000,000"}`), &p))
	assert.Equal(t, Amount("$1,000,000"), *p.CoverageLimit)

	p = PolicyFields{}
	require.NoError(t, json.Unmarshal([]byte(`{"coverageLimit": null}`), &p))
	assert.Nil(t, p.CoverageLimit)
}

func TestBuildPrompts(t *testing.T) {
	sys := BuildSystemPrompt(constants.KindInsurance, false)
	assert.Contains(t, sys, "Never infer")
	assert.Contains(t, sys, "MM/DD/YYYY")
	assert.Contains(t, sys, "certificateHolder")

	sys = BuildSystemPrompt(constants.KindContract, true)
	assert.Contains(t, sys, "attached document image")
	assert.Contains(t, sys, "autoRenewal")

	user := BuildUserPrompt(ExtractRequest{Kind: constants.KindInsurance, Text: "CERTIFICATE OF LIABILITY INSURANCE", FilenameHint: "coi.pdf"})
	assert.Contains(t, user, "Filename: coi.pdf")
	assert.Contains(t, user, "CERTIFICATE OF LIABILITY INSURANCE")

	user = BuildUserPrompt(ExtractRequest{Kind: constants.KindInsurance, ImageDataURL: "data:image/png;base64,AA=="})
	assert.NotContains(t, user, "Document text")
}

func TestValidateFields_NullListIsValid(t *testing.T) {
	assert.NoError(t, ValidateFields(constants.KindInsurance, []byte(`{"expirationDate":null,"policies":null,"insuredName":"Acme","certificateHolder":null}`)))
	assert.NoError(t, ValidateFields(constants.KindContract, []byte(`{"contractType":null,"startDate":null,"endDate":null,"value":null,"autoRenewal":null,"parties":null,"description":null}`)))
}

func TestBuildUserPrompt_TruncatesOnRuneBoundary(t *testing.T) {
	// "é" is two bytes; the limit lands in the middle of one.
	text := strings.Repeat("a", maxPromptText-1) + strings.Repeat("é", 10)
	user := BuildUserPrompt(ExtractRequest{Kind: constants.KindContract, Text: text})
	assert.True(t, utf8.ValidString(user))
	assert.Contains(t, user, "…(truncated)")
	assert.NotContains(t, user, "aé")

	assert.Equal(t, "ab", truncateUTF8("abé", 3))
	assert.Equal(t, "abé", truncateUTF8("abé", 4))
	assert.Equal(t, "", truncateUTF8("日本", 2))
}
