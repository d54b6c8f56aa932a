package llm

import "github.com/covera-app/covera/constants"

// SchemaFor returns the JSON-Schema (draft 2020-12 subset) for kind's response.
// Top-level keys are required; every value is nullable.
func SchemaFor(kind constants.DocumentKind) map[string]any {
	if kind == constants.KindContract {
		return BuildContractJSONSchema()
	}
	return BuildInsuranceJSONSchema()
}

// TopLevelKeys lists the keys the model must return for kind.
func TopLevelKeys(kind constants.DocumentKind) []string {
	if kind == constants.KindContract {
		return []string{"contractType", "startDate", "endDate", "value", "autoRenewal", "parties", "description"}
	}
	return []string{"expirationDate", "policies", "insuredName", "certificateHolder"}
}

func BuildInsuranceJSONSchema() map[string]any {
	policy := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":          nullableString(),
			"coverageLimit": amountProp(),
			"expiryDate":    nullableString(),
			"carrier":       nullableString(),
			"policyNumber":  nullableString(),
		},
		"additionalProperties": false,
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"expirationDate":    nullableString(),
			"policies":          nullableArray(policy),
			"insuredName":       nullableString(),
			"certificateHolder": nullableString(),
		},
		"required": TopLevelKeys(constants.KindInsurance),
	}
}

func BuildContractJSONSchema() map[string]any {
	party := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": nullableString(),
			"role": nullableString(),
		},
		"additionalProperties": false,
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"contractType": nullableString(),
			"startDate":    nullableString(),
			"endDate":      nullableString(),
			"value":        amountProp(),
			"autoRenewal":  map[string]any{"type": []string{"boolean", "null"}},
			"parties":      nullableArray(party),
			"description":  nullableString(),
		},
		"required": TopLevelKeys(constants.KindContract),
	}
}

// a null list is the model saying "none found"
func nullableArray(items map[string]any) map[string]any {
	return map[string]any{"type": []string{"array", "null"}, "items": items}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

// amounts arrive as numbers or decorated strings; the normalizer parses both
func amountProp() map[string]any {
	return map[string]any{"type": []string{"number", "string", "null"}}
}
