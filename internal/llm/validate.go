package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/covera-app/covera/constants"
)

// ErrInvalidResponse marks a model response that is not structurally usable.
var ErrInvalidResponse = errors.New("invalid model response")

var (
	compiledMu sync.Mutex
	compiled   = map[constants.DocumentKind]*jsonschema.Schema{}
)

// ValidateFields validates a model response against kind's schema, compiling
// the schema once per kind.
func ValidateFields(kind constants.DocumentKind, data []byte) error {
	compiledMu.Lock()
	schema, ok := compiled[kind]
	if !ok {
		var err error
		schema, err = compileSchema(SchemaFor(kind))
		if err != nil {
			compiledMu.Unlock()
			return err
		}
		compiled[kind] = schema
	}
	compiledMu.Unlock()
	return validate(schema, data)
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: not json: %v", ErrInvalidResponse, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: json does not match schema: %v", ErrInvalidResponse, err)
	}
	return nil
}
