// Package schema holds the canonical answer schema, its compiled validator,
// and the conversion to the provider-side response schema. The artifact is
// loaded once at startup and treated as read-only afterwards.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kaptinlin/jsonschema"
)

//go:embed answer.schema.json
var answerSchemaJSON []byte

// Artifact is the compiled answer schema plus its raw document. It is safe
// for concurrent use once built.
type Artifact struct {
	compiled *jsonschema.Schema
	doc      map[string]interface{}
}

// Load compiles the embedded answer schema.
func Load() (*Artifact, error) {
	compiler := jsonschema.NewCompiler()
	compiled, err := compiler.Compile(answerSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compile answer schema: %w", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(answerSchemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("decode answer schema: %w", err)
	}

	return &Artifact{compiled: compiled, doc: doc}, nil
}

// Validate checks raw JSON against the answer schema and returns the
// field-level error list, or nil when the document is valid.
func (a *Artifact) Validate(data []byte) []string {
	result := a.compiled.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors))
	for keyword, evalErr := range result.Errors {
		errs = append(errs, fmt.Sprintf("%s: %v", keyword, evalErr))
	}
	sort.Strings(errs)
	return errs
}

// ValidateValue checks an already-decoded JSON value against the schema.
func (a *Artifact) ValidateValue(v interface{}) []string {
	data, err := json.Marshal(v)
	if err != nil {
		return []string{fmt.Sprintf("encode: %v", err)}
	}
	return a.Validate(data)
}

// Doc returns the raw schema document.
func (a *Artifact) Doc() map[string]interface{} {
	return a.doc
}
