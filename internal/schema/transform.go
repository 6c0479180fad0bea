// Package schema adapts input schemas advertised by downstream servers to the
// draft the validator understands
package schema

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Draft202012 is the only $schema the validator resolves
const Draft202012 = "https://json-schema.org/draft/2020-12/schema"

var draft07 = map[string]bool{
	"http://json-schema.org/draft-07/schema#":  true,
	"http://json-schema.org/draft-07/schema":   true,
	"https://json-schema.org/draft-07/schema#": true,
	"https://json-schema.org/draft-07/schema":  true,
}

// Normalize returns a copy of s with draft-07 $schema declarations rewritten
// to draft 2020-12. Many servers built on zod advertise draft-07 even though
// the keywords they use are valid 2020-12. The input is not modified.
func Normalize(s *jsonschema.Schema) *jsonschema.Schema {
	if s == nil {
		return nil
	}

	normalized := *s
	if draft07[s.Schema] {
		normalized.Schema = Draft202012
	}

	normalized.Properties = normalizeMap(s.Properties)
	normalized.Defs = normalizeMap(s.Defs)
	normalized.Definitions = normalizeMap(s.Definitions)
	normalized.AllOf = normalizeSlice(s.AllOf)
	normalized.AnyOf = normalizeSlice(s.AnyOf)
	normalized.OneOf = normalizeSlice(s.OneOf)
	normalized.Items = Normalize(s.Items)
	normalized.AdditionalProperties = Normalize(s.AdditionalProperties)
	normalized.Not = Normalize(s.Not)

	return &normalized
}

// SafeNormalize is Normalize with panics turned into errors, so a malformed
// schema only costs its own validation
func SafeNormalize(s *jsonschema.Schema) (result *jsonschema.Schema, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("schema normalization failed: %v", r)
		}
	}()
	return Normalize(s), nil
}

func normalizeMap(in map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
	if in == nil {
		return nil
	}
	out := make(map[string]*jsonschema.Schema, len(in))
	for k, v := range in {
		out[k] = Normalize(v)
	}
	return out
}

func normalizeSlice(in []*jsonschema.Schema) []*jsonschema.Schema {
	if in == nil {
		return nil
	}
	out := make([]*jsonschema.Schema, len(in))
	for i, v := range in {
		out[i] = Normalize(v)
	}
	return out
}
