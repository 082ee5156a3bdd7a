package tools

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// SchemaFor generates the JSON schema of T as a plain map (the shape sent to
// the model) together with its resolved validator.
func SchemaFor[T any]() (map[string]any, *jsonschema.Resolved, error) {
	schema, err := jsonschema.For[T](&jsonschema.ForOptions{})
	if err != nil {
		return nil, nil, err
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, nil, err
	}

	data, err := json.Marshal(schema)
	if err != nil {
		return nil, nil, err
	}

	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, nil, err
	}

	return params, resolved, nil
}
