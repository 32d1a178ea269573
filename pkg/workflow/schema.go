package workflow

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/wfrun/wfrun/pkg/logger"
)

var schemaLog = logger.New("workflow:schema")

//go:embed schemas/workflow.schema.json
var workflowSchemaJSON []byte

const workflowSchemaName = "workflow.schema.json"

// compiledSchema compiles the embedded schema once; the schema is part of
// the binary, so a compile failure is a build defect surfaced at first use.
var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(workflowSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded workflow schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(workflowSchemaName, doc); err != nil {
		return nil, fmt.Errorf("failed to register workflow schema: %w", err)
	}
	schema, err := compiler.Compile(workflowSchemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to compile workflow schema: %w", err)
	}
	return schema, nil
})

// ValidateSchema validates raw workflow YAML against the embedded JSON
// schema. This catches structural errors (wrong types, unknown fields,
// steps with both run and uses) before the typed parse runs.
func ValidateSchema(path string, data []byte) error {
	schemaLog.Printf("Validating workflow against schema: path=%s", path)

	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s: invalid workflow YAML: %w", path, err)
	}

	// Round-trip through JSON so the instance carries JSON value types;
	// YAML decoding yields Go ints the validator does not expect.
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: workflow is not JSON-representable: %w", path, err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonBytes))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if err := schema.Validate(instance); err != nil {
		schemaLog.Printf("Schema validation failed: path=%s, err=%v", path, err)
		return fmt.Errorf("%s: schema validation failed: %w", path, err)
	}
	return nil
}
