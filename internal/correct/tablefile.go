package correct

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/table.json
var schemaFS embed.FS

const tableSchemaFile = "schemas/table.json"

// LoadTableFile reads a JSON table from path and validates it for policy.
func LoadTableFile(path string, policy Policy, foldUnicode bool) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table file: %w", err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Validate(policy, foldUnicode); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTable decodes a table document after checking it against the table schema.
func ParseTable(data []byte) (Table, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	schema, err := compileTableSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	return t, nil
}

// WriteTableFile writes t to path as indented JSON with sorted keys.
func WriteTableFile(path string, t Table) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("failed to marshal table: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func compileTableSchema() (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile(tableSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read table schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("table.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to load table schema: %w", err)
	}
	schema, err := compiler.Compile("table.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile table schema: %w", err)
	}
	return schema, nil
}
