package wingadmin

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed catalog.schema.json
var catalogSchemaJSON []byte

var (
	catalogSchemaOnce sync.Once
	catalogSchema     *jsonschema.Schema
	catalogSchemaErr  error
)

func compiledCatalogSchema() (*jsonschema.Schema, error) {
	catalogSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(catalogSchemaJSON))
		if err != nil {
			catalogSchemaErr = fmt.Errorf("schema: parse embedded schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("catalog.schema.json", doc); err != nil {
			catalogSchemaErr = fmt.Errorf("schema: add resource: %w", err)
			return
		}
		catalogSchema, catalogSchemaErr = compiler.Compile("catalog.schema.json")
	})
	return catalogSchema, catalogSchemaErr
}

// ValidateDocument checks raw catalog bytes against the catalog JSON schema.
// Called on every load so a hand-edited or truncated remote document is
// rejected before it replaces the in-memory snapshot.
func ValidateDocument(data []byte) error {
	schema, err := compiledCatalogSchema()
	if err != nil {
		return err
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("schema: parse document: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("schema: catalog document invalid: %w", err)
	}
	return nil
}
