package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var specYAML []byte

// ValidateSnapshotDocument checks a raw snapshot document against the
// embedded bridge schema. It reports schema violations (missing required
// fields, wrong types) without decoding into the typed Snapshot first, so it
// catches exactly the malformed documents that would otherwise surface as
// confusing zero values downstream.
func ValidateSnapshotDocument(data []byte) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return fmt.Errorf("load embedded schema: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return fmt.Errorf("embedded schema is invalid: %w", err)
	}

	ref, ok := doc.Components.Schemas["Snapshot"]
	if !ok || ref.Value == nil {
		return fmt.Errorf("embedded schema has no Snapshot component")
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("document is not valid JSON: %w", err)
	}

	if err := ref.Value.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("snapshot does not match bridge schema: %w", err)
	}
	return nil
}
