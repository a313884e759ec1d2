// Package payloadschema validates enriched-tabs export payloads against
// the embedded v1 JSON Schema. The enrichment collaborator produces
// these payloads; the graph engine consumes them after validation.
package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed tabs_export.schema.json
var tabsExportSchemaJSON string

// TabEntry is one enriched tab in an export payload. Everything beyond
// the URL is optional; absent enrichment fields are derived downstream.
type TabEntry struct {
	URL               string    `json:"url"`
	Title             string    `json:"title,omitempty"`
	Browser           string    `json:"browser,omitempty"`
	WindowID          *int      `json:"window_id,omitempty"`
	Domain            string    `json:"domain,omitempty"`
	Summary           string    `json:"summary,omitempty"`
	TextExcerpt       string    `json:"text_excerpt,omitempty"`
	Keywords          []string  `json:"keywords,omitempty"`
	Embedding         []float64 `json:"embedding,omitempty"`
	DeclaredCanonical string    `json:"declared_canonical,omitempty"`
	Error             string    `json:"error,omitempty"`
}

// TabsPayload is a versioned enriched-tabs export.
type TabsPayload struct {
	PayloadVersion string     `json:"payload_version"`
	Source         string     `json:"source,omitempty"`
	ExportedAt     *string    `json:"exported_at,omitempty"`
	Tabs           []TabEntry `json:"tabs"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateTabsPayload decodes and validates one payload: strict JSON
// (no trailing content), schema validation, then semantic checks the
// schema cannot express.
func ValidateTabsPayload(payload json.RawMessage) (*TabsPayload, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var parsed TabsPayload
	if err := json.Unmarshal(normalized, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := validateSemantics(&parsed); err != nil {
		return nil, err
	}

	return &parsed, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("tabs_export.schema.json", strings.NewReader(tabsExportSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("tabs_export.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(payload *TabsPayload) error {
	if payload == nil {
		return fmt.Errorf("payload is nil")
	}

	if strings.TrimSpace(payload.PayloadVersion) != "v1" {
		return fmt.Errorf("payload_version must be v1")
	}
	if payload.ExportedAt != nil {
		if _, err := time.Parse(time.RFC3339, strings.TrimSpace(*payload.ExportedAt)); err != nil {
			return fmt.Errorf("exported_at must be RFC3339: %w", err)
		}
	}

	for i, tab := range payload.Tabs {
		if strings.TrimSpace(tab.URL) == "" {
			return fmt.Errorf("tabs[%d].url must not be empty", i)
		}
		for j, keyword := range tab.Keywords {
			if strings.TrimSpace(keyword) == "" {
				return fmt.Errorf("tabs[%d].keywords[%d] must not be empty", i, j)
			}
		}
	}

	return nil
}
