package payloadschema

import (
	"encoding/json"
	"testing"
)

func TestValidateTabsPayload_Valid(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"payload_version": "v1",
		"source": "firefox-export",
		"exported_at": "2026-08-30T10:00:00Z",
		"tabs": [
			{
				"url": "https://example.com/article",
				"title": "Article",
				"window_id": 3,
				"keywords": ["go", "runtime"],
				"embedding": [0.1, 0.2]
			},
			{"url": "https://other.org/"}
		]
	}`)

	parsed, err := ValidateTabsPayload(payload)
	if err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
	if parsed.PayloadVersion != "v1" {
		t.Fatalf("unexpected payload version: %q", parsed.PayloadVersion)
	}
	if len(parsed.Tabs) != 2 {
		t.Fatalf("unexpected tab count: %d", len(parsed.Tabs))
	}
	if parsed.Tabs[0].WindowID == nil || *parsed.Tabs[0].WindowID != 3 {
		t.Fatalf("unexpected window id: %v", parsed.Tabs[0].WindowID)
	}
}

func TestValidateTabsPayload_RejectsWrongVersion(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"payload_version": "v2", "tabs": []}`)
	if _, err := ValidateTabsPayload(payload); err == nil {
		t.Fatalf("expected rejection of payload_version v2")
	}
}

func TestValidateTabsPayload_RejectsMissingURL(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"payload_version": "v1", "tabs": [{"title": "no url"}]}`)
	if _, err := ValidateTabsPayload(payload); err == nil {
		t.Fatalf("expected rejection of tab without url")
	}
}

func TestValidateTabsPayload_RejectsUnknownField(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"payload_version": "v1", "tabs": [], "surprise": true}`)
	if _, err := ValidateTabsPayload(payload); err == nil {
		t.Fatalf("expected rejection of unknown top-level field")
	}
}

func TestValidateTabsPayload_RejectsTrailingContent(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"payload_version": "v1", "tabs": []}{"again": true}`)
	if _, err := ValidateTabsPayload(payload); err == nil {
		t.Fatalf("expected rejection of trailing JSON content")
	}
}

func TestValidateTabsPayload_RejectsBadExportedAt(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"payload_version": "v1", "exported_at": "yesterday", "tabs": []}`)
	if _, err := ValidateTabsPayload(payload); err == nil {
		t.Fatalf("expected rejection of non-RFC3339 exported_at")
	}
}

func TestValidateTabsPayload_RejectsBlankKeyword(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"payload_version": "v1",
		"tabs": [{"url": "https://example.com", "keywords": ["ok", "  "]}]
	}`)
	if _, err := ValidateTabsPayload(payload); err == nil {
		t.Fatalf("expected rejection of blank keyword")
	}
}

func TestValidateTabsPayload_Empty(t *testing.T) {
	t.Parallel()

	if _, err := ValidateTabsPayload(nil); err == nil {
		t.Fatalf("expected rejection of empty payload")
	}
}
