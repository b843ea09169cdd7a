package providers

import (
	"encoding/json"
	"testing"
)

func TestParseStructuredJSON_StripsCodeFence(t *testing.T) {
	content := "```json\n{\"ok\":true}\n```"
	got, err := ParseStructuredJSON(content)
	if err != nil {
		t.Fatalf("ParseStructuredJSON() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(got, &parsed); err != nil {
		t.Fatalf("failed to unmarshal parsed JSON: %v", err)
	}
	if ok, _ := parsed["ok"].(bool); !ok {
		t.Fatalf("expected ok=true, got %#v", parsed)
	}
}

func TestParseStructuredJSON_ExtractsEmbeddedObject(t *testing.T) {
	content := "Here is the result you asked for:\n{\"status\":\"success\"}\nLet me know if you need more."
	got, err := ParseStructuredJSON(content)
	if err != nil {
		t.Fatalf("ParseStructuredJSON() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(got, &parsed); err != nil {
		t.Fatalf("failed to unmarshal parsed JSON: %v", err)
	}
	if parsed["status"] != "success" {
		t.Fatalf("expected status=success, got %#v", parsed)
	}
}

func TestParseStructuredJSON_RejectsNonJSON(t *testing.T) {
	for _, content := range []string{"", "not json at all", "```\nstill not json\n```"} {
		if _, err := ParseStructuredJSON(content); err == nil {
			t.Errorf("ParseStructuredJSON(%q) expected error, got nil", content)
		}
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", `{"a":1}`, ""},
		{"missing close", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.content); got != tt.want {
				t.Errorf("StripCodeFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateStructuredJSON(t *testing.T) {
	schema := json.RawMessage(`{
		"type":"object",
		"properties":{
			"status":{"type":"string"},
			"total_rules":{"type":"integer"}
		},
		"required":["status"],
		"additionalProperties":true
	}`)

	valid := json.RawMessage(`{"status":"success","total_rules":2}`)
	if err := ValidateStructuredJSON(schema, valid); err != nil {
		t.Fatalf("ValidateStructuredJSON(valid) error = %v", err)
	}

	invalid := json.RawMessage(`{"total_rules":"two"}`)
	if err := ValidateStructuredJSON(schema, invalid); err == nil {
		t.Fatal("ValidateStructuredJSON(invalid) expected error, got nil")
	}
}
