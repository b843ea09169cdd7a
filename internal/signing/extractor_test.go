package signing

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/signet-dev/signet/internal/providers"
)

const sampleResponse = `{
	"status": "success",
	"message": "Found 3 signing rules in 1 section",
	"sections_found": [
		{"section_name": "Signing Authority", "section_number": "4.2", "location": "page 2"}
	],
	"total_rules": 3,
	"approved_count": 1,
	"approved_rules": [],
	"all_rules": [
		{"rule_number": 1, "rule_text": "The treasurer may sign alone", "checkbox_content": "X", "section": "Signing Authority", "is_approved": true},
		{"rule_number": 2, "rule_text": "Two directors must co-sign", "checkbox_content": "□", "section": "Signing Authority", "is_approved": false},
		{"rule_number": 3, "rule_text": "The chair may delegate", "checkbox_content": "✓", "section": "Signing Authority", "is_approved": true}
	]
}`

func TestExtractNormalizesCounts(t *testing.T) {
	// The model reply deliberately claims total_rules=3/approved_count=1 while
	// all_rules holds two approved entries. Derived fields must be recomputed.
	client := &providers.MockClient{ResponseText: sampleResponse}
	e := NewExtractor(Config{})

	result := e.Extract(context.Background(), client, "document text")

	if result.Status != "success" {
		t.Fatalf("status = %q, message = %q", result.Status, result.Message)
	}
	if result.TotalRules != 3 {
		t.Errorf("total_rules = %d, want 3", result.TotalRules)
	}
	if result.ApprovedCount != 2 {
		t.Errorf("approved_count = %d, want 2", result.ApprovedCount)
	}
	if len(result.ApprovedRules) != 2 {
		t.Fatalf("approved_rules len = %d, want 2", len(result.ApprovedRules))
	}
	for _, r := range result.ApprovedRules {
		if !r.IsApproved {
			t.Errorf("rule %d in approved_rules but not approved", r.RuleNumber)
		}
	}
}

func TestExtractStripsCodeFences(t *testing.T) {
	client := &providers.MockClient{ResponseText: "```json\n" + sampleResponse + "\n```"}
	e := NewExtractor(Config{})

	result := e.Extract(context.Background(), client, "document text")
	if result.Status != "success" {
		t.Fatalf("status = %q, message = %q", result.Status, result.Message)
	}
	if result.TotalRules != 3 {
		t.Errorf("total_rules = %d, want 3", result.TotalRules)
	}
}

func TestExtractProviderError(t *testing.T) {
	client := &providers.MockClient{ShouldFail: true}
	e := NewExtractor(Config{})

	result := e.Extract(context.Background(), client, "document text")

	assertErrorShape(t, result)
}

func TestExtractMalformedJSON(t *testing.T) {
	client := &providers.MockClient{ResponseText: "I could not find any rules, sorry!"}
	e := NewExtractor(Config{})

	result := e.Extract(context.Background(), client, "document text")

	assertErrorShape(t, result)
	if !strings.Contains(result.Message, "Error processing document") {
		t.Errorf("message = %q", result.Message)
	}
}

func TestExtractSchemaViolation(t *testing.T) {
	// all_rules entries missing required fields must be rejected, not half-parsed.
	client := &providers.MockClient{ResponseText: `{
		"status": "success",
		"message": "ok",
		"sections_found": [],
		"all_rules": [{"rule_number": 1}]
	}`}
	e := NewExtractor(Config{})

	result := e.Extract(context.Background(), client, "document text")
	assertErrorShape(t, result)
}

// assertErrorShape checks the contract's error result: status "error", zero
// counts, and empty (never null) lists.
func assertErrorShape(t *testing.T, result *Result) {
	t.Helper()

	if result.Status != "error" {
		t.Errorf("status = %q, want error", result.Status)
	}
	if result.TotalRules != 0 || result.ApprovedCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", result.TotalRules, result.ApprovedCount)
	}
	if result.SectionsFound == nil || result.ApprovedRules == nil || result.AllRules == nil {
		t.Error("error result must have empty, non-nil lists")
	}
	if len(result.SectionsFound) != 0 || len(result.ApprovedRules) != 0 || len(result.AllRules) != 0 {
		t.Error("error result lists must be empty")
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal error result: %v", err)
	}
	for _, want := range []string{`"sections_found":[]`, `"approved_rules":[]`, `"all_rules":[]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("error result JSON missing %s: %s", want, data)
		}
	}
}

func TestBuildPromptContainsDocument(t *testing.T) {
	p := BuildPrompt("THE DOCUMENT BODY")
	if !strings.Contains(p, "THE DOCUMENT BODY") {
		t.Error("prompt does not embed the document text")
	}
	for _, marker := range []string{"□", "☑", "✓", "Return only JSON"} {
		if !strings.Contains(p, marker) {
			t.Errorf("prompt missing %q", marker)
		}
	}
}

func TestNormalizeEmptyResult(t *testing.T) {
	var r Result
	r.Normalize()
	if r.SectionsFound == nil || r.AllRules == nil || r.ApprovedRules == nil {
		t.Error("Normalize must initialize nil slices")
	}
	if r.TotalRules != 0 || r.ApprovedCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", r.TotalRules, r.ApprovedCount)
	}
}
