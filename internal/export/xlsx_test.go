package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/signet-dev/signet/internal/signing"
	"github.com/signet-dev/signet/internal/store"
)

func testExtraction(t *testing.T) *store.Extraction {
	t.Helper()

	result := &signing.Result{
		Status:  "success",
		Message: "found rules",
		SectionsFound: []signing.Section{
			{SectionName: "Signing Authority", SectionNumber: "4"},
		},
		AllRules: []signing.Rule{
			{RuleNumber: 1, RuleText: "treasurer signs alone", CheckboxContent: "X", Section: "Signing Authority", IsApproved: true},
			{RuleNumber: 2, RuleText: "two directors co-sign", CheckboxContent: "□", Section: "Signing Authority", IsApproved: false},
		},
	}
	result.Normalize()

	payload, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	return &store.Extraction{
		ID:            "ext-1",
		DocumentID:    "doc-1",
		Provider:      "anthropic",
		Status:        result.Status,
		Message:       result.Message,
		TotalRules:    result.TotalRules,
		ApprovedCount: result.ApprovedCount,
		Result:        payload,
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestExtractionXLSX(t *testing.T) {
	data, err := ExtractionXLSX(testExtraction(t), nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Rules")
	if err != nil {
		t.Fatalf("read rules sheet: %v", err)
	}
	// Header plus two rules.
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "Rule Number" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][4] != "APPROVED" {
		t.Errorf("rule 1 status = %q", rows[1][4])
	}
	if rows[2][4] != "NOT APPROVED" {
		t.Errorf("rule 2 status = %q", rows[2][4])
	}

	summary, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("read summary sheet: %v", err)
	}
	if len(summary) == 0 || summary[0][1] != "ext-1" {
		t.Errorf("summary = %v", summary)
	}
}

func TestExtractionXLSXBadPayload(t *testing.T) {
	ext := &store.Extraction{ID: "ext-2", Result: json.RawMessage("not json")}
	if _, err := ExtractionXLSX(ext, nil); err == nil {
		t.Error("expected error for malformed payload")
	}
}
