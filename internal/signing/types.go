// Package signing extracts signing rules and their checkbox approval state
// from document text using an LLM provider.
package signing

// Section describes a region of the document where signing rules were found.
type Section struct {
	SectionName   string `json:"section_name"`
	SectionNumber string `json:"section_number,omitempty"`
	Location      string `json:"location,omitempty"`
}

// Rule is a single signing rule with its checkbox state.
type Rule struct {
	RuleNumber      int    `json:"rule_number"`
	RuleText        string `json:"rule_text"`
	CheckboxContent string `json:"checkbox_content"`
	Section         string `json:"section,omitempty"`
	IsApproved      bool   `json:"is_approved"`
}

// Result is the extraction outcome. The field set and names form the wire
// contract consumed by the web UI and the CLI output.
type Result struct {
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	SectionsFound []Section `json:"sections_found"`
	TotalRules    int       `json:"total_rules"`
	ApprovedCount int       `json:"approved_count"`
	ApprovedRules []Rule    `json:"approved_rules"`
	AllRules      []Rule    `json:"all_rules"`
}

// Normalize makes the derived fields consistent with all_rules: total_rules
// is the length of all_rules, approved_rules is its approved subset, and
// approved_count matches. Model output claiming otherwise is overruled.
func (r *Result) Normalize() {
	if r.SectionsFound == nil {
		r.SectionsFound = []Section{}
	}
	if r.AllRules == nil {
		r.AllRules = []Rule{}
	}

	approved := make([]Rule, 0, len(r.AllRules))
	for _, rule := range r.AllRules {
		if rule.IsApproved {
			approved = append(approved, rule)
		}
	}

	r.TotalRules = len(r.AllRules)
	r.ApprovedRules = approved
	r.ApprovedCount = len(approved)
}

// ErrorResult builds the error-shaped result the contract requires: status
// "error", zero counts, and empty (not null) lists.
func ErrorResult(message string) *Result {
	return &Result{
		Status:        "error",
		Message:       message,
		SectionsFound: []Section{},
		TotalRules:    0,
		ApprovedCount: 0,
		ApprovedRules: []Rule{},
		AllRules:      []Rule{},
	}
}
