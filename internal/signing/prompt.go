package signing

import (
	"fmt"
	"strings"
)

const promptTemplate = `Analyze this document and automatically detect all sections containing signing rules or approval checkboxes.

Task:
1. Scan entire document for sections with signing rules/approval checkboxes
2. Identify checkbox elements: □, ☐, ■, ☑, ✓, X, numbers in brackets, parentheses
3. Determine approval status: filled = approved, empty = not approved
4. Extract complete rule text

Document:
%s

Return JSON object:
{
    "status": "success" or "error",
    "message": "description of findings",
    "sections_found": [
        {
            "section_name": "section name",
            "section_number": "section number",
            "location": "location in document"
        }
    ],
    "total_rules": number,
    "approved_count": number,
    "approved_rules": [
        {
            "rule_number": number,
            "rule_text": "rule text without checkbox",
            "checkbox_content": "checkbox content",
            "section": "section name",
            "is_approved": true
        }
    ],
    "all_rules": [
        {
            "rule_number": number,
            "rule_text": "rule text without checkbox",
            "checkbox_content": "checkbox content",
            "section": "section name",
            "is_approved": true/false
        }
    ]
}

Checkbox detection rules:
- Approved: ✓, X, ☑, ■, numbers, letters, symbols
- Not approved: □, ☐, ( ), [ ], empty spaces

Return only JSON, no other text.`

// BuildPrompt renders the extraction prompt for the given document text.
func BuildPrompt(documentText string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(documentText))
}
