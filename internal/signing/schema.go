package signing

import "encoding/json"

// resultSchema validates the shape of model output before it is accepted.
// Derived counts are not constrained here; Normalize recomputes them.
var resultSchema = json.RawMessage(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["status", "message", "sections_found", "all_rules"],
  "properties": {
    "status": {"type": "string", "enum": ["success", "error"]},
    "message": {"type": "string"},
    "sections_found": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["section_name"],
        "properties": {
          "section_name": {"type": "string"},
          "section_number": {"type": "string"},
          "location": {"type": "string"}
        }
      }
    },
    "total_rules": {"type": "number"},
    "approved_count": {"type": "number"},
    "approved_rules": {"type": "array"},
    "all_rules": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["rule_number", "rule_text", "checkbox_content", "is_approved"],
        "properties": {
          "rule_number": {"type": "number"},
          "rule_text": {"type": "string"},
          "checkbox_content": {"type": "string"},
          "section": {"type": "string"},
          "is_approved": {"type": "boolean"}
        }
      }
    }
  }
}`)
