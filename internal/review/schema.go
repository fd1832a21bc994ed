package review

import "encoding/json"

// ResultSchema is the JSON schema the provider is asked to enforce on
// review responses. It mirrors domain.ReviewResult field for field.
var ResultSchema = json.RawMessage(`{
  "type": "object",
  "additionalProperties": false,
  "required": ["id", "filename", "overallVerdict", "overallFeedback", "criteria", "notableStrengths", "recommendedImprovements"],
  "properties": {
    "id": {"type": "string"},
    "filename": {"type": "string"},
    "overallVerdict": {"type": "string", "enum": ["pass", "fail"]},
    "overallFeedback": {"type": "string"},
    "criteria": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name", "result", "explanation"],
        "properties": {
          "name": {"type": "string"},
          "result": {"type": "string", "enum": ["pass", "fail"]},
          "explanation": {"type": "string"}
        }
      }
    },
    "notableStrengths": {"type": "array", "items": {"type": "string"}},
    "recommendedImprovements": {"type": "array", "items": {"type": "string"}}
  }
}`)
