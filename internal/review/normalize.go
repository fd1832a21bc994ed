package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"ProposalReviewer/internal/domain"
)

// Fallback text injected when the model omits required narrative fields.
const (
	feedbackPass = "The proposal satisfies the rubric criteria."
	feedbackFail = "The proposal does not satisfy one or more rubric criteria."

	explanationPass = "The criterion is satisfied; no further detail was given."
	explanationFail = "The criterion is not satisfied; no further detail was given."

	improvementPass = "No critical improvements identified; consider strengthening supporting evidence."
	improvementFail = "Address the failed criteria and resubmit with the missing evidence."

	defaultCriterionName = "Unnamed criterion"
)

// Normalize coerces whatever the model returned into a complete
// ReviewResult. Parsing tries the strict decoder, then a repair pass,
// then brace-delimited extraction; only when all three fail does the
// original parse error surface. Field normalization after a successful
// parse never fails.
func Normalize(doc domain.ParsedDocument, parsed json.RawMessage, content string) (domain.ReviewResult, error) {
	source := content
	if len(parsed) > 0 {
		source = string(parsed)
	}

	obj, err := parseObject(source)
	if err != nil {
		return domain.ReviewResult{}, fmt.Errorf("parse model response: %w", err)
	}

	return normalizeFields(obj, doc), nil
}

func parseObject(text string) (map[string]interface{}, error) {
	trimmed := strings.TrimSpace(text)

	var obj map[string]interface{}
	strictErr := json.Unmarshal([]byte(trimmed), &obj)
	if strictErr == nil {
		return obj, nil
	}

	if repaired, err := jsonrepair.JSONRepair(trimmed); err == nil {
		if json.Unmarshal([]byte(repaired), &obj) == nil {
			return obj, nil
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if json.Unmarshal([]byte(trimmed[start:end+1]), &obj) == nil {
			return obj, nil
		}
	}

	return nil, strictErr
}

func normalizeFields(obj map[string]interface{}, doc domain.ParsedDocument) domain.ReviewResult {
	verdict := toVerdict(obj["overallVerdict"])

	feedback, ok := nonBlankString(obj["overallFeedback"])
	if !ok {
		feedback = feedbackFor(verdict, feedbackPass, feedbackFail)
	}

	improvements := stringList(obj["recommendedImprovements"])
	if len(improvements) == 0 {
		improvements = []string{feedbackFor(verdict, improvementPass, improvementFail)}
	}

	id, ok := nonBlankString(obj["id"])
	if !ok {
		id = doc.Identifier
	}
	filename, ok := nonBlankString(obj["filename"])
	if !ok {
		filename = doc.Filename
	}

	return domain.ReviewResult{
		ID:                      id,
		Filename:                filename,
		WordCount:               doc.WordCount, // authoritative, never the model's
		OverallVerdict:          verdict,
		OverallFeedback:         feedback,
		Criteria:                criteriaList(obj["criteria"]),
		NotableStrengths:        stringList(obj["notableStrengths"]),
		RecommendedImprovements: improvements,
	}
}

func criteriaList(value interface{}) []domain.ReviewCriterionResult {
	items, ok := value.([]interface{})
	if !ok {
		return []domain.ReviewCriterionResult{}
	}

	criteria := make([]domain.ReviewCriterionResult, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		result := toVerdict(entry["result"])

		name, ok := nonBlankString(entry["name"])
		if !ok {
			name = defaultCriterionName
		}
		explanation, ok := nonBlankString(entry["explanation"])
		if !ok {
			explanation = feedbackFor(result, explanationPass, explanationFail)
		}

		criteria = append(criteria, domain.ReviewCriterionResult{
			Name:        name,
			Result:      result,
			Explanation: explanation,
		})
	}

	return criteria
}

// toVerdict maps the literal string "pass" to pass and anything else,
// including absent or mistyped values, to fail.
func toVerdict(value interface{}) domain.Verdict {
	if s, ok := value.(string); ok && s == "pass" {
		return domain.VerdictPass
	}
	return domain.VerdictFail
}

func feedbackFor(verdict domain.Verdict, pass, fail string) string {
	if verdict == domain.VerdictPass {
		return pass
	}
	return fail
}

func nonBlankString(value interface{}) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func stringList(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := nonBlankString(item); ok {
			out = append(out, s)
		}
	}
	return out
}
