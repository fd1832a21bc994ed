package review

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ProposalReviewer/internal/domain"
)

var testDoc = domain.ParsedDocument{
	Identifier: "proposal-1",
	Filename:   "budget.pdf",
	MIMEType:   "application/pdf",
	Text:       "We request $50,000 for materials.",
	WordCount:  5,
}

func TestNormalizeHappyPath(t *testing.T) {
	t.Parallel()

	content := `{
		"id": "proposal-1",
		"filename": "budget.pdf",
		"overallVerdict": "pass",
		"overallFeedback": "Solid budget section.",
		"criteria": [{"name": "Clear budget", "result": "pass", "explanation": "Budget amount stated."}],
		"notableStrengths": ["Specific dollar figure"],
		"recommendedImprovements": ["Add a cost breakdown"]
	}`

	got, err := Normalize(testDoc, nil, content)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}

	want := domain.ReviewResult{
		ID:              "proposal-1",
		Filename:        "budget.pdf",
		WordCount:       5,
		OverallVerdict:  domain.VerdictPass,
		OverallFeedback: "Solid budget section.",
		Criteria: []domain.ReviewCriterionResult{
			{Name: "Clear budget", Result: domain.VerdictPass, Explanation: "Budget amount stated."},
		},
		NotableStrengths:        []string{"Specific dollar figure"},
		RecommendedImprovements: []string{"Add a cost breakdown"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestNormalizeRepairsTrailingComma(t *testing.T) {
	t.Parallel()

	valid := `{"overallVerdict": "fail", "criteria": [{"name": "X", "result": "fail", "explanation": "Missing detail"}]}`
	broken := `{overallVerdict: "fail", criteria: [{name: "X", result: "fail", explanation: "Missing detail",}]}`

	fromValid, err := Normalize(testDoc, nil, valid)
	if err != nil {
		t.Fatalf("Normalize valid error: %v", err)
	}
	fromBroken, err := Normalize(testDoc, nil, broken)
	if err != nil {
		t.Fatalf("Normalize broken error: %v", err)
	}

	if diff := cmp.Diff(fromValid, fromBroken); diff != "" {
		t.Fatalf("repaired result differs from valid result (-valid +broken):\n%s", diff)
	}
	if len(fromBroken.Criteria) != 1 || fromBroken.Criteria[0].Result != domain.VerdictFail {
		t.Fatalf("unexpected criteria: %+v", fromBroken.Criteria)
	}
}

func TestNormalizeBraceExtraction(t *testing.T) {
	t.Parallel()

	content := "Here is the review you asked for:\n{\"overallVerdict\": \"pass\", \"overallFeedback\": \"Good.\"}\nHope that helps!"

	got, err := Normalize(testDoc, nil, content)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if got.OverallVerdict != domain.VerdictPass || got.OverallFeedback != "Good." {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestNormalizeUnparseableFails(t *testing.T) {
	t.Parallel()

	if _, err := Normalize(testDoc, nil, "the model refused to answer"); err == nil {
		t.Fatal("expected parse error for unparseable content")
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	t.Parallel()

	// Verdict must literally equal "pass"; everything else fails.
	content := `{
		"id": "   ",
		"wordCount": 999,
		"overallVerdict": "PASS",
		"criteria": [
			{"result": "pass"},
			"not an object",
			{"name": "Timeline", "result": "maybe"}
		],
		"notableStrengths": ["ok", "", 42],
		"recommendedImprovements": []
	}`

	got, err := Normalize(testDoc, nil, content)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}

	if got.OverallVerdict != domain.VerdictFail {
		t.Fatalf("expected fail verdict, got %s", got.OverallVerdict)
	}
	if got.ID != "proposal-1" || got.Filename != "budget.pdf" {
		t.Fatalf("expected document fallback for id/filename, got %s/%s", got.ID, got.Filename)
	}
	if got.WordCount != 5 {
		t.Fatalf("word count must come from the document, got %d", got.WordCount)
	}
	if got.OverallFeedback == "" {
		t.Fatal("expected synthesized feedback")
	}

	if len(got.Criteria) != 2 {
		t.Fatalf("expected 2 criteria (non-objects dropped), got %d", len(got.Criteria))
	}
	if got.Criteria[0].Name != "Unnamed criterion" || got.Criteria[0].Explanation == "" {
		t.Fatalf("unexpected first criterion: %+v", got.Criteria[0])
	}
	if got.Criteria[1].Result != domain.VerdictFail {
		t.Fatalf("non-literal result must fail, got %s", got.Criteria[1].Result)
	}

	if diff := cmp.Diff([]string{"ok"}, got.NotableStrengths); diff != "" {
		t.Fatalf("unexpected strengths (-want +got):\n%s", diff)
	}
	if len(got.RecommendedImprovements) != 1 {
		t.Fatalf("expected exactly one synthesized improvement, got %v", got.RecommendedImprovements)
	}
}

func TestNormalizeNonArrayFieldsBecomeEmpty(t *testing.T) {
	t.Parallel()

	content := `{"overallVerdict": "pass", "criteria": "none", "notableStrengths": {"a": 1}}`

	got, err := Normalize(testDoc, nil, content)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if len(got.Criteria) != 0 || len(got.NotableStrengths) != 0 {
		t.Fatalf("expected empty sequences, got %+v", got)
	}
}

func TestNormalizePrefersParsedPayload(t *testing.T) {
	t.Parallel()

	parsed := json.RawMessage(`{"overallVerdict": "pass", "overallFeedback": "From parsed."}`)

	got, err := Normalize(testDoc, parsed, "garbage content that cannot parse")
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if got.OverallFeedback != "From parsed." {
		t.Fatalf("expected parsed payload to win, got %+v", got)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	content := `{"overallVerdict": "fail", "overallFeedback": "Needs work.", "criteria": []}`

	first, err := Normalize(testDoc, nil, content)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	second, err := Normalize(testDoc, nil, content)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("normalization is not idempotent (-first +second):\n%s", diff)
	}
	if !strings.Contains(second.RecommendedImprovements[0], "Address the failed criteria") {
		t.Fatalf("unexpected synthesized improvement: %v", second.RecommendedImprovements)
	}
}
