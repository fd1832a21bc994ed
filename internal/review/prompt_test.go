package review

import (
	"strings"
	"testing"

	"ProposalReviewer/internal/domain"
)

func TestBuildPromptEmbedsRubricAndMetadata(t *testing.T) {
	t.Parallel()

	doc := domain.ParsedDocument{
		Identifier: "proposal-2",
		Filename:   "garden.pdf",
		Text:       "We request $50,000 for materials.",
		WordCount:  5,
	}

	prompt := BuildPrompt("Criterion: Clear budget (weight 100)", "Spring 2026 grant cycle", doc)

	for _, fragment := range []string{
		"Criterion: Clear budget (weight 100)",
		"Spring 2026 grant cycle",
		"Identifier: proposal-2",
		"Filename: garden.pdf",
		"Word count: 5",
		"We request $50,000 for materials.",
		`Echo back id "proposal-2" and filename "garden.pdf"`,
	} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing %q:\n%s", fragment, prompt)
		}
	}

	if strings.Contains(prompt, noContextPlaceholder) {
		t.Fatal("placeholder used despite explicit context")
	}
	if strings.Contains(prompt, truncationNotice) {
		t.Fatal("truncation notice on short document")
	}
}

func TestBuildPromptUsesContextPlaceholder(t *testing.T) {
	t.Parallel()

	doc := domain.ParsedDocument{Identifier: "proposal-1", Filename: "a.txt", Text: "x", WordCount: 1}

	prompt := BuildPrompt("rubric", "   ", doc)
	if !strings.Contains(prompt, noContextPlaceholder) {
		t.Fatal("expected context placeholder for blank context")
	}
}

func TestBuildPromptTruncatesLongDocuments(t *testing.T) {
	t.Parallel()

	doc := domain.ParsedDocument{
		Identifier: "proposal-1",
		Filename:   "long.txt",
		Text:       strings.Repeat("a", promptTextLimit) + "TAIL_MARKER",
		WordCount:  1,
	}

	prompt := BuildPrompt("rubric", "", doc)
	if !strings.Contains(prompt, truncationNotice) {
		t.Fatal("expected truncation notice")
	}
	if strings.Contains(prompt, "TAIL_MARKER") {
		t.Fatal("text beyond the limit leaked into the prompt")
	}
}
