package review

import (
	"fmt"
	"strings"

	"ProposalReviewer/internal/domain"
)

// SystemInstruction frames the model as a strict binary evaluator.
const SystemInstruction = `You are a strict proposal evaluator. You judge a proposal document against a rubric of binary pass/fail criteria.

Rules:
- Evaluate every rubric criterion independently and mark it "pass" or "fail".
- Keep every explanation to 1-2 sentences.
- If the document contains no evidence for a criterion, say so explicitly and mark the criterion "fail". Never guess or invent evidence.
- The overall verdict is "pass" only when the proposal satisfies the rubric as a whole.`

const (
	// promptTextLimit caps how much extracted text is embedded per document.
	promptTextLimit = 12000

	noContextPlaceholder = "No additional submission context was provided."
	truncationNotice     = "\n\n[Document text truncated at the review limit; evaluate what is shown.]"
)

// BuildPrompt combines rubric, context and one document into the user
// prompt for a review request.
func BuildPrompt(rubricText, submissionContext string, doc domain.ParsedDocument) string {
	context := strings.TrimSpace(submissionContext)
	if context == "" {
		context = noContextPlaceholder
	}

	text := doc.Text
	truncated := false
	if len(text) > promptTextLimit {
		text = text[:promptTextLimit]
		truncated = true
	}

	var builder strings.Builder
	builder.WriteString("Review the proposal document below against the rubric.\n\n")
	builder.WriteString("## Rubric\n")
	builder.WriteString(rubricText)
	builder.WriteString("\n\n## Submission context\n")
	builder.WriteString(context)
	builder.WriteString("\n\n## Document\n")
	fmt.Fprintf(&builder, "Identifier: %s\nFilename: %s\nWord count: %d\n\n", doc.Identifier, doc.Filename, doc.WordCount)
	builder.WriteString(text)
	if truncated {
		builder.WriteString(truncationNotice)
	}
	builder.WriteString("\n\n## Output\n")
	fmt.Fprintf(&builder,
		"Return JSON only, with fields id, filename, overallVerdict, overallFeedback, criteria, notableStrengths and recommendedImprovements. Echo back id %q and filename %q. Each criteria element has name, result (\"pass\" or \"fail\") and explanation.",
		doc.Identifier, doc.Filename)

	return builder.String()
}
