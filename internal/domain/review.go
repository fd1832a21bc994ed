package domain

// Verdict is the binary outcome used for criteria and whole reviews.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// RawUpload is a named binary buffer exactly as received from transport.
type RawUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ParsedDocument is one ingested proposal file normalized to plain text.
// Text is never empty; an empty extraction fails the document instead.
type ParsedDocument struct {
	Identifier string `json:"id"`
	Filename   string `json:"filename"`
	MIMEType   string `json:"mimeType"`
	Text       string `json:"-"`
	WordCount  int    `json:"wordCount"`
}

// ReviewCriterionResult is one rubric line-item outcome.
type ReviewCriterionResult struct {
	Name        string  `json:"name"`
	Result      Verdict `json:"result"`
	Explanation string  `json:"explanation"`
}

// ReviewResult is one document's full review. After normalization every
// field is present and well-typed regardless of what the model returned.
type ReviewResult struct {
	ID                      string                  `json:"id"`
	Filename                string                  `json:"filename"`
	WordCount               int                     `json:"wordCount"`
	OverallVerdict          Verdict                 `json:"overallVerdict"`
	OverallFeedback         string                  `json:"overallFeedback"`
	Criteria                []ReviewCriterionResult `json:"criteria"`
	NotableStrengths        []string                `json:"notableStrengths"`
	RecommendedImprovements []string                `json:"recommendedImprovements"`
}

// ReviewError records a failed review for one document. It never blocks
// sibling documents in the same batch.
type ReviewError struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// BatchReviewOutcome aggregates one batch of per-document reviews.
type BatchReviewOutcome struct {
	BatchID string         `json:"batchId,omitempty"`
	Reviews []ReviewResult `json:"reviews"`
	Errors  []ReviewError  `json:"errors"`
}
