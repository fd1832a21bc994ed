package domain

import "time"

// Rubric is a stored set of evaluation criteria. Criteria is free text;
// the review core never parses it structurally.
type Rubric struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Criteria  string    `json:"criteria"`
	CreatedAt time.Time `json:"createdAt"`
}

// StoredBatch is a completed review batch persisted for later export.
type StoredBatch struct {
	ID        string         `json:"id"`
	Context   string         `json:"context,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	Reviews   []ReviewResult `json:"reviews"`
	Errors    []ReviewError  `json:"errors"`
}

// GeneratedProposal is one synthetic proposal produced for testing.
type GeneratedProposal struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
