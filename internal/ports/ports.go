package ports

import (
	"context"
	"encoding/json"
	"time"

	"ProposalReviewer/internal/domain"
)

// Message is one role/content pair sent to the completion API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProviderError carries an error object reported by the LLM provider.
type ProviderError struct {
	Code    string
	Message string
}

// CompletionResult is whatever the provider handed back. Content and
// Parsed may both be absent; callers treat that as an empty response.
type CompletionResult struct {
	Content      string
	Parsed       json.RawMessage
	FinishReason string
	Err          *ProviderError
}

// CompletionClient invokes the external LLM. A nil schema requests a
// plain-text completion; a non-nil schema constrains the response to the
// supplied JSON schema.
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message, schema json.RawMessage) (CompletionResult, error)
	Model() string
}

// RubricRepository persists rubrics for reuse across review batches.
type RubricRepository interface {
	CreateRubric(ctx context.Context, rubric domain.Rubric) (domain.Rubric, error)
	GetRubric(ctx context.Context, id string) (domain.Rubric, error)
	ListRubrics(ctx context.Context) ([]domain.Rubric, error)
	DeleteRubric(ctx context.Context, id string) error
}

// BatchRepository persists completed batches for history and CSV export.
type BatchRepository interface {
	SaveBatch(ctx context.Context, batch domain.StoredBatch) error
	GetBatch(ctx context.Context, id string) (domain.StoredBatch, error)
	DeleteBatchesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Notifier pushes completed batch summaries to an external channel.
type Notifier interface {
	PublishBatch(ctx context.Context, batch domain.StoredBatch) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
