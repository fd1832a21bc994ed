package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ProposalReviewer/internal/archive"
	"ProposalReviewer/internal/domain"
	"ProposalReviewer/internal/extract"
	"ProposalReviewer/internal/ports"
	"ProposalReviewer/internal/review"
)

// MaxBatchDocuments caps one batch after ZIP expansion.
const MaxBatchDocuments = 12

var (
	// ErrEmptyRubric rejects a batch whose rubric text is blank.
	ErrEmptyRubric = errors.New("rubric text is empty")
	// ErrNoDocuments rejects a batch that expanded to zero documents.
	ErrNoDocuments = errors.New("no documents to review")
	// ErrBatchTooLarge rejects a batch above MaxBatchDocuments.
	ErrBatchTooLarge = errors.New("too many documents in one batch")
	// ErrBatchFailed reports that not a single document could be
	// reviewed; the outcome carries the per-document errors.
	ErrBatchFailed = errors.New("no documents could be reviewed")
)

// ReviewDeps wires all driven adapters into the review service.
type ReviewDeps struct {
	Extractor *extract.Service
	Completer ports.CompletionClient
	Batches   ports.BatchRepository
	Notifier  ports.Notifier
	Logger    *slog.Logger
}

// ReviewService runs batches of proposal reviews against a rubric.
type ReviewService struct {
	extractor *extract.Service
	completer ports.CompletionClient
	batches   ports.BatchRepository
	notifier  ports.Notifier
	logger    *slog.Logger
}

// NewReviewService constructs the orchestration component.
func NewReviewService(deps ReviewDeps) *ReviewService {
	return &ReviewService{
		extractor: deps.Extractor,
		completer: deps.Completer,
		batches:   deps.Batches,
		notifier:  deps.Notifier,
		logger:    deps.Logger,
	}
}

// pendingDocument is one raw buffer scheduled for review.
type pendingDocument struct {
	identifier string
	filename   string
	mimeType   string
	data       []byte
}

// ReviewBatch reviews every uploaded document against the rubric. ZIP
// uploads are expanded first. Per-document failures are collected, never
// propagated to siblings; the batch as a whole fails only when a
// precondition is violated or when zero documents succeed.
func (s *ReviewService) ReviewBatch(ctx context.Context, rubricText, submissionContext string, uploads []domain.RawUpload) (domain.BatchReviewOutcome, error) {
	outcome := domain.BatchReviewOutcome{
		Reviews: []domain.ReviewResult{},
		Errors:  []domain.ReviewError{},
	}

	if strings.TrimSpace(rubricText) == "" {
		return outcome, ErrEmptyRubric
	}

	pending, err := s.expandUploads(uploads)
	if err != nil {
		return outcome, err
	}
	if len(pending) == 0 {
		return outcome, ErrNoDocuments
	}
	if len(pending) > MaxBatchDocuments {
		return outcome, fmt.Errorf("%w: %d documents (limit %d)", ErrBatchTooLarge, len(pending), MaxBatchDocuments)
	}

	s.info("batch started", "documents", len(pending))

	// Fan out one pipeline per document and settle all of them; slots
	// are index-addressed so no locking is needed.
	reviews := make([]*domain.ReviewResult, len(pending))
	failures := make([]*domain.ReviewError, len(pending))

	var group errgroup.Group
	for i := range pending {
		group.Go(func() error {
			result, err := s.reviewOne(ctx, rubricText, submissionContext, pending[i])
			if err != nil {
				failures[i] = &domain.ReviewError{Filename: pending[i].filename, Message: err.Error()}
				return nil
			}
			reviews[i] = &result
			return nil
		})
	}
	_ = group.Wait() // tasks record their own failures and never return errors

	for i := range pending {
		if reviews[i] != nil {
			outcome.Reviews = append(outcome.Reviews, *reviews[i])
		}
		if failures[i] != nil {
			outcome.Errors = append(outcome.Errors, *failures[i])
		}
	}

	if len(outcome.Reviews) == 0 {
		s.info("batch failed", "errors", len(outcome.Errors))
		return outcome, ErrBatchFailed
	}

	outcome.BatchID = uuid.NewString()
	s.persist(ctx, submissionContext, &outcome)
	s.info("batch finished", "batch_id", outcome.BatchID, "reviews", len(outcome.Reviews), "errors", len(outcome.Errors))
	return outcome, nil
}

// expandUploads flattens raw uploads, unpacking ZIP archives, and
// assigns sequential identifiers.
func (s *ReviewService) expandUploads(uploads []domain.RawUpload) ([]pendingDocument, error) {
	var pending []pendingDocument
	next := func() string { return fmt.Sprintf("proposal-%d", len(pending)+1) }

	for _, upload := range uploads {
		if !archive.IsArchive(upload.Filename, upload.ContentType) {
			pending = append(pending, pendingDocument{
				identifier: next(),
				filename:   upload.Filename,
				mimeType:   upload.ContentType,
				data:       upload.Data,
			})
			continue
		}

		entries, err := archive.Expand(upload.Data, s.logger)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", upload.Filename, err)
		}
		for _, entry := range entries {
			pending = append(pending, pendingDocument{
				identifier: next(),
				filename:   entry.Filename,
				mimeType:   entry.MIMEType,
				data:       entry.Data,
			})
		}
	}

	return pending, nil
}

// reviewOne runs the extract -> prompt -> complete -> normalize pipeline
// for a single document.
func (s *ReviewService) reviewOne(ctx context.Context, rubricText, submissionContext string, doc pendingDocument) (domain.ReviewResult, error) {
	parsed, err := s.extractor.Extract(doc.data, doc.identifier, doc.filename, doc.mimeType)
	if err != nil {
		return domain.ReviewResult{}, err
	}

	messages := []ports.Message{
		{Role: "system", Content: review.SystemInstruction},
		{Role: "user", Content: review.BuildPrompt(rubricText, submissionContext, parsed)},
	}

	completion, err := s.completer.Complete(ctx, messages, review.ResultSchema)
	if err != nil {
		return domain.ReviewResult{}, err
	}

	if len(completion.Parsed) == 0 && strings.TrimSpace(completion.Content) == "" {
		return domain.ReviewResult{}, errors.New(emptyCompletionMessage(s.completer.Model(), completion))
	}

	return review.Normalize(parsed, completion.Parsed, completion.Content)
}

// emptyCompletionMessage classifies a completion that carried no usable
// content into a caller-actionable message.
func emptyCompletionMessage(model string, res ports.CompletionResult) string {
	switch {
	case res.FinishReason == "content_filter":
		return "the provider filtered the response content; revise the document or rubric wording"
	case res.FinishReason == "length":
		return "the response was truncated before completion; reduce the document or rubric size"
	case res.Err != nil:
		if res.Err.Code != "" {
			return fmt.Sprintf("provider error %s: %s", res.Err.Code, res.Err.Message)
		}
		return fmt.Sprintf("provider error: %s", res.Err.Message)
	case res.FinishReason != "":
		return fmt.Sprintf("model %s returned an empty response (finish reason %q)", model, res.FinishReason)
	default:
		return fmt.Sprintf("model %s returned an empty response", model)
	}
}

// persist stores the finished batch and pushes the webhook, both best
// effort: a storage or notify failure never fails a completed batch.
func (s *ReviewService) persist(ctx context.Context, submissionContext string, outcome *domain.BatchReviewOutcome) {
	stored := domain.StoredBatch{
		ID:        outcome.BatchID,
		Context:   submissionContext,
		CreatedAt: time.Now().UTC(),
		Reviews:   outcome.Reviews,
		Errors:    outcome.Errors,
	}

	if s.batches != nil {
		if err := s.batches.SaveBatch(ctx, stored); err != nil {
			s.warn("persist batch", "batch_id", stored.ID, "error", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.PublishBatch(ctx, stored); err != nil {
			s.warn("publish batch webhook", "batch_id", stored.ID, "error", err)
		}
	}
}

func (s *ReviewService) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *ReviewService) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
