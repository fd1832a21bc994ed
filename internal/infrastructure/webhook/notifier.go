package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ProposalReviewer/internal/domain"
	"ProposalReviewer/internal/ports"
)

// Notifier posts batch summaries to a configured webhook URL.
type Notifier struct {
	url    string
	client *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the webhook endpoint.
func NewNotifier(url string) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type batchSummary struct {
	BatchID     string    `json:"batchId"`
	CreatedAt   time.Time `json:"createdAt"`
	ReviewCount int       `json:"reviewCount"`
	ErrorCount  int       `json:"errorCount"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
}

// PublishBatch posts a JSON summary of one completed batch.
func (n *Notifier) PublishBatch(ctx context.Context, batch domain.StoredBatch) error {
	if n.url == "" || n.client == nil {
		return fmt.Errorf("webhook notifier misconfigured")
	}

	summary := batchSummary{
		BatchID:     batch.ID,
		CreatedAt:   batch.CreatedAt,
		ReviewCount: len(batch.Reviews),
		ErrorCount:  len(batch.Errors),
	}
	for _, review := range batch.Reviews {
		if review.OverallVerdict == domain.VerdictPass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook error: %s", resp.Status)
	}
	return nil
}
