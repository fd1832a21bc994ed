package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ProposalReviewer/internal/domain"
	"ProposalReviewer/internal/ports"
)

// MaxGeneratedProposals caps one synthetic-data request.
const MaxGeneratedProposals = 10

const generatorSystem = "You write realistic but entirely fictional grant proposals used as test data. Plain text only, no markdown fences."

const generatorPromptTemplate = `Write a fictional grant proposal about: %s

Requirements:
- 300 to 500 words.
- Include a project summary, a concrete budget figure, a timeline and expected outcomes.
- Invent plausible organization and personnel names.
- Vary the writing quality so some proposals would fail a strict review.

This is proposal %d of %d; make it distinct from the others.`

// Generator produces synthetic proposal documents for testing rubrics.
type Generator struct {
	completer ports.CompletionClient
	logger    *slog.Logger
}

// NewGenerator wires the shared completion client.
func NewGenerator(completer ports.CompletionClient, logger *slog.Logger) *Generator {
	return &Generator{completer: completer, logger: logger}
}

// Generate asks the model for count fictional proposals on a topic, one
// completion per proposal. The first failure aborts the loop; synthetic
// data has no partial-success contract to honor.
func (g *Generator) Generate(ctx context.Context, topic string, count int) ([]domain.GeneratedProposal, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.New("topic is empty")
	}
	if count < 1 {
		count = 1
	}
	if count > MaxGeneratedProposals {
		return nil, fmt.Errorf("count %d exceeds limit %d", count, MaxGeneratedProposals)
	}

	proposals := make([]domain.GeneratedProposal, 0, count)
	for i := 1; i <= count; i++ {
		messages := []ports.Message{
			{Role: "system", Content: generatorSystem},
			{Role: "user", Content: fmt.Sprintf(generatorPromptTemplate, topic, i, count)},
		}

		result, err := g.completer.Complete(ctx, messages, nil)
		if err != nil {
			return nil, fmt.Errorf("generate proposal %d: %w", i, err)
		}
		if result.Err != nil {
			return nil, fmt.Errorf("generate proposal %d: provider error: %s", i, result.Err.Message)
		}

		body := strings.TrimSpace(result.Content)
		if body == "" {
			return nil, fmt.Errorf("generate proposal %d: model %s returned an empty response", i, g.completer.Model())
		}

		proposals = append(proposals, domain.GeneratedProposal{
			Title: fmt.Sprintf("Synthetic proposal %d: %s", i, topic),
			Body:  body,
		})
		if g.logger != nil {
			g.logger.Debug("proposal generated", "index", i, "chars", len(body))
		}
	}

	return proposals, nil
}
