package usecase

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"ProposalReviewer/internal/domain"
)

var csvHeader = []string{
	"document_id", "filename", "word_count",
	"overall_verdict", "overall_feedback",
	"criterion", "result", "explanation",
}

// ExportCSV flattens a stored batch into one CSV row per criterion.
// Reviews without criteria still produce a single summary row.
func ExportCSV(w io.Writer, batch domain.StoredBatch) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, result := range batch.Reviews {
		base := []string{
			result.ID,
			result.Filename,
			strconv.Itoa(result.WordCount),
			string(result.OverallVerdict),
			result.OverallFeedback,
		}

		if len(result.Criteria) == 0 {
			if err := writer.Write(append(base, "", "", "")); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
			continue
		}

		for _, criterion := range result.Criteria {
			row := append(append([]string{}, base...), criterion.Name, string(criterion.Result), criterion.Explanation)
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
