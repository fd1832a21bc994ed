package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ProposalReviewer/internal/domain"
	"ProposalReviewer/internal/ports"
)

// ErrNotFound marks a missing rubric or batch.
var ErrNotFound = errors.New("not found")

// PostgresRepository persists rubrics and review batches into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.RubricRepository = (*PostgresRepository)(nil)
var _ ports.BatchRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// CreateRubric inserts a rubric and returns it with the stored timestamp.
func (r *PostgresRepository) CreateRubric(ctx context.Context, rubric domain.Rubric) (domain.Rubric, error) {
	rubric.CreatedAt = time.Now().UTC()

	query, args, err := r.builder.
		Insert("rubrics").
		Columns("id", "name", "criteria", "created_at").
		Values(rubric.ID, rubric.Name, rubric.Criteria, rubric.CreatedAt).
		ToSql()
	if err != nil {
		return domain.Rubric{}, fmt.Errorf("build insert rubric: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return domain.Rubric{}, fmt.Errorf("insert rubric: %w", err)
	}
	return rubric, nil
}

// GetRubric loads one rubric by id.
func (r *PostgresRepository) GetRubric(ctx context.Context, id string) (domain.Rubric, error) {
	query, args, err := r.builder.
		Select("id", "name", "criteria", "created_at").
		From("rubrics").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Rubric{}, fmt.Errorf("build select rubric: %w", err)
	}

	var rubric domain.Rubric
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&rubric.ID, &rubric.Name, &rubric.Criteria, &rubric.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Rubric{}, fmt.Errorf("rubric %s: %w", id, ErrNotFound)
		}
		return domain.Rubric{}, fmt.Errorf("scan rubric: %w", err)
	}
	return rubric, nil
}

// ListRubrics returns all rubrics, newest first.
func (r *PostgresRepository) ListRubrics(ctx context.Context) ([]domain.Rubric, error) {
	query, args, err := r.builder.
		Select("id", "name", "criteria", "created_at").
		From("rubrics").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list rubrics: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rubrics: %w", err)
	}
	defer rows.Close()

	rubrics := []domain.Rubric{}
	for rows.Next() {
		var rubric domain.Rubric
		if err := rows.Scan(&rubric.ID, &rubric.Name, &rubric.Criteria, &rubric.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rubric: %w", err)
		}
		rubrics = append(rubrics, rubric)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return rubrics, nil
}

// DeleteRubric removes one rubric by id.
func (r *PostgresRepository) DeleteRubric(ctx context.Context, id string) error {
	query, args, err := r.builder.Delete("rubrics").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete rubric: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete rubric: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("rubric %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveBatch stores a completed batch with its reviews and errors.
func (r *PostgresRepository) SaveBatch(ctx context.Context, batch domain.StoredBatch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := r.builder.
		Insert("review_batches").
		Columns("id", "context", "created_at").
		Values(batch.ID, batch.Context, batch.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert batch: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	for _, result := range batch.Reviews {
		criteria, err := json.Marshal(result.Criteria)
		if err != nil {
			return fmt.Errorf("marshal criteria: %w", err)
		}

		query, args, err := r.builder.
			Insert("review_results").
			Columns("batch_id", "document_id", "filename", "word_count",
				"overall_verdict", "overall_feedback", "criteria",
				"notable_strengths", "recommended_improvements").
			Values(batch.ID, result.ID, result.Filename, result.WordCount,
				string(result.OverallVerdict), result.OverallFeedback, criteria,
				pq.StringArray(result.NotableStrengths), pq.StringArray(result.RecommendedImprovements)).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert result: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert result %s: %w", result.ID, err)
		}
	}

	for _, failure := range batch.Errors {
		query, args, err := r.builder.
			Insert("review_errors").
			Columns("batch_id", "filename", "message").
			Values(batch.ID, failure.Filename, failure.Message).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert error: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert error row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// GetBatch loads one stored batch with its reviews and errors.
func (r *PostgresRepository) GetBatch(ctx context.Context, id string) (domain.StoredBatch, error) {
	query, args, err := r.builder.
		Select("id", "context", "created_at").
		From("review_batches").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.StoredBatch{}, fmt.Errorf("build select batch: %w", err)
	}

	var batch domain.StoredBatch
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&batch.ID, &batch.Context, &batch.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StoredBatch{}, fmt.Errorf("batch %s: %w", id, ErrNotFound)
		}
		return domain.StoredBatch{}, fmt.Errorf("scan batch: %w", err)
	}

	batch.Reviews, err = r.batchReviews(ctx, id)
	if err != nil {
		return domain.StoredBatch{}, err
	}
	batch.Errors, err = r.batchErrors(ctx, id)
	if err != nil {
		return domain.StoredBatch{}, err
	}
	return batch, nil
}

func (r *PostgresRepository) batchReviews(ctx context.Context, batchID string) ([]domain.ReviewResult, error) {
	query, args, err := r.builder.
		Select("document_id", "filename", "word_count", "overall_verdict",
			"overall_feedback", "criteria", "notable_strengths", "recommended_improvements").
		From("review_results").
		Where(sq.Eq{"batch_id": batchID}).
		OrderBy("document_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select results: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select results: %w", err)
	}
	defer rows.Close()

	reviews := []domain.ReviewResult{}
	for rows.Next() {
		var (
			result    domain.ReviewResult
			verdict   string
			criteria  []byte
			strengths pq.StringArray
			improve   pq.StringArray
		)
		if err := rows.Scan(&result.ID, &result.Filename, &result.WordCount, &verdict,
			&result.OverallFeedback, &criteria, &strengths, &improve); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		result.OverallVerdict = domain.Verdict(verdict)
		if err := json.Unmarshal(criteria, &result.Criteria); err != nil {
			return nil, fmt.Errorf("unmarshal criteria: %w", err)
		}
		result.NotableStrengths = []string(strengths)
		result.RecommendedImprovements = []string(improve)
		reviews = append(reviews, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return reviews, nil
}

func (r *PostgresRepository) batchErrors(ctx context.Context, batchID string) ([]domain.ReviewError, error) {
	query, args, err := r.builder.
		Select("filename", "message").
		From("review_errors").
		Where(sq.Eq{"batch_id": batchID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select errors: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select errors: %w", err)
	}
	defer rows.Close()

	failures := []domain.ReviewError{}
	for rows.Next() {
		var failure domain.ReviewError
		if err := rows.Scan(&failure.Filename, &failure.Message); err != nil {
			return nil, fmt.Errorf("scan error row: %w", err)
		}
		failures = append(failures, failure)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return failures, nil
}

// DeleteBatchesBefore purges batches created before the cutoff; child
// rows go first since the schema keeps plain foreign keys.
func (r *PostgresRepository) DeleteBatchesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sub := sq.Select("id").From("review_batches").Where(sq.Lt{"created_at": cutoff})

	for _, table := range []string{"review_results", "review_errors"} {
		query, args, err := r.builder.
			Delete(table).
			Where(sub.Prefix("batch_id IN (").Suffix(")")).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build delete %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("delete %s: %w", table, err)
		}
	}

	query, args, err := r.builder.
		Delete("review_batches").
		Where(sq.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete batches: %w", err)
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete batches: %w", err)
	}
	deleted, _ := result.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete: %w", err)
	}
	return deleted, nil
}
