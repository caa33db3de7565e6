package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"manual-assistant/internal/domain"
)

type IngestJobRepository struct {
	db *pgxpool.Pool
}

func NewIngestJobRepository(db *pgxpool.Pool) domain.IngestJobRepository {
	return &IngestJobRepository{db: db}
}

func (r *IngestJobRepository) Enqueue(ctx context.Context, job *domain.IngestJob) error {
	query := `
		INSERT INTO ingest_jobs (id, manual, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	manualBytes, err := json.Marshal(job.Manual)
	if err != nil {
		return fmt.Errorf("failed to marshal manual: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		job.ID,
		manualBytes,
		job.Status,
		job.ErrorMessage,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// AcquireNextJob claims the oldest queued job and flips it to
// processing in the same statement, so concurrent workers never pick
// the same one. Returns nil when the queue is empty.
func (r *IngestJobRepository) AcquireNextJob(ctx context.Context) (*domain.IngestJob, error) {
	cteQuery := `
		WITH next_job AS (
			SELECT id
			FROM ingest_jobs
			WHERE status = 'new'
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE ingest_jobs
		SET status = 'processing', updated_at = $1
		FROM next_job
		WHERE ingest_jobs.id = next_job.id
		RETURNING ingest_jobs.id, ingest_jobs.manual, ingest_jobs.status, ingest_jobs.error_message, ingest_jobs.created_at, ingest_jobs.updated_at
	`

	var job domain.IngestJob
	var manualBytes []byte

	err := r.db.QueryRow(ctx, cteQuery, time.Now()).Scan(
		&job.ID,
		&manualBytes,
		&job.Status,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to acquire next job: %w", err)
	}

	if err := json.Unmarshal(manualBytes, &job.Manual); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manual: %w", err)
	}

	return &job, nil
}

func (r *IngestJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error {
	query := `
		UPDATE ingest_jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`
	if _, err := r.db.Exec(ctx, query, status, errorMessage, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

func (r *IngestJobRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM ingest_jobs GROUP BY status`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan job count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return counts, nil
}
