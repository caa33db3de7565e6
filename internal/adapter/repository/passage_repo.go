package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"manual-assistant/internal/domain"
)

type passageRepository struct {
	pool *pgxpool.Pool
}

// NewPassageRepository creates a new PassageRepository backed by
// Postgres with pgvector.
func NewPassageRepository(pool *pgxpool.Pool) domain.PassageRepository {
	return &passageRepository{pool: pool}
}

type dbExecutor interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func (r *passageRepository) getExecutor(ctx context.Context) dbExecutor {
	tx := ExtractTx(ctx)
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *passageRepository) BulkInsertPassages(ctx context.Context, passages []domain.ManualPassage) error {
	if len(passages) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(passages))
	for i, p := range passages {
		rows[i] = []interface{}{
			p.ID,
			p.Content,
			p.Embedding,
			p.Metadata.EquipmentType,
			p.Metadata.EquipmentBrand,
			p.Metadata.EquipmentModel,
			p.Metadata.Title,
			p.Metadata.Source,
			p.Metadata.PageNumber,
			p.Metadata.ChunkID,
			p.CreatedAt,
		}
	}

	_, err := r.getExecutor(ctx).CopyFrom(
		ctx,
		pgx.Identifier{"manual_passages"},
		[]string{"id", "content", "embedding", "equipment_type", "equipment_brand", "equipment_model", "title", "source", "page_number", "chunk_id", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk insert passages: %w", err)
	}

	return nil
}

func (r *passageRepository) DeleteBySource(ctx context.Context, source string) error {
	query := `DELETE FROM manual_passages WHERE source = $1`
	if _, err := r.getExecutor(ctx).Exec(ctx, query, source); err != nil {
		return fmt.Errorf("failed to delete passages for source %s: %w", source, err)
	}
	return nil
}

func (r *passageRepository) SearchByVector(ctx context.Context, embedding []float32, topK int, filter domain.SearchFilter) ([]domain.VectorSearchResult, error) {
	query := `
		SELECT id, content, embedding, equipment_type, equipment_brand, equipment_model,
		       title, source, page_number, chunk_id, created_at,
		       1 - (embedding <=> $1) AS score
		FROM manual_passages
	`
	args := []interface{}{pgvector.NewVector(embedding)}

	where := ""
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		where = fmt.Sprintf("WHERE equipment_brand = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		clause := fmt.Sprintf("equipment_type = $%d", len(args))
		if where == "" {
			where = "WHERE " + clause
		} else {
			where = where + " AND " + clause
		}
	}

	args = append(args, topK)
	query = fmt.Sprintf("%s %s ORDER BY embedding <=> $1 ASC LIMIT $%d", query, where, len(args))

	rows, err := r.getExecutor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %w", err)
	}
	defer rows.Close()

	var results []domain.VectorSearchResult
	for rows.Next() {
		var res domain.VectorSearchResult
		p := &res.Passage
		if err := rows.Scan(
			&p.ID,
			&p.Content,
			&p.Embedding,
			&p.Metadata.EquipmentType,
			&p.Metadata.EquipmentBrand,
			&p.Metadata.EquipmentModel,
			&p.Metadata.Title,
			&p.Metadata.Source,
			&p.Metadata.PageNumber,
			&p.Metadata.ChunkID,
			&p.CreatedAt,
			&res.Score,
		); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

func (r *passageRepository) Stats(ctx context.Context) (*domain.IndexStats, error) {
	query := `
		SELECT title, COUNT(*)
		FROM manual_passages
		GROUP BY title
		ORDER BY title ASC
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.IndexStats{ManualCounts: make(map[string]int)}
	for rows.Next() {
		var title string
		var count int
		if err := rows.Scan(&title, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.ManualCounts[title] = count
		stats.PassageCount += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return stats, nil
}
