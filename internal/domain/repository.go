package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ManualPassage is a persistable chunk of an indexed manual.
type ManualPassage struct {
	ID        uuid.UUID
	Content   string
	Embedding pgvector.Vector
	Metadata  PassageMetadata
	CreatedAt time.Time
}

// VectorSearchResult pairs a stored passage with its similarity score
// (1 - cosine distance).
type VectorSearchResult struct {
	Passage ManualPassage
	Score   float64
}

// IndexStats summarizes the state of the passage index.
type IndexStats struct {
	PassageCount int
	ManualCounts map[string]int // passage count per manual title
}

// PassageRepository defines the operations for storing and searching
// indexed manual passages.
type PassageRepository interface {
	// BulkInsertPassages inserts multiple passages.
	BulkInsertPassages(ctx context.Context, passages []ManualPassage) error

	// DeleteBySource removes every passage ingested from the given
	// source file, used when a manual is re-ingested.
	DeleteBySource(ctx context.Context, source string) error

	// SearchByVector performs a cosine-similarity search, optionally
	// constrained by metadata equality filters.
	SearchByVector(ctx context.Context, queryVector []float32, topK int, filter SearchFilter) ([]VectorSearchResult, error)

	// Stats reports index size grouped by manual title.
	Stats(ctx context.Context) (*IndexStats, error)
}

// IngestJob is a queued request to (re-)index a single manual.
type IngestJob struct {
	ID           uuid.UUID
	Manual       ManualDefinition
	Status       string // "new", "processing", "completed", "failed"
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IngestJobRepository defines the persistence operations backing the
// ingest worker queue.
type IngestJobRepository interface {
	Enqueue(ctx context.Context, job *IngestJob) error

	// AcquireNextJob atomically claims the oldest pending job.
	// Returns nil, nil when the queue is empty.
	AcquireNextJob(ctx context.Context) (*IngestJob, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error

	CountByStatus(ctx context.Context) (map[string]int, error)
}

// TransactionManager defines the interface for handling database
// transactions.
type TransactionManager interface {
	// RunInTx executes the given function within a transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
