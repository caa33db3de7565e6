package worker

import (
	"context"
	"log/slog"
	"time"

	"manual-assistant/internal/domain"
	"manual-assistant/internal/infra/logger"
	"manual-assistant/internal/usecase"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	jobTimeout          = 10 * time.Minute
	initialBackoff      = 1 * time.Second
	maxBackoff          = 5 * time.Minute
)

// JobWorker drains the ingest queue in the background, one manual at
// a time. Failures back off exponentially so a broken manual or an
// unreachable embedding service does not hammer the queue.
type JobWorker struct {
	jobRepo       domain.IngestJobRepository
	ingestUsecase usecase.IngestManualUsecase
	logger        *slog.Logger
	stopChan      chan struct{}
	backoff       time.Duration
}

func NewJobWorker(
	jobRepo domain.IngestJobRepository,
	ingestUsecase usecase.IngestManualUsecase,
	log *slog.Logger,
) *JobWorker {
	return &JobWorker{
		jobRepo:       jobRepo,
		ingestUsecase: ingestUsecase,
		logger:        log,
		stopChan:      make(chan struct{}),
	}
}

func (w *JobWorker) Start() {
	w.logger.Info("ingest_worker_started")
	go w.run()
}

func (w *JobWorker) Stop() {
	w.logger.Info("ingest_worker_stopping")
	close(w.stopChan)
}

func (w *JobWorker) run() {
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processNextJob()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(defaultPollInterval)
			}
		}
	}
}

func (w *JobWorker) processNextJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	job, err := w.jobRepo.AcquireNextJob(ctx)
	if err != nil {
		w.logger.Error("failed_to_acquire_job", slog.String("error", err.Error()))
		return
	}
	if job == nil {
		return
	}

	ctx = logger.WithJobID(ctx, job.ID.String())
	ctx = logger.WithSource(ctx, job.Manual.Path)
	log := logger.FromContext(ctx, w.logger)

	log.Info("ingest_job_started", slog.String("title", job.Manual.Title))

	_, processErr := w.ingestUsecase.Ingest(ctx, job.Manual)

	status := "completed"
	var errMsg *string
	if processErr != nil {
		status = "failed"
		msg := processErr.Error()
		errMsg = &msg
		w.backoff = w.nextBackoff(w.backoff)
		log.Warn("ingest_job_failed",
			slog.Duration("backoff", w.backoff),
			slog.String("error", processErr.Error()))
	} else {
		w.backoff = 0
		log.Info("ingest_job_completed")
	}

	if err := w.jobRepo.UpdateStatus(ctx, job.ID, status, errMsg); err != nil {
		log.Error("failed_to_update_job_status", slog.String("error", err.Error()))
	}
}

func (w *JobWorker) nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
