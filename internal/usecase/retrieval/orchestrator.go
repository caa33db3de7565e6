package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"manual-assistant/internal/domain"
)

// Orchestrator runs the staged retrieval protocol against the injected
// similarity-search provider. It holds no per-call state; every
// invocation threads its own queryState through the stages.
type Orchestrator struct {
	search domain.SearchProvider
	cfg    Config
	logger *slog.Logger
}

// NewOrchestrator creates an orchestrator around the given provider.
func NewOrchestrator(search domain.SearchProvider, cfg Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		search: search,
		cfg:    cfg,
		logger: logger,
	}
}

// queryState is the per-invocation working state of the staged
// pipeline. Each stage receives it by value and returns an updated
// copy; nothing is shared across calls.
type queryState struct {
	question string
	topK     int
	lock     domain.EquipmentLock

	pool     []domain.RetrievedPassage // stage-1 candidate pool
	vote     VoteResult
	passages []domain.RetrievedPassage // final result set
	primary  PrimaryEquipment
}

// Retrieve executes the retrieval protocol for one question and
// returns the chosen passages plus the equipment lock to offer the
// next turn. When the index yields nothing at every stage, it returns
// an empty result and a zero lock; that is "no grounding available",
// not an error. Errors only surface for provider infrastructure
// failures.
func (o *Orchestrator) Retrieve(ctx context.Context, question string, lock domain.EquipmentLock, topK int) ([]domain.RetrievedPassage, domain.EquipmentLock, error) {
	if topK <= 0 {
		topK = o.cfg.TopK
	}

	st := queryState{
		question: question,
		topK:     scaledTopK(question, topK, o.logger),
		lock:     lock,
	}

	if lock.Active() {
		return o.retrieveLocked(ctx, st)
	}

	st, err := o.stageOne(ctx, st)
	if err != nil {
		return nil, domain.EquipmentLock{}, err
	}
	st = stageTwo(st, o.logger)
	st, err = o.stageThree(ctx, st)
	if err != nil {
		return nil, domain.EquipmentLock{}, err
	}
	st = resolvePrimary(st)

	return st.passages, lockFromPrimary(st), nil
}

// scaledTopK grows the result count for multi-part questions: a
// message with k question marks (k > 1) is k sub-questions and needs
// proportionally more context.
func scaledTopK(question string, base int, logger *slog.Logger) int {
	marks := strings.Count(question, "?")
	if marks <= 1 {
		return base
	}
	scaled := base * marks
	logger.Info("multi_part_question_detected",
		slog.Int("question_marks", marks),
		slog.Int("top_k", scaled))
	return scaled
}

// retrieveLocked issues a single filtered search using the
// conversation lock. Whether the lock is still appropriate was decided
// by the context tracker before this call; it is not re-evaluated
// here.
func (o *Orchestrator) retrieveLocked(ctx context.Context, st queryState) ([]domain.RetrievedPassage, domain.EquipmentLock, error) {
	filter := domain.SearchFilter{Brand: st.lock.Brand, Type: st.lock.Type}

	passages, err := o.search.Search(ctx, st.question, st.topK, filter)
	if err != nil {
		return nil, domain.EquipmentLock{}, fmt.Errorf("locked search failed: %w", err)
	}

	o.logger.Info("locked_search_completed",
		slog.String("brand", st.lock.Brand),
		slog.String("type", st.lock.Type),
		slog.Int("passage_count", len(passages)))

	primary := PickPrimary(passages)
	resolved := domain.EquipmentLock{
		Brand: firstNonEmpty(st.lock.Brand, primary.Brand),
		Type:  firstNonEmpty(st.lock.Type, primary.Type),
		Title: firstNonEmpty(primary.Title, st.lock.Title),
	}
	if len(passages) == 0 {
		return nil, domain.EquipmentLock{}, nil
	}
	return passages, resolved, nil
}

// stageOne runs the broad unfiltered search that seeds the vote.
func (o *Orchestrator) stageOne(ctx context.Context, st queryState) (queryState, error) {
	poolSize := 2 * st.topK
	if poolSize < o.cfg.StageOneMin {
		poolSize = o.cfg.StageOneMin
	}

	pool, err := o.search.Search(ctx, st.question, poolSize, domain.SearchFilter{})
	if err != nil {
		return st, fmt.Errorf("stage-1 search failed: %w", err)
	}

	o.logger.Info("stage1_search_completed",
		slog.Int("pool_size", poolSize),
		slog.Int("passage_count", len(pool)))

	st.pool = pool
	return st, nil
}

// stageTwo lets the stage-1 pool vote on the equipment in question.
func stageTwo(st queryState, logger *slog.Logger) queryState {
	st.vote = Vote(st.pool)

	if st.vote.Detected() {
		logger.Info("equipment_vote_completed",
			slog.String("type", st.vote.EquipmentType),
			slog.String("brand", st.vote.Brand),
			slog.Float64("dominance", st.vote.Dominance))
	} else {
		logger.Info("equipment_vote_empty")
	}
	return st
}

// stageThree decides between a filtered refinement search and the
// mixed stage-1 pool.
func (o *Orchestrator) stageThree(ctx context.Context, st queryState) (queryState, error) {
	if st.vote.Detected() && st.vote.Dominance >= o.cfg.DominanceThreshold {
		filter := domain.SearchFilter{Brand: st.vote.Brand, Type: st.vote.EquipmentType}
		filtered, err := o.search.Search(ctx, st.question, st.topK, filter)
		if err != nil {
			return st, fmt.Errorf("stage-2 search failed: %w", err)
		}
		o.logger.Info("stage2_filtered_search_completed",
			slog.String("type", st.vote.EquipmentType),
			slog.Float64("dominance", st.vote.Dominance),
			slog.Int("passage_count", len(filtered)))
		if len(filtered) > 0 {
			st.passages = filtered
			return st, nil
		}
	} else if st.vote.Detected() {
		o.logger.Info("mixed_results_kept",
			slog.Float64("dominance", st.vote.Dominance),
			slog.Float64("threshold", o.cfg.DominanceThreshold))
	}

	// Ambiguous query or nothing detected: truncate the broad pool.
	pool := st.pool
	if len(pool) > st.topK {
		pool = pool[:st.topK]
	}
	st.passages = pool
	return st, nil
}

// resolvePrimary determines the primary equipment of the final result
// set. The vote's verdict wins over the per-title majority when both
// exist.
func resolvePrimary(st queryState) queryState {
	st.primary = PickPrimary(st.passages)
	if st.vote.EquipmentType != "" {
		st.primary.Type = st.vote.EquipmentType
	}
	if st.vote.Brand != "" {
		st.primary.Brand = st.vote.Brand
	}
	return st
}

func lockFromPrimary(st queryState) domain.EquipmentLock {
	if len(st.passages) == 0 {
		return domain.EquipmentLock{}
	}
	return domain.EquipmentLock{
		Brand: st.primary.Brand,
		Type:  st.primary.Type,
		Title: st.primary.Title,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
