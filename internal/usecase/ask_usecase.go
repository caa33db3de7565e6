package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"manual-assistant/internal/domain"
	"manual-assistant/internal/usecase/conversation"
	"manual-assistant/internal/usecase/retrieval"
)

// AskInput encapsulates one user turn against the assistant.
type AskInput struct {
	Question string
	Prior    domain.ConversationContext
	// FollowupOverride forces the follow-up decision instead of
	// classifying the message. Nil means classify.
	FollowupOverride *bool
	TopK             int
}

// AskOutput is the normalized answer returned to API clients.
type AskOutput struct {
	Answer   string
	Passages []domain.RetrievedPassage
	Lock     domain.EquipmentLock
	Context  domain.ConversationContext
	Followup bool
	Fallback bool
	Reason   string
}

// AskUsecase defines the contract for answering one conversational
// turn with manual-grounded generation.
type AskUsecase interface {
	Execute(ctx context.Context, input AskInput) (*AskOutput, error)
}

type askUsecase struct {
	tracker       *conversation.Tracker
	orchestrator  *retrieval.Orchestrator
	promptBuilder PromptBuilder
	llmClient     domain.LLMClient
	maxTokens     int
	logger        *slog.Logger
}

// NewAskUsecase wires together the components needed to answer a turn.
func NewAskUsecase(
	tracker *conversation.Tracker,
	orchestrator *retrieval.Orchestrator,
	promptBuilder PromptBuilder,
	llmClient domain.LLMClient,
	maxTokens int,
	logger *slog.Logger,
) AskUsecase {
	return &askUsecase{
		tracker:       tracker,
		orchestrator:  orchestrator,
		promptBuilder: promptBuilder,
		llmClient:     llmClient,
		maxTokens:     maxTokens,
		logger:        logger,
	}
}

func (u *askUsecase) Execute(ctx context.Context, input AskInput) (*AskOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	expanded := conversation.ExpandNumberedReply(question, input.Prior)

	followup := u.tracker.ClassifyTurn(expanded, input.Prior)
	if input.FollowupOverride != nil {
		followup = *input.FollowupOverride
	}

	lock := u.tracker.LockHints(input.Prior, followup)
	query := u.tracker.ComposeRetrievalQuery(expanded, input.Prior, followup)

	u.logger.Info("turn_classified",
		slog.Bool("followup", followup),
		slog.Bool("locked", lock.Active()))

	passages, resolvedLock, err := u.orchestrator.Retrieve(ctx, query, lock, input.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	if len(passages) == 0 {
		u.logger.Warn("no_grounding_available", slog.Bool("followup", followup))
		return u.prepareFallback(input, followup, "no grounding available"), nil
	}

	prompt, err := u.promptBuilder.Build(PromptInput{
		Question:  expanded,
		Passages:  passages,
		Followup:  followup,
		Prior:     input.Prior,
		MultiPart: strings.Count(expanded, "?") > 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	llmResp, err := u.llmClient.Generate(ctx, prompt, u.maxTokens)
	if err != nil {
		u.logger.Error("llm_generation_failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	if llmResp == nil || strings.TrimSpace(llmResp.Text) == "" {
		u.logger.Error("llm_returned_empty_response", slog.Int("passage_count", len(passages)))
		return nil, fmt.Errorf("generation returned an empty response")
	}

	answer := strings.TrimSpace(llmResp.Text)
	if refs := BuildReferences(passages); refs != "" {
		answer = answer + "\n\n" + refs
	}

	next := domain.ConversationContext{
		LastQuestion: question,
		LastAnswer:   answer,
		LastBrand:    resolvedLock.Brand,
		LastType:     resolvedLock.Type,
		LastTitle:    resolvedLock.Title,
	}

	return &AskOutput{
		Answer:   answer,
		Passages: passages,
		Lock:     resolvedLock,
		Context:  next,
		Followup: followup,
	}, nil
}

// prepareFallback builds the degraded answer for turns that could not
// be grounded. The conversation context still advances so the next
// turn sees this question.
func (u *askUsecase) prepareFallback(input AskInput, followup bool, reason string) *AskOutput {
	next := input.Prior
	next.LastQuestion = strings.TrimSpace(input.Question)
	next.LastAnswer = ""

	return &AskOutput{
		Context:  next,
		Followup: followup,
		Fallback: true,
		Reason:   reason,
	}
}
