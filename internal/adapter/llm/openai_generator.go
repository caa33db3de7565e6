package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"manual-assistant/internal/domain"
)

const generationTemperature = 0.2

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// OpenAIGenerator sends prompts to an OpenAI-compatible chat
// completions endpoint. Works against OpenAI itself as well as local
// servers speaking the same protocol.
type OpenAIGenerator struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

// NewOpenAIGenerator constructs a generator for the given endpoint and
// model. A nil client gets a default with a generation-sized timeout.
func NewOpenAIGenerator(baseURL, apiKey, model string, client *http.Client) *OpenAIGenerator {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &OpenAIGenerator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Client:  client,
	}
}

// Generate sends the messages to the chat endpoint and returns the
// assistant reply.
func (g *OpenAIGenerator) Generate(ctx context.Context, messages []domain.Message, maxTokens int) (*domain.LLMResponse, error) {
	reqBody := chatRequest{
		Model:       g.Model,
		Temperature: generationTemperature,
	}
	if maxTokens > 0 {
		reqBody.MaxTokens = maxTokens
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", g.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call generation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generation endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("generation response contained no choices")
	}

	choice := chatResp.Choices[0]
	return &domain.LLMResponse{
		Text: strings.TrimSpace(choice.Message.Content),
		Done: choice.FinishReason != "length",
	}, nil
}

// Version returns the wrapped model name.
func (g *OpenAIGenerator) Version() string {
	return g.Model
}

var _ domain.LLMClient = (*OpenAIGenerator)(nil)
