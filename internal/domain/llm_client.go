package domain

import "context"

// Message is a single chat message sent to the generation model.
type Message struct {
	Role    string
	Content string
}

// LLMResponse carries the model output and whether generation finished.
type LLMResponse struct {
	Text string
	Done bool
}

// LLMClient defines the capability to send chat messages to a language
// model and receive a textual response.
type LLMClient interface {
	Generate(ctx context.Context, messages []Message, maxTokens int) (*LLMResponse, error)
	Version() string
}
