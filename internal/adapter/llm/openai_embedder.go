package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"manual-assistant/internal/domain"
)

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint. A
// rate limiter spaces out requests so bulk ingest stays inside the
// provider's quota.
type OpenAIEmbedder struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewOpenAIEmbedder constructs an embedder. requestsPerSecond <= 0
// disables rate limiting.
func NewOpenAIEmbedder(baseURL, apiKey, model string, client *http.Client, requestsPerSecond float64) *OpenAIEmbedder {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &OpenAIEmbedder{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Client:  client,
		limiter: limiter,
	}
}

func (e *OpenAIEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter interrupted: %w", err)
		}
	}

	start := time.Now()
	slog.Info("embed_started",
		slog.Int("text_count", len(texts)),
		slog.String("model", e.Model))

	jsonData, err := json.Marshal(embedRequest{Model: e.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/embeddings", e.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.APIKey)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		slog.Error("embed_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to call embeddings endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Error("embed_bad_status",
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("embeddings endpoint returned status: %d", resp.StatusCode)
	}

	var respBody embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(respBody.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings endpoint returned %d vectors for %d inputs", len(respBody.Data), len(texts))
	}

	// The API may reorder results; index restores input order.
	embeddings := make([][]float32, len(texts))
	for _, d := range respBody.Data {
		if d.Index < 0 || d.Index >= len(embeddings) {
			return nil, fmt.Errorf("embeddings endpoint returned out of range index %d", d.Index)
		}
		embeddings[d.Index] = d.Embedding
	}

	slog.Info("embed_completed",
		slog.Int("embedding_count", len(embeddings)),
		slog.Duration("elapsed", time.Since(start)))

	return embeddings, nil
}

func (e *OpenAIEmbedder) Version() string {
	return e.Model
}

var _ domain.VectorEncoder = (*OpenAIEmbedder)(nil)
