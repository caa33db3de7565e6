package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manual-assistant/internal/domain"
)

func TestOpenAIGeneratorGenerate(t *testing.T) {
	t.Run("sends messages and returns the reply", func(t *testing.T) {
		var gotAuth string
		var gotReq chatRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/chat/completions", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Press the power button.  "},"finish_reason":"stop"}]}`))
		}))
		defer server.Close()

		gen := NewOpenAIGenerator(server.URL, "test-key", "test-model", nil)
		resp, err := gen.Generate(context.Background(), []domain.Message{
			{Role: "system", Content: "be helpful"},
			{Role: "user", Content: "how do I power on"},
		}, 500)

		require.NoError(t, err)
		assert.Equal(t, "Press the power button.", resp.Text)
		assert.True(t, resp.Done)
		assert.Equal(t, "Bearer test-key", gotAuth)
		assert.Equal(t, "test-model", gotReq.Model)
		assert.Equal(t, 500, gotReq.MaxTokens)
		require.Len(t, gotReq.Messages, 2)
		assert.Equal(t, "system", gotReq.Messages[0].Role)
	})

	t.Run("truncated generation is not done", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"partial"},"finish_reason":"length"}]}`))
		}))
		defer server.Close()

		gen := NewOpenAIGenerator(server.URL, "", "test-model", nil)
		resp, err := gen.Generate(context.Background(), []domain.Message{{Role: "user", Content: "q"}}, 10)

		require.NoError(t, err)
		assert.False(t, resp.Done)
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		gen := NewOpenAIGenerator(server.URL, "", "test-model", nil)
		_, err := gen.Generate(context.Background(), []domain.Message{{Role: "user", Content: "q"}}, 10)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		gen := NewOpenAIGenerator(server.URL, "", "test-model", nil)
		_, err := gen.Generate(context.Background(), []domain.Message{{Role: "user", Content: "q"}}, 10)

		require.Error(t, err)
	})
}

func TestOpenAIEmbedderEncode(t *testing.T) {
	t.Run("restores input order from indices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/embeddings", r.URL.Path)
			_, _ = w.Write([]byte(`{"data":[{"embedding":[0.2],"index":1},{"embedding":[0.1],"index":0}]}`))
		}))
		defer server.Close()

		emb := NewOpenAIEmbedder(server.URL, "", "embed-model", nil, 0)
		got, err := emb.Encode(context.Background(), []string{"a", "b"})

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, []float32{0.1}, got[0])
		assert.Equal(t, []float32{0.2}, got[1])
	})

	t.Run("vector count mismatch is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1],"index":0}]}`))
		}))
		defer server.Close()

		emb := NewOpenAIEmbedder(server.URL, "", "embed-model", nil, 0)
		_, err := emb.Encode(context.Background(), []string{"a", "b"})

		require.Error(t, err)
	})

	t.Run("empty input short circuits", func(t *testing.T) {
		emb := NewOpenAIEmbedder("http://unused", "", "embed-model", nil, 0)
		got, err := emb.Encode(context.Background(), nil)

		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
