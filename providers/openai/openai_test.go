package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gwerrors "github.com/miro-workspace/aigateway/pkg/errors"
	"github.com/miro-workspace/aigateway/pkg/provider"
	"github.com/miro-workspace/aigateway/pkg/types"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestCreateChatCompletion(t *testing.T) {
	t.Run("maps request and response", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotBody map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": "chatcmpl-123",
				"created": 1756400000,
				"model": "gpt-4o",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "hi there"}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
			}`))
		}))
		defer server.Close()

		p := New(WithBaseURL(server.URL), WithAPIKey("sk-test-key"))
		resp, err := p.CreateChatCompletion(context.Background(), &types.ChatCompletionInput{
			Model: "gpt-4o",
			Messages: []types.ChatMessage{
				{Role: types.RoleSystem, Content: "be brief"},
				{Role: types.RoleUser, Content: "say hi"},
			},
			Temperature: floatPtr(0.3),
			MaxTokens:   intPtr(100),
		})
		require.NoError(t, err)

		assert.Equal(t, "/chat/completions", gotPath)
		assert.Equal(t, "Bearer sk-test-key", gotAuth)
		assert.Equal(t, "gpt-4o", gotBody["model"])
		assert.Equal(t, 0.3, gotBody["temperature"])
		assert.Equal(t, float64(100), gotBody["max_tokens"])
		messages, ok := gotBody["messages"].([]any)
		require.True(t, ok)
		assert.Len(t, messages, 2)

		assert.Equal(t, "chatcmpl-123", resp.ID)
		assert.Equal(t, "hi there", resp.FirstChoiceText())
		require.NotNil(t, resp.Usage)
		assert.Equal(t, 16, resp.Usage.TotalTokens)
	})

	t.Run("tool messages are not forwarded", func(t *testing.T) {
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer server.Close()

		p := New(WithBaseURL(server.URL), WithAPIKey("sk-test-key"))
		_, err := p.CreateChatCompletion(context.Background(), &types.ChatCompletionInput{
			Model: "gpt-4o",
			Messages: []types.ChatMessage{
				{Role: types.RoleUser, Content: "hi"},
				{Role: types.RoleTool, Content: "tool output"},
			},
		})
		require.NoError(t, err)

		messages, ok := gotBody["messages"].([]any)
		require.True(t, ok)
		assert.Len(t, messages, 1)
	})

	t.Run("upstream error maps to provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key", "type": "invalid_request_error"}}`))
		}))
		defer server.Close()

		p := New(WithBaseURL(server.URL), WithAPIKey("sk-bad"))
		_, err := p.CreateChatCompletion(context.Background(), &types.ChatCompletionInput{
			Model:    "gpt-4o",
			Messages: []types.ChatMessage{{Role: types.RoleUser, Content: "hi"}},
		})
		require.Error(t, err)

		gwErr, ok := err.(*gwerrors.GatewayError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, gwErr.HTTPStatusCode())
		assert.Contains(t, gwErr.Message, "upstream status 401")
		assert.Contains(t, gwErr.Message, "Incorrect API key")
	})

	t.Run("unreachable endpoint maps to provider error", func(t *testing.T) {
		p := New(WithBaseURL("http://127.0.0.1:1"), WithAPIKey("sk-test"))
		_, err := p.CreateChatCompletion(context.Background(), &types.ChatCompletionInput{
			Model:    "gpt-4o",
			Messages: []types.ChatMessage{{Role: types.RoleUser, Content: "hi"}},
		})
		require.Error(t, err)

		gwErr, ok := err.(*gwerrors.GatewayError)
		require.True(t, ok)
		assert.Equal(t, gwerrors.TypeProvider, gwErr.Type)
	})
}

func TestGenerateImages(t *testing.T) {
	t.Run("maps request and response", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"data": [{"url": "https://img.test/1"}, {"url": "https://img.test/2"}]}`))
		}))
		defer server.Close()

		p := New(WithBaseURL(server.URL), WithAPIKey("sk-test-key"))
		images, err := p.GenerateImages(context.Background(), &types.ImageParams{
			Model:  "gpt-image-1",
			Prompt: "a fox",
			Size:   "1024x1024",
			Count:  2,
		})
		require.NoError(t, err)

		assert.Equal(t, "/images/generations", gotPath)
		assert.Equal(t, "gpt-image-1", gotBody["model"])
		assert.Equal(t, "a fox", gotBody["prompt"])
		assert.Equal(t, float64(2), gotBody["n"])
		assert.Equal(t, "1024x1024", gotBody["size"])

		require.Len(t, images, 2)
		assert.Equal(t, "https://img.test/1", images[0].URL)
	})

	t.Run("out-of-range count falls back to one", func(t *testing.T) {
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"data": []}`))
		}))
		defer server.Close()

		p := New(WithBaseURL(server.URL), WithAPIKey("sk-test-key"))
		_, err := p.GenerateImages(context.Background(), &types.ImageParams{Prompt: "a fox", Count: 50})
		require.NoError(t, err)
		assert.Equal(t, float64(1), gotBody["n"])
	})

	t.Run("base64-only entries are dropped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": [{"b64_json": "aGVsbG8="}, {"url": "https://img.test/1"}]}`))
		}))
		defer server.Close()

		p := New(WithBaseURL(server.URL), WithAPIKey("sk-test-key"))
		images, err := p.GenerateImages(context.Background(), &types.ImageParams{Prompt: "a fox", Count: 2})
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, "https://img.test/1", images[0].URL)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Run("applies config fields", func(t *testing.T) {
		p := NewFromConfig(provider.Config{
			BaseURL: "http://localhost:8000/v1",
			APIKey:  "sk-local",
			Timeout: 5 * time.Second,
		})
		assert.Equal(t, "http://localhost:8000/v1", p.BaseURL())
		assert.Equal(t, 5*time.Second, p.httpClient.Timeout)
		assert.Equal(t, "sk-local", p.apiKey)
	})

	t.Run("zero timeout keeps the default", func(t *testing.T) {
		p := NewFromConfig(provider.Config{APIKey: "sk-local"})
		assert.Equal(t, DefaultBaseURL, p.BaseURL())
		assert.Equal(t, DefaultTimeout, p.httpClient.Timeout)
	})
}
