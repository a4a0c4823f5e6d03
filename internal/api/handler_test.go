package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miro-workspace/aigateway/internal/config"
	"github.com/miro-workspace/aigateway/internal/dispatch"
	"github.com/miro-workspace/aigateway/internal/observability"
	"github.com/miro-workspace/aigateway/internal/ratelimit"
	gwerrors "github.com/miro-workspace/aigateway/pkg/errors"
	"github.com/miro-workspace/aigateway/pkg/provider"
	"github.com/miro-workspace/aigateway/pkg/types"
)

// spyChat records chat calls and serves a canned response.
type spyChat struct {
	mu        sync.Mutex
	calls     int
	lastInput *types.ChatCompletionInput
	text      string
	err       error
	onCall    func()
}

func (s *spyChat) Name() string { return "spy-chat" }

func (s *spyChat) CreateChatCompletion(_ context.Context, input *types.ChatCompletionInput) (*types.ChatCompletionResponse, error) {
	s.mu.Lock()
	s.calls++
	s.lastInput = input
	s.mu.Unlock()
	if s.onCall != nil {
		s.onCall()
	}
	if s.err != nil {
		return nil, s.err
	}
	return &types.ChatCompletionResponse{
		Model: input.Model,
		Choices: []types.ChatCompletionChoice{
			{Message: types.ChatMessage{Role: types.RoleAssistant, Content: s.text}},
		},
	}, nil
}

func (s *spyChat) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *spyChat) input() *types.ChatCompletionInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastInput
}

// spyImage records image calls and serves canned URLs.
type spyImage struct {
	mu         sync.Mutex
	calls      int
	lastParams *types.ImageParams
	urls       []string
	err        error
	onCall     func()
}

func (s *spyImage) Name() string { return "spy-image" }

func (s *spyImage) GenerateImages(_ context.Context, params *types.ImageParams) ([]types.ImageResult, error) {
	s.mu.Lock()
	s.calls++
	s.lastParams = params
	s.mu.Unlock()
	if s.onCall != nil {
		s.onCall()
	}
	if s.err != nil {
		return nil, s.err
	}
	results := make([]types.ImageResult, len(s.urls))
	for i, u := range s.urls {
		results[i] = types.ImageResult{URL: u}
	}
	return results, nil
}

func (s *spyImage) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *spyImage) params() *types.ImageParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastParams
}

// stubLimiter counts gate checks and answers with a fixed verdict.
type stubLimiter struct {
	mu      sync.Mutex
	calls   int
	limited bool
	err     error
}

func (l *stubLimiter) CheckAndConsume(context.Context, string, time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.limited, l.err
}

func (l *stubLimiter) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.LoggerConfig{
		Level:      slog.LevelError,
		Output:     io.Discard,
		JSONFormat: true,
	}, observability.NewRedactor())
}

func newTestHandler(chat provider.ChatProvider, image provider.ImageProvider, limiter ratelimit.Limiter) *Handler {
	cfg := config.DefaultConfig()
	selector := dispatch.NewClientSelector(provider.KindMock, "", 0, chat, image)
	return NewHandler(cfg, limiter, selector, testLogger())
}

func postJSON(path, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestChatV2(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		chat := &spyChat{text: "hello back"}
		h := newTestHandler(chat, &spyImage{}, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.ChatV2(rec, postJSON("/v2/ai/chat", `{"model":"fast","messages":[{"role":"user","content":"hi"}]}`))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp chatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "hello back", resp.Completion.FirstChoiceText())
		assert.Equal(t, "gpt-4o-mini", chat.input().Model)
	})

	t.Run("missing messages rejected", func(t *testing.T) {
		chat := &spyChat{text: "x"}
		h := newTestHandler(chat, &spyImage{}, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.ChatV2(rec, postJSON("/v2/ai/chat", `{"model":"fast"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, gwerrors.TypeInvalidRequest, decodeError(t, rec).Error.Type)
		assert.Equal(t, 0, chat.callCount())
	})

	t.Run("messages with wrong type rejected", func(t *testing.T) {
		chat := &spyChat{text: "x"}
		limiter := &stubLimiter{}
		h := newTestHandler(chat, &spyImage{}, limiter)

		rec := httptest.NewRecorder()
		h.ChatV2(rec, postJSON("/v2/ai/chat", `{"messages":"not-an-array"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, chat.callCount())
		// Validation failures still consume quota: the gate ran first.
		assert.Equal(t, 1, limiter.callCount())
	})

	t.Run("empty messages array accepted", func(t *testing.T) {
		chat := &spyChat{text: "x"}
		h := newTestHandler(chat, &spyImage{}, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.ChatV2(rec, postJSON("/v2/ai/chat", `{"messages":[]}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, chat.callCount())
	})

	t.Run("malformed JSON rejected", func(t *testing.T) {
		h := newTestHandler(&spyChat{}, &spyImage{}, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.ChatV2(rec, postJSON("/v2/ai/chat", `{"messages":`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid JSON body", decodeError(t, rec).Error.Message)
	})

	t.Run("history truncated before the provider call", func(t *testing.T) {
		chat := &spyChat{text: "x"}
		h := newTestHandler(chat, &spyImage{}, &stubLimiter{})

		messages := make([]types.ChatMessage, 50)
		for i := range messages {
			messages[i] = types.ChatMessage{Role: types.RoleUser, Content: "m"}
		}
		body, err := json.Marshal(map[string]any{"messages": messages})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		h.ChatV2(rec, postJSON("/v2/ai/chat", string(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, chat.input().Messages, dispatch.HistoryMessageLimit)
	})

	t.Run("provider failure maps to 502 with generic message", func(t *testing.T) {
		chat := &spyChat{err: gwerrors.NewProviderError("spy-chat", "upstream status 500: boom")}
		h := newTestHandler(chat, &spyImage{}, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.ChatV2(rec, postJSON("/v2/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		detail := decodeError(t, rec).Error
		assert.Equal(t, gwerrors.TypeProvider, detail.Type)
		assert.Equal(t, "AI provider error", detail.Message)
	})

	t.Run("empty completion maps to 502", func(t *testing.T) {
		chat := &spyChat{text: ""}
		h := newTestHandler(chat, &spyImage{}, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.ChatV2(rec, postJSON("/v2/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, gwerrors.TypeEmptyResult, decodeError(t, rec).Error.Type)
	})
}

func TestCompleteV2(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		chat := &spyChat{text: "a short answer"}
		h := newTestHandler(chat, &spyImage{}, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.CompleteV2(rec, postJSON("/v2/ai/complete", `{"prompt":"say hi","model":"creative"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp completeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "a short answer", resp.Text)
		assert.Equal(t, "gpt-4.1-mini", chat.input().Model)
		// The prompt travels as the latest user message.
		assert.Equal(t, "say hi", types.LatestUserContent(chat.input().Messages))
	})

	t.Run("missing prompt rejected", func(t *testing.T) {
		h := newTestHandler(&spyChat{}, &spyImage{}, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.CompleteV2(rec, postJSON("/v2/ai/complete", `{"model":"fast"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty text maps to 502", func(t *testing.T) {
		h := newTestHandler(&spyChat{text: ""}, &spyImage{}, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.CompleteV2(rec, postJSON("/v2/ai/complete", `{"prompt":"say hi"}`))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, gwerrors.TypeEmptyResult, decodeError(t, rec).Error.Type)
	})
}

func TestImageV2(t *testing.T) {
	t.Run("success with clamped count", func(t *testing.T) {
		image := &spyImage{urls: []string{"https://img.test/1"}}
		h := newTestHandler(&spyChat{}, image, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.ImageV2(rec, postJSON("/v2/ai/image", `{"prompt":"a cat","count":100}`))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, image.params().Count)
		assert.Equal(t, "gpt-image-1", image.params().Model)
	})

	t.Run("in-range count passes through", func(t *testing.T) {
		image := &spyImage{urls: []string{"a", "b", "c"}}
		h := newTestHandler(&spyChat{}, image, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.ImageV2(rec, postJSON("/v2/ai/image", `{"prompt":"a cat","count":3,"model":"dall-e-3"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 3, image.params().Count)
		assert.Equal(t, "dall-e-3", image.params().Model)

		var resp imageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Images, 3)
	})

	t.Run("missing prompt rejected", func(t *testing.T) {
		h := newTestHandler(&spyChat{}, &spyImage{}, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.ImageV2(rec, postJSON("/v2/ai/image", `{"count":2}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("zero images maps to 502", func(t *testing.T) {
		h := newTestHandler(&spyChat{}, &spyImage{urls: nil}, &stubLimiter{})

		rec := httptest.NewRecorder()
		h.ImageV2(rec, postJSON("/v2/ai/image", `{"prompt":"a cat"}`))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, gwerrors.TypeEmptyResult, decodeError(t, rec).Error.Type)
	})
}

func TestRateLimitGate(t *testing.T) {
	t.Run("throttled request makes no provider call", func(t *testing.T) {
		chat := &spyChat{text: "x"}
		h := newTestHandler(chat, &spyImage{}, &stubLimiter{limited: true})

		rec := httptest.NewRecorder()
		h.ChatV2(rec, postJSON("/v2/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		detail := decodeError(t, rec).Error
		assert.Equal(t, gwerrors.TypeRateLimit, detail.Type)
		assert.Equal(t, "Rate limit exceeded", detail.Message)
		assert.Equal(t, 0, chat.callCount())
	})

	t.Run("gate runs before body parsing", func(t *testing.T) {
		h := newTestHandler(&spyChat{}, &spyImage{}, &stubLimiter{limited: true})

		rec := httptest.NewRecorder()
		h.ChatV2(rec, postJSON("/v2/ai/chat", `{not json`))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("store failure fails open", func(t *testing.T) {
		chat := &spyChat{text: "x"}
		h := newTestHandler(chat, &spyImage{}, &stubLimiter{err: context.DeadlineExceeded})

		rec := httptest.NewRecorder()
		h.ChatV2(rec, postJSON("/v2/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, chat.callCount())
	})

	t.Run("61st request in a window is rejected end to end", func(t *testing.T) {
		chat := &spyChat{text: "x"}
		limiter := ratelimit.NewFixedWindowLimiter(ratelimit.NewMemoryStore(time.Minute), ratelimit.Config{
			Window:      time.Minute,
			MaxRequests: 60,
		})
		h := newTestHandler(chat, &spyImage{}, limiter)
		now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
		h.now = func() time.Time { return now }

		for i := 0; i < 60; i++ {
			rec := httptest.NewRecorder()
			h.ChatV2(rec, postJSON("/v2/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`))
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		}

		rec := httptest.NewRecorder()
		h.ChatV2(rec, postJSON("/v2/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, 60, chat.callCount())
	})
}

func TestLegacyEndpoints(t *testing.T) {
	t.Run("legacy chat skips the gate", func(t *testing.T) {
		chat := &spyChat{text: "x"}
		limiter := &stubLimiter{limited: true}
		h := newTestHandler(chat, &spyImage{}, limiter)

		rec := httptest.NewRecorder()
		h.Chat(rec, postJSON("/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, limiter.callCount())
	})

	t.Run("legacy chat sends the full history", func(t *testing.T) {
		chat := &spyChat{text: "x"}
		h := newTestHandler(chat, &spyImage{}, &stubLimiter{})

		messages := make([]types.ChatMessage, 50)
		for i := range messages {
			messages[i] = types.ChatMessage{Role: types.RoleUser, Content: "m"}
		}
		body, err := json.Marshal(map[string]any{"messages": messages})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		h.Chat(rec, postJSON("/ai/chat", string(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, chat.input().Messages, 50)
	})

	t.Run("legacy complete resolves aliases", func(t *testing.T) {
		chat := &spyChat{text: "x"}
		h := newTestHandler(chat, &spyImage{}, &stubLimiter{limited: true})

		rec := httptest.NewRecorder()
		h.Complete(rec, postJSON("/ai/complete", `{"prompt":"hi","model":"fast"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "gpt-4o-mini", chat.input().Model)
	})
}

func TestAIConfig(t *testing.T) {
	h := newTestHandler(&spyChat{}, &spyImage{}, &stubLimiter{})

	rec := httptest.NewRecorder()
	h.AIConfig(rec, httptest.NewRequest(http.MethodGet, "/ai/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp aiConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "mock", resp.Provider)
	assert.True(t, resp.Ready)
	assert.Equal(t, "gpt-4o", resp.Models.Balanced)
	assert.Equal(t, "mock", resp.Runtime.DefaultProviderID)
	assert.NotEmpty(t, resp.Runtime.Providers)

	body := rec.Body.String()
	assert.NotContains(t, body, "apiKey")
	assert.NotContains(t, body, "api_key")
}
