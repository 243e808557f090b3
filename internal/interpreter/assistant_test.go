// File: internal/interpreter/assistant_test.go
package interpreter

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/webpilot-ai/webpilot/internal/config"
)

// chatCompletion builds a minimal OpenAI-format completion response body.
func chatCompletion(content string) string {
	body := map[string]any{
		"choices": []map[string]any{
			{
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 45, "total_tokens": 165},
	}
	encoded, _ := stdjson.Marshal(body)
	return string(encoded)
}

// fakeCompletionServer records the payloads the assistant sends and serves
// canned responses.
type fakeCompletionServer struct {
	mu       sync.Mutex
	payloads []chatRequestPayload
	headers  []http.Header
	respond  func(w http.ResponseWriter)
	server   *httptest.Server
}

func newFakeCompletionServer(t *testing.T) *fakeCompletionServer {
	t.Helper()
	fs := &fakeCompletionServer{}
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/completions", r.URL.Path)

		var payload chatRequestPayload
		require.NoError(t, stdjson.NewDecoder(r.Body).Decode(&payload))

		fs.mu.Lock()
		fs.payloads = append(fs.payloads, payload)
		fs.headers = append(fs.headers, r.Header.Clone())
		respond := fs.respond
		fs.mu.Unlock()

		if respond != nil {
			respond(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletion(`{"actions": [], "explanation": "no action required"}`))
	}))
	t.Cleanup(fs.server.Close)
	return fs
}

func newTestAssistant(t *testing.T, endpoint string) *Assistant {
	t.Helper()
	assistant, err := NewAssistant(config.LLMConfig{
		APIKey:      "sk-or-test",
		Model:       "openai/gpt-3.5-turbo",
		Endpoint:    endpoint,
		Temperature: 0.1,
		MaxTokens:   1000,
		APITimeout:  5 * time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return assistant
}

func TestNewAssistant_RequiresAPIKey(t *testing.T) {
	_, err := NewAssistant(config.LLMConfig{}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestInterpret_RequestShape(t *testing.T) {
	fs := newFakeCompletionServer(t)
	assistant := newTestAssistant(t, fs.server.URL)

	_, err := assistant.Interpret(context.Background(), "Go to google.com")
	require.NoError(t, err)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.Len(t, fs.payloads, 1)
	payload := fs.payloads[0]

	assert.Equal(t, "openai/gpt-3.5-turbo", payload.Model)
	assert.InDelta(t, 0.1, payload.Temperature, 1e-9)
	assert.Equal(t, 1000, payload.MaxTokens)

	require.Len(t, payload.Messages, 2)
	assert.Equal(t, "system", payload.Messages[0].Role)
	assert.Equal(t, systemPrompt, payload.Messages[0].Content)
	assert.Equal(t, "user", payload.Messages[1].Role)
	assert.Equal(t, "Go to google.com", payload.Messages[1].Content)

	assert.Equal(t, "Bearer sk-or-test", fs.headers[0].Get("Authorization"))
	assert.Equal(t, "application/json", fs.headers[0].Get("Content-Type"))
}

func TestInterpret_ParsesPlan(t *testing.T) {
	fs := newFakeCompletionServer(t)
	fs.respond = func(w http.ResponseWriter) {
		fmt.Fprint(w, chatCompletion(`{
			"actions": [
				{"action": "navigate_to_page", "params": {"url": "https://google.com"}, "description": "Open Google"},
				{"action": "type_text", "params": {"selector": "textarea[name='q']", "text": "golang"}, "description": "Type the query"}
			],
			"explanation": "Search Google for golang"
		}`))
	}
	assistant := newTestAssistant(t, fs.server.URL)

	plan, err := assistant.Interpret(context.Background(), "search google for golang")
	require.NoError(t, err)
	require.Len(t, plan.Actions, 2)
	assert.Equal(t, "navigate_to_page", plan.Actions[0].Action)
	assert.Equal(t, "https://google.com", plan.Actions[0].Params["url"])
	assert.Equal(t, "Search Google for golang", plan.Explanation)
}

func TestInterpret_SalvagesFencedPlan(t *testing.T) {
	fs := newFakeCompletionServer(t)
	fs.respond = func(w http.ResponseWriter) {
		fmt.Fprint(w, chatCompletion("Here you go:\n```json\n{\"actions\": [], \"explanation\": \"fenced\"}\n```"))
	}
	assistant := newTestAssistant(t, fs.server.URL)

	plan, err := assistant.Interpret(context.Background(), "do nothing")
	require.NoError(t, err)
	assert.Equal(t, "fenced", plan.Explanation)
}

func TestInterpret_MalformedOutputCarriesRawText(t *testing.T) {
	fs := newFakeCompletionServer(t)
	fs.respond = func(w http.ResponseWriter) {
		fmt.Fprint(w, chatCompletion("I'm sorry, I cannot produce a plan for that."))
	}
	assistant := newTestAssistant(t, fs.server.URL)

	_, err := assistant.Interpret(context.Background(), "gibberish")
	require.Error(t, err)

	malformed, ok := AsMalformedOutput(err)
	require.True(t, ok)
	assert.Equal(t, "I'm sorry, I cannot produce a plan for that.", malformed.Raw)
}

func TestInterpret_APIErrorStatus(t *testing.T) {
	fs := newFakeCompletionServer(t)
	fs.respond = func(w http.ResponseWriter) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}
	assistant := newTestAssistant(t, fs.server.URL)

	_, err := assistant.Interpret(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")

	_, isMalformed := AsMalformedOutput(err)
	assert.False(t, isMalformed)
}

func TestInterpret_NoChoices(t *testing.T) {
	fs := newFakeCompletionServer(t)
	fs.respond = func(w http.ResponseWriter) {
		fmt.Fprint(w, `{"choices": []}`)
	}
	assistant := newTestAssistant(t, fs.server.URL)

	_, err := assistant.Interpret(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestInterpret_EmptyContent(t *testing.T) {
	fs := newFakeCompletionServer(t)
	fs.respond = func(w http.ResponseWriter) {
		fmt.Fprint(w, chatCompletion(""))
	}
	assistant := newTestAssistant(t, fs.server.URL)

	_, err := assistant.Interpret(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty content")
}

func TestInterpret_SingleAttempt(t *testing.T) {
	fs := newFakeCompletionServer(t)
	fs.respond = func(w http.ResponseWriter) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}
	assistant := newTestAssistant(t, fs.server.URL)

	_, err := assistant.Interpret(context.Background(), "anything")
	require.Error(t, err)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	// Failures surface immediately; the endpoint is never retried.
	assert.Len(t, fs.payloads, 1)
}

func TestNewAssistant_EndpointNormalization(t *testing.T) {
	assistant := newTestAssistant(t, "https://openrouter.ai/api/v1/")
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", assistant.endpoint)
}
