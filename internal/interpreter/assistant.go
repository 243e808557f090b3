// File: internal/interpreter/assistant.go
// Description: Intent Interpreter. Sends the fixed system instruction plus
// the user prompt to an OpenRouter chat-completions endpoint and parses
// the response into an interpretation plan.
package interpreter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/webpilot-ai/webpilot/api/schemas"
	"github.com/webpilot-ai/webpilot/internal/config"
	"github.com/webpilot-ai/webpilot/internal/llmutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MalformedOutputError reports model output that could not be parsed into
// the required plan shape, carrying the raw text for diagnostics. Fields
// are never guessed into place; malformed output always fails.
type MalformedOutputError struct {
	Raw string
}

func (e *MalformedOutputError) Error() string {
	return "could not parse model response as an interpretation plan"
}

// AsMalformedOutput unwraps a MalformedOutputError from err, if present.
func AsMalformedOutput(err error) (*MalformedOutputError, bool) {
	var malformed *MalformedOutputError
	if errors.As(err, &malformed) {
		return malformed, true
	}
	return nil, false
}

// -- OpenRouter chat-completions wire structures --

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequestPayload struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponsePayload struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Assistant interprets user prompts through a hosted language model.
// Sampling runs at low temperature with a bounded output-token budget so
// plans stay deterministic-leaning. Calls are a single attempt; API
// failures are surfaced, never retried.
type Assistant struct {
	endpoint   string
	apiKey     string
	model      string
	cfg        config.LLMConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAssistant initializes the interpreter client.
func NewAssistant(cfg config.LLMConfig, logger *zap.Logger) (*Assistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = "https://openrouter.ai/api/v1"
	}

	timeout := cfg.APITimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Assistant{
		endpoint: endpoint + "/chat/completions",
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		cfg:      cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("interpreter"),
	}, nil
}

// Interpret converts a user prompt into an interpretation plan. Unparseable
// model output is returned as a *MalformedOutputError carrying the raw
// text; network and API failures are returned as plain errors.
func (a *Assistant) Interpret(ctx context.Context, userPrompt string) (*schemas.InterpretationPlan, error) {
	content, err := a.complete(ctx, userPrompt)
	if err != nil {
		return nil, err
	}

	plan, err := llmutil.ParseJSONObject[schemas.InterpretationPlan](content)
	if err != nil {
		a.logger.Warn("Model response did not parse as a plan",
			zap.Error(err),
			zap.String("response", llmutil.Truncate(content, 500)))
		return nil, &MalformedOutputError{Raw: content}
	}
	return plan, nil
}

// complete performs one chat-completions round trip and returns the text
// of the first choice.
func (a *Assistant) complete(ctx context.Context, userPrompt string) (string, error) {
	payload := chatRequestPayload{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	startTime := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("Completion endpoint returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("response", llmutil.Truncate(string(respBody), 500)))
		return "", fmt.Errorf("completion API error: status %d, body: %s", resp.StatusCode, respBody)
	}

	var responsePayload chatResponsePayload
	if err := json.Unmarshal(respBody, &responsePayload); err != nil {
		return "", fmt.Errorf("failed to decode response payload: %w", err)
	}

	if len(responsePayload.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}
	content := responsePayload.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("completion API returned empty content")
	}

	a.logger.Info("Interpretation complete",
		zap.Duration("duration", time.Since(startTime)),
		zap.String("model", a.model),
		zap.Int("prompt_tokens", responsePayload.Usage.PromptTokens),
		zap.Int("completion_tokens", responsePayload.Usage.CompletionTokens))

	return content, nil
}
