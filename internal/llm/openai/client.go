package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mindmap-backend/internal/llm"
	"mindmap-backend/internal/shared/telemetry"
)

const (
	provider       = "openai"
	defaultAPIURL  = "https://api.openai.com/v1/chat/completions"
	defaultTimeout = 120 * time.Second
)

// Client implements llm.Completer using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	apiURL     string
	system     string
	httpClient *http.Client
}

// NewClient constructs an OpenAI client for JSON completions.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		apiURL: defaultAPIURL,
		system: llm.SystemInstruction(),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends the system instruction and text, returning the raw content
// of the first choice. Empty content is returned as-is.
func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(newChatRequest(c.model, c.system, text))
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	parsed, err := parseChatResponse(resp.StatusCode, body)
	if err != nil {
		return "", err
	}
	logUsage(c.model, parsed)

	return parsed.Choices[0].Message.Content, nil
}

// newChatRequest asks for a JSON object reply. Temperature is pinned to 0
// except for gpt-5 models, which reject it.
func newChatRequest(model, system, text string) chatRequest {
	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: text},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	if !isGPT5(model) {
		temp := float32(0)
		req.Temperature = &temp
	}
	return req
}

// parseChatResponse decodes a chat completion body, turning provider errors
// and non-success statuses into *llm.StatusError.
func parseChatResponse(status int, body []byte) (chatResponse, error) {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if status >= http.StatusBadRequest {
			return chatResponse{}, llm.NewStatusError(provider, status, string(body))
		}
		return chatResponse{}, fmt.Errorf("openai response parse: %w", err)
	}
	switch {
	case parsed.Error != nil:
		detail := parsed.Error.Message
		if parsed.Error.Type != "" {
			detail += " (" + parsed.Error.Type + ")"
		}
		return chatResponse{}, llm.NewStatusError(provider, status, detail)
	case status >= http.StatusBadRequest:
		return chatResponse{}, llm.NewStatusError(provider, status, string(body))
	case len(parsed.Choices) == 0:
		return chatResponse{}, errors.New("openai response missing choices")
	}
	return parsed, nil
}

func logUsage(model string, parsed chatResponse) {
	fields := map[string]any{
		"provider": provider,
		"model":    model,
	}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Completer = (*Client)(nil)
