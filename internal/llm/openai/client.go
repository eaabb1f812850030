package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"contract-validator/internal/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements llm.ChatClient against any OpenAI-compatible
// Chat Completions endpoint (OpenAI, Perplexity).
type Client struct {
	apiKey     string
	baseURL    string
	name       string
	httpClient *http.Client
}

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string
	// Name labels errors and logs, e.g. "perplexity".
	Name    string
	Timeout time.Duration
}

// NewClient constructs a new OpenAI-compatible client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("API key is required for %s", nameOr(opts.Name))
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		name:    nameOr(opts.Name),
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
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
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

// Complete sends one chat completion and returns the first choice's text.
// A model that rejects the requested temperature is retried once without it.
func (c *Client) Complete(ctx context.Context, req llm.ChatRequest) (string, error) {
	if strings.TrimSpace(req.Model) == "" {
		return "", fmt.Errorf("%s model is required", c.name)
	}
	temp := req.Temperature
	body := chatRequest{
		Model:       req.Model,
		Messages:    toChatMessages(req.Messages),
		Temperature: &temp,
		MaxTokens:   req.MaxTokens,
	}

	content, err := c.send(ctx, body)
	if err != nil && isTemperatureUnsupported(err) {
		log.Printf("llm %s model=%s rejected temperature, retrying without it", c.name, req.Model)
		body.Temperature = nil
		content, err = c.send(ctx, body)
	}
	return content, err
}

func (c *Client) send(ctx context.Context, reqBody chatRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("%s request timeout: %w", c.name, err)
		}
		return "", fmt.Errorf("%s request: %w", c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("%s http status %d: %s", c.name, resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return "", fmt.Errorf("%s response parse: %w", c.name, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%s http status %d: %s (%s)", c.name, resp.StatusCode, parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%s http status %d: %s", c.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s response missing choices", c.name)
	}
	logUsage(c.name, reqBody.Model, parsed.Usage)

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s: %w", c.name, llm.ErrEmptyResponse)
	}
	return content, nil
}

func toChatMessages(messages []llm.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, chatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func isTemperatureUnsupported(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "temperature") && strings.Contains(msg, "unsupported")
}

func logUsage(name, model string, usage *struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}) {
	if usage == nil {
		log.Printf("llm response provider=%s model=%s", name, model)
		return
	}
	log.Printf("llm response provider=%s model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		name, model, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
}

func nameOr(name string) string {
	if strings.TrimSpace(name) == "" {
		return "openai"
	}
	return name
}

var _ llm.ChatClient = (*Client)(nil)
