// Package llm implements the suggestion/insight collaborator against the
// OpenAI chat-completions API, returning typed JSON payloads.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"daxforge/internal/config"
	"daxforge/ports"
)

// defaultTimeout bounds one collaborator round trip
const defaultTimeout = 120 * time.Second

// Client is a thin OpenAI chat-completions client that forces JSON output
type Client struct {
	APIKey        string
	BaseURL       string
	Model         string
	Temperature   float64
	MaxTokens     int
	SystemContext string
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// NewClient creates a collaborator client from the AI configuration
func NewClient(cfg config.AIConfig) *Client {
	log.Printf("[LLMClient] Initializing client with model=%s, temp=%.2f, maxTokens=%d",
		cfg.OpenAIModel, cfg.Temperature, cfg.MaxTokens)

	return &Client{
		APIKey:        cfg.OpenAIKey,
		BaseURL:       "https://api.openai.com/v1",
		Model:         cfg.OpenAIModel,
		Temperature:   cfg.Temperature,
		MaxTokens:     cfg.MaxTokens,
		SystemContext: cfg.SystemContext,
		Timeout:       defaultTimeout,
		HTTPClient:    &http.Client{Timeout: defaultTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model               string          `json:"model"`
	Messages            []chatMessage   `json:"messages"`
	Temperature         float64         `json:"temperature,omitempty"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GetJSONResponse makes a typed collaborator call and parses the JSON
// response into T. The system message always demands JSON output so the
// response_format directive is honored across models.
func GetJSONResponse[T any](ctx context.Context, c *Client, prompt string) (*T, *ports.UsageData, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	systemContent := c.SystemContext
	if !strings.Contains(strings.ToLower(systemContent), "json") {
		systemContent += "\n\nRespond with a single valid JSON object and nothing else."
	}

	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemContent},
			{Role: "user", Content: prompt},
		},
		Temperature:         c.Temperature,
		MaxCompletionTokens: c.MaxTokens,
		ResponseFormat:      &responseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, nil, fmt.Errorf("request timeout after %v: %w", c.Timeout, err)
		}
		return nil, nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var envelope chatResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("failed to parse OpenAI response: %w", err)
	}
	if len(envelope.Choices) == 0 {
		return nil, nil, fmt.Errorf("no choices in OpenAI response")
	}

	usage := &ports.UsageData{
		PromptTokens:     envelope.Usage.PromptTokens,
		CompletionTokens: envelope.Usage.CompletionTokens,
		TotalTokens:      envelope.Usage.TotalTokens,
		Model:            c.Model,
		Provider:         "openai",
	}

	content := cleanJSONContent(envelope.Choices[0].Message.Content)

	var result T
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		log.Printf("[LLMClient] Failed to unmarshal JSON content: %v", err)
		return nil, usage, fmt.Errorf("failed to parse JSON content into result type: %w", err)
	}

	return &result, usage, nil
}

// cleanJSONContent strips markdown code fences some models wrap around JSON
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
