// Package llm provides the opaque generation function implementations. Every
// provider failure surfaces as domain.ErrGeneration so callers fall back to
// the deterministic template path without branching on provider identity.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"qaforge/internal/domain"
)

// Client is a generator backed by an OpenAI-compatible /chat/completions
// endpoint. Ollama and most hosted providers expose the same shape.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewClient creates a generator client. The API key is read from the named
// environment variable; an empty apiKeyEnv skips authentication.
func NewClient(apiKeyEnv, model, baseURL string, timeout time.Duration) (*Client, error) {
	apiKey := ""
	if apiKeyEnv != "" {
		apiKey = os.Getenv(apiKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
		}
	}

	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Generate produces a completion. The call is bounded by both the caller's
// context and the configured timeout.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", domain.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", domain.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", domain.ErrGeneration, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API returned status %d: %s", domain.ErrGeneration, resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: parsing response: %v", domain.ErrGeneration, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", domain.ErrGeneration, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGeneration)
	}

	return parsed.Choices[0].Message.Content, nil
}

// ModelName returns the name of the model.
func (c *Client) ModelName() string {
	return c.model
}

// Scripted is a test generator that replays canned responses and records the
// prompts it was called with.
type Scripted struct {
	Responses []string
	Err       error
	Calls     []ScriptedCall

	next int
}

// ScriptedCall records one invocation.
type ScriptedCall struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// Generate replays the next canned response, or the configured error.
func (s *Scripted) Generate(_ context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	s.Calls = append(s.Calls, ScriptedCall{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    maxTokens,
	})

	if s.Err != nil {
		return "", s.Err
	}
	if s.next >= len(s.Responses) {
		return "", fmt.Errorf("%w: no scripted response left", domain.ErrGeneration)
	}
	resp := s.Responses[s.next]
	s.next++
	return resp, nil
}

// ModelName returns the scripted model name.
func (s *Scripted) ModelName() string {
	return "scripted"
}
