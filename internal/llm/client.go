package llm

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

	"go-analyzer/internal/config"
)

// ErrAPIKeyMissing is returned by NewClient when no API key is configured.
// The process must not serve the pass-through chat endpoints without one.
var ErrAPIKeyMissing = errors.New("OPENAI_API_KEY not found in environment")

const jsonInstruction = "\n\nRespond strictly in JSON format."

// Client talks to an OpenAI-compatible chat-completions endpoint.
//
// SetSystemPrompt and SetMaxTokens mutate the instance defaults and are not
// safe for concurrent use; apply them before serving traffic or use one
// Client per request.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	systemPrompt string
	maxTokens    int
	httpClient   *http.Client
}

// NewClient builds a gateway from config. Fails with ErrAPIKeyMissing when
// the key is absent.
func NewClient(cfg config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.DefaultMaxTokens
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		model:        model,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    maxTokens,
		httpClient:   &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// SetSystemPrompt changes the default system prompt for subsequent calls.
func (c *Client) SetSystemPrompt(systemPrompt string) {
	c.systemPrompt = systemPrompt
}

// SetMaxTokens changes the response token ceiling for subsequent calls.
func (c *Client) SetMaxTokens(maxTokens int) {
	c.maxTokens = maxTokens
}

// Chat sends a single user-role message and returns the reply verbatim.
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	messages := []map[string]string{
		{"role": "user", "content": prompt},
	}
	reply, err := c.complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	return reply, nil
}

// ChatWithSystem sends a system+user message pair.
func (c *Client) ChatWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []map[string]string{
		{"role": "system", "content": systemPrompt},
		{"role": "user", "content": userPrompt},
	}
	reply, err := c.complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat request with system prompt failed: %w", err)
	}
	return reply, nil
}

// ChatJSON appends a strict-JSON instruction to the system prompt, issues
// the call, and parses the reply as JSON after stripping an optional
// markdown code fence. A reply that fails to parse is NOT an error: the raw
// text comes back as {"response": <text>, "error": "JSON parse failure"}.
func (c *Client) ChatJSON(ctx context.Context, systemPrompt, userPrompt string) (map[string]interface{}, error) {
	messages := []map[string]string{
		{"role": "system", "content": systemPrompt + jsonInstruction},
		{"role": "user", "content": userPrompt},
	}
	reply, err := c.complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("JSON chat request failed: %w", err)
	}

	content := strings.TrimSpace(reply)
	// Remove markdown code fences if present
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return map[string]interface{}{
			"response": reply,
			"error":    "JSON parse failure",
		}, nil
	}
	return parsed, nil
}

// complete performs the chat-completions POST shared by all operations.
func (c *Client) complete(ctx context.Context, messages []map[string]string) (string, error) {
	payload := map[string]interface{}{
		"model":      c.model,
		"messages":   messages,
		"max_tokens": c.maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("LLM returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var respStruct struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respStruct); err != nil {
		return "", fmt.Errorf("failed to decode LLM response: %w", err)
	}
	if len(respStruct.Choices) == 0 {
		return "", errors.New("no response from LLM")
	}

	return respStruct.Choices[0].Message.Content, nil
}
