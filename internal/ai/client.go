// Package ai integrates the OpenAI responses endpoint for task breakdown
// and email parsing.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/wavezly/wavezly/internal/platform/timeouts"
)

// defaultResponsesURL targets the hosted OpenAI responses endpoint.
const defaultResponsesURL = "https://api.openai.com/v1/responses"

// defaultModel is used when the operator does not pin one.
const defaultModel = "gpt-4o-mini"

// Invoker sends a prompt to the AI provider and returns its output text.
type Invoker interface {
	Invoke(ctx context.Context, input string) (string, error)
}

// clientEnv holds raw env values before post-parse validation.
type clientEnv struct {
	APIKey       string `env:"WAVEZLY_OPENAI_API_KEY"`
	Model        string `env:"WAVEZLY_OPENAI_MODEL"`
	ResponsesURL string `env:"WAVEZLY_OPENAI_RESPONSES_URL"`
}

// ClientConfig configures the OpenAI responses endpoint and HTTP behavior.
type ClientConfig struct {
	ResponsesURL string
	APIKey       string
	Model        string
	HTTPClient   *http.Client
}

// Client invokes the OpenAI responses endpoint over plain HTTP.
type Client struct {
	cfg ClientConfig
}

// LoadClientConfigFromEnv reads provider configuration from the environment.
func LoadClientConfigFromEnv() (ClientConfig, error) {
	var raw clientEnv
	if err := env.Parse(&raw); err != nil {
		return ClientConfig{}, fmt.Errorf("parse openai env: %w", err)
	}
	if strings.TrimSpace(raw.APIKey) == "" {
		return ClientConfig{}, fmt.Errorf("WAVEZLY_OPENAI_API_KEY is required")
	}
	return ClientConfig{
		ResponsesURL: strings.TrimSpace(raw.ResponsesURL),
		APIKey:       strings.TrimSpace(raw.APIKey),
		Model:        strings.TrimSpace(raw.Model),
	}, nil
}

// NewClient builds a responses-endpoint client with defensive defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: timeouts.AIProvider}
	}
	if strings.TrimSpace(cfg.ResponsesURL) == "" {
		cfg.ResponsesURL = defaultResponsesURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	return &Client{cfg: cfg}
}

// Invoke sends a prompt and returns the model's output text.
func (c *Client) Invoke(ctx context.Context, input string) (string, error) {
	apiKey := strings.TrimSpace(c.cfg.APIKey)
	prompt := strings.TrimSpace(input)
	if apiKey == "" {
		return "", fmt.Errorf("api key is required")
	}
	if prompt == "" {
		return "", fmt.Errorf("input is required")
	}

	requestBody, err := json.Marshal(map[string]any{
		"model": c.cfg.Model,
		"input": prompt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal invoke request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ResponsesURL, bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("build invoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Credential material is sent only as an Authorization header and is never
	// echoed in errors or response payloads.
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("invoke request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		if err != nil {
			return "", fmt.Errorf("read invoke error body: %w", err)
		}
		return "", fmt.Errorf("invoke request status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode invoke response: %w", err)
	}
	outputText := strings.TrimSpace(payload.OutputText)
	if outputText == "" {
		for _, item := range payload.Output {
			for _, content := range item.Content {
				if strings.TrimSpace(content.Text) != "" {
					outputText = strings.TrimSpace(content.Text)
					break
				}
			}
			if outputText != "" {
				break
			}
		}
	}
	if outputText == "" {
		return "", fmt.Errorf("invoke response missing output text")
	}
	return outputText, nil
}
