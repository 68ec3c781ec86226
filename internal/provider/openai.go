package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CodeSwitch-Lab/csw-forge/pkg/ratelimit"
	"github.com/rs/zerolog/log"
)

// OpenAIProvider implements the Provider interface against the OpenAI chat
// completions API
type OpenAIProvider struct {
	apiKey      string
	baseURL     string
	model       string
	client      *http.Client
	limiter     *ratelimit.ProviderRateLimiter
	rateLimiter chan struct{}
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey, model string, limiter *ratelimit.ProviderRateLimiter) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:      apiKey,
		baseURL:     "https://api.openai.com/v1",
		model:       model,
		client:      &http.Client{Timeout: 60 * time.Second},
		limiter:     limiter,
		rateLimiter: make(chan struct{}, 50), // Cap concurrent in-flight requests
	}
}

// SetBaseURL overrides the API endpoint (used by tests and proxies)
func (p *OpenAIProvider) SetBaseURL(url string) {
	p.baseURL = strings.TrimSuffix(url, "/")
}

// API structures for the chat completions endpoint
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	TopP        float64         `json:"top_p"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
	Error   *openAIError   `json:"error,omitempty"`
}

type openAIChoice struct {
	Message openAIMessage `json:"message"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete sends a single prompt and returns the model's text response
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	select {
	case p.rateLimiter <- struct{}{}:
		defer func() { <-p.rateLimiter }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if p.limiter != nil {
		if err := p.limiter.WaitForSource(ctx, "openai"); err != nil {
			return "", err
		}
	}

	apiRequest := &openAIRequest{
		Model: p.model,
		Messages: []openAIMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   4000,
		Temperature: 0.7,
		TopP:        0.9,
	}

	body, err := json.Marshal(apiRequest)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("User-Agent", "CSW-Forge/1.0")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.recordError(err)
		return "", fmt.Errorf("API call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		p.recordError(err)
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var apiResponse openAIResponse
	if err := json.Unmarshal(respBody, &apiResponse); err != nil {
		p.recordError(err)
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		if apiResponse.Error != nil {
			msg = apiResponse.Error.Message
		}
		err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
		p.recordError(err)
		return "", err
	}

	if len(apiResponse.Choices) == 0 {
		err := fmt.Errorf("no choices in response")
		p.recordError(err)
		return "", err
	}

	if p.limiter != nil {
		p.limiter.RecordSuccess("openai")
	}

	log.Debug().
		Str("model", p.model).
		Int("prompt_tokens", apiResponse.Usage.PromptTokens).
		Int("completion_tokens", apiResponse.Usage.CompletionTokens).
		Dur("latency", time.Since(start)).
		Msg("OpenAI completion finished")

	return strings.TrimSpace(apiResponse.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) recordError(err error) {
	if p.limiter != nil {
		p.limiter.RecordError("openai", err)
	}
}

// GetModelName returns the model name
func (p *OpenAIProvider) GetModelName() string {
	return p.model
}

// GetProviderName returns the provider name used in run configuration
func (p *OpenAIProvider) GetProviderName() string {
	return "openai"
}

// EstimateCost estimates the cost for a single completion
func (p *OpenAIProvider) EstimateCost(prompt string) float64 {
	// Rough estimation: ~4 chars per token, $0.03/1K input, $0.06/1K output
	estimatedInputTokens := len(prompt) / 4
	estimatedOutputTokens := 500 // Switched sentences are short

	inputCost := float64(estimatedInputTokens) / 1000.0 * 0.03
	outputCost := float64(estimatedOutputTokens) / 1000.0 * 0.06
	return inputCost + outputCost
}

// IsAvailable checks if the provider is configured
func (p *OpenAIProvider) IsAvailable() bool {
	return p.apiKey != ""
}
