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

// AnthropicProvider implements the Provider interface against the Anthropic
// messages API
type AnthropicProvider struct {
	apiKey      string
	baseURL     string
	model       string
	client      *http.Client
	limiter     *ratelimit.ProviderRateLimiter
	rateLimiter chan struct{}
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey, model string, limiter *ratelimit.ProviderRateLimiter) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey:      apiKey,
		baseURL:     "https://api.anthropic.com",
		model:       model,
		client:      &http.Client{Timeout: 60 * time.Second},
		limiter:     limiter,
		rateLimiter: make(chan struct{}, 30), // Conservative concurrency cap
	}
}

// SetBaseURL overrides the API endpoint (used by tests and proxies)
func (p *AnthropicProvider) SetBaseURL(url string) {
	p.baseURL = strings.TrimSuffix(url, "/")
}

// API structures for the messages endpoint
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Usage   anthropicUsage     `json:"usage"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Complete sends a single prompt and returns the model's text response
func (p *AnthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	select {
	case p.rateLimiter <- struct{}{}:
		defer func() { <-p.rateLimiter }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if p.limiter != nil {
		if err := p.limiter.WaitForSource(ctx, "anthropic"); err != nil {
			return "", err
		}
	}

	apiRequest := &anthropicRequest{
		Model:     p.model,
		MaxTokens: 4000,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(apiRequest)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
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

	var apiResponse anthropicResponse
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

	var text strings.Builder
	for _, block := range apiResponse.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		err := fmt.Errorf("no text content in response")
		p.recordError(err)
		return "", err
	}

	if p.limiter != nil {
		p.limiter.RecordSuccess("anthropic")
	}

	log.Debug().
		Str("model", p.model).
		Int("input_tokens", apiResponse.Usage.InputTokens).
		Int("output_tokens", apiResponse.Usage.OutputTokens).
		Dur("latency", time.Since(start)).
		Msg("Anthropic completion finished")

	return strings.TrimSpace(text.String()), nil
}

func (p *AnthropicProvider) recordError(err error) {
	if p.limiter != nil {
		p.limiter.RecordError("anthropic", err)
	}
}

// GetModelName returns the model name
func (p *AnthropicProvider) GetModelName() string {
	return p.model
}

// GetProviderName returns the provider name used in run configuration
func (p *AnthropicProvider) GetProviderName() string {
	return "anthropic"
}

// EstimateCost estimates the cost for a single completion
func (p *AnthropicProvider) EstimateCost(prompt string) float64 {
	estimatedTokens := len(prompt)/4 + 500
	return float64(estimatedTokens) / 1000.0 * 0.015
}

// IsAvailable checks if the provider is configured
func (p *AnthropicProvider) IsAvailable() bool {
	return p.apiKey != ""
}
