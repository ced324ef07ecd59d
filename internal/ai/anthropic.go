package ai

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
)

type AnthropicProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	models []string
	status Status
}

func NewAnthropicProvider(baseURL, apiKey string) *AnthropicProvider {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	status := StatusActive
	if strings.TrimSpace(apiKey) == "" {
		status = StatusNeedsKey
	}
	return &AnthropicProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 90 * time.Second},
		models:  []string{"claude-3-opus-20240229", "claude-3-sonnet-20240229", "claude-3-haiku-20240307"},
		status:  status,
	}
}

func (p *AnthropicProvider) Name() string     { return "anthropic" }
func (p *AnthropicProvider) Models() []string { return p.models }
func (p *AnthropicProvider) Status() Status   { return p.status }

func (p *AnthropicProvider) Dispatch(ctx context.Context, prompt, model string) Result {
	if p.status == StatusNeedsKey {
		return Result{
			Response: fmt.Sprintf("🎭 %s: Anthropic API key not configured. Please add ANTHROPIC_API_KEY to your .env file to use Claude models.", model),
			Model:    model,
			Provider: p.Name(),
			Status:   ResultError,
		}
	}

	text, err := p.message(ctx, prompt, model)
	if err != nil {
		return Result{
			Response: fmt.Sprintf("🎭 %s: Error - %s. Please check your Anthropic API key and model availability.", model, err.Error()),
			Model:    model,
			Provider: p.Name(),
			Status:   ResultError,
		}
	}
	return Result{Response: text, Model: model, Provider: p.Name(), Status: ResultSuccess}
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicMsgReq struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	Messages  []anthropicMsg `json:"messages"`
}

type anthropicMsgResp struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *AnthropicProvider) message(ctx context.Context, prompt, model string) (string, error) {
	if p.Client == nil {
		return "", errors.New("anthropic: http client is nil")
	}

	reqBody := anthropicMsgReq{
		Model:     model,
		MaxTokens: maxTokensFor(prompt),
		Messages:  []anthropicMsg{{Role: "user", Content: prompt}},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1/messages", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded anthropicMsgResp
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		if json.Unmarshal(body, &decoded) == nil && decoded.Error != nil && decoded.Error.Message != "" {
			return "", errors.New(decoded.Error.Message)
		}
		return "", fmt.Errorf("anthropic: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Content) == 0 {
		return "", errors.New("anthropic: empty response")
	}
	return decoded.Content[0].Text, nil
}
