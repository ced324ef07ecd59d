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

type OpenAIProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	models []string
	status Status
}

func NewOpenAIProvider(baseURL, apiKey string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	status := StatusActive
	if strings.TrimSpace(apiKey) == "" {
		status = StatusNeedsKey
	}
	return &OpenAIProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 90 * time.Second},
		models:  []string{"gpt-4", "gpt-4-turbo", "gpt-4-turbo-preview", "gpt-3.5-turbo", "gpt-3.5-turbo-16k"},
		status:  status,
	}
}

func (p *OpenAIProvider) Name() string     { return "openai" }
func (p *OpenAIProvider) Models() []string { return p.models }
func (p *OpenAIProvider) Status() Status   { return p.status }

func (p *OpenAIProvider) Dispatch(ctx context.Context, prompt, model string) Result {
	if p.status == StatusNeedsKey {
		return Result{
			Response: fmt.Sprintf("🧠 %s: OpenAI API key not configured. Please add OPENAI_API_KEY to your .env file to use OpenAI models.", model),
			Model:    model,
			Provider: p.Name(),
			Status:   ResultError,
		}
	}

	text, actualModel, err := p.complete(ctx, prompt, model)
	if err != nil {
		return Result{
			Response: fmt.Sprintf("🧠 %s: Error - %s. Please check your OpenAI API key and model availability.", model, err.Error()),
			Model:    model,
			Provider: p.Name(),
			Status:   ResultError,
		}
	}
	return Result{Response: text, Model: actualModel, Provider: p.Name(), Status: ResultSuccess}
}

type openAIMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatReq struct {
	Model       string      `json:"model"`
	Messages    []openAIMsg `json:"messages"`
	MaxTokens   int         `json:"max_tokens"`
	Temperature float64     `json:"temperature"`
}

type openAIChatResp struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openAIMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// complete returns the generated text plus the model id the API reports,
// which can be a more specific alias of the requested id.
func (p *OpenAIProvider) complete(ctx context.Context, prompt, model string) (string, string, error) {
	if p.Client == nil {
		return "", "", errors.New("openai: http client is nil")
	}

	reqBody := openAIChatReq{
		Model:       model,
		Messages:    []openAIMsg{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokensFor(prompt),
		Temperature: 0.7,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", err
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	var decoded openAIChatResp
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		if json.Unmarshal(body, &decoded) == nil && decoded.Error != nil && decoded.Error.Message != "" {
			return "", "", errors.New(decoded.Error.Message)
		}
		return "", "", fmt.Errorf("openai: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", "", errors.New("openai: empty response")
	}

	actual := decoded.Model
	if actual == "" {
		actual = model
	}
	return decoded.Choices[0].Message.Content, actual, nil
}
