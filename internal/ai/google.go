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

type GoogleProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	models []string
	status Status
}

func NewGoogleProvider(baseURL, apiKey string) *GoogleProvider {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	status := StatusActive
	if strings.TrimSpace(apiKey) == "" {
		status = StatusNeedsKey
	}
	return &GoogleProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 90 * time.Second},
		models:  []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-pro", "gemini-pro-vision"},
		status:  status,
	}
}

func (p *GoogleProvider) Name() string     { return "google" }
func (p *GoogleProvider) Models() []string { return p.models }
func (p *GoogleProvider) Status() Status   { return p.status }

func (p *GoogleProvider) Dispatch(ctx context.Context, prompt, model string) Result {
	if p.status == StatusNeedsKey {
		return Result{
			Response: fmt.Sprintf("🤖 %s: Google AI API key not configured. Please add GEMINI_API_KEY to your .env file to use Google models.", model),
			Model:    model,
			Provider: p.Name(),
			Status:   ResultError,
		}
	}

	text, err := p.generate(ctx, prompt, model)
	if err != nil {
		return Result{
			Response: fmt.Sprintf("🤖 %s: Error - %s. Please check your Google AI API key and model availability.", model, err.Error()),
			Model:    model,
			Provider: p.Name(),
			Status:   ResultError,
		}
	}
	return Result{Response: text, Model: model, Provider: p.Name(), Status: ResultSuccess}
}

type googlePart struct {
	Text string `json:"text"`
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type googleGenReq struct {
	Contents         []googleContent `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type googleGenResp struct {
	Candidates []struct {
		Content googleContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *GoogleProvider) generate(ctx context.Context, prompt, model string) (string, error) {
	if p.Client == nil {
		return "", errors.New("google: http client is nil")
	}

	reqBody := googleGenReq{
		Contents: []googleContent{{Parts: []googlePart{{Text: prompt}}}},
	}
	reqBody.GenerationConfig.MaxOutputTokens = maxTokensFor(prompt)

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(p.BaseURL, "/"), model, p.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded googleGenResp
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Google returns a JSON error envelope even on non-2xx.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		if json.Unmarshal(body, &decoded) == nil && decoded.Error != nil && decoded.Error.Message != "" {
			return "", errors.New(decoded.Error.Message)
		}
		return "", fmt.Errorf("google: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("google: empty response")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
