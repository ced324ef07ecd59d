package ai

import (
	"context"
	"fmt"
)

// PlaceholderProvider is a registry entry with no real backend. It always
// answers with a canned message describing how to enable the integration,
// so the client still gets a conversational reply.
type PlaceholderProvider struct {
	name    string
	models  []string
	message string
}

func NewPlaceholderProvider(name, message string, models []string) *PlaceholderProvider {
	return &PlaceholderProvider{name: name, models: models, message: message}
}

func NewCohereProvider() *PlaceholderProvider {
	return NewPlaceholderProvider("cohere",
		"🔮 %s: Cohere integration not implemented yet. To add Cohere support, wire a Cohere adapter and set COHERE_API_KEY.",
		[]string{"command", "command-light", "command-nightly"})
}

func NewHuggingFaceProvider() *PlaceholderProvider {
	return NewPlaceholderProvider("huggingface",
		"🤗 %s: Hugging Face integration not implemented yet. To add Hugging Face support, wire an Inference API adapter and set HUGGINGFACE_API_KEY.",
		[]string{"microsoft/DialoGPT-large", "facebook/blenderbot-400M-distill"})
}

func (p *PlaceholderProvider) Name() string     { return p.name }
func (p *PlaceholderProvider) Models() []string { return p.models }
func (p *PlaceholderProvider) Status() Status   { return StatusPlaceholder }

func (p *PlaceholderProvider) Dispatch(_ context.Context, _, model string) Result {
	return Result{
		Response: fmt.Sprintf(p.message, model),
		Model:    model,
		Provider: p.name,
		Status:   ResultPlaceholder,
	}
}
