package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Registry holds the closed set of providers. Registration happens during
// startup; after that the registry is read-only and safe for concurrent
// dispatch.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
	usage     *Usage
}

func NewRegistry(usage *Usage) *Registry {
	return &Registry{providers: make(map[string]Provider), usage: usage}
}

func (r *Registry) Register(p Provider) {
	name := strings.ToLower(strings.TrimSpace(p.Name()))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.providers[name] = p
}

func (r *Registry) Get(name string) (Provider, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names returns provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Supports reports whether model is in the provider's advertised list.
// An unlisted model is still attempted; callers only use this to warn.
func (r *Registry) Supports(name, model string) bool {
	p, ok := r.Get(name)
	if !ok {
		return false
	}
	for _, m := range p.Models() {
		if m == model {
			return true
		}
	}
	return false
}

// ProviderInfo is the capability listing exposed by /api/models.
type ProviderInfo struct {
	Name      string   `json:"name"`
	Models    []string `json:"models"`
	Status    Status   `json:"status"`
	HasAPIKey bool     `json:"hasApiKey"`
}

func (r *Registry) Providers() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ProviderInfo, 0, len(r.order))
	for _, name := range r.order {
		p := r.providers[name]
		out = append(out, ProviderInfo{
			Name:      p.Name(),
			Models:    append([]string(nil), p.Models()...),
			Status:    p.Status(),
			HasAPIKey: p.Status() == StatusActive,
		})
	}
	return out
}

// Dispatch routes a prompt to the named provider, times the call and
// records the outcome in the usage log before returning. The only Go
// error it can return is an unknown provider name, which callers reject
// with a 400 before any vendor traffic happens.
func (r *Registry) Dispatch(ctx context.Context, name, prompt, model string) (Result, error) {
	p, ok := r.Get(name)
	if !ok {
		return Result{}, fmt.Errorf("unsupported provider: %s", name)
	}

	start := time.Now()
	res := p.Dispatch(ctx, prompt, model)
	elapsed := time.Since(start)

	var callErr error
	if res.Status == ResultError {
		callErr = errors.New(res.Response)
	}
	r.usage.Record(res.Provider, res.Model, res.Status, elapsed, callErr)
	return res, nil
}
