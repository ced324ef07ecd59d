package ai

import (
	"context"
	"strings"
)

// Status describes a provider's configuration state, computed once at
// construction and read-only afterwards.
type Status string

const (
	StatusActive      Status = "active"
	StatusNeedsKey    Status = "needs_key"
	StatusPlaceholder Status = "placeholder"
)

// Result statuses. A dispatch never surfaces a Go error for vendor or
// configuration failures; the outcome is encoded here so callers always
// have a conversational reply to return.
const (
	ResultSuccess     = "success"
	ResultError       = "error"
	ResultPlaceholder = "placeholder"
)

// Result is the normalized outcome of one provider invocation. Model is
// the id the vendor actually used, which can differ from the requested id
// (provider-side aliasing).
type Result struct {
	Response string
	Model    string
	Provider string
	Status   string
}

// Provider is implemented once per vendor. Dispatch does not return an
// error; degraded outcomes (missing key, vendor failure) come back as an
// error-status Result with an explanatory response.
type Provider interface {
	Name() string
	Models() []string
	Status() Status
	Dispatch(ctx context.Context, prompt, model string) Result
}

// fileContentMarker is how an assembled analysis prompt is recognized;
// such prompts get the larger output ceiling.
const fileContentMarker = "File Content:"

const (
	defaultMaxTokens = 1000
	fileMaxTokens    = 2000
)

func maxTokensFor(prompt string) int {
	if strings.Contains(prompt, fileContentMarker) {
		return fileMaxTokens
	}
	return defaultMaxTokens
}
