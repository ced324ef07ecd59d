package ai

import (
	"sync"
	"time"

	"github.com/sajjat43/ai-agent/internal/logger"
)

// historyCap bounds the in-memory request log; oldest entries are dropped
// silently once full.
const historyCap = 100

// RequestLog is one entry in the most-recent-first request history.
type RequestLog struct {
	Timestamp      time.Time `json:"timestamp"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	Status         string    `json:"status"`
	ResponseTimeMs int64     `json:"responseTime"`
	Error          string    `json:"error,omitempty"`
}

// Usage tracks process-lifetime call counters. It is the only mutable
// in-process shared state in the system, so all access goes through the
// mutex. Nothing here persists across restarts.
type Usage struct {
	mu            sync.Mutex
	totalRequests int64
	modelUsage    map[string]int64
	providerUsage map[string]int64
	errors        map[string]int64
	history       []RequestLog

	startedAt time.Time
	log       *logger.Logger
}

func NewUsage(log *logger.Logger) *Usage {
	return &Usage{
		modelUsage:    make(map[string]int64),
		providerUsage: make(map[string]int64),
		errors:        make(map[string]int64),
		startedAt:     time.Now(),
		log:           log.With("component", "usage"),
	}
}

// Record never fails and never blocks on I/O beyond the log write.
func (u *Usage) Record(provider, model, status string, elapsed time.Duration, err error) {
	entry := RequestLog{
		Timestamp:      time.Now().UTC(),
		Provider:       provider,
		Model:          model,
		Status:         status,
		ResponseTimeMs: elapsed.Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
	}

	u.mu.Lock()
	u.totalRequests++
	u.modelUsage[model]++
	u.providerUsage[provider]++
	if err != nil {
		u.errors[model]++
	}
	u.history = append([]RequestLog{entry}, u.history...)
	if len(u.history) > historyCap {
		u.history = u.history[:historyCap]
	}
	total := u.totalRequests
	u.mu.Unlock()

	if err != nil {
		u.log.Warn("model call",
			"provider", provider, "model", model, "status", status,
			"response_time_ms", entry.ResponseTimeMs, "total_requests", total,
			"error", err.Error())
		return
	}
	u.log.Info("model call",
		"provider", provider, "model", model, "status", status,
		"response_time_ms", entry.ResponseTimeMs, "total_requests", total)
}

// Snapshot is the wire shape served by /api/stats.
type Snapshot struct {
	TotalRequests  int64            `json:"totalRequests"`
	ModelUsage     map[string]int64 `json:"modelUsage"`
	ProviderUsage  map[string]int64 `json:"providerUsage"`
	Errors         map[string]int64 `json:"errors"`
	RequestHistory []RequestLog     `json:"requestHistory"`
}

func (u *Usage) Snapshot() Snapshot {
	u.mu.Lock()
	defer u.mu.Unlock()

	s := Snapshot{
		TotalRequests:  u.totalRequests,
		ModelUsage:     make(map[string]int64, len(u.modelUsage)),
		ProviderUsage:  make(map[string]int64, len(u.providerUsage)),
		Errors:         make(map[string]int64, len(u.errors)),
		RequestHistory: append([]RequestLog(nil), u.history...),
	}
	for k, v := range u.modelUsage {
		s.ModelUsage[k] = v
	}
	for k, v := range u.providerUsage {
		s.ProviderUsage[k] = v
	}
	for k, v := range u.errors {
		s.Errors[k] = v
	}
	return s
}

// Uptime reports seconds since the recorder was created, which matches
// process start for all practical purposes.
func (u *Usage) Uptime() float64 {
	return time.Since(u.startedAt).Seconds()
}
