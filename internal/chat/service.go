package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sajjat43/ai-agent/internal/ai"
	"github.com/sajjat43/ai-agent/internal/logger"
)

// Pagination defaults for the read endpoints.
const (
	defaultHistoryLimit  = 50
	defaultSessionsLimit = 20
	maxPageLimit         = 100
)

// ClientMeta carries request metadata persisted alongside each turn.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

type Service struct {
	repo      *Repo
	registry  *ai.Registry
	assembler *Assembler
	log       *logger.Logger
}

func NewService(repo *Repo, registry *ai.Registry, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		registry:  registry,
		assembler: NewAssembler(repo, log),
		log:       log.With("component", "chat"),
	}
}

type ChatOutcome struct {
	Result         ai.Result
	SessionID      string
	ResponseTimeMs int64
	Context        ContextUsage
}

// SendMessage assembles context, dispatches to the named provider and
// appends the exchange to history. The turn is written for every outcome
// (success, error, placeholder); a persistence failure is logged and does
// not fail the request, so the client still gets its reply.
func (s *Service) SendMessage(ctx context.Context, sessionID, message, model, provider string, meta ClientMeta) (*ChatOutcome, error) {
	// ResponseTime is total elapsed from request start, so the context
	// reads count toward it, not just the vendor call.
	start := time.Now()

	if !s.registry.Supports(provider, model) {
		s.log.Warn("model not in supported list, attempting anyway",
			"provider", provider, "model", model)
	}

	prompt, ctxUsage := s.assembler.BuildChatPrompt(ctx, sessionID, message)

	res, err := s.registry.Dispatch(ctx, provider, prompt, model)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start).Milliseconds()

	s.persistTurn(ctx, &Turn{
		SessionID:    sessionID,
		UserMessage:  message,
		AIResponse:   res.Response,
		Model:        res.Model,
		Provider:     res.Provider,
		ResponseTime: elapsed,
		Status:       res.Status,
		UserAgent:    meta.UserAgent,
		IPAddress:    meta.IPAddress,
	})

	return &ChatOutcome{
		Result:         res,
		SessionID:      sessionID,
		ResponseTimeMs: elapsed,
		Context:        ctxUsage,
	}, nil
}

type AnalysisOutcome struct {
	Result         ai.Result
	FileID         string
	FileName       string
	AnalysisID     string
	ResponseTimeMs int64
	Context        AnalysisContextUsage
}

// AnalyzeFile runs a prompt against a stored file. The analysis record
// and the history turn are two independent best-effort writes; there is
// no cross-entity invariant requiring both or neither.
// gorm.ErrRecordNotFound comes back untouched when the file id is
// unknown, in which case no turn is written.
func (s *Service) AnalyzeFile(ctx context.Context, fileID, prompt, model, provider string, meta ClientMeta) (*AnalysisOutcome, error) {
	start := time.Now()

	file, err := s.repo.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if !s.registry.Supports(provider, model) {
		s.log.Warn("model not in supported list, attempting anyway",
			"provider", provider, "model", model)
	}

	assembled, ctxUsage := s.assembler.BuildAnalysisPrompt(ctx, file, prompt)

	res, err := s.registry.Dispatch(ctx, provider, assembled, model)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start).Milliseconds()

	rec := AnalysisRecord{
		ID:        uuid.NewString(),
		Prompt:    prompt,
		Response:  res.Response,
		Model:     res.Model,
		Provider:  res.Provider,
		Timestamp: time.Now().UTC(),
	}
	// Persist with a detached context: a client disconnect after the
	// vendor call completed should not drop the records.
	persistCtx := context.WithoutCancel(ctx)
	if err := s.repo.AppendAnalysis(persistCtx, fileID, rec); err != nil {
		s.log.Error("failed to append analysis record",
			"file_id", fileID, "error", err)
	}

	s.persistTurn(ctx, &Turn{
		SessionID:    file.SessionID,
		UserMessage:  fmt.Sprintf("📄 Analyze %q: %s", file.OriginalName, prompt),
		AIResponse:   res.Response,
		Model:        res.Model,
		Provider:     res.Provider,
		ResponseTime: elapsed,
		Status:       res.Status,
		UserAgent:    meta.UserAgent,
		IPAddress:    meta.IPAddress,
	})

	return &AnalysisOutcome{
		Result:         res,
		FileID:         fileID,
		FileName:       file.OriginalName,
		AnalysisID:     rec.ID,
		ResponseTimeMs: elapsed,
		Context:        ctxUsage,
	}, nil
}

func (s *Service) persistTurn(ctx context.Context, t *Turn) {
	if err := s.repo.InsertTurn(context.WithoutCancel(ctx), t); err != nil {
		s.log.Error("failed to save chat turn",
			"session_id", t.SessionID, "model", t.Model, "error", err)
	}
}

func (s *Service) History(ctx context.Context, sessionID string, limit, page int) ([]Turn, int64, error) {
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultHistoryLimit
	}
	if page <= 0 {
		page = 1
	}
	return s.repo.ListTurns(ctx, sessionID, limit, page)
}

func (s *Service) Sessions(ctx context.Context, limit, page int) ([]SessionSummary, int64, error) {
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultSessionsLimit
	}
	if page <= 0 {
		page = 1
	}
	return s.repo.ListSessions(ctx, limit, page)
}

func (s *Service) DeleteHistory(ctx context.Context, sessionID string) (int64, error) {
	return s.repo.DeleteTurnsBySession(ctx, sessionID)
}

// SaveUpload persists an extracted upload. Content must already be
// populated (placeholder string included) before this is called.
func (s *Service) SaveUpload(ctx context.Context, f *UploadedFile) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	return s.repo.InsertFile(ctx, f)
}

func (s *Service) Files(ctx context.Context, sessionID string) ([]UploadedFile, error) {
	return s.repo.ListFilesBySession(ctx, sessionID)
}

func (s *Service) File(ctx context.Context, fileID string) (*UploadedFile, error) {
	return s.repo.GetFileByID(ctx, fileID)
}

func (s *Service) DeleteFile(ctx context.Context, fileID string) (*UploadedFile, error) {
	return s.repo.DeleteFile(ctx, fileID)
}

func (s *Service) Stats(ctx context.Context) (*DBStats, error) {
	return s.repo.Stats(ctx)
}
