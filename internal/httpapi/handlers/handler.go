package handlers

import (
	"gorm.io/gorm"

	"github.com/sajjat43/ai-agent/internal/ai"
	"github.com/sajjat43/ai-agent/internal/chat"
	"github.com/sajjat43/ai-agent/internal/logger"
)

type Handler struct {
	DB        *gorm.DB
	Registry  *ai.Registry
	Usage     *ai.Usage
	Svc       *chat.Service
	UploadDir string
	Log       *logger.Logger
}

func New(db *gorm.DB, registry *ai.Registry, usage *ai.Usage, uploadDir string, log *logger.Logger) *Handler {
	repo := chat.NewRepo(db)
	svc := chat.NewService(repo, registry, log)
	return &Handler{
		DB:        db,
		Registry:  registry,
		Usage:     usage,
		Svc:       svc,
		UploadDir: uploadDir,
		Log:       log.With("component", "handlers"),
	}
}
