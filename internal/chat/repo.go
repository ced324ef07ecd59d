package chat

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) InsertTurn(ctx context.Context, t *Turn) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// ListTurns returns one page of a session's turns in chronological order
// plus the session's total turn count.
func (r *Repo) ListTurns(ctx context.Context, sessionID string, limit, page int) ([]Turn, int64, error) {
	var turns []Turn
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&turns).Error; err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&Turn{}).
		Where("session_id = ?", sessionID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return turns, total, nil
}

// ListRecentTurnsDesc returns the most recent turns, newest first.
func (r *Repo) ListRecentTurnsDesc(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	var turns []Turn
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC").
		Limit(limit).
		Find(&turns).Error; err != nil {
		return nil, err
	}
	return turns, nil
}

func (r *Repo) DeleteTurnsBySession(ctx context.Context, sessionID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&Turn{})
	return res.RowsAffected, res.Error
}

// SessionSummary is the query-time aggregation over chat_turns; no
// session entity is persisted.
type SessionSummary struct {
	SessionID    string    `json:"_id"`
	LastMessage  time.Time `json:"lastMessage"`
	MessageCount int64     `json:"messageCount"`
	Models       []string  `json:"models"`
	Providers    []string  `json:"providers"`
}

type sessionRow struct {
	SessionID    string
	LastMessage  time.Time
	MessageCount int64
	Models       string
	Providers    string
}

// ListSessions aggregates per-session summaries across all sessions,
// most recently active first. GROUP_CONCAT is understood by both mysql
// and sqlite, the two supported drivers.
func (r *Repo) ListSessions(ctx context.Context, limit, page int) ([]SessionSummary, int64, error) {
	var rows []sessionRow
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Model(&Turn{}).
		Select("session_id AS session_id, " +
			"MAX(created_at) AS last_message, " +
			"COUNT(*) AS message_count, " +
			"GROUP_CONCAT(DISTINCT model) AS models, " +
			"GROUP_CONCAT(DISTINCT provider) AS providers").
		Group("session_id").
		Order("last_message DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&Turn{}).
		Distinct("session_id").
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	out := make([]SessionSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, SessionSummary{
			SessionID:    row.SessionID,
			LastMessage:  row.LastMessage,
			MessageCount: row.MessageCount,
			Models:       splitConcat(row.Models),
			Providers:    splitConcat(row.Providers),
		})
	}
	return out, total, nil
}

func splitConcat(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func (r *Repo) InsertFile(ctx context.Context, f *UploadedFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *Repo) GetFileByID(ctx context.Context, id string) (*UploadedFile, error) {
	var f UploadedFile
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFilesBySession returns a session's files newest first, without the
// extracted content (listing responses carry previews only via analyses).
func (r *Repo) ListFilesBySession(ctx context.Context, sessionID string) ([]UploadedFile, error) {
	var files []UploadedFile
	if err := r.db.WithContext(ctx).
		Omit("content").
		Where("session_id = ?", sessionID).
		Order("uploaded_at DESC, id DESC").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// ListRecentFilesDesc returns the most recently uploaded files including
// content, for context assembly.
func (r *Repo) ListRecentFilesDesc(ctx context.Context, sessionID string, limit int) ([]UploadedFile, error) {
	var files []UploadedFile
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("uploaded_at DESC, id DESC").
		Limit(limit).
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// ListOtherFilesDesc returns a session's files excluding one id, for the
// other-files block of an analysis prompt.
func (r *Repo) ListOtherFilesDesc(ctx context.Context, sessionID, excludeID string, limit int) ([]UploadedFile, error) {
	var files []UploadedFile
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND id <> ?", sessionID, excludeID).
		Order("uploaded_at DESC, id DESC").
		Limit(limit).
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// AppendAnalysis appends one record to a file's embedded analysis list.
// Plain read-modify-write: concurrent appends may interleave, which is
// tolerated since records are additive and order is cosmetic.
func (r *Repo) AppendAnalysis(ctx context.Context, fileID string, rec AnalysisRecord) error {
	f, err := r.GetFileByID(ctx, fileID)
	if err != nil {
		return err
	}
	analyses := append(f.Analyses.Data(), rec)
	return r.db.WithContext(ctx).
		Model(&UploadedFile{}).
		Where("id = ?", fileID).
		Update("analyses", datatypes.NewJSONType(analyses)).Error
}

// DeleteFile removes a file record and returns it so callers can report
// the deleted name. gorm.ErrRecordNotFound when the id is unknown.
func (r *Repo) DeleteFile(ctx context.Context, id string) (*UploadedFile, error) {
	var f UploadedFile
	if err := r.db.WithContext(ctx).Omit("content").First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&UploadedFile{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// ModelStat / ProviderStat feed the database section of /api/stats.
type ModelStat struct {
	Model           string  `gorm:"column:model" json:"_id"`
	Count           int64   `json:"count"`
	AvgResponseTime float64 `json:"avgResponseTime"`
}

type ProviderStat struct {
	Provider        string  `gorm:"column:provider" json:"_id"`
	Count           int64   `json:"count"`
	AvgResponseTime float64 `json:"avgResponseTime"`
}

type DBStats struct {
	TotalChats    int64          `json:"totalChats"`
	ModelStats    []ModelStat    `json:"modelStats"`
	ProviderStats []ProviderStat `json:"providerStats"`
	RecentChats   []Turn         `json:"recentChats"`
}

func (r *Repo) Stats(ctx context.Context) (*DBStats, error) {
	stats := &DBStats{}

	if err := r.db.WithContext(ctx).Model(&Turn{}).Count(&stats.TotalChats).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&Turn{}).
		Select("model, COUNT(*) AS count, AVG(response_time) AS avg_response_time").
		Group("model").
		Order("count DESC").
		Scan(&stats.ModelStats).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&Turn{}).
		Select("provider, COUNT(*) AS count, AVG(response_time) AS avg_response_time").
		Group("provider").
		Order("count DESC").
		Scan(&stats.ProviderStats).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Select("id", "session_id", "model", "provider", "status", "response_time", "created_at").
		Order("id DESC").
		Limit(10).
		Find(&stats.RecentChats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
