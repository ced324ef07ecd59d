package chat

import (
	"time"

	"gorm.io/datatypes"
)

// Turn is one user/assistant exchange. Rows are append-only: a turn is
// written after every dispatch attempt, including failures, and is never
// updated afterwards.
type Turn struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID    string    `gorm:"type:varchar(64);index;not null" json:"sessionId"`
	UserMessage  string    `gorm:"type:text;not null" json:"userMessage"`
	AIResponse   string    `gorm:"type:text;not null" json:"aiResponse"`
	Model        string    `gorm:"type:varchar(64);not null" json:"model"`
	Provider     string    `gorm:"type:varchar(32);not null" json:"provider"`
	ResponseTime int64     `gorm:"not null" json:"responseTime"`
	Status       string    `gorm:"type:varchar(16);not null" json:"status"`
	UserAgent    string    `gorm:"type:varchar(512)" json:"-"`
	IPAddress    string    `gorm:"type:varchar(64)" json:"-"`
	CreatedAt    time.Time `gorm:"index" json:"timestamp"`
}

func (Turn) TableName() string { return "chat_turns" }

// AnalysisRecord is one prompt/response pair run against a stored file.
// Records live inside the owning file's JSON column, appended in time
// order and immutable once written.
type AnalysisRecord struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Model     string    `json:"model"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
}

// UploadedFile is a session-scoped document. Content is NOT NULL by
// contract: extraction either succeeds, substitutes a placeholder string,
// or the upload is rejected before any row is written.
type UploadedFile struct {
	ID           string                               `gorm:"type:char(36);primaryKey" json:"id"`
	SessionID    string                               `gorm:"type:varchar(64);index;not null" json:"sessionId"`
	OriginalName string                               `gorm:"type:varchar(255);not null" json:"originalName"`
	Filename     string                               `gorm:"type:varchar(255);not null" json:"filename"`
	Mimetype     string                               `gorm:"type:varchar(128);not null" json:"mimetype"`
	Size         int64                                `gorm:"not null" json:"size"`
	Content      string                               `gorm:"type:text;not null" json:"-"`
	Analyses     datatypes.JSONType[[]AnalysisRecord] `json:"analysisPrompts"`
	UploadedAt   time.Time                            `gorm:"index" json:"uploadedAt"`
}

func (UploadedFile) TableName() string { return "uploaded_files" }
