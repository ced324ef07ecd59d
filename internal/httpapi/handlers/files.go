package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajjat43/ai-agent/internal/chat"
	"github.com/sajjat43/ai-agent/internal/fileio"
)

func (h *Handler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	sessionID := c.PostForm("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
		return
	}
	if fileHeader.Size > fileio.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large (max 10 MB)"})
		return
	}

	mimetype := fileHeader.Header.Get("Content-Type")
	if !fileio.AllowedType(mimetype) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type: " + mimetype})
		return
	}

	storedName := uuid.NewString() + filepath.Ext(fileHeader.Filename)
	tmpPath := filepath.Join(h.UploadDir, storedName)
	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded file", "message": err.Error()})
		return
	}
	// Content lives in the database; the temp file goes away either way.
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			h.Log.Warn("failed to clean up temp upload", "path", tmpPath, "error", err)
		}
	}()

	content, err := fileio.ReadContent(tmpPath, mimetype)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process file content", "message": err.Error()})
		return
	}

	rec := &chat.UploadedFile{
		SessionID:    sessionID,
		OriginalName: fileHeader.Filename,
		Filename:     storedName,
		Mimetype:     mimetype,
		Size:         fileHeader.Size,
		Content:      content,
	}
	if err := h.Svc.SaveUpload(c.Request.Context(), rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file", "message": err.Error()})
		return
	}

	h.Log.Info("file uploaded",
		"file_id", rec.ID, "name", rec.OriginalName, "session_id", sessionID, "size", rec.Size)

	c.JSON(http.StatusOK, gin.H{
		"message":      "File uploaded successfully",
		"fileId":       rec.ID,
		"originalName": rec.OriginalName,
		"size":         rec.Size,
		"mimetype":     rec.Mimetype,
		"sessionId":    sessionID,
		"uploadedAt":   rec.UploadedAt,
	})
}

func (h *Handler) GetFiles(c *gin.Context) {
	sessionID := c.Param("sessionId")

	files, err := h.Svc.Files(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch files", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"files":     files,
	})
}

type analyzeReq struct {
	FileID   string `json:"fileId"`
	Prompt   string `json:"prompt"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
}

func (h *Handler) AnalyzeFile(c *gin.Context) {
	var req analyzeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if req.FileID == "" || req.Prompt == "" || req.Model == "" || req.Provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File ID, prompt, model, and provider are required"})
		return
	}
	if _, ok := h.Registry.Get(req.Provider); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported provider: " + req.Provider})
		return
	}

	meta := chat.ClientMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}

	out, err := h.Svc.AnalyzeFile(c.Request.Context(), req.FileID, req.Prompt, req.Model, req.Provider, meta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze file", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":    out.Result.Response,
		"model":       out.Result.Model,
		"provider":    out.Result.Provider,
		"status":      out.Result.Status,
		"fileId":      out.FileID,
		"fileName":    out.FileName,
		"analysisId":  out.AnalysisID,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"contextUsed": out.Context,
	})
}

func (h *Handler) GetFileAnalysis(c *gin.Context) {
	fileID := c.Param("fileId")

	file, err := h.Svc.File(c.Request.Context(), fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch file analysis", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fileId":     file.ID,
		"fileName":   file.OriginalName,
		"uploadedAt": file.UploadedAt,
		"analyses":   file.Analyses.Data(),
	})
}

func (h *Handler) DeleteFile(c *gin.Context) {
	fileID := c.Param("fileId")

	file, err := h.Svc.DeleteFile(c.Request.Context(), fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "File deleted successfully",
		"fileName": file.OriginalName,
		"fileId":   fileID,
	})
}
