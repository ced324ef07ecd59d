package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sajjat43/ai-agent/internal/chat"
	"github.com/sajjat43/ai-agent/internal/common"
)

type chatReq struct {
	Message   string `json:"message"`
	Model     string `json:"model"`
	Provider  string `json:"provider"`
	SessionID string `json:"sessionId"`
}

// Chat always answers 200 with the dispatch status in the body, including
// for provider-side failures. Clients rely on this contract; only
// validation problems surface as HTTP errors.
func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}
	if req.Model == "" || req.Provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Model and provider are required"})
		return
	}
	if _, ok := h.Registry.Get(req.Provider); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported provider: " + req.Provider})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sid, err := common.NewSessionID()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}
		sessionID = sid
	}

	meta := chat.ClientMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}

	out, err := h.Svc.SendMessage(c.Request.Context(), sessionID, req.Message, req.Model, req.Provider, meta)
	if err != nil {
		h.Log.Error("chat dispatch failed", "provider", req.Provider, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "sessionId": sessionID})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":    out.Result.Response,
		"model":       out.Result.Model,
		"provider":    out.Result.Provider,
		"status":      out.Result.Status,
		"sessionId":   out.SessionID,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"contextUsed": out.Context,
	})
}

func pageParams(c *gin.Context, defaultLimit int) (limit, page int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	page = 1
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	return limit, page
}

func pagination(page, limit int, total int64) gin.H {
	return gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"pages": int64(math.Ceil(float64(total) / float64(limit))),
	}
}

func (h *Handler) GetHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")
	limit, page := pageParams(c, 50)

	turns, total, err := h.Svc.History(c.Request.Context(), sessionID, limit, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat history", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId":  sessionID,
		"chats":      turns,
		"pagination": pagination(page, limit, total),
	})
}

func (h *Handler) GetSessions(c *gin.Context) {
	limit, page := pageParams(c, 20)

	sessions, total, err := h.Svc.Sessions(c.Request.Context(), limit, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions":   sessions,
		"pagination": pagination(page, limit, total),
	})
}

func (h *Handler) DeleteHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")

	deleted, err := h.Svc.DeleteHistory(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete chat history", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Chat history deleted successfully",
		"deletedCount": deleted,
		"sessionId":    sessionID,
	})
}
