package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sajjat43/ai-agent/internal/ai"
)

func (h *Handler) Health(c *gin.Context) {
	providers := h.Registry.Providers()

	providerStatus := make(map[string]ai.Status, len(providers))
	apiKeys := make(map[string]bool)
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
		providerStatus[p.Name] = p.Status
		if p.Status != ai.StatusPlaceholder {
			apiKeys[p.Name] = p.HasAPIKey
		}
	}

	dbStatus := "connected"
	if sqlDB, err := h.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "disconnected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"supportedProviders": names,
		"providerStatus":     providerStatus,
		"apiKeys":            apiKeys,
		"database":           dbStatus,
	})
}

func (h *Handler) GetModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers": h.Registry.Providers(),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	dbStats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics", "message": err.Error()})
		return
	}

	snap := h.Usage.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"totalRequests":  snap.TotalRequests,
		"modelUsage":     snap.ModelUsage,
		"providerUsage":  snap.ProviderUsage,
		"errors":         snap.Errors,
		"requestHistory": snap.RequestHistory,
		"database":       dbStats,
		"uptime":         h.Usage.Uptime(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}
