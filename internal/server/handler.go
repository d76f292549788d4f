package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"PortfolioArena/internal/agent"
	"PortfolioArena/internal/model"
	"PortfolioArena/internal/refresh"
	"PortfolioArena/internal/report"
	"PortfolioArena/internal/store"

	"github.com/gin-gonic/gin"
)

// Refresher runs a full price sync and snapshot rebuild.
type Refresher interface {
	SyncAndRecompute(ctx context.Context) (*refresh.Report, error)
}

// Handler serves the JSON API.
type Handler struct {
	agents  *agent.Service
	reports *report.Service
	refresh Refresher
}

// NewHandler creates a Handler over the agent and report services.
func NewHandler(agents *agent.Service, reports *report.Service, r Refresher) *Handler {
	return &Handler{agents: agents, reports: reports, refresh: r}
}

// RegisterRoutes binds the handler to router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	{
		api.GET("/agents", h.ListAgents)
		api.POST("/agents", h.CreateAgent)
		api.GET("/agents/:id", h.GetAgent)
		api.GET("/portfolio/:agentId/performance", h.GetPerformance)
		api.GET("/portfolio/:agentId/holdings", h.GetHoldings)
		api.POST("/prices/sync", h.SyncPrices)
		api.GET("/prices/sync", h.SyncPrices)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListAgents returns the leaderboard, seeding the default agents on first use.
func (h *Handler) ListAgents(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.agents.SeedDefaults(ctx); err != nil {
		log.Printf("[ERROR] seed: %v", err)
	}
	board, err := h.reports.Leaderboard(ctx)
	if err != nil {
		log.Printf("[ERROR] leaderboard: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load agents"})
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *Handler) CreateAgent(c *gin.Context) {
	var req agent.NewAgent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	a, err := h.agents.Create(c.Request.Context(), req)
	switch {
	case errors.Is(err, agent.ErrInvalidAgent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
	case errors.Is(err, agent.ErrAllocationSum):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Allocations must sum to 100%"})
	case errors.Is(err, agent.ErrDuplicateAgent):
		c.JSON(http.StatusConflict, gin.H{"error": "Agent already exists"})
	case err != nil:
		log.Printf("[ERROR] create agent %s: %v", req.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create agent"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "id": a.ID})
	}
}

func (h *Handler) GetAgent(c *gin.Context) {
	d, err := h.reports.AgentDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "agent detail", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) GetPerformance(c *gin.Context) {
	tf := model.ParseTimeframe(c.DefaultQuery("timeframe", string(model.TimeframeAll)))
	perf, err := h.reports.Performance(c.Request.Context(), c.Param("agentId"), tf)
	if err != nil {
		h.fail(c, "performance", err)
		return
	}
	c.JSON(http.StatusOK, perf)
}

func (h *Handler) GetHoldings(c *gin.Context) {
	hs, err := h.reports.Holdings(c.Request.Context(), c.Param("agentId"))
	if err != nil {
		h.fail(c, "holdings", err)
		return
	}
	c.JSON(http.StatusOK, hs)
}

// SyncPrices seeds the default agents if needed, then refreshes everything.
func (h *Handler) SyncPrices(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.agents.SeedDefaults(ctx); err != nil {
		log.Printf("[ERROR] seed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync prices"})
		return
	}
	rep, err := h.refresh.SyncAndRecompute(ctx)
	if err != nil {
		log.Printf("[ERROR] sync: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync prices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": rep})
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		return
	}
	log.Printf("[ERROR] %s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}
