package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/khinsider-go/internal/domain"
)

const (
	defaultSessionLimit = 20
	maxSessionLimit     = 500
)

// SessionHandler serves the recorded download sessions
type SessionHandler struct {
	repo   domain.SessionRepository
	logger *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(repo domain.SessionRepository, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		repo:   repo,
		logger: logger,
	}
}

// SessionDetail is a session together with its completed items
type SessionDetail struct {
	*domain.Session
	Items []*domain.SessionItem `json:"items"`
}

// ListSessions handles GET /api/v1/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSessionLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	if limit > maxSessionLimit {
		limit = maxSessionLimit
	}

	sessions, err := h.repo.FindAll(limit)
	if err != nil {
		h.logger.Error("Failed to list sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}

	c.JSON(http.StatusOK, sessions)
}

// GetStats handles GET /api/v1/sessions/stats
func (h *SessionHandler) GetStats(c *gin.Context) {
	stats, err := h.repo.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetSession handles GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := c.Param("id")

	session, err := h.repo.FindByID(id)
	if err != nil {
		h.logger.Error("Failed to get session", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	items, err := h.repo.FindItems(id)
	if err != nil {
		h.logger.Error("Failed to get session items", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []*domain.SessionItem{}
	}

	c.JSON(http.StatusOK, SessionDetail{Session: session, Items: items})
}
