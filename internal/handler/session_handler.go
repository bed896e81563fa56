package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/interaction-dashboard-api/internal/middleware"
	"github.com/noah-isme/interaction-dashboard-api/internal/models"
	"github.com/noah-isme/interaction-dashboard-api/pkg/response"
)

type sessionIssuer interface {
	NewSession() models.Session
}

// SessionHandler issues dashboard sessions.
type SessionHandler struct {
	sessions sessionIssuer
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(sessions sessionIssuer) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create godoc
// @Summary Start a dashboard session
// @Description Called once per dashboard load. The returned ID partitions the interaction cache.
// @Tags Sessions
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	session := h.sessions.NewSession()
	c.Header(middleware.SessionHeader, session.ID)
	response.Created(c, session)
}
