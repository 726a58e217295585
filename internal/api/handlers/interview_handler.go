package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ramandeep-singh77/IntervueAi/internal/models"
	"github.com/ramandeep-singh77/IntervueAi/internal/questions"
	"github.com/ramandeep-singh77/IntervueAi/internal/services"
	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
)

type InterviewHandler struct {
	svc services.SessionService
}

func NewInterviewHandler(svc services.SessionService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

type StartInterviewRequest struct {
	Role            string `json:"role" binding:"required"`
	ExperienceLevel string `json:"experience_level" binding:"required"`
	NumQuestions    int    `json:"num_questions"`
}

type StartInterviewResponse struct {
	SessionID       string            `json:"session_id"`
	Role            string            `json:"role"`
	ExperienceLevel string            `json:"experience_level"`
	Status          string            `json:"status"`
	Questions       []models.Question `json:"questions"`
	CreatedAt       string            `json:"created_at"`
	ExpiresAt       string            `json:"expires_at"`
}

func (h *InterviewHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req StartInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Start", "invalid request body", err))
		return
	}

	sess, err := h.svc.Start(c.Request.Context(), userID, req.Role, req.ExperienceLevel, req.NumQuestions)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StartInterviewResponse{
		SessionID:       sess.SessionID,
		Role:            sess.Role,
		ExperienceLevel: sess.ExperienceLevel,
		Status:          sess.Status,
		Questions:       sess.Questions,
		CreatedAt:       sess.CreatedAt.Format(time.RFC3339),
		ExpiresAt:       sess.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *InterviewHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.authorized(c, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *InterviewHandler) End(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if _, err := h.authorized(c, userID); err != nil {
		writeError(c, err)
		return
	}

	ended, err := h.svc.End(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ended)
}

func (h *InterviewHandler) Progress(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if _, err := h.authorized(c, userID); err != nil {
		writeError(c, err)
		return
	}

	answered, total, err := h.svc.Progress(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	pct := 0.0
	if total > 0 {
		pct = float64(answered) / float64(total) * 100
	}
	c.JSON(http.StatusOK, gin.H{
		"answered":   answered,
		"total":      total,
		"percentage": pct,
	})
}

func (h *InterviewHandler) authorized(c *gin.Context, userID string) (*models.InterviewSession, error) {
	sess, err := h.svc.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, "InterviewHandler", "forbidden", nil)
	}
	return sess, nil
}

// MetaHandler serves the role and level catalogs the frontend offers.
type MetaHandler struct{}

func (MetaHandler) Roles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"roles": questions.Roles()})
}

func (MetaHandler) ExperienceLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"experience_levels": questions.Levels()})
}
