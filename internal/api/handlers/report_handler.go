package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ramandeep-singh77/IntervueAi/internal/services"
	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
)

type ReportHandler struct {
	sessions services.SessionService
	reports  services.ReportService
	exports  services.ExportService
}

func NewReportHandler(sessions services.SessionService, reports services.ReportService, exports services.ExportService) *ReportHandler {
	return &ReportHandler{sessions: sessions, reports: reports, exports: exports}
}

func (h *ReportHandler) Feedback(c *gin.Context) {
	sessionID, ok := h.authorize(c)
	if !ok {
		return
	}

	report, err := h.reports.Generate(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) Export(c *gin.Context) {
	sessionID, ok := h.authorize(c)
	if !ok {
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		out, err := h.exports.ExportJSON(c.Request.Context(), sessionID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="interview_report_`+sessionID+`.json"`)
		c.Data(http.StatusOK, "application/json", out)

	case "csv":
		out, err := h.exports.ExportCSV(c.Request.Context(), sessionID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="interview_report_`+sessionID+`.csv"`)
		c.Data(http.StatusOK, "text/csv", out)

	default:
		writeError(c, utils.E(utils.CodeInvalidArgument, "ReportHandler.Export", "format must be json or csv", nil))
	}
}

func (h *ReportHandler) authorize(c *gin.Context) (string, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return "", false
	}

	sessionID := c.Param("session_id")
	sess, err := h.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return "", false
	}
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "ReportHandler", "forbidden", nil))
		return "", false
	}
	return sessionID, true
}
