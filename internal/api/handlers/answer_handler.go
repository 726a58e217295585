package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ramandeep-singh77/IntervueAi/internal/services"
	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
	"github.com/ramandeep-singh77/IntervueAi/internal/workers"
)

const maxUploadBytes = 25 << 20

// AnswerHandler accepts answer recordings. With ?async=1 and a configured
// worker pool the payload is queued and analyzed off the request path;
// otherwise analysis runs inline and the metrics come back in the response.
type AnswerHandler struct {
	analysis services.AnalysisService
	pool     *workers.AnalysisWorkerPool // nil disables async mode
}

func NewAnswerHandler(analysis services.AnalysisService, pool *workers.AnalysisWorkerPool) *AnswerHandler {
	return &AnswerHandler{analysis: analysis, pool: pool}
}

func (h *AnswerHandler) UploadAudio(c *gin.Context) {
	h.upload(c, "audio")
}

func (h *AnswerHandler) UploadVideo(c *gin.Context) {
	h.upload(c, "video")
}

func (h *AnswerHandler) upload(c *gin.Context, kind string) {
	const op = "AnswerHandler.Upload"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	questionIndex, err := strconv.Atoi(c.Query("question_index"))
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "question_index query parameter is required", err))
		return
	}

	payload, err := readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.pool != nil && c.Query("async") == "1" {
		if err := h.pool.Enqueue(c.Request.Context(), sessionID, userID, questionIndex, kind, c.Query("language"), payload); err != nil {
			writeError(c, utils.E(utils.CodeUnavailable, op, "failed to queue analysis", err))
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"status":         "queued",
			"session_id":     sessionID,
			"question_index": questionIndex,
			"kind":           kind,
		})
		return
	}

	if kind == "audio" {
		answer, err := h.analysis.AnalyzeAudio(c.Request.Context(), sessionID, userID, questionIndex, payload, c.Query("language"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, answer)
		return
	}

	visual, err := h.analysis.AnalyzeVideo(c.Request.Context(), sessionID, userID, questionIndex, payload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, visual)
}

// readUpload takes the recording from a multipart "file" field when
// present, or the raw request body otherwise.
func readUpload(c *gin.Context) ([]byte, error) {
	const op = "AnswerHandler.readUpload"

	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size <= 0 || fh.Size > maxUploadBytes {
			return nil, utils.E(utils.CodeInvalidArgument, op, "file too large (max 25MB)", nil)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to open upload", err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to read upload", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read body", err)
	}
	if len(data) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "empty upload", nil)
	}
	return data, nil
}
