package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ramandeep-singh77/IntervueAi/internal/api/handlers"
	"github.com/ramandeep-singh77/IntervueAi/internal/api/middleware"
)

type Deps struct {
	Interview *handlers.InterviewHandler
	Answer    *handlers.AnswerHandler
	Report    *handlers.ReportHandler
	Analytics *handlers.AnalyticsHandler // nil when postgres is not configured
	Meta      handlers.MetaHandler
	WS        *handlers.WSHandler // nil when redis is not configured
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Public catalogs
	r.GET("/api/roles", d.Meta.Roles)
	r.GET("/api/experience-levels", d.Meta.ExperienceLevels)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/api/interview/start", d.Interview.Start)
	auth.GET("/api/interview/:session_id", d.Interview.Get)
	auth.GET("/api/interview/:session_id/progress", d.Interview.Progress)
	auth.POST("/api/interview/:session_id/end", d.Interview.End)

	auth.POST("/api/interview/:session_id/answer/audio", d.Answer.UploadAudio)
	auth.POST("/api/interview/:session_id/answer/video", d.Answer.UploadVideo)

	auth.GET("/api/interview/:session_id/feedback", d.Report.Feedback)
	auth.GET("/api/interview/:session_id/export", d.Report.Export)

	if d.Analytics != nil {
		auth.GET("/api/answers/recent", d.Analytics.Recent)
		auth.GET("/api/answers/:answer_id/similar", d.Analytics.Similar)
	}

	// WebSocket
	if d.WS != nil {
		auth.GET("/ws/interview/:session_id", d.WS.InterviewWS)
	}
}
