package main

import (
	"context"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ramandeep-singh77/IntervueAi/config"
	"github.com/ramandeep-singh77/IntervueAi/internal/analysis/speech"
	"github.com/ramandeep-singh77/IntervueAi/internal/analysis/vision"
	"github.com/ramandeep-singh77/IntervueAi/internal/api/handlers"
	"github.com/ramandeep-singh77/IntervueAi/internal/api/middleware"
	"github.com/ramandeep-singh77/IntervueAi/internal/api/routes"
	"github.com/ramandeep-singh77/IntervueAi/internal/cache"
	"github.com/ramandeep-singh77/IntervueAi/internal/logger"
	"github.com/ramandeep-singh77/IntervueAi/internal/providers/emotion"
	"github.com/ramandeep-singh77/IntervueAi/internal/providers/llm"
	"github.com/ramandeep-singh77/IntervueAi/internal/providers/stt"
	"github.com/ramandeep-singh77/IntervueAi/internal/questions"
	mongorepo "github.com/ramandeep-singh77/IntervueAi/internal/repositories/mongo"
	pgrepo "github.com/ramandeep-singh77/IntervueAi/internal/repositories/postgres"
	"github.com/ramandeep-singh77/IntervueAi/internal/scoring"
	"github.com/ramandeep-singh77/IntervueAi/internal/services"
	"github.com/ramandeep-singh77/IntervueAi/internal/storage"
	"github.com/ramandeep-singh77/IntervueAi/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	ctx := context.Background()

	// Mongo is the system of record, required.
	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("mongodb init failed")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("mongodb index setup failed")
	}
	log.Info("mongodb connected")

	// Postgres powers analytics; the API works without it.
	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Warn("postgresql unavailable, answer analytics disabled")
	} else {
		log.Info("postgresql connected")
	}

	// Redis drives async analysis, caching, and websocket fan-out.
	if err := config.InitRedis(); err != nil {
		log.WithError(err).Warn("redis unavailable, running synchronous-only")
	} else {
		log.Info("redis connected")
	}

	// External providers, each optional.
	var sttProvider stt.Provider
	if os.Getenv("DISABLE_STT") != "true" {
		p, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			log.WithError(err).Warn("speech-to-text unavailable, transcripts disabled")
		} else {
			sttProvider = p
			defer p.Close()
		}
	}

	var llmProvider llm.Provider
	if project := os.Getenv("VERTEX_PROJECT_ID"); project != "" {
		p, err := llm.NewVertexGemini(ctx, project, os.Getenv("VERTEX_LOCATION"), os.Getenv("VERTEX_MODEL"))
		if err != nil {
			log.WithError(err).Warn("vertex llm unavailable, using question bank and heuristic feedback")
		} else {
			llmProvider = p
			defer p.Close()
		}
	}

	var emotionProvider emotion.Provider = emotion.Disabled{}
	if url := os.Getenv("EMOTION_SERVICE_URL"); url != "" {
		emotionProvider = emotion.NewHTTPClient(url)
	}

	var uploader storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		u, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.WithError(err).Warn("gcs unavailable, recording retention disabled")
		} else {
			uploader = u
			defer u.Close()
		}
	}

	var visionDetector vision.Detector
	det, err := vision.NewPigoDetector(
		envDefault("FACEFINDER_CASCADE", "cascade/facefinder"),
		envDefault("PUPLOC_CASCADE", "cascade/puploc"),
	)
	if err != nil {
		log.WithError(err).Warn("face cascades missing, using synthetic detector")
		visionDetector = vision.NewSynthetic(nil)
	} else {
		visionDetector = det
	}

	var c cache.Cache
	if config.RedisClient != nil {
		c = cache.NewRedisCache(config.RedisClient)
	}

	// Repositories and services.
	sessionRepo := mongorepo.NewSessionRepo(config.MongoDatabase())
	var answerRepo pgrepo.AnswerRepo
	if config.PostgresDB != nil {
		answerRepo = pgrepo.NewAnswerRepo(config.PostgresDB)
	}

	generator := questions.NewGenerator(llmProvider, logger.Component(log, "questions"))
	sessionSvc := services.NewSessionService(sessionRepo, generator)
	analysisSvc := services.NewAnalysisService(
		sessionRepo, answerRepo,
		speech.NewAnalyzer(), vision.NewAnalyzer(visionDetector),
		sttProvider, emotionProvider, uploader, c,
		logger.Component(log, "analysis"),
	)

	engine, err := scoring.NewEngine(scoring.DefaultWeights())
	if err != nil {
		log.WithError(err).Fatal("scoring weights invalid")
	}
	reportSvc := services.NewReportService(sessionSvc, engine, llmProvider, c, logger.Component(log, "report"))
	exportSvc := services.NewExportService(reportSvc)

	var analyticsHandler *handlers.AnalyticsHandler
	if answerRepo != nil {
		analyticsHandler = handlers.NewAnalyticsHandler(services.NewAnalyticsService(answerRepo))
	}

	// Async workers and websocket need redis.
	var pool *workers.AnalysisWorkerPool
	var wsHandler *handlers.WSHandler
	if config.RedisClient != nil {
		pool = &workers.AnalysisWorkerPool{
			Redis:    config.RedisClient,
			Analysis: analysisSvc,
			Logger:   log,
		}
		if err := pool.Start(ctx); err != nil {
			log.WithError(err).Fatal("worker pool start failed")
		}
		wsHandler = handlers.NewWSHandler(sessionSvc, config.RedisClient)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Interview: handlers.NewInterviewHandler(sessionSvc),
		Answer:    handlers.NewAnswerHandler(analysisSvc, pool),
		Report:    handlers.NewReportHandler(sessionSvc, reportSvc, exportSvc),
		Analytics: analyticsHandler,
		Meta:      handlers.MetaHandler{},
		WS:        wsHandler,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("server starting")
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func corsOrigins() []string {
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var out []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
		return out
	}
	return []string{"http://localhost:3000"}
}
