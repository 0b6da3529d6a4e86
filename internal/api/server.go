// Package api serves the matching engine over HTTP.
package api

import (
	"context"
	"time"

	"matching-workers/internal/common/database"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/common/observability"
	"matching-workers/internal/common/validation"
	"matching-workers/internal/matching"
	"matching-workers/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CandidateSource loads a pool for requests that send a job id but no
// candidates.
type CandidateSource interface {
	Candidates(ctx context.Context, job models.JobRequest) ([]models.WorkerProfile, error)
}

type Config struct {
	RequestTimeout time.Duration
	CORSOrigins    []string
	Defaults       matching.Options
}

type Server struct {
	config     Config
	engine     *matching.Engine
	candidates CandidateSource
	validator  *validation.Validator
	pingers    map[string]database.Pinger
	obs        *observability.Observability
	logger     logger.Logger
}

// NewServer builds the HTTP surface. candidates, validator and obs may be
// nil. pingers are probed by /ready under their map key. Request bodies are
// checked against the registry schema of the matching job worker they mirror.
func NewServer(cfg Config, engine *matching.Engine, candidates CandidateSource, validator *validation.Validator, pingers map[string]database.Pinger, obs *observability.Observability, log logger.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if cfg.Defaults.MaxResults <= 0 {
		cfg.Defaults = matching.DefaultOptions()
	}
	return &Server{
		config:     cfg,
		engine:     engine,
		candidates: candidates,
		validator:  validator,
		pingers:    pingers,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(s.logger))

	if len(s.config.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  s.config.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
			ExposeHeaders: []string{"Content-Length", requestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.GET("/health", s.health)
	router.GET("/ready", s.ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.Use(requestTimeout(s.config.RequestTimeout))
	{
		v1.POST("/match", s.match)
		v1.POST("/score", s.score)
		v1.GET("/tables", s.tables)
	}

	return router
}
