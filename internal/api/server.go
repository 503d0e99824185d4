// Package api exposes the tutor over HTTP with Hertz.
package api

import (
	"context"

	"feynman_tutor/internal/services"
	"feynman_tutor/src/memory"
	"feynman_tutor/src/model"

	"github.com/cloudwego/hertz/pkg/app/server"
)

// Pinger is a dependency checked by /healthz
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Concepts       *services.ConceptService
	Learning       *services.LearningService
	Importer       *services.Importer
	Memory         *memory.Service
	Health         map[string]Pinger
	MaxUploadBytes int64
}

type Handler struct {
	Deps
}

func NewHandler(deps Deps) *Handler {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 16 << 20
	}
	return &Handler{Deps: deps}
}

// NewServer builds the Hertz server with all routes registered
func NewServer(cfg model.ServerConfig, handler *Handler) *server.Hertz {
	h := server.Default(
		server.WithHostPorts(cfg.Addr),
		// multipart overhead on top of the largest accepted upload
		server.WithMaxRequestBodySize(cfg.MaxUploadBytes+1<<20),
		server.WithExitWaitTime(cfg.ExitWait),
	)
	handler.Register(h)
	return h
}

// Register mounts middleware and routes
func (h *Handler) Register(r *server.Hertz) {
	r.Use(RequestID(), AccessLog())

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")

	concept := api.Group("/concept")
	concept.GET("/search", h.SearchConcepts)
	concept.POST("/import", h.ImportConcepts)
	concept.GET("/:name", h.GetConcept)
	concept.GET("/:name/explanation", h.GetExplanation)
	concept.GET("/:name/exercises", h.GetExercises)
	concept.GET("/:name/knowledge-graph", h.GetKnowledgeGraph)
	concept.GET("/:name/related", h.GetRelated)
	concept.PUT("/:name/related/:other", h.UpdateRelationship)

	api.POST("/learning/path", h.LearningPath)

	mem := api.Group("/memory")
	mem.GET("/review", h.ReviewSchedule)
	mem.POST("/review/start", h.StartReview)
	mem.POST("/review/skip", h.SkipReview)
	mem.POST("/review/submit", h.SubmitReview)
	mem.POST("/records", h.AddRecord)
	mem.GET("/stats", h.Stats)
	mem.GET("/strength", h.Strength)
}
