// Package ui exposes the wizard's JSON API over gin: file upload and
// profiling, issue detection, cleaning selections, relationship suggestions,
// and DAX generation.
package ui

import (
	"fmt"
	"log"
	"net/http"

	"daxforge/internal/api"
	"daxforge/internal/config"
	profiling "daxforge/internal/profile"
	"daxforge/internal/session"
	"daxforge/ports"

	"github.com/gin-gonic/gin"
)

// Server wires the wizard API handlers to the session store and collaborator
type Server struct {
	router    *gin.Engine
	config    *config.Config
	store     *session.Store
	pipeline  *session.Pipeline
	detector  *profiling.Detector
	suggester ports.Suggester
	hub       *api.SSEHub
}

// NewServer creates the wizard API server
func NewServer(cfg *config.Config, store *session.Store, pipeline *session.Pipeline, suggester ports.Suggester, hub *api.SSEHub) *Server {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:    gin.Default(),
		config:    cfg,
		store:     store,
		pipeline:  pipeline,
		detector:  profiling.NewDetector(),
		suggester: suggester,
		hub:       hub,
	}
	s.setupRoutes()
	return s
}

// setupRoutes registers the wizard API surface
func (s *Server) setupRoutes() {
	s.router.MaxMultipartMemory = s.config.Upload.MaxFileSizeMB << 20

	apiGroup := s.router.Group("/api")
	{
		apiGroup.POST("/sessions", s.handleCreateSession)
		apiGroup.DELETE("/sessions/:sessionID", s.handleRemoveSession)

		apiGroup.POST("/sessions/:sessionID/files", s.handleFileUpload)
		apiGroup.GET("/sessions/:sessionID/files", s.handleListFiles)
		apiGroup.DELETE("/sessions/:sessionID/files/:fileID", s.handleRemoveFile)
		apiGroup.POST("/sessions/:sessionID/files/:fileID/insights/retry", s.handleRetryInsights)

		apiGroup.GET("/sessions/:sessionID/files/:fileID/profile", s.handleGetProfile)
		apiGroup.GET("/sessions/:sessionID/files/:fileID/issues", s.handleGetIssues)
		apiGroup.GET("/sessions/:sessionID/files/:fileID/suggestions/:column/:kind", s.handleGetCleaningSuggestions)

		apiGroup.GET("/sessions/:sessionID/files/:fileID/selections", s.handleListSelections)
		apiGroup.PUT("/sessions/:sessionID/files/:fileID/selections/:column", s.handleStageSelection)
		apiGroup.DELETE("/sessions/:sessionID/files/:fileID/selections/:column", s.handleUnstageSelection)
		apiGroup.POST("/sessions/:sessionID/files/:fileID/apply", s.handleApplyCleaning)

		apiGroup.GET("/sessions/:sessionID/relationships", s.handleGetRelationships)
		apiGroup.POST("/dax", s.handleGenerateDax)

		apiGroup.GET("/events/:sessionID", s.hub.ServeSSE)
	}

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Router exposes the underlying engine for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Server.Port)
	log.Printf("[Server] Wizard API listening on %s", addr)
	return s.router.Run(addr)
}
