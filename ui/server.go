// Package ui exposes the analysis engine over HTTP with gin. Handlers
// are thin: they resolve parameters, call the dataset service and
// format results. Non-finite statistics are formatted as "N/A" strings
// at this boundary because JSON cannot carry NaN or Infinity.
package ui

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shanky2010/batch-visual-insights/internal/config"
	"github.com/shanky2010/batch-visual-insights/internal/dataset"
)

// Server represents the web server for the insights UI
type Server struct {
	router  *gin.Engine
	service *dataset.Service
	config  *config.Config
}

// NewServer creates a new web server instance
func NewServer(service *dataset.Service, cfg *config.Config) *Server {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:  gin.Default(),
		service: service,
		config:  cfg,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	{
		api.POST("/files", s.handleUpload)
		api.GET("/files", s.handleListFiles)
		api.GET("/files/:id", s.handleGetFile)
		api.DELETE("/files/:id", s.handleDeleteFile)

		api.GET("/files/:id/columns", s.handleNumericColumns)
		api.GET("/files/:id/stats", s.handleColumnStats)
		api.GET("/files/:id/summary", s.handleFileSummary)
		api.GET("/files/:id/outliers", s.handleOutliers)
		api.POST("/files/:id/outliers/remove", s.handleRemoveOutliers)
		api.POST("/files/:id/impute", s.handleImpute)

		api.GET("/files/:id/charts/bar", s.handleBarChart)
		api.GET("/files/:id/charts/pie", s.handlePieChart)
		api.GET("/files/:id/charts/histogram", s.handleHistogram)
		api.GET("/files/:id/charts/scatter", s.handleScatter)
		api.GET("/files/:id/charts/treemap", s.handleTreemap)

		api.POST("/compare", s.handleCompare)
		api.POST("/compare/export", s.handleCompareExport)
		api.GET("/files/:id/export", s.handleExport)
		api.GET("/files/:id/download", s.handleDownload)
		api.GET("/files/:id/report", s.handleReport)
	}

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Server.Port)
	log.Printf("[Server] Listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}
