// Package api exposes the analysis service over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datalens/app"
	"datalens/internal"
	"datalens/internal/metrics"
)

// Server is the public HTTP API.
type Server struct {
	router         *gin.Engine
	analysis       *app.AnalysisService
	datasets       *app.DatasetService
	metrics        *metrics.Metrics
	logger         *internal.Logger
	maxUploadBytes int64
}

// Deps carries the server collaborators. Metrics and Logger are optional.
type Deps struct {
	Analysis       *app.AnalysisService
	Datasets       *app.DatasetService
	Metrics        *metrics.Metrics
	Logger         *internal.Logger
	MaxUploadBytes int64
}

// NewServer builds the router. gin's mode must be set by the caller.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:         gin.New(),
		analysis:       deps.Analysis,
		datasets:       deps.Datasets,
		metrics:        deps.Metrics,
		logger:         logger.Named("api"),
		maxUploadBytes: deps.MaxUploadBytes,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger))
	if s.metrics != nil {
		s.router.Use(requestMetrics(s.metrics))
	}
}

func (s *Server) setupRoutes() {
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: errorDetail{Code: "NOT_FOUND", Message: "route not found"}})
	})

	v1 := s.router.Group("/api/v1")
	datasets := v1.Group("/datasets")

	// Catalog
	datasets.GET("", s.listDatasets)
	datasets.POST("", s.uploadDataset)
	datasets.GET("/:id", s.getDataset)
	datasets.DELETE("/:id", s.deleteDataset)

	// Analysis
	datasets.GET("/:id/statistics", s.getStatistics)
	datasets.GET("/:id/correlation", s.getCorrelation)
	datasets.GET("/:id/outliers", s.getOutliers)
	datasets.GET("/:id/trends", s.getTrends)
	datasets.GET("/:id/summary", s.getSummary)
	datasets.GET("/:id/report", s.getReport)

	// Visualization
	datasets.POST("/:id/visualize/bar", s.postChart(chartBar))
	datasets.POST("/:id/visualize/line", s.postChart(chartLine))
	datasets.POST("/:id/visualize/pie", s.postChart(chartPie))
	datasets.POST("/:id/visualize/scatter", s.postChart(chartScatter))
	datasets.POST("/:id/visualize/histogram", s.postChart(chartHistogram))
	datasets.GET("/:id/visualize/heatmap", s.getHeatmap)
	datasets.GET("/:id/visualize/suggest", s.getSuggestion)
}
