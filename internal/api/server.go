// Package api exposes the dashboard service over HTTP and websocket.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"pnl-dashboard/internal/dashboard"
	"pnl-dashboard/internal/observability"
)

// DefaultMaxUploadBytes bounds request bodies when Options leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

// Options configures the HTTP server.
type Options struct {
	Logger         *zap.Logger
	CORSOrigins    []string
	MaxUploadBytes int64
	// SheetsToken is used for spreadsheet calls that carry no token of their own.
	SheetsToken string
	// Hub serves /ws when set.
	Hub *Hub
}

// Server routes API requests to the dashboard service.
type Server struct {
	svc         *dashboard.Service
	logger      *zap.Logger
	maxUpload   int64
	sheetsToken string
	hub         *Hub
	engine      *gin.Engine
	handler     http.Handler
}

// New builds the gin engine and wraps it with CORS.
func New(svc *dashboard.Service, opts Options) *Server {
	s := &Server{
		svc:         svc,
		logger:      opts.Logger,
		maxUpload:   opts.MaxUploadBytes,
		sheetsToken: opts.SheetsToken,
		hub:         opts.Hub,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.observe())
	s.engine = engine
	s.routes()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.handler = cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Sheets-Token"},
		ExposedHeaders: []string{"Content-Disposition"},
	}).Handler(engine)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(observability.Handler()))
	if s.hub != nil {
		r.GET("/ws", gin.WrapH(s.hub))
	}

	v1 := r.Group("/api/v1")
	v1.Use(s.limitBody())

	v1.GET("/strategies", s.listStrategies)
	v1.POST("/strategies", s.ingest)
	v1.POST("/strategies/upload", s.upload)
	v1.POST("/strategies/sheets", s.ingestSheets)
	v1.POST("/strategies/detect-columns", s.detectColumns)

	st := v1.Group("/strategies/:id")
	st.GET("", s.getStrategy)
	st.DELETE("", s.deleteStrategy)
	st.PATCH("", s.updateStrategy)
	st.POST("/switch", s.switchStrategy)
	st.POST("/refresh", s.refresh)
	st.POST("/sync", s.sync)
	st.PUT("/filters", s.setFilters)
	st.DELETE("/filters/month", s.clearMonth)
	st.PUT("/instrument", s.linkInstrument)
	st.DELETE("/instrument", s.unlinkInstrument)

	st.GET("/dashboard", s.dashboard)
	st.GET("/statistics", s.statistics)
	st.GET("/weekly", s.weekly)
	st.GET("/best-worst", s.bestWorst)
	st.GET("/period", s.period)
	st.GET("/heatmap", s.heatmap)
	st.GET("/forecast", s.forecast)
	st.GET("/overlay", s.overlay)

	v1.GET("/pl-type", s.getPLType)
	v1.PUT("/pl-type", s.setPLType)
	v1.GET("/compare", s.compare)

	v1.GET("/instruments", s.listInstruments)
	v1.POST("/instruments", s.addInstrument)
	v1.POST("/instruments/upload", s.uploadInstrument)
	v1.DELETE("/instruments/:id", s.deleteInstrument)

	v1.GET("/export", s.export)
	v1.POST("/import", s.importStrategies)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// observe records request latency and logs failures.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		observability.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(status), elapsed.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		}
		switch {
		case len(c.Errors) > 0:
			s.logger.Error("request failed", append(fields, zap.String("error", c.Errors.String()))...)
		case status >= http.StatusBadRequest:
			s.logger.Debug("request rejected", fields...)
		}
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
		}
		c.Next()
	}
}
