package ui

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"datalens/app"
	"datalens/internal/config"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP API for dataset upload, profiling, and querying
type Server struct {
	router   *gin.Engine
	datasets *app.DatasetService
	queries  *app.QueryService
	cfg      *config.Config

	httpServer *http.Server
}

// NewServer creates the API server and registers all routes
func NewServer(datasets *app.DatasetService, queries *app.QueryService, cfg *config.Config) *Server {
	s := &Server{
		router:   gin.Default(),
		datasets: datasets,
		queries:  queries,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.MaxMultipartMemory = 32 << 20 // buffer; larger uploads spill to disk

	api := s.router.Group("/api")
	{
		api.POST("/datasets", s.handleUpload)
		api.GET("/datasets", s.handleList)
		api.GET("/datasets/:id", s.handleGet)
		api.GET("/datasets/:id/download", s.handleDownload)
		api.DELETE("/datasets/:id", s.handleDelete)

		api.GET("/datasets/:id/overview", s.handleOverview)
		api.GET("/datasets/:id/summary", s.handleSummary)
		api.GET("/datasets/:id/correlation", s.handleCorrelation)
		api.GET("/datasets/:id/suggestions", s.handleSuggestions)

		api.POST("/datasets/:id/query", s.handleQuery)
		api.GET("/datasets/:id/history", s.handleHistory)
		api.POST("/datasets/:id/charts", s.handleChart)
	}
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server and blocks until the context is cancelled
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on %s", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("[Server] Shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
