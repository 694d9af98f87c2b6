package ui

import (
	"context"
	"log"
	"net/http"
	"net/http/pprof"
	"time"

	"datalens/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
)

// OpsServer exposes health checks and profiling on a separate port so
// they never mix with the public API.
type OpsServer struct {
	router chi.Router
	cfg    *config.Config
	db     *sqlx.DB // nil when running without a database
}

// NewOpsServer creates the operational endpoint server
func NewOpsServer(cfg *config.Config, db *sqlx.DB) *OpsServer {
	s := &OpsServer{
		router: chi.NewRouter(),
		cfg:    cfg,
		db:     db,
	}
	s.setupRoutes()
	return s
}

func (s *OpsServer) setupRoutes() {
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	if s.cfg.Server.OpsDebug {
		s.router.Route("/debug/pprof", func(r chi.Router) {
			r.Get("/", pprof.Index)
			r.Get("/cmdline", pprof.Cmdline)
			r.Get("/profile", pprof.Profile)
			r.Get("/symbol", pprof.Symbol)
			r.Get("/trace", pprof.Trace)
			r.Handle("/heap", pprof.Handler("heap"))
			r.Handle("/goroutine", pprof.Handler("goroutine"))
			r.Handle("/allocs", pprof.Handler("allocs"))
			r.Handle("/block", pprof.Handler("block"))
			r.Handle("/mutex", pprof.Handler("mutex"))
		})
	}
}

func (s *OpsServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *OpsServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Router exposes the chi router, mainly for tests
func (s *OpsServer) Router() chi.Router {
	return s.router
}

// Run starts the ops server and blocks until the context is cancelled
func (s *OpsServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Server.OpsPort,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Ops] Listening on :%s", s.cfg.Server.OpsPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
