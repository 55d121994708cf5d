// Package server exposes the capabilities and the list store over HTTP for
// a browser front end.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/Makepad-fr/verbalist/internal/ai"
	"github.com/Makepad-fr/verbalist/internal/config"
	"github.com/Makepad-fr/verbalist/internal/pipeline"
	"github.com/Makepad-fr/verbalist/internal/store"
)

type Options struct {
	Config    config.ServerConfig
	Timeouts  pipeline.Timeouts
	Pipeline  *pipeline.Pipeline
	Extractor ai.Extractor
	Titler    ai.Titler
	Store     *store.Store
	Logger    *zap.Logger
}

type Server struct {
	cfg      config.ServerConfig
	timeouts pipeline.Timeouts
	pipe     *pipeline.Pipeline
	ext      ai.Extractor
	tit      ai.Titler
	store    *store.Store
	log      *zap.Logger
	router   chi.Router
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:      opts.Config,
		timeouts: opts.Timeouts,
		pipe:     opts.Pipeline,
		ext:      opts.Extractor,
		tit:      opts.Titler,
		store:    opts.Store,
		log:      log.Named("server"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if s.cfg.RateLimit > 0 {
				r.Use(httprate.LimitByIP(s.cfg.RateLimit, s.cfg.RateWindow))
			}
			r.Post("/voice-memo", s.handleVoiceMemo)
			r.Post("/list-title", s.handleListTitle)
			r.Post("/lists", s.handleCreateList)
		})
		r.Get("/lists", s.handleLists)
		r.Put("/lists/{id}", s.handleUpdateList)
		r.Delete("/lists/{id}", s.handleDeleteList)
		r.Post("/lists/{id}/items", s.handleAddItem)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Address))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
