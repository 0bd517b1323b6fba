package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/middleware"
)

type Server struct {
	handler *Handler
	config  *config.Config
	logger  *logrus.Logger
	server  *http.Server
}

func NewServer(cfg *config.Config, handler *Handler, logger *logrus.Logger) *Server {
	s := &Server{
		handler: handler,
		config:  cfg,
		logger:  logger,
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      s.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.WithField("port", s.config.ServerPort).Info("Starting server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Routes builds the mux. Only the summarize endpoints draw from the rate
// limiter.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	limit := middleware.RateLimit(middleware.NewLimiter(s.config.RateLimit.Requests, s.config.RateLimit.Interval))

	mux.HandleFunc("GET /{$}", s.handler.Index)
	mux.Handle("POST /api/summarize/youtube", limit(http.HandlerFunc(s.handler.SummarizeYouTube)))
	mux.Handle("POST /api/summarize/upload", limit(http.HandlerFunc(s.handler.SummarizeUpload)))
	mux.HandleFunc("POST /api/rating", s.handler.Rating)
	mux.HandleFunc("GET /api/requests", s.handler.ListRequests)
	mux.HandleFunc("GET /api/requests/{id}", s.handler.GetRequest)
	mux.HandleFunc("GET /health", s.handler.Health)

	return middleware.Chain(mux, middleware.Standard(s.logger)...)
}

// ShutdownContext bounds graceful shutdown by the configured timeout.
func (s *Server) ShutdownContext() (context.Context, context.CancelFunc) {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
