// Package server exposes the HTTP API and the generated-media file server.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/adcraft-ai/adcraft/internal/analysis"
	"github.com/adcraft-ai/adcraft/internal/chat"
	"github.com/adcraft-ai/adcraft/internal/config"
	"github.com/adcraft-ai/adcraft/internal/database"
	"github.com/adcraft-ai/adcraft/internal/imagegen"
	"github.com/adcraft-ai/adcraft/internal/logger"
	"github.com/adcraft-ai/adcraft/internal/scraper"
	"github.com/adcraft-ai/adcraft/internal/service"
	"github.com/adcraft-ai/adcraft/internal/storage"
)

// Server bundles the HTTP surface with its dependencies.
type Server struct {
	cfg       config.ServerConfig
	store     database.Store
	analyzer  *service.AnalysisService
	generator *service.GenerationService
	chat      *chat.Service
	media     *storage.FileStore
	logger    *slog.Logger

	httpServer *http.Server
}

// New builds the server and its route table.
func New(
	cfg config.ServerConfig,
	store database.Store,
	analyzer *service.AnalysisService,
	generator *service.GenerationService,
	chatSvc *chat.Service,
	media *storage.FileStore,
	log *slog.Logger,
) *Server {
	s := &Server{
		cfg:       cfg,
		store:     store,
		analyzer:  analyzer,
		generator: generator,
		chat:      chatSvc,
		media:     media,
		logger:    log.With("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/projects", s.handleCreateProject)
	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	mux.HandleFunc("POST /api/projects/{id}/subprojects", s.handleCreateSubproject)
	mux.HandleFunc("POST /api/projects/{id}/analyze", s.handleAnalyzeProject)
	mux.HandleFunc("POST /api/subprojects/{id}/analyze", s.handleAnalyzeSubproject)
	mux.HandleFunc("GET /api/projects/{id}/audiences", s.handleListAudiences)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/creatives/{id}/resize", s.handleResize)
	mux.HandleFunc("GET /api/creatives", s.handleListCreatives)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(media.Dir()))))

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      logger.Middleware(mux, s.logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler exposes the root handler, including middleware.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

// errorResponse is the JSON body for every non-2xx answer.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func apiError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, errorResponse{Error: message, Detail: detail})
}

// respondError maps domain errors onto HTTP statuses.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		parseErr  *analysis.ParseError
		fetchErr  *scraper.FetchError
		renderErr *scraper.RenderError
		genErr    *imagegen.GenerationError
	)
	switch {
	case errors.Is(err, database.ErrNotFound):
		apiError(w, http.StatusNotFound, "not found", "")
	case errors.As(err, &parseErr):
		apiError(w, http.StatusBadGateway, "analysis response could not be parsed", parseErr.Reason)
	case errors.As(err, &fetchErr):
		apiError(w, http.StatusBadGateway, "failed to fetch page", err.Error())
	case errors.As(err, &renderErr):
		apiError(w, http.StatusBadGateway, "failed to render page", err.Error())
	case errors.As(err, &genErr):
		apiError(w, http.StatusBadGateway, "image generation failed", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		apiError(w, http.StatusGatewayTimeout, "request timed out", "")
	default:
		s.logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		apiError(w, http.StatusInternalServerError, "internal error", "")
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
