package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"credential-bridge/internal/config"
)

// Server represents the HTTP API server
type Server struct {
	config     *config.Config
	logger     *logrus.Logger
	router     *mux.Router
	httpServer *http.Server
	handlers   *Handlers
	events     *EventHub
}

// NewServer creates a new API server instance
func NewServer(cfg *config.Config, orchestrator Orchestrator, logger *logrus.Logger) *Server {
	server := &Server{
		config:   cfg,
		logger:   logger,
		router:   mux.NewRouter(),
		handlers: NewHandlers(orchestrator, logger),
		events:   NewEventHub(logger),
	}

	server.setupMiddleware()
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort),
		Handler:      server.router,
		ReadTimeout:  time.Duration(cfg.APIReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.APIWriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.APIIdleTimeout) * time.Second,
	}

	return server
}

// Events returns the hub streaming credential events; wire it to the
// orchestrator's event callback
func (s *Server) Events() *EventHub {
	return s.events
}

func (s *Server) setupMiddleware() {
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.loggingMiddleware)
}

func (s *Server) setupRoutes() {
	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/init", s.handlers.HandleInit).Methods(http.MethodPost)
	v1.HandleFunc("/credentials/password", s.handlers.HandleSavePassword).Methods(http.MethodPost)
	v1.HandleFunc("/passkeys", s.handlers.HandleCreatePasskey).Methods(http.MethodPost)
	v1.HandleFunc("/credentials/query", s.handlers.HandleGetCredentials).Methods(http.MethodPost)
	v1.HandleFunc("/federated/signin", s.handlers.HandleSignIn).Methods(http.MethodPost)
	v1.HandleFunc("/logout", s.handlers.HandleLogout).Methods(http.MethodPost)
	v1.HandleFunc("/supported", s.handlers.HandleSupported).Methods(http.MethodGet)
	v1.HandleFunc("/status", s.handlers.HandleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.events.HandleEvents).Methods(http.MethodGet)
}

// Start begins serving requests; it blocks until the server stops
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("API server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("API server shutting down")
	s.events.Close()
	return s.httpServer.Shutdown(ctx)
}
