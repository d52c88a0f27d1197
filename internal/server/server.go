// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/tulsbot-supervisor/internal/commands"
	"github.com/tamzrod/tulsbot-supervisor/internal/config"
	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

// Commands is the command surface exposed over HTTP.
type Commands interface {
	GetHealth() status.Snapshot
	TogglePopover() error
	HidePopover() error
	ShowMainWindow() error
	ForwardRequest(ctx context.Context, req commands.ForwardRequest) (string, error)
}

// Server is the local HTTP surface of the supervisor.
type Server struct {
	cfg       config.ServerConfig
	logger    *logrus.Logger
	handlers  *Handlers
	observers http.Handler
	metrics   http.Handler
}

type Option func(*Server)

// WithObservers mounts h (the websocket hub) on the configured ws path.
func WithObservers(h http.Handler) Option {
	return func(s *Server) {
		s.observers = h
	}
}

// WithMetrics mounts h on /metrics when metrics are enabled.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// New creates a Server.
func New(cfg config.ServerConfig, cmds Commands, logger *logrus.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: NewHandlers(cmds, logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handlers.GetHealthJSON).Methods(http.MethodGet)
	api.HandleFunc("/popover/toggle", s.handlers.TogglePopover).Methods(http.MethodPost)
	api.HandleFunc("/popover/hide", s.handlers.HidePopover).Methods(http.MethodPost)
	api.HandleFunc("/main-window/show", s.handlers.ShowMainWindow).Methods(http.MethodPost)
	api.HandleFunc("/forward", s.handlers.ForwardRequestJSON).Methods(http.MethodPost)

	if s.observers != nil {
		router.Handle(s.wsPath(), s.observers).Methods(http.MethodGet)
	}
	if s.metrics != nil && s.cfg.Metrics {
		router.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}

	router.Use(s.loggingMiddleware)

	return router
}

func (s *Server) wsPath() string {
	if s.cfg.WSPath == "" {
		return "/ws"
	}
	return s.cfg.WSPath
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("Request processed")
	})
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:     s.Handler(),
		ReadTimeout: s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	s.logger.Infof("Starting supervisor server on %s", l.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, l)
}
