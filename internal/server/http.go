package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/jsync/internal/tasks"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// NewRouter wires the synchronization and health endpoints behind recovery and request logging.
func NewRouter(engine tasks.SyncEngine, trackerName string, logger *log.Logger) *BasicRouter {
	if logger == nil {
		logger = log.Default()
	}

	r := NewBasicRouter()
	r.Use(Recoverer(logger), RequestLogger(logger))
	r.Handler(NewSyncHandler(engine, logger))
	r.Handle(http.MethodGet, HealthPath, NewHealthHandler(trackerName))
	return r
}

// Server is the HTTP front end for the synchronizer.
type Server struct {
	addr       string
	handler    http.Handler
	logger     *log.Logger
	httpServer *http.Server
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, handler http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, handler: handler, logger: logger.With("component", "http")}
}

// Start begins listening on the configured address. Blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutCtx); err != nil {
			s.logger.Warn("shutdown incomplete", "error", err)
		}
	}()

	s.logger.Info("server starting", "addr", ln.Addr().String())
	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		s.logger.Info("server stopped")
		return nil
	}
	return err
}
