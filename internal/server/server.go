// Package server runs the worker's HTTP listener with start and shutdown hooks.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/mailhelper/pkg/logger"
)

const defaultShutdownTimeout = 30 * time.Second

// Hook is a start or shutdown step, e.g. job.Manager.StartFunc or db.Shutdown.
type Hook func(ctx context.Context) error

// Server serves an http.Handler until its context is canceled, SIGINT or
// SIGTERM arrives, or Stop is called.
type Server struct {
	http            *http.Server
	logger          *slog.Logger
	startHooks      []Hook
	shutdownHooks   []Hook
	shutdownTimeout time.Duration
	done            chan struct{}
	stopOnce        sync.Once

	mu       sync.Mutex
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithShutdownTimeout bounds the HTTP shutdown and all shutdown hooks together.
// Defaults to 30 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithStartHook registers a step run after the listener is bound and before serving.
// A failing start hook aborts Run; shutdown hooks still run.
func WithStartHook(fn Hook) Option {
	return func(s *Server) {
		if fn != nil {
			s.startHooks = append(s.startHooks, fn)
		}
	}
}

// WithShutdownHook registers a cleanup step. Hooks run in registration order.
//
//	server.WithShutdownHook(manager.Shutdown())
//	server.WithShutdownHook(db.Shutdown(pool))
func WithShutdownHook(fn Hook) Option {
	return func(s *Server) {
		if fn != nil {
			s.shutdownHooks = append(s.shutdownHooks, fn)
		}
	}
}

// New creates a Server listening on addr.
func New(addr string, h http.Handler, opts ...Option) *Server {
	s := &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:          logger.NewNope(),
		shutdownTimeout: defaultShutdownTimeout,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the bound address once Run is listening, or the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.http.Addr
}

// Run blocks until shutdown. It returns nil on a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.http.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	for _, hook := range s.startHooks {
		if err := hook(ctx); err != nil {
			_ = ln.Close()
			s.logger.Error("start hook failed", slog.Any("error", err))
			return errors.Join(err, s.shutdown())
		}
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	case <-s.done:
	}

	return errors.Join(serveErr, s.shutdown())
}

// Stop triggers a graceful shutdown.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	for _, hook := range s.shutdownHooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			s.logger.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		s.logger.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}

	s.logger.Info("shutdown completed")
	return nil
}
