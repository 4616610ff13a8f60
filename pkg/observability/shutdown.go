package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultShutdownTimeout bounds a shutdown when none is configured
const DefaultShutdownTimeout = 30 * time.Second

// ShutdownFunc is a hook run after the HTTP server has drained
type ShutdownFunc func(context.Context) error

type shutdownHook struct {
	name string
	fn   ShutdownFunc
}

// ShutdownManager stops the host: the HTTP server drains first, then the
// registered hooks run concurrently. Both phases share one timeout.
type ShutdownManager struct {
	logger  *logrus.Logger
	server  *http.Server
	timeout time.Duration

	mu    sync.Mutex
	hooks []shutdownHook
}

// NewShutdownManager creates a shutdown manager for server. A nil server
// skips the drain phase.
func NewShutdownManager(logger *logrus.Logger, server *http.Server, timeout time.Duration) *ShutdownManager {
	if logger == nil {
		logger = logrus.New()
	}
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	return &ShutdownManager{
		logger:  logger,
		server:  server,
		timeout: timeout,
	}
}

// OnShutdown registers a named hook
func (sm *ShutdownManager) OnShutdown(name string, fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.hooks = append(sm.hooks, shutdownHook{name: name, fn: fn})
}

// FlushTracing registers a hook that flushes and stops tp. A nil provider,
// as returned when tracing is disabled, registers nothing.
func (sm *ShutdownManager) FlushTracing(tp *sdktrace.TracerProvider) {
	if tp == nil {
		return
	}
	sm.OnShutdown("tracing", func(ctx context.Context) error {
		return ShutdownTracing(ctx, tp)
	})
}

// WaitForShutdown blocks until ctx is done or SIGINT/SIGTERM arrives, then
// calls Shutdown.
func (sm *ShutdownManager) WaitForShutdown(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	sm.logger.Info("Shutting down apphost")
	return sm.Shutdown()
}

// Shutdown drains the HTTP server and runs every hook. Hook errors are
// joined; a hook still running at the deadline fails the shutdown.
func (sm *ShutdownManager) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	if sm.server != nil {
		if err := sm.server.Shutdown(ctx); err != nil {
			sm.logger.WithError(err).Error("HTTP server did not drain")
			return fmt.Errorf("http server shutdown: %w", err)
		}
		sm.logger.Info("Stopped accepting requests")
	}

	sm.mu.Lock()
	hooks := append([]shutdownHook(nil), sm.hooks...)
	sm.mu.Unlock()

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, h := range hooks {
		g.Go(func() error {
			if err := h.fn(ctx); err != nil {
				sm.logger.WithError(err).WithField("hook", h.name).Error("Shutdown hook failed")
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
				mu.Unlock()
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		sm.logger.Warn("Shutdown hooks still running at deadline")
		return fmt.Errorf("shutdown timed out after %s", sm.timeout)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	sm.logger.Info("Shutdown complete")
	return nil
}
