// Package lifecycle runs the long-lived components of the game process and
// stops them in reverse order on a signal, a failure, or when one of them
// finishes on its own.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service represents a long-running component that can be started and stopped.
type Service interface {
	// Start begins the service. It blocks until the service is stopped, its
	// work is finished, or an error occurs.
	Start() error
	// Stop gracefully stops the service. It may be called after Start has
	// already returned.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function, if any.
func (f *FuncService) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

// Manager starts registered services in order and stops them in reverse.
type Manager struct {
	logger   *zap.Logger
	services []namedService
	mu       sync.Mutex
}

type namedService struct {
	name    string
	service Service
}

type exit struct {
	name string
	err  error
}

// New creates a Manager.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Add registers a named service. Services are started in the order they are
// added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (m *Manager) Add(name string, svc Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = append(m.services, namedService{name: name, service: svc})
}

// Run starts all services and blocks until SIGINT or SIGTERM arrives, ctx is
// cancelled, or any service's Start returns. Every service is then stopped
// in reverse order.
//
// Postcondition: All services are stopped when this method returns; the
// returned error is the first service failure, or nil.
func (m *Manager) Run(ctx context.Context) error {
	start := time.Now()

	m.mu.Lock()
	services := append([]namedService(nil), m.services...)
	m.mu.Unlock()

	exitCh := make(chan exit, len(services))
	for _, ns := range services {
		go func() {
			m.logger.Info("starting service",
				zap.String("service", ns.name),
			)
			svcStart := time.Now()
			err := ns.service.Start()
			if err != nil {
				m.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
				err = fmt.Errorf("service %s: %w", ns.name, err)
			}
			exitCh <- exit{name: ns.name, err: err}
		}()
	}

	m.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		m.logger.Info("received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case ex := <-exitCh:
		if ex.err != nil {
			runErr = ex.err
			m.logger.Error("service error, shutting down", zap.Error(ex.err))
		} else {
			m.logger.Info("service finished, shutting down",
				zap.String("service", ex.name),
			)
		}
	case <-ctx.Done():
		m.logger.Info("context cancelled, shutting down")
	}

	m.shutdown(services)

	m.logger.Info("shutdown complete",
		zap.Duration("total_uptime", time.Since(start)),
	)
	return runErr
}

func (m *Manager) shutdown(services []namedService) {
	shutdownStart := time.Now()
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		m.logger.Info("stopping service",
			zap.String("service", ns.name),
		)
		ns.service.Stop()
		m.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	m.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
}
