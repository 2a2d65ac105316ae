package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"civicdesk/internal/worker"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// HttpHandlerRegister defines a function that registers custom HTTP handlers.
type HttpHandlerRegister func(mux *http.ServeMux)

// Hook is a lifecycle step run around the server.
type Hook func(ctx context.Context) error

// Lifecycle holds the steps run before serving and after the server has stopped.
// Shutdown steps run in order, each bounded by the shutdown timeout.
type Lifecycle struct {
	Startup  []Hook
	Shutdown []Hook
}

// App manages the HTTP server, the gRPC health endpoint and background workers.
type App struct {
	httpServer *http.Server
	gRPCServer *grpc.Server
	health     *health.Server
	workers    []worker.Worker
	lifecycle  Lifecycle
	port       int
	logger     *zap.Logger
}

// NewApp creates and configures a new application server.
func NewApp(port int, logger *zap.Logger, register HttpHandlerRegister, unaryInterceptors []grpc.UnaryServerInterceptor, workers []worker.Worker, lifecycle Lifecycle) *App {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryInterceptors...))

	healthcheck := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthcheck)
	reflection.Register(s)

	mux := http.NewServeMux()
	if register != nil {
		register(mux)
	}

	return &App{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           grpcHandlerFunc(s, mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
		gRPCServer: s,
		health:     healthcheck,
		workers:    workers,
		lifecycle:  lifecycle,
		port:       port,
		logger:     logger.Named("App"),
	}
}

// Run starts the server and workers and blocks until SIGINT/SIGTERM or a fatal server error.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.run(ctx, nil)
}

// run serves until ctx is done. When ready is non-nil it receives the bound address.
func (a *App) run(ctx context.Context, ready chan<- net.Addr) error {
	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	for _, hook := range a.lifecycle.Startup {
		if err := hook(startCtx); err != nil {
			cancel()
			return fmt.Errorf("startup failed: %w", err)
		}
	}
	cancel()

	lis, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", a.port, err)
	}
	if ready != nil {
		ready <- lis.Addr()
	}

	g, gctx := errgroup.WithContext(ctx)

	a.logger.Info("starting workers", zap.Strings("workers", worker.Names(a.workers)))
	for _, w := range a.workers {
		g.Go(func() error {
			w.Start(gctx)
			a.logger.Info("worker stopped", zap.String("worker", w.Name()))
			return nil
		})
	}

	g.Go(func() error {
		a.logger.Info("server started", zap.String("addr", lis.Addr().String()))
		if err := a.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.shutdown()
		return nil
	})

	return g.Wait()
}

func (a *App) shutdown() {
	a.logger.Info("Shutting down server...")
	a.health.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	a.gRPCServer.Stop()

	for _, hook := range a.lifecycle.Shutdown {
		hookCtx, hookCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := hook(hookCtx); err != nil {
			a.logger.Warn("shutdown step failed", zap.Error(err))
		}
		hookCancel()
	}
	a.logger.Info("Shutdown finished.")
}

func grpcHandlerFunc(grpcServer *grpc.Server, otherHandler http.Handler) http.Handler {
	return h2c.NewHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ProtoMajor == 2 && strings.Contains(r.Header.Get("Content-Type"), "application/grpc") {
			grpcServer.ServeHTTP(w, r)
		} else {
			otherHandler.ServeHTTP(w, r)
		}
	}), &http2.Server{})
}
