package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"stockviz/internal/app"
	"stockviz/internal/config"
	"stockviz/internal/httpapi"
	"stockviz/internal/rpc"
)

func main() {
	// Load config.
	cfg, err := config.LoadOrDefault(app.ConfigPath())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logger, closeLog, err := app.Logger(cfg)
	if err != nil {
		log.Fatalf("setting up logging: %v", err)
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	charts, err := app.OpenCharts(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("loading catalog: %v", err)
	}

	// HTTP API.
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           httpapi.NewServer(charts, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	// gRPC API.
	grpcServer := grpc.NewServer()
	rpc.NewServer(charts, logger).RegisterGRPC(grpcServer)
	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Fatalf("listening on %s: %v", cfg.GRPCAddr(), err)
	}
	go func() {
		logger.Info("gRPC server listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down stockviz server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}
}
