package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/xilidan/s2t-translator/config/translator"
	"github.com/xilidan/s2t-translator/pkg/logger"
	"github.com/xilidan/s2t-translator/services/translation/app"
	"github.com/xilidan/s2t-translator/services/translation/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.Default()

	cfg := config.MustLoad()

	log = logger.New(logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		Output:     os.Stderr,
		AddSource:  true,
		JSONFormat: cfg.Log.JSON,
	})

	ctx := logger.WithContext(context.Background(), log)

	rootCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("failed to run()", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	usc, err := app.NewUsecase(ctx, cfg, log)
	if err != nil {
		return err
	}

	srv := server.New(usc, server.Options{
		JWTSecret:      cfg.Server.JWTSecret,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Log:            log,
	})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	grpcServer, health := server.NewGRPCServer()
	grpcAddress := fmt.Sprintf(":%d", cfg.Server.GRPCPort)
	grpcListener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}

	serverErrors := make(chan error, 2)

	go func() {
		serverErrors <- grpcServer.Serve(grpcListener)
	}()
	log.Info("grpc health service started", slog.String("address", grpcAddress))

	go func() {
		serverErrors <- httpServer.ListenAndServe()
	}()
	log.Info("http api started", slog.String("address", httpServer.Addr), slog.Bool("auth", cfg.Server.JWTSecret != ""))

	select {
	case err := <-serverErrors:
		health.Shutdown()
		grpcServer.Stop()
		httpServer.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server has closed: %w", err)
	case <-ctx.Done():
		log.Info("start shutdown")
	}

	health.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown http server", slog.String("error", err.Error()))
	}
	grpcServer.GracefulStop()

	log.Info("stopped")
	return nil
}
