package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/minaorangina/flightchess/config"
	"github.com/minaorangina/flightchess/internal/logger"
	"github.com/minaorangina/flightchess/server"
	"github.com/minaorangina/flightchess/session"
	"github.com/minaorangina/flightchess/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer lg.Sync()

	manager := session.NewManager(session.Opts{
		Store:               store.NewInMemoryGameStore(),
		Logger:              lg,
		MaxPlayers:          cfg.MaxPlayers,
		PropsDisabled:       !cfg.PropsEnabled,
		LaunchAtStartOffset: cfg.LaunchAtStartOffset,
	})

	s := server.NewServer(manager, server.Opts{
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         lg,
	})
	s.Addr = cfg.Addr

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("listening", zap.String("addr", cfg.Addr))
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		lg.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		// hijacked websockets are not tracked by Shutdown
		manager.Shutdown()
		return s.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}
