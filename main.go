package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"sweeperctl/internal/capture"
	"sweeperctl/internal/config"
	"sweeperctl/internal/input"
	"sweeperctl/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "loopback host:port to listen on (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	cfg.Override(*addr)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" {
		// Keep previous behavior if unset (useful for X on Linux)
		os.Setenv("DISPLAY", ":0")
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	screen, err := capture.New(cfg.Display)
	if err != nil {
		return fmt.Errorf("open display: %w", err)
	}
	logger.Info("display", "index", cfg.Display, "bounds", screen.Bounds().String())

	ln, err := server.Listen(cfg.Addr, cfg.Backlog)
	if err != nil {
		return err
	}

	s := server.New(server.Config{
		Pointer:       input.New(cfg.ClickHold),
		Screen:        screen,
		Logger:        logger,
		SettleDelay:   cfg.SettleDelay,
		StopDelay:     cfg.StopDelay,
		ControlSocket: cfg.ControlSocket,
		Exit: func(code int) {
			logger.Info("exiting", "code", code)
			os.Exit(code)
		},
	})

	srv := server.HTTPServer(s.Handler(), cfg.IdleTimeout)
	srv.RegisterOnShutdown(s.Manager().CloseAll)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String(), "backlog", cfg.Backlog)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-sigCh:
		logger.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("server shutdown error", "err", err)
	}
	return nil
}
