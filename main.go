package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "arena.db", "SQLite database path")
	clientDir := flag.String("client", "", "Path to client directory (empty disables static files)")
	level := flag.Int("level", 0, "Level new sessions start at")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			return err
		}
	}
	// Flags given on the command line win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "db":
			cfg.DBPath = *dbPath
		case "client":
			cfg.ClientDir = *clientDir
		case "level":
			cfg.Game.StartLevel = *level
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	hub, cleanup, err := InitializeHub(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	go hub.Run()

	server := &http.Server{Addr: cfg.Addr, Handler: SetupRoutes(hub, cfg)}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr), zap.Int("start_level", cfg.Game.StartLevel))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	hub.sessions.StopAll()
	return nil
}
