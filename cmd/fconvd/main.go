package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rijalprasetyo/converter-file/internal/config"
	"github.com/rijalprasetyo/converter-file/internal/converter"
	"github.com/rijalprasetyo/converter-file/internal/daemon"
	"github.com/rijalprasetyo/converter-file/internal/logging"
	"github.com/rijalprasetyo/converter-file/internal/repository/sqlite"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Path to config.yaml")
	showVersion := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("fconvd v%s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger("fconvd", logging.LevelFromEnv(cfg.LogLevel), cfg.LogJSON, os.Stderr)
	logger.Info("starting", "version", version)

	// DOCX -> PDF depende de LibreOffice; sin él solo fallan esos trabajos
	if err := converter.CheckOfficeInstalled(cfg.OfficeBinary); err != nil {
		logger.Warn("office binary not found, DOCX to PDF jobs will fail", "binary", cfg.OfficeBinary, "error", err)
	}

	db, err := sqlite.NewDatabase(cfg.DataDir)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database initialized", "data_dir", cfg.DataDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Los lotes de una ejecución anterior no se reanudan
	if n, err := db.JobRepo.FailInterrupted(ctx); err != nil {
		logger.Error("failed to close interrupted jobs", "error", err)
	} else if n > 0 {
		logger.Warn("marked interrupted jobs as failed", "count", n)
	}

	opts := cfg.EngineOptions()
	opts.Logger = logger.Named("engine")
	engine := converter.NewEngine(opts)

	queueOpts := daemon.QueueOptions{
		Workers:      cfg.Workers,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	}
	if cfg.Notify {
		queueOpts.Notify = daemon.DesktopNotifier(logger)
	}

	queueMgr := daemon.NewQueueManager(db.JobRepo, engine, queueOpts)
	queueMgr.Start()
	defer queueMgr.Stop()

	handlers := daemon.NewHandlers(db.JobRepo, queueMgr, logger)
	server := daemon.NewServer(cfg.SocketPath, handlers, logger)

	if err := server.Start(ctx); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
	defer server.Stop()

	logger.Info("fconvd is ready", "socket", cfg.SocketPath, "workers", cfg.Workers)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("shutting down", "signal", sig.String())

	cancel()
}
