package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lenish/personal-hub/internal/collectors/feed"
	"github.com/lenish/personal-hub/internal/collectors/healthpush"
	"github.com/lenish/personal-hub/internal/config"
	"github.com/lenish/personal-hub/internal/domain/collector"
	"github.com/lenish/personal-hub/internal/domain/item"
	"github.com/lenish/personal-hub/internal/domain/syncstate"
	hubmcp "github.com/lenish/personal-hub/internal/mcp"
	"github.com/lenish/personal-hub/internal/scheduler"
	"github.com/lenish/personal-hub/internal/sqlite"
	"github.com/lenish/personal-hub/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLogs := config.NewLogger(cfg.Log)
	defer closeLogs()

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	itemRepo := sqlite.NewItemRepository(db)
	syncRepo := sqlite.NewSyncStateRepository(db)

	itemSvc := item.NewService(itemRepo, cfg.Sync.ChunkSize, logger)
	syncSvc := syncstate.NewService(syncRepo, logger)
	runner := collector.NewRunner(syncSvc, cfg.Sync.RunTimeout.Std(), logger)

	pushCollector := healthpush.New(itemSvc, logger)
	collectors := map[string]collector.Collector{
		pushCollector.Source(): pushCollector,
	}

	sched := scheduler.New(runner, logger)
	for _, feedCfg := range cfg.Feeds {
		fc := feed.New(feedCfg.Source, feedCfg.Category, feedCfg.URL, feedCfg.Token, nil, itemSvc, syncSvc, logger)
		collectors[fc.Source()] = fc
		if err := sched.Add(fc, feedCfg.Interval.Std()); err != nil {
			logger.Error("failed to schedule feed", "source", feedCfg.Source, "error", err)
			os.Exit(1)
		}
	}

	trigger := func(source string) bool {
		c, ok := collectors[source]
		if !ok {
			return false
		}
		go runner.Run(context.Background(), c)
		return true
	}

	if len(os.Args) > 1 && os.Args[1] == "mcp" {
		runMCPMode(logger, hubmcp.NewServer(hubmcp.Config{
			Items:   itemSvc,
			Syncs:   syncSvc,
			Trigger: trigger,
			Logger:  logger,
		}))
		return
	}

	sched.Start()
	defer sched.Stop()

	router := transport.NewRouter(transport.Config{
		Items:       itemSvc,
		Syncs:       syncSvc,
		Metrics:     pushCollector,
		Trigger:     transport.TriggerFunc(trigger),
		APIKey:      cfg.Auth.APIKey,
		CORSOrigins: cfg.CORS.Origins,
		Logger:      logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.APIKey != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func runMCPMode(logger *slog.Logger, server *sdkmcp.Server) {
	// Stdout stays clean for JSON-RPC; logs already go to stderr.
	logger.Info("starting stdio transport")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
