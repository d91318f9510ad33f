// Package main serves hallcrawl playthroughs over Telnet, one independent
// dungeon per connection.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hallcrawl/internal/config"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/handlers"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/telnet"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/web"
	"github.com/cory-johannsen/hallcrawl/internal/game/session"
	"github.com/cory-johannsen/hallcrawl/internal/observability"
	"github.com/cory-johannsen/hallcrawl/internal/server"
	"github.com/cory-johannsen/hallcrawl/internal/storage"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	statusEvery := flag.Duration("status-interval", 30*time.Second, "how often to log live session status")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	crawlerCfg, err := cfg.CrawlerConfig()
	if err != nil {
		logger.Fatal("building crawler config", zap.Error(err))
	}
	logger.Info("starting hallcrawl server",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Bool("web_enabled", cfg.Web.Enabled),
		zap.String("records", cfg.Records.Backend),
		zap.String("policy_file", cfg.Content.PolicyFile),
		zap.Uint64("seed", cfg.Game.Seed),
		zap.Int("tick_rate", cfg.Frontend.TickRate),
	)

	store, err := storage.OpenRecords(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("opening run records", zap.Error(err))
	}

	sessions := session.NewManager(cfg.Telnet.MaxSessions)
	gameHandler := handlers.NewGameHandler(crawlerCfg, cfg.Frontend, cfg.Game.Seed, sessions, logger)
	gameHandler.RecordTo(store, cfg.Records.Leaderboard)
	telnetAcceptor := telnet.NewAcceptor(cfg.Telnet, gameHandler, logger)
	reporter := server.NewStatusReporter(sessions, *statusEvery, logger)
	reporter.Track("telnet", telnetAcceptor)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: telnetAcceptor.ListenAndServe,
		StopFn: func() {
			telnetAcceptor.Stop()
			sessions.CloseAll()
		},
	})
	if cfg.Web.Enabled {
		webServer := web.NewServer(cfg.Web, crawlerCfg, cfg.Frontend, cfg.Game.Seed, sessions, logger)
		webServer.RecordTo(store, cfg.Records.Leaderboard)
		reporter.Track("web", webServer)
		lifecycle.Add("web", &server.FuncService{
			StartFn: webServer.ListenAndServe,
			StopFn:  webServer.Stop,
		})
	}
	lifecycle.Add("status", reporter)

	logger.Info("server initialized", zap.Duration("startup", time.Since(start)))

	runErr := lifecycle.Run(context.Background())
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("closing run records", zap.Error(err))
		}
	}
	if runErr != nil {
		logger.Fatal("server error", zap.Error(runErr))
	}
}
