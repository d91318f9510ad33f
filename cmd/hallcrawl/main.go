// Package main plays hallcrawl in the local terminal.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hallcrawl/internal/config"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/play"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/tui"
	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
	"github.com/cory-johannsen/hallcrawl/internal/observability"
	"github.com/cory-johannsen/hallcrawl/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	logPath := flag.String("log", "hallcrawl.log", "log file; the terminal is owned by the game")
	seed := flag.Uint64("seed", 0, "dungeon seed; 0 uses the configured seed or entropy")
	player := flag.String("player", os.Getenv("USER"), "name recorded with finished runs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	cfg.Logging.Output = *logPath
	if *seed != 0 {
		cfg.Game.Seed = *seed
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

	store, err := storage.OpenRecords(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("opening run records", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	model := tui.NewModel(cfg.Frontend, logger)
	machine, err := crawler.New(crawlerCfg, crawler.Deps{
		Source:        play.NewSource(cfg.Game.Seed),
		FlickerSource: dice.NewEntropySource(),
		Sink:          model.Sink(),
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("creating playthrough", zap.Error(err))
	}
	model.Attach(machine)
	model.RecordTo(store, *player, cfg.Records.Leaderboard)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		logger.Fatal("running terminal program", zap.Error(err))
	}

	stats := machine.Stats()
	logger.Info("playthrough ended",
		zap.String("playthrough", machine.PlaythroughID()),
		zap.Stringer("state", machine.State()),
		zap.Int("junctions", stats.Junctions),
		zap.Int("foes_defeated", stats.FoesDefeated),
		zap.Float64("elapsed", stats.Elapsed),
	)
}
