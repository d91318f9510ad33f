// Package main plays many hallcrawl dungeons with an autopilot and logs how
// deep each run got. Useful for tuning the content policy.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hallcrawl/internal/config"
	"github.com/cory-johannsen/hallcrawl/internal/game/autopilot"
	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
	"github.com/cory-johannsen/hallcrawl/internal/observability"
	"github.com/cory-johannsen/hallcrawl/internal/records"
	"github.com/cory-johannsen/hallcrawl/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	runs := flag.Int("runs", 100, "number of playthroughs")
	seed := flag.Uint64("seed", 1, "seed of the first run; run i uses seed+i, 0 uses entropy")
	strategyName := flag.String("strategy", "cautious", "autopilot strategy: cautious or random")
	dt := flag.Float64("dt", 1.0/60.0, "simulated seconds per tick")
	maxTicks := flag.Int("max-ticks", 2_000_000, "tick limit per run; 0 is unbounded")
	record := flag.Bool("record", false, "save finished runs to the configured records backend")
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

	strategy, err := autopilot.ParseStrategy(*strategyName)
	if err != nil {
		logger.Fatal("parsing strategy", zap.Error(err))
	}
	if *dt <= 0 {
		logger.Fatal("dt must be positive", zap.Float64("dt", *dt))
	}
	crawlerCfg, err := cfg.CrawlerConfig()
	if err != nil {
		logger.Fatal("building crawler config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store records.Store
	if *record {
		store, err = storage.OpenRecords(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("opening run records", zap.Error(err))
		}
		if store != nil {
			defer store.Close()
		}
	}
	player := "autopilot-" + strategy.String()

	start := time.Now()
	var total, deepest, finished int
	for i := range *runs {
		var src dice.Source = dice.NewEntropySource()
		if *seed != 0 {
			src = dice.NewSeededSource(*seed + uint64(i))
		}
		machine, err := crawler.New(crawlerCfg, crawler.Deps{Source: src, Logger: logger.Named("crawler")})
		if err != nil {
			logger.Fatal("creating playthrough", zap.Error(err))
		}
		res, err := autopilot.Run(ctx, machine, autopilot.New(strategy, dice.NewEntropySource()), *dt, *maxTicks)
		if err != nil {
			logger.Warn("simulation interrupted", zap.Int("completed", i), zap.Error(err))
			break
		}
		finished++
		total += res.Stats.Junctions
		deepest = max(deepest, res.Stats.Junctions)
		logger.Info("run finished",
			zap.Int("run", i),
			zap.String("playthrough", res.PlaythroughID),
			zap.Stringer("final", res.Final),
			zap.Int("junctions", res.Stats.Junctions),
			zap.Int("difficulty", res.Difficulty),
			zap.Int("foes_defeated", res.Stats.FoesDefeated),
			zap.Int("items", res.Stats.ItemsCollected),
			zap.Int("hits_taken", res.Stats.HitsTaken),
			zap.Float64("sim_seconds", res.Stats.Elapsed),
			zap.Int("ticks", res.Ticks),
		)
		if store != nil && res.Final == crawler.StateGameOver {
			if err := store.Save(ctx, records.FromMachine(machine, player, time.Now())); err != nil {
				logger.Warn("recording run", zap.Error(err))
			}
		}
	}

	mean := 0.0
	if finished > 0 {
		mean = float64(total) / float64(finished)
	}
	logger.Info("simulation complete",
		zap.Int("runs", finished),
		zap.String("strategy", strategy.String()),
		zap.Float64("mean_junctions", mean),
		zap.Int("deepest", deepest),
		zap.Duration("wall", time.Since(start)),
	)
}
