package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"amaa/adapters/rng"
	"amaa/adapters/tabular"
	"amaa/domain/dataset"
	"amaa/domain/effect"
	"amaa/domain/plan"
	"amaa/internal"
	"amaa/internal/config"
	"amaa/internal/session"
	"amaa/internal/testkit"
	"amaa/ui"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := internal.DefaultLogger
	reader := tabular.NewReader()

	registry := session.NewRegistry(cfg.Session.TTL, func() *dataset.Table {
		return defaultTable(cfg, reader, logger)
	})

	randomness := rng.New()
	app, err := ui.NewApp(ui.Deps{
		Registry:  registry,
		Reader:    reader,
		Sampler:   effect.NewSampler(randomness, cfg.Calibration),
		Simulator: plan.NewSimulator(randomness),
		Config:    cfg,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("failed to create UI app: %v", err)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return registry.Run(ctx, cfg.Session.CleanupInterval)
	})
	g.Go(func() error {
		return app.Start(":" + cfg.Server.Port)
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// defaultTable loads the bundled demo CSV, falling back to regenerating it in
// memory (and persisting a copy for the next start) when the file is missing
// or unreadable.
func defaultTable(cfg *config.Config, reader *tabular.Reader, logger *internal.Logger) *dataset.Table {
	if data, err := os.ReadFile(cfg.Data.DemoFile); err == nil {
		if table, err := reader.Read(cfg.Data.DemoFile, data); err == nil {
			return table
		}
		logger.Warn("[Main] demo file %s unusable, regenerating", cfg.Data.DemoFile)
	}

	table := testkit.GenerateDemoTable(testkit.DefaultDemoConfig())
	if err := testkit.WriteCSV(table, cfg.Data.DemoFile); err != nil {
		logger.Warn("[Main] could not persist demo data: %v", err)
	}
	return table
}
