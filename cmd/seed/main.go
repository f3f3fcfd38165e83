package main

import (
	"context"
	"flag"
	"os"

	"github.com/vytor/birdtalk/internal/clock"
	"github.com/vytor/birdtalk/internal/config"
	"github.com/vytor/birdtalk/internal/db"
	"github.com/vytor/birdtalk/internal/importer"
	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/repository/sqlite"
	"github.com/vytor/birdtalk/internal/services"
)

func main() {
	file := flag.String("file", "", "catalog to import (.json or .xlsx)")
	daily := flag.Bool("daily", false, "also create today's pack of the day")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if *file == "" {
		log.Error("missing -file")
		flag.Usage()
		os.Exit(2)
	}

	catalog, err := importer.ReadFile(*file)
	if err != nil {
		log.Error("failed to read catalog: %v", err)
		os.Exit(1)
	}
	log.Info("read %d birds and %d packs from %s", len(catalog.Birds), len(catalog.Packs), *file)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	sx := database.Sqlx()
	birdRepo := sqlite.NewBirdRepository(sx)
	packRepo := sqlite.NewPackRepository(sx)

	ctx := logger.NewContext(context.Background(), log)
	res, err := importer.New(birdRepo, packRepo).Import(ctx, catalog)
	if err != nil {
		log.Error("import failed: %v", err)
		os.Exit(1)
	}
	log.Info("import done: birds=%d, packs_created=%d, packs_present=%d, skipped=%d",
		res.BirdsUpserted, res.PacksCreated, res.PacksSkipped, len(res.Errors))

	if *daily {
		ensureDaily(ctx, log, services.NewDailyPackService(birdRepo, packRepo, cfg.DailyPackSize))
	}
}

func ensureDaily(ctx context.Context, log *logger.Logger, svc services.DailyPackService) {
	day := clock.Local{}.Today()
	bp, created, err := svc.EnsureDailyPack(ctx, day)
	if err != nil {
		log.Error("failed to create pack of the day: %v", err)
		os.Exit(1)
	}
	if created {
		log.Info("created pack of the day %s with %d birds", day, len(bp.Birds))
	} else {
		log.Info("pack of the day %s already exists", day)
	}
}
