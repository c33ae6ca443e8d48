// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/config"
	"github.com/your-org/mesa-pedidos/internal/domain/catalog"
	"github.com/your-org/mesa-pedidos/internal/domain/popularity"
	"github.com/your-org/mesa-pedidos/internal/domain/visit"
	"github.com/your-org/mesa-pedidos/internal/infrastructure/database/postgres"
	"github.com/your-org/mesa-pedidos/internal/infrastructure/database/redis"
	"github.com/your-org/mesa-pedidos/internal/infrastructure/storage"
	"github.com/your-org/mesa-pedidos/internal/interfaces/http"
	"github.com/your-org/mesa-pedidos/internal/interfaces/http/routes"
	"github.com/your-org/mesa-pedidos/internal/pkg/logger"
	"github.com/your-org/mesa-pedidos/internal/pkg/pdf"
	"github.com/your-org/mesa-pedidos/internal/pkg/whatsapp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting")

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	checks := map[string]http.HealthChecker{"redis": redisClient}

	menu, db, err := openCatalog(cfg, log)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	if db != nil {
		defer db.Close()
		checks["database"] = db
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Popularity counts are shared by every visitor and every instance
	counter := popularity.NewCounter(popularity.NewRedisStore(redisClient.GetClient(), storage.GlobalKey(cfg.Redis.KeyPrefix, storage.KeyCounts)), log)
	broadcaster := popularity.NewRedisBroadcaster(redisClient.GetClient(), storage.GlobalKey(cfg.Redis.KeyPrefix, storage.KeyCounts, "changed"), log)
	counter.SetBroadcaster(broadcaster)
	if err := broadcaster.Listen(ctx, counter); err != nil {
		log.WithError(err).Warn("Popularity changes from other instances will not be seen")
	}

	ranking := popularity.NewRanking(counter, menu, cfg.Restaurant.PopularCount, log)
	defer ranking.Close()

	deps := routes.Dependencies{
		Config:   cfg,
		Log:      log,
		Visits:   visit.NewFactory(redisClient, cfg, counter, log),
		Catalog:  menu,
		Ranking:  ranking,
		Sink:     whatsapp.NewLinkSink(cfg.WhatsApp, log),
		Receipts: pdf.NewService(cfg),
	}
	if cfg.WhatsApp.Phone == "" {
		log.Warn("WHATSAPP_PHONE is not set; checkout will be refused")
	}

	server := http.NewServer(cfg, log, redisClient.GetClient(), deps, checks)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("Server shutdown completed")
}

// openCatalog loads the menu file and, with CATALOG_SOURCE=postgres, serves
// the menu from the database instead, seeding it from the file when asked.
func openCatalog(cfg *config.Config, log *logrus.Logger) (catalog.Source, *postgres.DB, error) {
	var menu *catalog.Menu
	if cfg.Catalog.Source == "file" || cfg.Catalog.Seed {
		m, err := catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			return nil, nil, err
		}
		menu = m
	}

	if cfg.Catalog.Source == "file" {
		log.WithField("path", cfg.Catalog.Path).Info("Serving catalog from file")
		return menu, nil, nil
	}

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		return nil, nil, err
	}

	migration := postgres.NewMigration(db.GetDB(), log)
	if err := migration.RunAutoMigrations(); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("Index creation failed")
	}
	if menu != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := migration.SeedCatalog(ctx, menu); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	log.Info("Serving catalog from database")
	return catalog.NewRepository(db.GetDB()), db, nil
}
