package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"landmark-quest-system/config"
	"landmark-quest-system/handlers"
	"landmark-quest-system/models"
	"landmark-quest-system/services"
	"landmark-quest-system/utils"
	"landmark-quest-system/workers"

	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	game := cfg.Game
	catalog, err := services.NewCatalogService(db, 0)
	if err != nil {
		log.Fatal(err)
	}
	players := services.NewPlayerService(db, game.ExperiencePerLevel)
	observations := services.NewObservationService(db)
	captures := services.NewCaptureService(db, game.CaptureCooldown)
	assignments := services.NewAssignmentService(db, catalog, game.DailyQuestMin, game.DailyQuestMax, game.Location)
	assignments.Workers = game.RolloverWorkers
	progress := services.NewProgressService(db, game.Location)
	rewards := services.NewRewardService(db, catalog, players, game.Location)

	observations.Subscribe(progress)
	captures.Subscribe(progress)

	source := catalogSource(ctx, cfg)
	if source != nil {
		if _, err := catalog.RefreshCatalog(ctx, source); err != nil {
			log.Printf("⚠️  Initial catalog load failed: %v", err)
		}
	}

	scheduler := &services.Scheduler{
		Assignments:    assignments,
		Catalog:        catalog,
		CatalogSource:  source,
		CatalogRefresh: game.CatalogRefresh,
		Location:       game.Location,
	}
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer scheduler.Stop()

	if cfg.SyncServiceURL != "" {
		client := utils.NewServiceClient(cfg.SyncServiceURL, cfg.GameServiceToken)
		workers.NewPlayerSyncWorker(db, client, time.Minute).Start(ctx)
		go workers.PollClans(ctx, workers.NewClanSyncClient(db, client), 5*time.Minute)
	} else {
		log.Println("⚠️  SYNC_SERVICE_URL not set, profile and clan sync disabled")
	}

	app := handlers.NewApp()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupRoutes(app, handlers.Services{
		Players:      players,
		Observations: observations,
		Captures:     captures,
		Assignments:  assignments,
		Progress:     progress,
		Rewards:      rewards,
	}, cfg.GameServiceToken)

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on %s", cfg.ListenAddr)
	log.Printf("✅ Capture cooldown %s, %d-%d daily quests, game timezone %s",
		game.CaptureCooldown, game.DailyQuestMin, game.DailyQuestMax, game.Location)
	log.Printf("✅ CORS configured for origins: %s", strings.Join(cfg.AllowedOrigins, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func catalogSource(ctx context.Context, cfg *config.Config) services.CatalogSource {
	switch {
	case cfg.QuestCatalogKey != "" && cfg.R2Enabled():
		r2, err := utils.NewR2Client(ctx, utils.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
		})
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		return services.ObjectCatalogSource{Fetcher: r2, Key: cfg.QuestCatalogKey}
	case cfg.QuestCatalogFile != "":
		return services.FileCatalogSource{Path: cfg.QuestCatalogFile}
	}
	log.Println("⚠️  No quest catalog source configured, serving quests already in the database")
	return nil
}
