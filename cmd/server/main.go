// Command server runs the Symposium engagement API: XP, levels, achievements,
// leaderboards and unified search.
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

	"github.com/joho/godotenv"

	"github.com/symposium-labs/engage/internal/api"
	gamificationapi "github.com/symposium-labs/engage/internal/api/gamification"
	searchapi "github.com/symposium-labs/engage/internal/api/search"
	"github.com/symposium-labs/engage/internal/cache"
	"github.com/symposium-labs/engage/internal/config"
	"github.com/symposium-labs/engage/internal/content"
	"github.com/symposium-labs/engage/internal/leveling"
	"github.com/symposium-labs/engage/internal/mattermost"
	"github.com/symposium-labs/engage/internal/migrations"
	"github.com/symposium-labs/engage/internal/notify"
	"github.com/symposium-labs/engage/internal/repository"
	"github.com/symposium-labs/engage/internal/search"
	"github.com/symposium-labs/engage/internal/service/aggregator"
	"github.com/symposium-labs/engage/internal/service/gamification"
	"github.com/symposium-labs/engage/internal/service/leaderboard"
	"github.com/symposium-labs/engage/internal/service/scheduler"
	"github.com/symposium-labs/engage/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Info().
		Str("version", Version).
		Str("environment", cfg.Server.Environment).
		Str("database", cfg.Database.Driver).
		Msg("Starting symposium-engage")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	db, err := repository.NewDB(&cfg.Database, log.Component("database"))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := migrate(cfg, db, log); err != nil {
		return err
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log.Component("cache"))
	if err != nil {
		return err
	}
	defer func() { _ = redisCache.Close() }()

	statsRepo := repository.NewStatsRepository(db)
	xpRepo := repository.NewXPRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(db)

	if err := seedContent(ctx, cfg, contentRepo, log); err != nil {
		return err
	}

	location, err := cfg.Scheduler.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	// Leveling
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	feed := notify.NewFeed(cfg.Gamification.NotificationTTL)
	chat := mattermost.NewClient(&cfg.Mattermost, log.Component("mattermost"))

	gamificationService := gamification.NewService(
		engine,
		statsRepo,
		userRepo,
		log.Component("gamification"),
		gamification.WithAnnouncer(chat),
		gamification.WithFeed(feed),
		gamification.WithHolderCounter(achievementRepo),
		gamification.WithUnlockHistory(achievementRepo),
		gamification.WithLedger(xpRepo),
		gamification.WithLocation(location),
	)
	leaderboardService := leaderboard.NewService(statsRepo, xpRepo, userRepo, engine.Ranks(), location, log.Component("leaderboard"))
	aggregatorService := aggregator.NewService(xpRepo, location, log.Component("aggregator"))

	// Search
	searchService := search.NewService(contentRepo, cfg.Search, log.Component("search"))
	recent := search.NewRecentSearches(
		search.NewCacheRecentStore(redisCache, cfg.Search.RecentTTL),
		cfg.Search.RecentLimit,
		log.Component("recent_searches"),
	)

	// Background jobs
	sched := scheduler.NewService(&cfg.Scheduler, aggregatorService, gamificationService, feed, log.Component("scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	router := api.NewRouter(api.Router{
		Config: cfg,
		Log:    log.Component("http"),
		Health: map[string]api.HealthChecker{
			"database": func(context.Context) error { return db.Health() },
			"redis":    redisCache.Health,
		},
		Handlers: []api.RouteRegistrar{
			gamificationapi.NewHandler(gamificationService, leaderboardService, cfg.Gamification.LeaderboardLimit, log.Component("api")),
			searchapi.NewHandler(searchService, recent, search.StaticTrending{}, log.Component("api")),
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exited")
	return nil
}

// migrate applies the embedded SQL migrations on postgres and auto-migrates
// everywhere else.
func migrate(cfg *config.Config, db *repository.DB, log *logger.Logger) error {
	if cfg.Database.Driver == "postgres" && cfg.Database.Postgres.RunMigrations {
		if err := migrations.Up(cfg.Database.Postgres.URL(), log.Component("migrations")); err != nil {
			return err
		}
		return nil
	}
	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}

func seedContent(ctx context.Context, cfg *config.Config, repo *repository.ContentRepository, log *logger.Logger) error {
	var (
		seed *content.Seed
		err  error
	)
	if cfg.Content.SeedPath != "" {
		seed, err = content.Load(cfg.Content.SeedPath)
	} else {
		seed, err = content.Default()
	}
	if err != nil {
		return fmt.Errorf("failed to load content seed: %w", err)
	}

	if err := repo.Seed(ctx, seed); err != nil {
		return err
	}

	counts, err := repo.Counts(ctx)
	if err != nil {
		return err
	}
	event := log.Info()
	for table, n := range counts {
		event = event.Int64(table, n)
	}
	event.Msg("Content catalog seeded")
	return nil
}

func newEngine(cfg *config.Config) (*leveling.Engine, error) {
	opts := []leveling.Option{leveling.WithLevelUpBonus(cfg.Gamification.LevelUpBonus)}

	if cfg.Gamification.CatalogPath != "" {
		catalog, err := leveling.LoadCatalog(cfg.Gamification.CatalogPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, leveling.WithCatalog(catalog))
	}

	return leveling.NewEngine(opts...), nil
}
