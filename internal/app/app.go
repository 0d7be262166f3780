package app

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/varoOP/aniwatch/internal/cache"
	"github.com/varoOP/aniwatch/internal/config"
	"github.com/varoOP/aniwatch/internal/database"
	"github.com/varoOP/aniwatch/internal/domain"
	"github.com/varoOP/aniwatch/internal/logger"
	"github.com/varoOP/aniwatch/internal/mal"
	"github.com/varoOP/aniwatch/internal/scrape"
	"github.com/varoOP/aniwatch/internal/server"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired application: config, database, catalog client, and
// the HTTP server.
type App struct {
	log    zerolog.Logger
	config *domain.Config
	db     *database.DB
	server *server.Server
}

// NewApp loads configuration and initializes every dependency.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	log := logger.NewLoggerWithLevel(cfg.LogLevel)

	if cfg.MalClientID == "" {
		log.Warn().Msg("no mal_client_id configured, catalog pages will render empty")
	}

	db, err := database.NewDB(cfg.DatabaseDir, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize database")
	}

	var reviewSource mal.ReviewSource
	if cfg.ScrapeReviews {
		reviewSource = scrape.NewReviewScraper(log, "")
	}

	catalogCache := cache.New(log, cfg.CacheTTL, nil)
	catalog := mal.NewService(log, cfg, catalogCache, reviewSource)

	srv := server.New(
		log,
		cfg,
		catalog,
		database.NewUserRepo(log, db),
		database.NewWatchlistRepo(log, db),
		database.NewReviewRepo(log, db),
	)

	return &App{
		log:    log,
		config: cfg,
		db:     db,
		server: srv,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		a.closeDB()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server failed")
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("graceful shutdown failed")
	}
	<-errCh

	a.closeDB()
	return nil
}

func (a *App) closeDB() {
	if err := a.db.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close database")
	}
}
