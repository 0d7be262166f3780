package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/varoOP/aniwatch/internal/domain"
	"github.com/varoOP/aniwatch/internal/mal"
)

// Server is the JSON HTTP API over the catalog client and the local
// store. Catalog failures never surface as HTTP errors; only local
// database failures do.
type Server struct {
	log       zerolog.Logger
	config    *domain.Config
	catalog   mal.Service
	users     domain.UserRepository
	watchlist domain.WatchlistRepository
	reviews   domain.ReviewRepository
	echo      *echo.Echo
}

func New(
	log zerolog.Logger,
	config *domain.Config,
	catalog mal.Service,
	users domain.UserRepository,
	watchlist domain.WatchlistRepository,
	reviews domain.ReviewRepository,
) *Server {
	s := &Server{
		log:       log.With().Str("module", "server").Logger(),
		config:    config,
		catalog:   catalog,
		users:     users,
		watchlist: watchlist,
		reviews:   reviews,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s.registerRoutes(e)
	s.echo = e
	return s
}

func (s *Server) registerRoutes(e *echo.Echo) {
	e.GET("/", s.handleHome)
	e.GET("/browse", s.handleBrowse)
	e.GET("/anime/:id", s.handleAnimeDetail)
	e.GET("/healthz", s.handleHealth)

	e.POST("/register", s.handleRegister)
	e.POST("/login", s.handleLogin)

	authed := e.Group("", s.requireSession)
	authed.POST("/logout", s.handleLogout)
	authed.GET("/watchlist", s.handleWatchlist)
	authed.POST("/watchlist", s.handleWatchlistAdd)
	authed.POST("/watchlist/:id", s.handleWatchlistUpdate)
	authed.DELETE("/watchlist/:id", s.handleWatchlistDelete)
	authed.POST("/anime/:id/reviews", s.handleReviewAdd)
	authed.DELETE("/reviews/:id", s.handleReviewDelete)
	authed.GET("/profile/:username", s.handleProfile)
}

// Handler exposes the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.config.ListenAddr).Msg("starting http server")
	return s.echo.Start(s.config.ListenAddr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}
