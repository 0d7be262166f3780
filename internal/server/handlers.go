package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/varoOP/aniwatch/internal/domain"
	"github.com/varoOP/aniwatch/internal/format"
)

const (
	trendingLimit     = 10
	searchLimit       = 12
	genreSectionLimit = 10
	topReviewLimit    = 3
)

// homeGenres are the genre rows rendered on the landing page.
var homeGenres = []string{"action", "comedy", "romance", "fantasy"}

func (s *Server) handleHome(c echo.Context) error {
	ctx := c.Request().Context()

	trending := format.FormatAll(s.catalog.GetTrending(ctx, trendingLimit))

	sections := map[string][]domain.Anime{}
	for _, name := range homeGenres {
		id, ok := domain.GenreID(s.config.GenreIDs, name)
		if !ok {
			continue
		}
		sections[name] = format.FormatAll(s.catalog.GetAnimeByGenre(ctx, id, genreSectionLimit))
	}

	var spotlight *domain.Anime
	if len(trending) > 0 {
		spotlight = &trending[0]
	}

	return c.JSON(http.StatusOK, map[string]any{
		"spotlight":      spotlight,
		"trending":       trending,
		"genre_sections": sections,
	})
}

func (s *Server) handleBrowse(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))

	limit := searchLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	// An empty query never reaches upstream.
	items := []domain.Anime{}
	if q != "" {
		items = format.FormatAll(s.catalog.SearchAnime(c.Request().Context(), q, limit))
	}

	return c.JSON(http.StatusOK, map[string]any{
		"q":     q,
		"items": items,
	})
}

func (s *Server) handleAnimeDetail(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid anime id")
	}
	ctx := c.Request().Context()

	raw := s.catalog.GetAnimeDetails(ctx, id)
	if raw == nil {
		return errorJSON(c, http.StatusNotFound, "anime not found")
	}

	localReviews, err := s.reviews.ListByAnime(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int("mal_id", id).Msg("failed to list reviews")
		return errorJSON(c, http.StatusInternalServerError, "failed to load reviews")
	}

	// The watchlist row is optional context; an anonymous caller just
	// gets null.
	var userWatch *domain.WatchlistEntry
	if userID, _, err := s.parseSession(c); err == nil {
		entry, err := s.watchlist.Find(ctx, userID, id)
		if err == nil {
			userWatch = entry
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error().Err(err).Int64("user_id", userID).Msg("failed to load watchlist entry")
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"anime":       format.Format(raw),
		"top_reviews": s.catalog.GetTopReviews(ctx, id, topReviewLimit),
		"reviews":     localReviews,
		"user_watch":  userWatch,
		"statuses":    domain.WatchStatuses(),
	})
}

// watchlistItem joins a watchlist row with its catalog record; anime is
// null when the catalog is degraded.
type watchlistItem struct {
	Entry domain.WatchlistEntry `json:"entry"`
	Anime *domain.Anime         `json:"anime"`
}

func (s *Server) handleWatchlist(c echo.Context) error {
	ctx := c.Request().Context()
	userID := currentUserID(c)

	entries, err := s.watchlist.ListByUser(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("failed to list watchlist")
		return errorJSON(c, http.StatusInternalServerError, "failed to load watchlist")
	}

	items := make([]watchlistItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, watchlistItem{
			Entry: entry,
			Anime: format.Format(s.catalog.GetAnimeDetails(ctx, entry.MalID)),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items":    items,
		"statuses": domain.WatchStatuses(),
	})
}

type watchlistRequest struct {
	MalID           int    `json:"mal_id" form:"mal_id"`
	Status          string `json:"status" form:"status"`
	EpisodesWatched int    `json:"episodes_watched" form:"episodes_watched"`
}

func (s *Server) handleWatchlistAdd(c echo.Context) error {
	req := &watchlistRequest{}
	if err := c.Bind(req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	status := domain.WatchStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if req.MalID <= 0 || !status.Valid() {
		return errorJSON(c, http.StatusBadRequest, "invalid input")
	}
	if req.EpisodesWatched < 0 {
		req.EpisodesWatched = 0
	}

	entry := &domain.WatchlistEntry{
		UserID:          currentUserID(c),
		MalID:           req.MalID,
		Status:          status,
		EpisodesWatched: req.EpisodesWatched,
	}
	if err := s.watchlist.Upsert(c.Request().Context(), entry); err != nil {
		s.log.Error().Err(err).Int("mal_id", req.MalID).Msg("failed to upsert watchlist entry")
		return errorJSON(c, http.StatusInternalServerError, "failed to update watchlist")
	}

	return c.JSON(http.StatusOK, entry)
}

func (s *Server) handleWatchlistUpdate(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid watchlist id")
	}

	req := &watchlistRequest{}
	if err := c.Bind(req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	status := domain.WatchStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return errorJSON(c, http.StatusBadRequest, "invalid status")
	}
	if req.EpisodesWatched < 0 {
		req.EpisodesWatched = 0
	}

	err = s.watchlist.Update(c.Request().Context(), id, currentUserID(c), status, req.EpisodesWatched)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "watchlist entry not found")
		}
		s.log.Error().Err(err).Int64("id", id).Msg("failed to update watchlist entry")
		return errorJSON(c, http.StatusInternalServerError, "failed to update entry")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleWatchlistDelete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid watchlist id")
	}

	err = s.watchlist.Delete(c.Request().Context(), id, currentUserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "watchlist entry not found")
		}
		s.log.Error().Err(err).Int64("id", id).Msg("failed to delete watchlist entry")
		return errorJSON(c, http.StatusInternalServerError, "failed to remove entry")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "removed"})
}

type reviewRequest struct {
	Rating int    `json:"rating" form:"rating"`
	Text   string `json:"review_text" form:"review_text"`
}

func (s *Server) handleReviewAdd(c echo.Context) error {
	malID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid anime id")
	}

	req := &reviewRequest{}
	if err := c.Bind(req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if req.Rating < 1 || req.Rating > 10 {
		return errorJSON(c, http.StatusBadRequest, "rating must be between 1 and 10")
	}

	review := &domain.LocalReview{
		UserID: currentUserID(c),
		MalID:  malID,
		Rating: req.Rating,
		Text:   strings.TrimSpace(req.Text),
	}
	if err := s.reviews.Upsert(c.Request().Context(), review); err != nil {
		s.log.Error().Err(err).Int("mal_id", malID).Msg("failed to save review")
		return errorJSON(c, http.StatusInternalServerError, "failed to save review")
	}

	return c.JSON(http.StatusOK, review)
}

func (s *Server) handleReviewDelete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid review id")
	}

	err = s.reviews.Delete(c.Request().Context(), id, currentUserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "review not found")
		}
		s.log.Error().Err(err).Int64("id", id).Msg("failed to delete review")
		return errorJSON(c, http.StatusInternalServerError, "failed to delete review")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleProfile(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := s.users.FindByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "user not found")
		}
		s.log.Error().Err(err).Msg("failed to look up user")
		return errorJSON(c, http.StatusInternalServerError, "failed to load profile")
	}

	entries, err := s.watchlist.ListByUser(ctx, user.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to list watchlist")
		return errorJSON(c, http.StatusInternalServerError, "failed to load profile")
	}

	reviews, err := s.reviews.ListByUser(ctx, user.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to list reviews")
		return errorJSON(c, http.StatusInternalServerError, "failed to load profile")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user":      user,
		"watchlist": entries,
		"reviews":   reviews,
	})
}
