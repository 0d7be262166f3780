package mal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/varoOP/aniwatch/internal/cache"
	"github.com/varoOP/aniwatch/internal/domain"
)

// bulkFetchLimit is the size of the bypopularity list used for local
// genre filtering; the MAL API has no native filter-by-genre.
const bulkFetchLimit = 100

const listFields = "id,title,main_picture,mean,genres,synopsis"

const detailFields = "id,title,main_picture,alternative_titles,start_date,end_date," +
	"synopsis,mean,rank,popularity,num_episodes,genres,studios,status," +
	"average_episode_duration,rating,media_type"

// Service is the catalog client. Every operation is cached through the
// read-through cache and degrades to its empty value on any failure: the
// catalog is a soft dependency and its unavailability must never break
// page rendering. If no client id is configured, no network call is made.
type Service interface {
	GetRanking(ctx context.Context, category domain.RankingCategory, limit int) []domain.MalAnime
	GetTrending(ctx context.Context, limit int) []domain.MalAnime
	GetAnimeByGenre(ctx context.Context, genreID, limit int) []domain.MalAnime
	SearchAnime(ctx context.Context, query string, limit int) []domain.MalAnime
	GetAnimeDetails(ctx context.Context, id int) *domain.MalAnime
	GetTopReviews(ctx context.Context, id, limit int) []domain.Review
}

// ReviewSource supplies reviews when the API cannot. The scrape package
// implements this with a colly collector.
type ReviewSource interface {
	TopReviews(ctx context.Context, animeID, limit int) ([]domain.Review, error)
}

type service struct {
	log     zerolog.Logger
	config  *domain.Config
	cache   *cache.Cache
	client  *http.Client
	reviews ReviewSource
}

type listResponse struct {
	Data []struct {
		Node domain.MalAnime `json:"node"`
	} `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type reviewsResponse struct {
	Data []struct {
		Node struct {
			User struct {
				Name string `json:"name"`
			} `json:"user"`
			Rating       json.Number `json:"rating"`
			Review       string      `json:"review"`
			HelpfulCount int         `json:"helpful_count"`
			Date         string      `json:"date"`
		} `json:"node"`
	} `json:"data"`
}

type clientIDTransport struct {
	Transport http.RoundTripper
	ClientID  string
}

func (c *clientIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if c.Transport == nil {
		c.Transport = http.DefaultTransport
	}
	req.Header.Add("X-MAL-CLIENT-ID", c.ClientID)
	return c.Transport.RoundTrip(req)
}

func NewService(log zerolog.Logger, config *domain.Config, c *cache.Cache, reviews ReviewSource) Service {
	return &service{
		log:    log.With().Str("module", "mal").Logger(),
		config: config,
		cache:  c,
		client: &http.Client{
			Timeout:   config.RequestTimeout,
			Transport: &clientIDTransport{ClientID: config.MalClientID},
		},
		reviews: reviews,
	}
}

func (s *service) GetRanking(ctx context.Context, category domain.RankingCategory, limit int) []domain.MalAnime {
	if s.config.MalClientID == "" {
		return []domain.MalAnime{}
	}
	if !category.Valid() {
		s.log.Warn().Str("category", string(category)).Msg("unknown ranking category")
		return []domain.MalAnime{}
	}

	key := fmt.Sprintf("ranking:%s:%d", category, limit)
	results, err := cache.GetOrCompute(s.cache, key, func() ([]domain.MalAnime, error) {
		return s.fetchRanking(ctx, category, limit)
	})
	if err != nil {
		s.log.Warn().Err(err).Str("category", string(category)).Msg("ranking request failed")
		return []domain.MalAnime{}
	}

	return results
}

func (s *service) GetTrending(ctx context.Context, limit int) []domain.MalAnime {
	return s.GetRanking(ctx, domain.RankingAiring, limit)
}

func (s *service) GetAnimeByGenre(ctx context.Context, genreID, limit int) []domain.MalAnime {
	if s.config.MalClientID == "" {
		return []domain.MalAnime{}
	}
	if limit < 0 {
		limit = 0
	}

	key := fmt.Sprintf("genre_filtered:%d:%d", genreID, limit)
	results, err := cache.GetOrCompute(s.cache, key, func() ([]domain.MalAnime, error) {
		bulkKey := fmt.Sprintf("ranking:%s:%d", domain.RankingByPopularity, bulkFetchLimit)
		bulk, err := cache.GetOrCompute(s.cache, bulkKey, func() ([]domain.MalAnime, error) {
			return s.fetchRanking(ctx, domain.RankingByPopularity, bulkFetchLimit)
		})
		if err != nil {
			return nil, err
		}

		filtered := make([]domain.MalAnime, 0, limit)
		for _, a := range bulk {
			if a.HasGenre(genreID) {
				filtered = append(filtered, a)
			}
		}
		if len(filtered) > limit {
			filtered = filtered[:limit]
		}
		return filtered, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Int("genre_id", genreID).Msg("genre filter request failed")
		return []domain.MalAnime{}
	}

	return results
}

func (s *service) SearchAnime(ctx context.Context, query string, limit int) []domain.MalAnime {
	if s.config.MalClientID == "" {
		return []domain.MalAnime{}
	}

	key := fmt.Sprintf("search:%s:%d", query, limit)
	results, err := cache.GetOrCompute(s.cache, key, func() ([]domain.MalAnime, error) {
		params := url.Values{}
		params.Set("q", query)
		params.Set("limit", strconv.Itoa(limit))
		params.Set("fields", "id,title,main_picture,synopsis,mean,genres,start_date,popularity,media_type")
		return s.fetchList(ctx, s.config.MalBaseURL+"/anime?"+params.Encode())
	})
	if err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("search request failed")
		return []domain.MalAnime{}
	}

	return results
}

func (s *service) GetAnimeDetails(ctx context.Context, id int) *domain.MalAnime {
	if s.config.MalClientID == "" {
		return nil
	}

	key := fmt.Sprintf("anime:%d", id)
	anime, err := cache.GetOrCompute(s.cache, key, func() (*domain.MalAnime, error) {
		params := url.Values{}
		params.Set("fields", detailFields)
		u := fmt.Sprintf("%s/anime/%d?%s", s.config.MalBaseURL, id, params.Encode())

		body, err := s.fetch(ctx, u)
		if err != nil {
			return nil, err
		}

		anime := &domain.MalAnime{}
		if err := json.Unmarshal(body, anime); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal response")
		}
		return anime, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Int("anime_id", id).Msg("details request failed")
		return nil
	}

	return anime
}

func (s *service) GetTopReviews(ctx context.Context, id, limit int) []domain.Review {
	if s.config.MalClientID == "" {
		return []domain.Review{}
	}

	key := fmt.Sprintf("reviews:%d:%d", id, limit)
	reviews, err := cache.GetOrCompute(s.cache, key, func() ([]domain.Review, error) {
		reviews, err := s.fetchReviews(ctx, id, limit)
		if err == nil {
			return reviews, nil
		}

		// The v2 API has no public reviews endpoint for most records; fall
		// back to scraping the public site when that is enabled.
		if s.reviews != nil && s.config.ScrapeReviews {
			s.log.Debug().Err(err).Int("anime_id", id).Msg("reviews endpoint failed, scraping instead")
			return s.reviews.TopReviews(ctx, id, limit)
		}
		return nil, err
	})
	if err != nil {
		s.log.Warn().Err(err).Int("anime_id", id).Msg("reviews request failed")
		return []domain.Review{}
	}

	return reviews
}

func (s *service) fetchRanking(ctx context.Context, category domain.RankingCategory, limit int) ([]domain.MalAnime, error) {
	params := url.Values{}
	params.Set("ranking_type", string(category))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", listFields)
	return s.fetchList(ctx, s.config.MalBaseURL+"/anime/ranking?"+params.Encode())
}

func (s *service) fetchList(ctx context.Context, url string) ([]domain.MalAnime, error) {
	body, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	list := &listResponse{}
	if err := json.Unmarshal(body, list); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	results := make([]domain.MalAnime, 0, len(list.Data))
	for _, v := range list.Data {
		results = append(results, v.Node)
	}

	return results, nil
}

func (s *service) fetchReviews(ctx context.Context, id, limit int) ([]domain.Review, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "helpful")
	u := fmt.Sprintf("%s/anime/%d/reviews?%s", s.config.MalBaseURL, id, params.Encode())

	body, err := s.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	resp := &reviewsResponse{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	reviews := make([]domain.Review, 0, len(resp.Data))
	for _, v := range resp.Data {
		r := domain.Review{
			Reviewer:     v.Node.User.Name,
			Rating:       v.Node.Rating.String(),
			Review:       v.Node.Review,
			HelpfulCount: v.Node.HelpfulCount,
			Date:         v.Node.Date,
		}
		if r.Reviewer == "" {
			r.Reviewer = "Anonymous"
		}
		if r.Rating == "" {
			r.Rating = "N/A"
		}
		reviews = append(reviews, r)
	}

	return reviews, nil
}

func (s *service) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	return body, nil
}
