package mal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varoOP/aniwatch/internal/cache"
	"github.com/varoOP/aniwatch/internal/domain"
)

const bulkBody = `{"data":[
	{"node":{"id":1,"title":"A","genres":[{"id":1,"name":"Action"},{"id":2,"name":"Adventure"}]}},
	{"node":{"id":2,"title":"B","genres":[{"id":2,"name":"Adventure"}]}},
	{"node":{"id":3,"title":"C","genres":[{"id":1,"name":"Action"}]}}
]}`

type fakeUpstream struct {
	*httptest.Server
	requests int
	handler  http.HandlerFunc
}

func newFakeUpstream(t *testing.T, handler http.HandlerFunc) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{handler: handler}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		assert.Equal(t, "test-client", r.Header.Get("X-MAL-CLIENT-ID"))
		f.handler(w, r)
	}))
	t.Cleanup(f.Server.Close)
	return f
}

func newTestService(upstreamURL, clientID string) Service {
	cfg := &domain.Config{
		MalClientID:    clientID,
		MalBaseURL:     upstreamURL,
		RequestTimeout: 5 * time.Second,
		CacheTTL:       300 * time.Second,
	}
	return NewService(zerolog.Nop(), cfg, cache.New(zerolog.Nop(), cfg.CacheTTL, nil), nil)
}

func TestService_NoCredentialShortCircuits(t *testing.T) {
	upstream := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call may be made without a credential")
	})

	s := newTestService(upstream.URL, "")
	ctx := context.Background()

	assert.Empty(t, s.GetRanking(ctx, domain.RankingAll, 5))
	assert.Empty(t, s.GetTrending(ctx, 10))
	assert.Empty(t, s.GetAnimeByGenre(ctx, 1, 10))
	assert.Empty(t, s.SearchAnime(ctx, "bleach", 12))
	assert.Nil(t, s.GetAnimeDetails(ctx, 42))
	assert.Empty(t, s.GetTopReviews(ctx, 42, 3))
	assert.Equal(t, 0, upstream.requests)
}

func TestService_DegradesOnUpstreamFailure(t *testing.T) {
	upstream := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	s := newTestService(upstream.URL, "test-client")
	ctx := context.Background()

	assert.Empty(t, s.GetRanking(ctx, domain.RankingAiring, 10))
	assert.Empty(t, s.GetAnimeByGenre(ctx, 1, 10))
	assert.Empty(t, s.SearchAnime(ctx, "bleach", 12))
	assert.Nil(t, s.GetAnimeDetails(ctx, 42))
	assert.Empty(t, s.GetTopReviews(ctx, 42, 3))
	assert.Equal(t, 5, upstream.requests)
}

func TestService_DegradesOnMalformedPayload(t *testing.T) {
	upstream := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	s := newTestService(upstream.URL, "test-client")

	assert.Empty(t, s.GetRanking(context.Background(), domain.RankingAll, 5))
	assert.Nil(t, s.GetAnimeDetails(context.Background(), 42))
}

func TestGetRanking_CachesPerKey(t *testing.T) {
	upstream := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime/ranking", r.URL.Path)
		w.Write([]byte(`{"data":[{"node":{"id":1,"title":"A"}}]}`))
	})

	s := newTestService(upstream.URL, "test-client")
	ctx := context.Background()

	first := s.GetRanking(ctx, domain.RankingAiring, 10)
	require.Len(t, first, 1)
	assert.Equal(t, "A", first[0].Title)

	second := s.GetRanking(ctx, domain.RankingAiring, 10)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, upstream.requests, "repeated call must be served from cache")

	// A different limit is a different key.
	s.GetRanking(ctx, domain.RankingAiring, 5)
	assert.Equal(t, 2, upstream.requests)

	// A different category is a different key.
	s.GetRanking(ctx, domain.RankingAll, 10)
	assert.Equal(t, 3, upstream.requests)
}

func TestGetRanking_RejectsUnknownCategory(t *testing.T) {
	upstream := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid categories never reach upstream")
	})

	s := newTestService(upstream.URL, "test-client")
	assert.Empty(t, s.GetRanking(context.Background(), "bogus", 10))
}

func TestGetTrending_IsAiringRanking(t *testing.T) {
	upstream := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "airing", r.URL.Query().Get("ranking_type"))
		w.Write([]byte(`{"data":[{"node":{"id":7,"title":"T"}}]}`))
	})

	s := newTestService(upstream.URL, "test-client")
	ctx := context.Background()

	trending := s.GetTrending(ctx, 10)
	require.Len(t, trending, 1)

	// Shares the ranking cache key, so no second request.
	s.GetRanking(ctx, domain.RankingAiring, 10)
	assert.Equal(t, 1, upstream.requests)
}

func TestGetAnimeByGenre_FiltersLocally(t *testing.T) {
	upstream := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime/ranking", r.URL.Path)
		assert.Equal(t, "bypopularity", r.URL.Query().Get("ranking_type"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		w.Write([]byte(bulkBody))
	})

	s := newTestService(upstream.URL, "test-client")
	ctx := context.Background()

	got := s.GetAnimeByGenre(ctx, 1, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "C", got[1].Title)

	// Truncation to limit, preserving upstream order.
	got = s.GetAnimeByGenre(ctx, 1, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)

	// No matches for an unknown genre id.
	assert.Empty(t, s.GetAnimeByGenre(ctx, 99, 10))

	// The bulk bypopularity fetch is cached once and reused across
	// every distinct (genre, limit) pair.
	assert.Equal(t, 1, upstream.requests)
}

func TestSearchAnime_PassesQueryThrough(t *testing.T) {
	upstream := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime", r.URL.Path)
		assert.Equal(t, "bleach", r.URL.Query().Get("q"))
		assert.Equal(t, "12", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":[{"node":{"id":269,"title":"Bleach"}}]}`))
	})

	s := newTestService(upstream.URL, "test-client")

	got := s.SearchAnime(context.Background(), "bleach", 12)
	require.Len(t, got, 1)
	assert.Equal(t, 269, got[0].ID)
}

func TestGetAnimeDetails(t *testing.T) {
	upstream := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/anime/30":
			w.Write([]byte(`{"id":30,"title":"Neon Genesis Evangelion","mean":8.36,"genres":[{"id":18,"name":"Mecha"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	s := newTestService(upstream.URL, "test-client")
	ctx := context.Background()

	got := s.GetAnimeDetails(ctx, 30)
	require.NotNil(t, got)
	assert.Equal(t, "Neon Genesis Evangelion", got.Title)
	assert.True(t, got.HasGenre(18))

	assert.Nil(t, s.GetAnimeDetails(ctx, 404))

	// The hit is cached, the miss is not.
	s.GetAnimeDetails(ctx, 30)
	s.GetAnimeDetails(ctx, 404)
	assert.Equal(t, 3, upstream.requests)
}

func TestGetTopReviews_MapsDefaults(t *testing.T) {
	upstream := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime/42/reviews", r.URL.Path)
		w.Write([]byte(`{"data":[
			{"node":{"user":{"name":"rei"},"rating":9,"review":"good","helpful_count":12,"date":"2026-01-02"}},
			{"node":{"review":"no metadata at all"}}
		]}`))
	})

	s := newTestService(upstream.URL, "test-client")

	got := s.GetTopReviews(context.Background(), 42, 3)
	require.Len(t, got, 2)

	assert.Equal(t, domain.Review{
		Reviewer:     "rei",
		Rating:       "9",
		Review:       "good",
		HelpfulCount: 12,
		Date:         "2026-01-02",
	}, got[0])

	assert.Equal(t, "Anonymous", got[1].Reviewer)
	assert.Equal(t, "N/A", got[1].Rating)
	assert.Equal(t, 0, got[1].HelpfulCount)
}

func TestService_NoNegativeCaching(t *testing.T) {
	healthy := false
	upstream := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[{"node":{"id":1,"title":"A"}}]}`))
	})

	s := newTestService(upstream.URL, "test-client")
	ctx := context.Background()

	assert.Empty(t, s.GetRanking(ctx, domain.RankingAll, 5))

	// The failure was not cached: recovery is visible immediately.
	healthy = true
	got := s.GetRanking(ctx, domain.RankingAll, 5)
	require.Len(t, got, 1)
	assert.Equal(t, 2, upstream.requests)
}

type stubReviewSource struct {
	reviews []domain.Review
	calls   int
}

func (s *stubReviewSource) TopReviews(ctx context.Context, animeID, limit int) ([]domain.Review, error) {
	s.calls++
	return s.reviews, nil
}

func TestGetTopReviews_ScraperFallback(t *testing.T) {
	upstream := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	cfg := &domain.Config{
		MalClientID:    "test-client",
		MalBaseURL:     upstream.URL,
		RequestTimeout: 5 * time.Second,
		CacheTTL:       300 * time.Second,
		ScrapeReviews:  true,
	}
	source := &stubReviewSource{reviews: []domain.Review{{Reviewer: "asuka", Rating: "8"}}}
	s := NewService(zerolog.Nop(), cfg, cache.New(zerolog.Nop(), cfg.CacheTTL, nil), source)

	got := s.GetTopReviews(context.Background(), 42, 3)
	require.Len(t, got, 1)
	assert.Equal(t, "asuka", got[0].Reviewer)
	assert.Equal(t, 1, source.calls)

	// The scraped result is cached like any other value.
	s.GetTopReviews(context.Background(), 42, 3)
	assert.Equal(t, 1, source.calls)
}
