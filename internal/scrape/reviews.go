package scrape

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gocolly/colly"
	"github.com/gocolly/colly/extensions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/varoOP/aniwatch/internal/domain"
)

// ReviewScraper pulls reviews off the public myanimelist.net review pages.
// It backs GetTopReviews when the API itself has no reviews endpoint for a
// record.
type ReviewScraper struct {
	log      zerolog.Logger
	cacheDir string
}

func NewReviewScraper(log zerolog.Logger, cacheDir string) *ReviewScraper {
	return &ReviewScraper{
		log:      log.With().Str("module", "scrape").Logger(),
		cacheDir: cacheDir,
	}
}

// TopReviews scrapes up to limit reviews for the given anime, in the
// order the site lists them.
func (s *ReviewScraper) TopReviews(ctx context.Context, animeID, limit int) ([]domain.Review, error) {
	opts := []func(*colly.Collector){
		colly.AllowedDomains("myanimelist.net"),
	}
	if s.cacheDir != "" {
		opts = append(opts, colly.CacheDir(s.cacheDir))
	}
	c := colly.NewCollector(opts...)

	extensions.RandomUserAgent(c)

	reviews := []domain.Review{}
	c.OnHTML("div.review-element", func(e *colly.HTMLElement) {
		if limit >= 0 && len(reviews) >= limit {
			return
		}

		r := domain.Review{
			Reviewer: strings.TrimSpace(e.ChildText(".username a")),
			Rating:   strings.TrimSpace(e.ChildText(".rating .num")),
			Review:   strings.TrimSpace(e.ChildText(".text")),
			Date:     strings.TrimSpace(e.ChildText(".update_at")),
		}
		if n, err := strconv.Atoi(strings.TrimSpace(e.ChildText(".js-btn-label"))); err == nil {
			r.HelpfulCount = n
		}
		if r.Reviewer == "" {
			r.Reviewer = "Anonymous"
		}
		if r.Rating == "" {
			r.Rating = "N/A"
		}

		reviews = append(reviews, r)
	})

	c.OnRequest(func(r *colly.Request) {
		select {
		case <-ctx.Done():
			r.Abort()
		default:
		}
		s.log.Debug().Str("url", r.URL.String()).Msg("visiting")
	})

	if err := c.Visit(fmt.Sprintf("https://myanimelist.net/anime/%d/reviews", animeID)); err != nil {
		return nil, errors.Wrapf(err, "failed to scrape reviews for anime %d", animeID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}
