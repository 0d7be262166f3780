package format

import (
	"strconv"
	"strings"

	"github.com/varoOP/aniwatch/internal/domain"
)

// synopsisLimit is the display length cap; longer synopses are cut to
// synopsisCut characters plus an ellipsis marker.
const (
	synopsisLimit = 500
	synopsisCut   = 497
)

// Format normalizes a raw MAL record into the flat shape consumed by
// presentation code. A nil input yields nil; any missing or malformed
// field degrades to its documented default, never an error.
func Format(raw *domain.MalAnime) *domain.Anime {
	if raw == nil {
		return nil
	}

	a := &domain.Anime{
		ID:                     raw.ID,
		Title:                  raw.Title,
		EnglishTitle:           raw.AlternativeTitles.English,
		Synonyms:               raw.AlternativeTitles.Synonyms,
		PosterURL:              pickPicture(raw.MainPicture),
		Synopsis:               truncateSynopsis(raw.Synopsis),
		FullSynopsis:           raw.Synopsis,
		Year:                   parseYear(raw.StartDate),
		StartDate:              raw.StartDate,
		EndDate:                raw.EndDate,
		NumEpisodes:            raw.NumEpisodes,
		Mean:                   parseMean(raw.Mean.String()),
		Rank:                   raw.Rank,
		Popularity:             raw.Popularity,
		Genres:                 entityNames(raw.Genres),
		Studios:                entityNames(raw.Studios),
		Status:                 strings.ToLower(raw.Status),
		Rating:                 raw.Rating,
		AverageEpisodeDuration: raw.AverageEpisodeDuration,
		MediaType:              raw.MediaType,
	}

	if a.Title == "" {
		a.Title = "Unknown"
	}
	if a.Synonyms == nil {
		a.Synonyms = []string{}
	}

	return a
}

// FormatAll normalizes a list of raw records, preserving order.
func FormatAll(raw []domain.MalAnime) []domain.Anime {
	results := make([]domain.Anime, 0, len(raw))
	for i := range raw {
		results = append(results, *Format(&raw[i]))
	}
	return results
}

// pickPicture prefers the medium image, falls back to large, else empty.
func pickPicture(p domain.MainPicture) string {
	if p.Medium != "" {
		return p.Medium
	}
	return p.Large
}

// parseYear extracts the leading numeric year from a date that may be a
// bare year or a full YYYY-MM-DD date. Parse failure yields nil.
func parseYear(date string) *int {
	if date == "" {
		return nil
	}
	head, _, _ := strings.Cut(date, "-")
	year, err := strconv.Atoi(head)
	if err != nil {
		return nil
	}
	return &year
}

func parseMean(mean string) *float64 {
	if mean == "" {
		return nil
	}
	f, err := strconv.ParseFloat(mean, 64)
	if err != nil {
		return nil
	}
	return &f
}

func truncateSynopsis(synopsis string) string {
	runes := []rune(synopsis)
	if len(runes) <= synopsisLimit {
		return synopsis
	}
	return string(runes[:synopsisCut]) + "..."
}

func entityNames(entities []domain.NamedEntity) []string {
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}
	return names
}
