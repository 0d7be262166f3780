package domain

import "encoding/json"

// MalAnime is a single catalog record as returned by the MyAnimeList v2 API.
// Cached values keep this raw shape untouched; normalization for display
// happens at read time in the format package.
type MalAnime struct {
	ID                     int               `json:"id"`
	Title                  string            `json:"title"`
	MainPicture            MainPicture       `json:"main_picture"`
	AlternativeTitles      AlternativeTitles `json:"alternative_titles"`
	StartDate              string            `json:"start_date"`
	EndDate                string            `json:"end_date"`
	Synopsis               string            `json:"synopsis"`
	Mean                   json.Number       `json:"mean"`
	Rank                   int               `json:"rank"`
	Popularity             int               `json:"popularity"`
	NumEpisodes            int               `json:"num_episodes"`
	Genres                 []NamedEntity     `json:"genres"`
	Studios                []NamedEntity     `json:"studios"`
	Status                 string            `json:"status"`
	Rating                 string            `json:"rating"`
	AverageEpisodeDuration int               `json:"average_episode_duration"`
	MediaType              string            `json:"media_type"`
}

type MainPicture struct {
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

type AlternativeTitles struct {
	Synonyms []string `json:"synonyms"`
	English  string   `json:"en"`
	Japanese string   `json:"ja"`
}

// NamedEntity is a MAL id/name pair, used for genres and studios.
type NamedEntity struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// HasGenre reports whether the record carries the given MAL genre id.
func (a *MalAnime) HasGenre(genreID int) bool {
	for _, g := range a.Genres {
		if g.ID == genreID {
			return true
		}
	}
	return false
}

// Review is a simplified upstream review, reduced to the fields the
// detail page renders.
type Review struct {
	Reviewer     string `json:"reviewer"`
	Rating       string `json:"rating"`
	Review       string `json:"review"`
	HelpfulCount int    `json:"helpful_count"`
	Date         string `json:"date"`
}

// RankingCategory is a MAL ranking_type value.
type RankingCategory string

const (
	RankingAll          RankingCategory = "all"
	RankingAiring       RankingCategory = "airing"
	RankingUpcoming     RankingCategory = "upcoming"
	RankingTV           RankingCategory = "tv"
	RankingOVA          RankingCategory = "ova"
	RankingMovie        RankingCategory = "movie"
	RankingSpecial      RankingCategory = "special"
	RankingByPopularity RankingCategory = "bypopularity"
	RankingFavorite     RankingCategory = "favorite"
)

func (c RankingCategory) Valid() bool {
	switch c {
	case RankingAll, RankingAiring, RankingUpcoming, RankingTV, RankingOVA,
		RankingMovie, RankingSpecial, RankingByPopularity, RankingFavorite:
		return true
	}
	return false
}
