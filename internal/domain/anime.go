package domain

// Anime is the normalized catalog record consumed by presentation code.
// Every field has a defined default so callers never need to null-check
// individual fields.
type Anime struct {
	ID                     int      `json:"id"`
	Title                  string   `json:"title"`
	EnglishTitle           string   `json:"english_title"`
	Synonyms               []string `json:"synonyms"`
	PosterURL              string   `json:"poster_url"`
	Synopsis               string   `json:"synopsis"`
	FullSynopsis           string   `json:"full_synopsis"`
	Year                   *int     `json:"year"`
	StartDate              string   `json:"start_date"`
	EndDate                string   `json:"end_date"`
	NumEpisodes            int      `json:"num_episodes"`
	Mean                   *float64 `json:"mean"`
	Rank                   int      `json:"rank"`
	Popularity             int      `json:"popularity"`
	Genres                 []string `json:"genres"`
	Studios                []string `json:"studios"`
	Status                 string   `json:"status"`
	Rating                 string   `json:"rating"`
	AverageEpisodeDuration int      `json:"average_episode_duration"`
	MediaType              string   `json:"media_type"`
}
