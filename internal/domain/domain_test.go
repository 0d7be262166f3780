package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenreID_CaseInsensitive(t *testing.T) {
	genres := DefaultGenreIDs()

	id, ok := GenreID(genres, "Action")
	assert.True(t, ok)
	assert.Equal(t, 1, id)

	id, ok = GenreID(genres, "SLICE OF LIFE")
	assert.True(t, ok)
	assert.Equal(t, 36, id)

	_, ok = GenreID(genres, "isekai")
	assert.False(t, ok)
}

func TestDefaultGenreIDs_ReturnsCopy(t *testing.T) {
	first := DefaultGenreIDs()
	first["action"] = 999

	assert.Equal(t, 1, DefaultGenreIDs()["action"])
}

func TestGenreNames_Sorted(t *testing.T) {
	names := GenreNames(map[string]int{"romance": 22, "action": 1, "mecha": 18})
	assert.Equal(t, []string{"action", "mecha", "romance"}, names)
}

func TestRankingCategory_Valid(t *testing.T) {
	for _, c := range []RankingCategory{
		RankingAll, RankingAiring, RankingUpcoming, RankingTV, RankingOVA,
		RankingMovie, RankingSpecial, RankingByPopularity, RankingFavorite,
	} {
		assert.True(t, c.Valid(), string(c))
	}

	assert.False(t, RankingCategory("trending").Valid())
	assert.False(t, RankingCategory("").Valid())
}

func TestWatchStatus_Valid(t *testing.T) {
	for _, s := range WatchStatuses() {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, WatchStatus("rewatching").Valid())
}

func TestHasGenre(t *testing.T) {
	a := &MalAnime{Genres: []NamedEntity{{ID: 1, Name: "Action"}, {ID: 18, Name: "Mecha"}}}

	assert.True(t, a.HasGenre(1))
	assert.True(t, a.HasGenre(18))
	assert.False(t, a.HasGenre(22))

	empty := &MalAnime{}
	assert.False(t, empty.HasGenre(1))
}
