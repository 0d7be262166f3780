package domain

import (
	"sort"
	"strings"
)

// genreIDs maps genre names to MAL genre ids.
// Reference: https://myanimelist.net/anime/genre
var genreIDs = map[string]int{
	"action":        1,
	"adventure":     2,
	"comedy":        4,
	"drama":         8,
	"fantasy":       10,
	"horror":        14,
	"romance":       22,
	"sci-fi":        24,
	"slice of life": 36,
	"sports":        30,
	"supernatural":  37,
	"mystery":       7,
	"psychological": 40,
	"thriller":      41,
	"music":         19,
	"ecchi":         9,
	"mecha":         18,
}

// DefaultGenreIDs returns a copy of the built-in genre mapping.
func DefaultGenreIDs() map[string]int {
	m := make(map[string]int, len(genreIDs))
	for k, v := range genreIDs {
		m[k] = v
	}
	return m
}

// GenreID looks up a MAL genre id by name, case-insensitively.
func GenreID(genres map[string]int, name string) (int, bool) {
	id, ok := genres[strings.ToLower(name)]
	return id, ok
}

// GenreNames returns the known genre names in sorted order.
func GenreNames(genres map[string]int) []string {
	names := make([]string, 0, len(genres))
	for name := range genres {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
