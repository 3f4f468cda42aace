package watchlist

import (
	"sort"
	"strings"

	"reelist-server/internal/model"
	"reelist-server/pkg/tmdb"
)

// AllGenres is the filter value that passes every entry.
const AllGenres = "All Genres"

// SortDir orders the rating sort.
type SortDir int

const (
	Unsorted SortDir = iota
	Ascending
	Descending
)

// Projections are pure functions of (snapshot, parameters). The raw snapshot
// stays the single source of truth; nothing here is persisted.

// SortByRating returns a copy of entries ordered by vote average. Unsorted
// returns the input order unchanged.
func SortByRating(entries []model.WatchlistEntry, dir SortDir) []model.WatchlistEntry {
	out := make([]model.WatchlistEntry, len(entries))
	copy(out, entries)
	switch dir {
	case Ascending:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Movie.VoteAverage < out[j].Movie.VoteAverage
		})
	case Descending:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Movie.VoteAverage > out[j].Movie.VoteAverage
		})
	}
	return out
}

// FilterGenre keeps entries with at least one genre id resolving to the given
// name. AllGenres passes everything.
func FilterGenre(entries []model.WatchlistEntry, genres *tmdb.GenreIndex, genre string) []model.WatchlistEntry {
	if genre == "" || genre == AllGenres {
		return entries
	}
	out := make([]model.WatchlistEntry, 0, len(entries))
	for _, e := range entries {
		for _, id := range e.Movie.GenreIDs {
			if genres.Name(id) == genre {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// FilterTitle keeps entries whose title contains the trimmed query,
// case-insensitively. An empty query passes everything.
func FilterTitle(entries []model.WatchlistEntry, query string) []model.WatchlistEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}
	out := make([]model.WatchlistEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Movie.Title), q) {
			out = append(out, e)
		}
	}
	return out
}

// Project composes the three views: sort, then genre filter, then text filter.
func Project(entries []model.WatchlistEntry, genres *tmdb.GenreIndex, dir SortDir, genre, query string) []model.WatchlistEntry {
	return FilterTitle(FilterGenre(SortByRating(entries, dir), genres, genre), query)
}

// AvailableGenres derives the sorted distinct genre names present across all
// entries, prefixed with AllGenres.
func AvailableGenres(entries []model.WatchlistEntry, genres *tmdb.GenreIndex) []string {
	seen := make(map[string]struct{})
	for _, e := range entries {
		for _, id := range e.Movie.GenreIDs {
			if name := genres.Name(id); name != "" {
				seen[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{AllGenres}, names...)
}
