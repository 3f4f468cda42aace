package tmdb

import (
	"sort"
	"sync"
)

// Image URL bases. Cards use w500 posters, the banner uses the original
// backdrop.
const (
	ImageBaseW500     = "https://image.tmdb.org/t/p/w500"
	ImageBaseOriginal = "https://image.tmdb.org/t/p/original"
)

// defaultGenres is the compiled-in movie genre mapping, used until (or
// instead of) a live fetch from /genre/movie/list.
var defaultGenres = map[int64]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// GenreIndex maps genre ids to display names. Loaded once at startup and
// read-only afterwards.
type GenreIndex struct {
	mu    sync.RWMutex
	names map[int64]string
}

func NewGenreIndex() *GenreIndex {
	names := make(map[int64]string, len(defaultGenres))
	for id, name := range defaultGenres {
		names[id] = name
	}
	return &GenreIndex{names: names}
}

// Replace swaps in a freshly fetched mapping. Intended for startup seeding
// only; empty maps are ignored so the compiled-in fallback survives.
func (g *GenreIndex) Replace(names map[int64]string) {
	if len(names) == 0 {
		return
	}
	cp := make(map[int64]string, len(names))
	for id, name := range names {
		cp[id] = name
	}
	g.mu.Lock()
	g.names = cp
	g.mu.Unlock()
}

// Name returns the display name for a genre id, or "" if unknown.
func (g *GenreIndex) Name(id int64) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.names[id]
}

// Names resolves a list of genre ids, skipping unknown ids.
func (g *GenreIndex) Names(ids []int64) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := g.names[id]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Genre is one id/name pair from the index.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// All returns every known genre sorted by name.
func (g *GenreIndex) All() []Genre {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Genre, 0, len(g.names))
	for id, name := range g.names {
		out = append(out, Genre{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
