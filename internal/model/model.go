package model

import "time"

// Browse categories accepted by the catalog.
const (
	CategoryPopular    = "popular"
	CategoryNowPlaying = "now_playing"
	CategoryTopRated   = "top_rated"
	CategoryUpcoming   = "upcoming"
)

var AllowedCategories = map[string]struct{}{
	CategoryPopular:    {},
	CategoryNowPlaying: {},
	CategoryTopRated:   {},
	CategoryUpcoming:   {},
}

// MovieSummary is one catalog result. The catalog owns this data; it is
// immutable once fetched.
type MovieSummary struct {
	ID           int64   `json:"id"` // TMDb id
	Title        string  `json:"title"`
	Overview     *string `json:"overview,omitempty"`
	PosterPath   *string `json:"poster_path,omitempty"`
	BackdropPath *string `json:"backdrop_path,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int64 `json:"genre_ids"`
	ReleaseDate  string  `json:"release_date,omitempty"` // YYYY-MM-DD, may be empty
}

// WatchlistEntry is a denormalized movie snapshot saved under a user.
// At most one entry exists per (user, movie id); re-adding replaces it.
type WatchlistEntry struct {
	Movie     MovieSummary `json:"movie"`
	DateAdded time.Time    `json:"date_added"`
}

// BrowsePage is one page of catalog results. Transient: recomputed on every
// query parameter change, never persisted.
type BrowsePage struct {
	Items        []MovieSummary `json:"items"`
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session mirrors the auth backend's current-user value.
// A zero UserID means no user is signed in.
type Session struct {
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Authenticated reports whether the session carries a signed-in user.
func (s Session) Authenticated() bool { return s.UserID != "" }
