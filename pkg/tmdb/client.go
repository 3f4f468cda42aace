package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// MaxPages is the deepest page TMDb will serve; total_pages above it is
// clamped so page navigation never points past the ceiling.
const MaxPages = 500

// ErrMissingAPIKey is returned before any network I/O when the client has no
// API key configured.
var ErrMissingAPIKey = errors.New("missing TMDB API key")

type Client struct {
	APIKey   string
	BaseURL  string
	Language string
	Client   *http.Client
}

// Movie is the wire shape of one result item.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int64 `json:"genre_ids"`
	ReleaseDate  string  `json:"release_date"`
}

// Page is the wire shape of a paginated list response.
type Page struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Results      []Movie `json:"results"`
}

type genreListResp struct {
	Genres []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

func New(apiKey string) *Client {
	return &Client{
		APIKey:   apiKey,
		BaseURL:  "https://api.themoviedb.org/3",
		Language: "en-US",
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchPage fetches one page of a browse category (popular, now_playing,
// top_rated, upcoming).
func (c *Client) FetchPage(ctx context.Context, category string, page int) (Page, error) {
	return c.getPage(ctx, "/movie/"+category, url.Values{
		"page": []string{strconv.Itoa(page)},
	})
}

// SearchPage runs a full-text movie search. Adult titles are excluded.
func (c *Client) SearchPage(ctx context.Context, query string, page int) (Page, error) {
	return c.getPage(ctx, "/search/movie", url.Values{
		"query":         []string{query},
		"page":          []string{strconv.Itoa(page)},
		"include_adult": []string{"false"},
	})
}

// Trending fetches the current trending list (daily window). The first item
// backs the home banner.
func (c *Client) Trending(ctx context.Context) (Page, error) {
	return c.getPage(ctx, "/trending/movie/day", url.Values{})
}

// GenreList fetches the id-to-name genre mapping.
func (c *Client) GenreList(ctx context.Context) (map[int64]string, error) {
	var gr genreListResp
	if err := c.getJSON(ctx, "/genre/movie/list", url.Values{}, &gr); err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(gr.Genres))
	for _, g := range gr.Genres {
		out[g.ID] = g.Name
	}
	return out, nil
}

func (c *Client) getPage(ctx context.Context, path string, q url.Values) (Page, error) {
	var p Page
	if err := c.getJSON(ctx, path, q, &p); err != nil {
		return Page{}, err
	}
	if p.TotalPages > MaxPages {
		p.TotalPages = MaxPages
	}
	return p, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	q.Set("api_key", c.APIKey)
	if c.Language != "" {
		q.Set("language", c.Language)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
