package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"reelist-server/internal/model"
	"reelist-server/pkg/tmdb"
)

// Catalog is the read-only paginated movie source.
type Catalog interface {
	FetchPage(ctx context.Context, category string, page int) (tmdb.Page, error)
	SearchPage(ctx context.Context, query string, page int) (tmdb.Page, error)
}

// Snapshot is the renderable browse state at a point in time.
type Snapshot struct {
	Category     string
	Query        string
	Page         int
	TotalPages   int
	TotalResults int
	Items        []model.MovieSummary
	Loading      bool
	Err          error
}

// Model drives paginated browsing of one category or one search query.
// Changing the category or query resets the page to 1; page navigation is
// clamped at both ends. Responses that no longer match the current request
// parameters are discarded (last request wins).
type Model struct {
	catalog Catalog

	mu           sync.Mutex
	category     string
	query        string
	page         int
	totalPages   int
	totalResults int
	items        []model.MovieSummary
	loading      bool
	err          error
	gen          uint64
}

func NewModel(catalog Catalog) *Model {
	return &Model{catalog: catalog, category: model.CategoryPopular, page: 1}
}

// SetCategory switches to category browsing and resets to page 1.
func (m *Model) SetCategory(category string) error {
	if _, ok := model.AllowedCategories[category]; !ok {
		return fmt.Errorf("unknown category %q", category)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.category != category || m.query != "" {
		m.category = category
		m.query = ""
		m.page = 1
	}
	return nil
}

// SetQuery switches to search and resets to page 1. The query must be
// non-empty after trimming.
func (m *Model) SetQuery(query string) error {
	q := strings.TrimSpace(query)
	if q == "" {
		return fmt.Errorf("empty search query")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.query != q {
		m.query = q
		m.category = ""
		m.page = 1
	}
	return nil
}

// SetPage jumps to an absolute page, clamped to [1, totalPages] when the
// total is known.
func (m *Model) SetPage(page int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if m.totalPages > 0 && page > m.totalPages {
		page = m.totalPages
	}
	m.page = page
}

// Prev steps one page back; it no-ops at page 1.
func (m *Model) Prev() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.page <= 1 {
		return false
	}
	m.page--
	return true
}

// Next steps one page forward; it no-ops at the last known page.
func (m *Model) Next() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.totalPages > 0 && m.page >= m.totalPages {
		return false
	}
	m.page++
	return true
}

// Load fetches the page for the current parameters and applies the result,
// unless the parameters changed while the call was in flight. On failure the
// items are cleared and the error is kept in the snapshot, never thrown into
// the render path.
func (m *Model) Load(ctx context.Context) Snapshot {
	m.mu.Lock()
	m.loading = true
	m.err = nil
	m.gen++
	gen := m.gen
	category, query, page := m.category, m.query, m.page
	m.mu.Unlock()

	var p tmdb.Page
	var err error
	if query != "" {
		p, err = m.catalog.SearchPage(ctx, query, page)
	} else {
		p, err = m.catalog.FetchPage(ctx, category, page)
	}
	if err != nil {
		if errors.Is(err, tmdb.ErrMissingAPIKey) {
			err = fmt.Errorf("%w: %w", model.ErrMissingAPIKey, err)
		} else {
			err = fmt.Errorf("%w: %v", model.ErrCatalogUnavailable, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		// A newer request was issued while this one was in flight.
		return m.snapshotLocked()
	}
	m.loading = false
	if err != nil {
		m.err = err
		m.items = nil
		m.totalPages = 0
		m.totalResults = 0
		return m.snapshotLocked()
	}
	m.items = toSummaries(p.Results)
	m.totalPages = p.TotalPages
	m.totalResults = p.TotalResults
	return m.snapshotLocked()
}

// Snapshot returns the current state without fetching.
func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Model) snapshotLocked() Snapshot {
	items := make([]model.MovieSummary, len(m.items))
	copy(items, m.items)
	return Snapshot{
		Category:     m.category,
		Query:        m.query,
		Page:         m.page,
		TotalPages:   m.totalPages,
		TotalResults: m.totalResults,
		Items:        items,
		Loading:      m.loading,
		Err:          m.err,
	}
}

func toSummaries(results []tmdb.Movie) []model.MovieSummary {
	out := make([]model.MovieSummary, 0, len(results))
	for _, r := range results {
		out = append(out, ToSummary(r))
	}
	return out
}

// ToSummary maps a catalog wire item to the domain summary.
func ToSummary(r tmdb.Movie) model.MovieSummary {
	return model.MovieSummary{
		ID:           r.ID,
		Title:        r.Title,
		Overview:     strPtr(r.Overview),
		PosterPath:   strPtr(r.PosterPath),
		BackdropPath: strPtr(r.BackdropPath),
		VoteAverage:  r.VoteAverage,
		Popularity:   r.Popularity,
		GenreIDs:     r.GenreIDs,
		ReleaseDate:  r.ReleaseDate,
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
