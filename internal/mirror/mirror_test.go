package mirror

import (
	"testing"
	"time"

	"reelist-server/internal/model"
)

func openTest(t *testing.T) *Badger {
	t.Helper()
	b, err := Open("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestMirrorRoundTrip(t *testing.T) {
	b := openTest(t)

	entries := []model.WatchlistEntry{
		{
			Movie:     model.MovieSummary{ID: 603, Title: "The Matrix", VoteAverage: 8.2, GenreIDs: []int64{28, 878}},
			DateAdded: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	if err := b.Put("user-1", entries); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := b.Get("user-1")
	if !ok {
		t.Fatal("snapshot should be readable after put")
	}
	if len(got) != 1 || got[0].Movie.ID != 603 || got[0].Movie.Title != "The Matrix" {
		t.Fatalf("got %+v", got)
	}
	if !got[0].DateAdded.Equal(entries[0].DateAdded) {
		t.Fatalf("date added = %v, want %v", got[0].DateAdded, entries[0].DateAdded)
	}
}

func TestMirrorGetMissing(t *testing.T) {
	b := openTest(t)
	if _, ok := b.Get("nobody"); ok {
		t.Fatal("missing user should report not found")
	}
}

func TestMirrorPutReplaces(t *testing.T) {
	b := openTest(t)

	one := []model.WatchlistEntry{{Movie: model.MovieSummary{ID: 1, Title: "One"}}}
	two := []model.WatchlistEntry{
		{Movie: model.MovieSummary{ID: 1, Title: "One"}},
		{Movie: model.MovieSummary{ID: 2, Title: "Two"}},
	}
	if err := b.Put("user-1", one); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := b.Put("user-1", two); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, _ := b.Get("user-1")
	if len(got) != 2 {
		t.Fatalf("snapshot should be replaced wholesale, got %d entries", len(got))
	}
}

func TestMirrorDelete(t *testing.T) {
	b := openTest(t)

	if err := b.Put("user-1", []model.WatchlistEntry{{Movie: model.MovieSummary{ID: 1}}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := b.Delete("user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := b.Get("user-1"); ok {
		t.Fatal("snapshot should be gone after delete")
	}
	if err := b.Delete("user-1"); err != nil {
		t.Fatalf("deleting an absent snapshot should be a no-op, got %v", err)
	}
}
