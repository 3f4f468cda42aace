package routes

import (
	"net/http"

	"reelist-server/internal/deps"
	pkgtmdb "reelist-server/pkg/tmdb"
)

// Genres handles GET /genres — the id-to-name index plus the image URL bases
// clients need to build poster and backdrop URLs.
func Genres(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"genres": d.Genres.All(),
			"image_bases": map[string]string{
				"poster":   pkgtmdb.ImageBaseW500,
				"backdrop": pkgtmdb.ImageBaseOriginal,
			},
		})
	}
}
