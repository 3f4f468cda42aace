package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"reelist-server/internal/model"
	pkghttpx "reelist-server/pkg/httpx"
)

// writeJSON is a tiny helper for handlers in this package.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError standardizes error responses and logs with correlation id.
func writeError(w http.ResponseWriter, r *http.Request, he *pkghttpx.HTTPError) {
	pkghttpx.WriteError(w, r, he)
}

// writeDomainError maps the failure taxonomy onto response codes.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrCatalogUnavailable):
		writeError(w, r, pkghttpx.BadGateway("movie catalog unavailable", err))
	case errors.Is(err, model.ErrStoreUnavailable):
		writeError(w, r, pkghttpx.ServiceUnavailable("watchlist store unavailable", err))
	case errors.Is(err, model.ErrAuthFailed):
		writeError(w, r, pkghttpx.Unauthorized(err.Error(), err))
	case errors.Is(err, model.ErrMissingAPIKey):
		writeError(w, r, pkghttpx.Internal("catalog API key not configured", err))
	case errors.Is(err, model.ErrNoSession):
		writeError(w, r, pkghttpx.Unauthorized("authentication required", err))
	default:
		writeError(w, r, pkghttpx.Internal("unexpected error", err))
	}
}
