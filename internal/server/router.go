package server

import (
	"net/http"

	"golang.org/x/time/rate"

	"reelist-server/internal/deps"
	"reelist-server/internal/routes"
)

type Server struct {
	deps.ServerDeps
	allowedOrigins []string
	limiter        *rate.Limiter
}

// Options tune the middleware stack.
type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func New(d deps.ServerDeps, opts Options) *Server {
	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst)
	}
	return &Server{ServerDeps: d, allowedOrigins: opts.AllowedOrigins, limiter: limiter}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	sd := s.ServerDeps

	// Endpoints declared here for easy scanning
	mux.HandleFunc("GET /health", routes.Health(sd))
	mux.HandleFunc("GET /movies/trending", routes.Trending(sd))
	mux.HandleFunc("GET /movies/{category}", routes.Movies(sd))
	mux.HandleFunc("GET /search/movie", routes.Search(sd))
	mux.HandleFunc("GET /genres", routes.Genres(sd))
	mux.HandleFunc("POST /auth/signup", routes.Signup(sd))
	mux.HandleFunc("POST /auth/login", routes.Login(sd))
	mux.HandleFunc("POST /auth/logout", s.requireSession(routes.Logout(sd)))
	mux.HandleFunc("GET /auth/me", s.requireSession(routes.Me(sd)))
	mux.HandleFunc("GET /watchlist", s.requireSession(routes.WatchlistGet(sd)))
	mux.HandleFunc("PUT /watchlist/{movieID}", s.requireSession(routes.WatchlistPut(sd)))
	mux.HandleFunc("DELETE /watchlist/{movieID}", s.requireSession(routes.WatchlistDelete(sd)))

	h := http.Handler(mux)
	h = withCorrelationID(withLogging(h))
	if s.limiter != nil {
		h = withRateLimit(s.limiter)(h)
	}
	h = withSecurityHeaders(withCORS(s.allowedOrigins)(h))
	return h
}
