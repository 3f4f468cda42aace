package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"reelist-server/internal/session"
	pkghttpx "reelist-server/pkg/httpx"
	pkgrequestctx "reelist-server/pkg/requestctx"
)

// StartHTTP starts the HTTP server and blocks until it stops.
func StartHTTP(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()
	return srv.ListenAndServe()
}

// requireSession authenticates the bearer token, resolves its session
// provider, and attaches the user and session ids to the request context.
// Session-dependent handlers never run while session state is not
// Authenticated.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			pkghttpx.WriteError(w, r, pkghttpx.Unauthorized("missing bearer token", nil))
			return
		}
		claims, err := s.Sessions.Validate(token)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Unauthorized("invalid or expired token", err))
			return
		}
		p := s.Sessions.Resolve(claims)
		state, sess := p.Current()
		if state != session.Authenticated {
			pkghttpx.WriteError(w, r, pkghttpx.Unauthorized("session signed out", nil))
			return
		}
		ctx := pkgrequestctx.WithUserID(r.Context(), sess.UserID)
		ctx = pkgrequestctx.WithSessionID(ctx, claims.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// correlation id middleware
func withCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get("X-Correlation-Id")
		if cid == "" {
			cid = xid.New().String()
		}
		// Set on response and ensure request carries it for downstream handlers
		w.Header().Set("X-Correlation-Id", cid)
		r.Header.Set("X-Correlation-Id", cid)
		next.ServeHTTP(w, r.WithContext(pkgrequestctx.WithCorrelationID(r.Context(), cid)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (sw *statusWriter) WriteHeader(code int) { sw.status = code; sw.ResponseWriter.WriteHeader(code) }
func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.size += n
	return n, err
}

// logging middleware
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		dur := time.Since(start)
		cid := pkgrequestctx.CorrelationID(r.Context())
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("correlation_id", cid).
			Str("remote_ip", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Int("status", sw.status).
			Int("size", sw.size).
			Dur("duration", dur).
			Msg("http_request")
	})
}

// withRateLimit applies a process-wide token bucket to every request.
func withRateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				pkghttpx.WriteError(w, r, pkghttpx.TooManyRequests("too many requests", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// withCORS adds CORS headers and handles preflight.
func withCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				allowed := false
				if len(allowedOrigins) == 0 {
					allowed = true // default allow all if not configured
				} else {
					for _, o := range allowedOrigins {
						if o == "*" || strings.EqualFold(o, origin) {
							allowed = true
							break
						}
					}
				}
				if allowed {
					// echo back specific origin if provided and configured, else '*'
					if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
						w.Header().Set("Access-Control-Allow-Origin", "*")
					} else {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						w.Header().Add("Vary", "Origin")
					}
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Correlation-Id")
					w.Header().Set("Access-Control-Expose-Headers", "X-Correlation-Id")
					w.Header().Set("Access-Control-Max-Age", "600")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// withSecurityHeaders sets common security headers for an API.
func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		// Minimal CSP for API responses
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")
		next.ServeHTTP(w, r)
	})
}
