package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"reelist-server/internal/auth"
	"reelist-server/internal/config"
	"reelist-server/internal/deps"
	"reelist-server/internal/jobs"
	"reelist-server/internal/migrate"
	"reelist-server/internal/mirror"
	"reelist-server/internal/repos"
	"reelist-server/internal/server"
	"reelist-server/internal/session"
	"reelist-server/internal/watchlist"
	pkgcache "reelist-server/pkg/cache"
	pkgdb "reelist-server/pkg/db"
	pkgtmdb "reelist-server/pkg/tmdb"
)

func main() {
	_ = godotenv.Load() // best-effort
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pkgdb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()

	if err := migrate.Up(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	var c pkgcache.Cache
	if addr := cfg.ValkeyAddr; addr != "" {
		vc, err := pkgcache.NewValkey(addr, cfg.ValkeyPassword)
		if err != nil {
			log.Error().Err(err).Msg("valkey connect failed, using in-memory cache")
			c = pkgcache.NewInMemory()
		} else {
			c = vc
		}
	} else {
		c = pkgcache.NewInMemory()
	}

	mir, err := mirror.Open(cfg.MirrorPath)
	if err != nil {
		log.Fatal().Err(err).Msg("mirror open failed")
	}
	defer mir.Close()

	var catalog *pkgtmdb.Client
	if cfg.TMDBAPIKey != "" {
		catalog = pkgtmdb.New(cfg.TMDBAPIKey)
		catalog.Language = cfg.TMDBLanguage
	} else {
		log.Warn().Msg("TMDB_API_KEY not set; catalog endpoints will fail")
		catalog = pkgtmdb.New("")
	}

	genres := pkgtmdb.NewGenreIndex()
	jobs.SeedGenreIndex(ctx, genres, catalog)
	jobs.StartTrendingRefresh(ctx, catalog, c)

	repository := repos.New(pool)
	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.SessionTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("token manager init failed")
	}
	sessions := session.NewService(repository.Users, tokens)
	watchlists := watchlist.NewManager(repository.Watchlist, mir, genres)

	api := server.New(deps.ServerDeps{
		Cache:      c,
		Catalog:    catalog,
		Genres:     genres,
		Sessions:   sessions,
		Watchlists: watchlists,
		Validate:   validator.New(validator.WithRequiredStructEnabled()),
		Name:       "reelist-server",
		StartedAt:  time.Now().UTC(),
	}, server.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		if err := server.StartHTTP(ctx, addr, api.Router()); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	_, _ = fmt.Fprintln(os.Stderr, "shutting down...")
	time.Sleep(200 * time.Millisecond)
}
