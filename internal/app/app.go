package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"example.com/mastermind/internal/auth"
	"example.com/mastermind/internal/config"
	"example.com/mastermind/internal/game"
	"example.com/mastermind/internal/httpapi"
	"example.com/mastermind/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg config.Config
	log zerolog.Logger

	db  *pgxpool.Pool // nil без DATABASE_URL
	rdb *redis.Client // nil без REDIS_ADDR

	sessions *game.SessionService
	router   chi.Router
	srv      *http.Server
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// --- Postgres (optional) ---
	if cfg.Postgres.URL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("pgxpool: %w", err)
		}
		if err := dbpool.Ping(pingCtx); err != nil {
			dbpool.Close()
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		a.db = dbpool
	}

	// --- Redis (optional) ---
	var persist game.SessionPersistence
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			_ = a.Close(context.Background())
			return nil, fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
		}
		a.rdb = rdb
		persist = game.NewRedisSessionStore(rdb, cfg.Redis.SessionTTL)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, sessions are kept in memory")
		persist = game.NewInMemorySessionStore(cfg.Redis.SessionTTL)
	}

	authSvc := auth.NewService([]byte(cfg.Auth.Secret))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpapi.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// --- Game ---
	var results game.ResultRecorder
	if a.db != nil {
		results = store.NewStatsStore(a.db)
	}
	gameCfg := game.Config{Debug: cfg.Game.Debug, RequestTimeout: cfg.HTTP.RequestTimeout}
	a.sessions = game.NewSessionService(gameCfg, persist, results, log.With().Str("component", "game").Logger())
	gameSrv := game.NewServer(gameCfg, a.sessions, authSvc, log.With().Str("component", "game").Logger())

	gameSrv.RegisterRoutes(r)

	// --- auth routes (only with Postgres) ---
	if a.db != nil {
		authH := &httpapi.AuthHandler{
			Users:    store.NewUserStore(a.db),
			Stats:    store.NewStatsStore(a.db),
			Auth:     authSvc,
			TokenTTL: cfg.Auth.TokenTTL,
			Log:      log.With().Str("component", "auth").Logger(),
		}
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
			r.Post("/api/auth/register", authH.Register)
			r.Post("/api/auth/login", authH.Login)
			r.With(httpapi.AuthMiddleware(authSvc)).Get("/api/me", authH.Me)
		})
	} else {
		log.Warn().Msg("DATABASE_URL not set, accounts and stats are disabled")
	}

	if cfg.Game.Debug {
		log.Warn().Msg("GAME_DEBUG is on, secrets are exposed")
	}

	a.router = r
	a.srv = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	return a, nil
}

// Static serves h on GET for every path no API route claims. Call before Run.
func (a *App) Static(h http.Handler) {
	a.router.Get("/*", h.ServeHTTP)
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info().Str("addr", a.cfg.HTTP.Addr).Msg("http server starting")

	g.Go(func() error {
		err := a.srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return a.sessions.RunSweeper(gctx, a.cfg.Game.SweepInterval, a.cfg.Redis.SessionTTL)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info().Msg("http server shutting down")
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	err := g.Wait()
	_ = a.Close(context.Background())
	return err
}

func (a *App) Close(ctx context.Context) error {
	// best-effort
	if a.db != nil {
		a.db.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	return nil
}
