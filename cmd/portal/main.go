package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"schoolportal/internal/clock"
	"schoolportal/internal/config"
	"schoolportal/internal/handler"
	"schoolportal/internal/seed"
	"schoolportal/internal/session"
	"schoolportal/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clk := clock.New(loc)

	db, err := store.NewDB(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	if cfg.AutoSeed {
		seeded, err := seed.IfEmpty(ctx, db, clk)
		if err != nil {
			return errors.Wrap(err, "auto seed")
		}
		if seeded {
			log.Println("empty database seeded with demo accounts")
		}
	}

	sessions, closeSessions, err := sessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	if cfg.Production() && cfg.SessionSecret == "dev-session-secret-change" {
		log.Println("warning: SESSION_SECRET is the development default")
	}

	deps := handler.NewDeps(db, sessions, clk, session.Options{
		Secret: cfg.SessionSecret,
		Issuer: cfg.SessionIssuer,
		TTL:    cfg.SessionTTL,
	})
	r, err := handler.New(deps, handler.Config{
		CookieName:      cfg.SessionCookie,
		CookieSecure:    cfg.CookieSecure,
		TemplateDir:     cfg.TemplateDir,
		RateLimitPerMin: cfg.RateLimitPerMin,
		AllowedOrigins:  cfg.AllowedOrigins,
		TrustedProxies:  cfg.TrustedProxies,
	}).Router()
	if err != nil {
		return err
	}

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (db=%s sessions=%s)", cfg.HTTPPort, db.Driver, cfg.SessionBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

func sessionStore(ctx context.Context, cfg config.App) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case "memory", "":
		return session.NewMemoryStore(), func() {}, nil
	case "redis":
		rdb := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if !rdb.Healthy(pingCtx) {
			log.Printf("warning: redis not reachable at %s", cfg.RedisAddr)
		}
		return session.NewRedisStore(rdb.Client), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, errors.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}
