// Command fireworldd runs the FireWorld social backend.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"github.com/fireworld/fireworld/internal/app"
	"github.com/fireworld/fireworld/internal/app/httpapi"
	"github.com/fireworld/fireworld/internal/app/services/chat"
	"github.com/fireworld/fireworld/internal/app/services/news"
	"github.com/fireworld/fireworld/internal/app/storage/postgres"
	"github.com/fireworld/fireworld/internal/config"
	"github.com/fireworld/fireworld/internal/platform/migrations"
	"github.com/fireworld/fireworld/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}).WithField("component", "fireworldd")

	if err := run(cfg, log); err != nil {
		log.Fatalf("fireworldd: %v", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores := app.Stores{}
	if cfg.Database.DSN != "" {
		db, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.Apply(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		store := postgres.New(db)
		stores = app.Stores{Users: store, Posts: store, Activities: store, Messages: store}
		log.Info("postgres storage ready")
	} else {
		log.Warn("DATABASE_DSN not set, using in-memory storage")
	}

	opts := app.Options{JWTSecret: cfg.Auth.JWTSecret}

	if cfg.News.APIKey != "" {
		fetcher, err := news.NewHTTPFetcher(nil, cfg.News.BaseURL, cfg.News.APIKey, cfg.News.Locale, cfg.News.Limit, log)
		if err != nil {
			return fmt.Errorf("news fetcher: %w", err)
		}
		opts.NewsFetcher = fetcher
		opts.NewsCacheTTL = time.Duration(cfg.Redis.TTLSeconds) * time.Second

		if cfg.Redis.Addr != "" {
			cache := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer cache.Close()
			if err := cache.Ping(ctx).Err(); err != nil {
				log.WithError(err).Warn("redis unreachable, news caching disabled")
			} else {
				opts.NewsCache = cache
				log.Info("redis news cache ready")
			}
		}
	}

	if cfg.Chat.APIKey != "" {
		svc, err := chat.New(nil, cfg.Chat.BaseURL, cfg.Chat.APIKey, cfg.Chat.Model, log)
		if err != nil {
			return fmt.Errorf("chat service: %w", err)
		}
		opts.Chat = svc
	}

	application := app.New(stores, opts, log)

	handler := httpapi.NewServer(application, httpapi.Options{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
	}, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
