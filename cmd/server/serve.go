package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/cache"
	"github.com/Skotchmaster/grocery_shop/internal/config"
	"github.com/Skotchmaster/grocery_shop/internal/es"
	"github.com/Skotchmaster/grocery_shop/internal/httpserver"
	"github.com/Skotchmaster/grocery_shop/internal/mykafka"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	pkgdb "github.com/Skotchmaster/grocery_shop/pkg/db"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	middleware "github.com/Skotchmaster/grocery_shop/pkg/middleware/auth"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Action: func(ctx context.Context, _ *cli.Command) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(ctx, cfg)
		},
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	return logger
}

func openDB(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	gdb, err := pkgdb.Open(openCtx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return gdb, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := newLogger(cfg)
	ctx = logging.IntoContext(ctx, logger)

	gdb, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := pkgdb.Close(gdb); err != nil {
			logger.Warn("db_close_failed", "error", err)
		}
	}()

	if cfg.AutoMigrate {
		if err := repo.AutoMigrate(gdb); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}
	r := repo.New(gdb)

	var events service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := mykafka.NewProducer(cfg.KafkaBrokers, service.Topics)
		if err != nil {
			return err
		}
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka_close_failed", "error", err)
			}
		}()
		events = producer
	} else {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var index service.ProductIndex
	if cfg.ESURL != "" {
		client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "reason", "search falls back to the database", "error", err)
		} else {
			index = es.NewProductIndex(client, cfg.ESIndex)
		}
	}

	var categoryCache service.CategoryCache
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cache.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			logger.Warn("redis_unavailable", "reason", "categories are read from the database", "error", err)
		} else {
			defer client.Close()
			categoryCache = cache.NewCategoryCache(client, cfg.ServiceName, cfg.CategoryCacheTTL)
		}
	}

	e := httpserver.NewEcho(logger, cfg.CookieSecure)
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:          r,
			JWTSecret:     cfg.JWTAccessSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
			AccessTTL:     cfg.AccessTTL,
			RefreshTTL:    cfg.RefreshTTL,
			Events:        events,
		}, Cookies: middleware.CookieOptions{Secure: cfg.CookieSecure}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &service.CatalogService{
			Repo:   r,
			Cache:  categoryCache,
			Index:  index,
			Events: events,
		}},
		FavoriteHandler: &httpserver.FavoriteHTTP{Svc: &service.FavoriteService{Repo: r, Events: events}},
		CartHandler:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: events}},
		CommentHandler:  &httpserver.CommentHTTP{Svc: &service.CommentService{Repo: r, Events: events}},
		JWTSecret:       cfg.JWTAccessSecret,
		Ready:           func(ctx context.Context) error { return pkgdb.Ping(ctx, gdb) },
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-sigCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server_shutdown_failed", "error", err)
	}
	logger.Info("server_stopped")
	return nil
}
