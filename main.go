package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"bizsite/cache"
	"bizsite/config"
	"bizsite/cta"
	"bizsite/domain"
	"bizsite/feed"
	"bizsite/handler"
	"bizsite/logger"
	"bizsite/notify"
	"bizsite/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env}); err != nil {
			return err
		}
		defer sentry.Flush(2 * time.Second)
	}

	log.Info("opening database and running schema migrations", zap.String("driver", cfg.DBDriver))
	db, err := store.Open(ctx, cfg.DBDriver, cfg.DBURL)
	if err != nil {
		return err
	}
	defer db.Close()

	var taxonomy cache.Counter = db
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, taxonomy counts will hit the database", zap.Error(err))
		}
		taxonomy = cache.NewTaxonomy(db, client, cfg.TaxonomyCacheTTL, log)
	}

	h := handler.Handler{
		Feed:     feed.NewService(db),
		Store:    db,
		Taxonomy: taxonomy,
		Notifier: notify.NewLogNotifier(log),
		CTAs:     cta.DefaultCatalog(),
		Validate: handler.NewValidator(),
		SiteDefaults: domain.SiteConfig{
			Title:       cfg.SiteTitle,
			Description: cfg.SiteDescription,
			Active:      true,
		},
		ContactRateLimit: cfg.ContactRateLimit,
		Log:              log,
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = h.HTTPErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logger.Middleware(log))
	e.Use(middleware.Gzip())
	h.Register(e)

	errc := make(chan error, 1)
	go func() {
		if cfg.AddressListen != "" {
			log.Info("listening", zap.String("addr", cfg.AddressListen))
			errc <- e.Start(cfg.AddressListen)
			return
		}
		// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
		e.AutoTLSManager.Cache = autocert.DirCache(cfg.CertCacheDir)
		if cfg.WhitelistHost != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.WhitelistHost)
		}
		e.Pre(middleware.HTTPSRedirect())
		log.Info("listening with automatic TLS", zap.String("addr", ":443"))
		errc <- e.StartAutoTLS(":443")
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
