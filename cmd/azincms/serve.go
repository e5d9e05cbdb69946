// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"azincms/internal/cache"
	"azincms/internal/database"
	"azincms/internal/feed"
	"azincms/internal/handlers"
	"azincms/internal/links"
	"azincms/internal/metrics"
	"azincms/internal/middleware"
	"azincms/internal/router"
	"azincms/internal/site"
	"azincms/internal/storage"
	"azincms/internal/store"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.Seed(db); err != nil {
		return err
	}

	// Valkey is optional: without it every page is built per request.
	var pageCache *cache.PageCache
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, 0)
	if err != nil {
		slog.Warn("valkey unavailable, page cache disabled", "error", err)
	} else {
		defer valkeyClient.Close()
	}

	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3BucketPublic, cfg.S3PublicURL,
	)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if storageClient == nil {
		slog.Warn("s3 storage not configured, uploads disabled")
	} else {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	if valkeyClient != nil {
		pageCache = cache.NewPageCache(valkeyClient, cfg.PageCacheTTL, collector)
	}

	articles := store.NewArticleStore(db, collector)
	albums := store.NewAlbumStore(db, collector)
	categories := store.NewCategoryStore(db)
	ads := store.NewAdStore(db)
	footer := store.NewFooterStore(db)
	menus := store.NewMenuStore(db)
	settings := store.NewSiteSettingStore(db)
	cacheLog := store.NewCacheLogStore(db)

	lb := &links.Builder{FileURL: storageClient.FileURL, Observer: collector}
	sb := &site.Builder{
		Settings:   settings,
		Menus:      menus,
		Footer:     footer,
		Categories: categories,
		Ads:        ads,
		Links:      lb,
		Observer:   collector,
	}

	public := handlers.NewPublic(handlers.PublicDeps{
		Articles:   articles,
		Albums:     albums,
		Categories: categories,
		Ads:        ads,
		Site:       sb,
		Links:      lb,
		PageCache:  pageCache,
		Clicks:     collector,
		Locator:    collector,
		Channel:    feed.Channel{Link: cfg.SiteBaseURL, Language: "fa"},
	})
	admin := handlers.NewAdmin(handlers.AdminDeps{
		Articles:   articles,
		Albums:     albums,
		Categories: categories,
		Ads:        ads,
		Footer:     footer,
		Menus:      menus,
		Settings:   settings,
		CacheLog:   cacheLog,
		PageCache:  pageCache,
		Storage:    storageClient,
	})

	switch cfg.TrustedProxies {
	case "":
	case "none":
		middleware.SetTrustedProxies(nil)
	default:
		proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
		if err != nil {
			return fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		middleware.SetTrustedProxies(proxies)
	}

	clickLimiter := middleware.NewRateLimiter(cfg.AdClickRate, time.Minute)
	defer clickLimiter.Stop()

	if cfg.AdminTokenHash == "" {
		slog.Warn("ADMIN_TOKEN_HASH not set, admin API is locked")
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.New(router.Options{
			Public:         public,
			Admin:          admin,
			AdminTokenHash: cfg.AdminTokenHash,
			ClickLimiter:   clickLimiter,
			Metrics:        metrics.Handler(reg),
			HSTS:           !cfg.IsDev(),
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
