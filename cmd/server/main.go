package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"ba9alino/backend/internal/cache"
	"ba9alino/backend/internal/config"
	"ba9alino/backend/internal/httpapi"
	"ba9alino/backend/internal/logger"
	"ba9alino/backend/internal/service"
	"ba9alino/backend/internal/store"
	"ba9alino/backend/internal/store/memory"
	pgstore "ba9alino/backend/internal/store/postgres"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var catalog store.CatalogStore
	var ledger store.LedgerStore
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres unavailable and DATABASE_URL is set, refusing in-memory fallback", zap.Error(err))
		}
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
		catalog, ledger = pg, pg
		closers = append(closers, pg.Close)
		log.Info("store: postgres")
	} else {
		mem := memory.NewSeeded()
		catalog, ledger = mem, mem
		log.Info("store: in-memory (seeded)")
	}

	productCache := cache.ProductCache(cache.NoopProductCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisProductCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, using noop cache", zap.Error(err))
		} else {
			productCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Info("cache: redis")
		}
	} else {
		log.Info("cache: noop")
	}

	svc := service.New(catalog, ledger, productCache, log, cfg)
	api := httpapi.New(svc, log, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("POS backend listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warn("close error", zap.Error(err))
		}
	}

	log.Info("server stopped")
}
