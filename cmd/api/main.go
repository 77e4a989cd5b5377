package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/httpserver"
	"storefront/internal/importer"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	cartrepo "storefront/internal/repository/cart"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/seed"
	"storefront/internal/service/auth"
	cartsvc "storefront/internal/service/cart"
	productsvc "storefront/internal/service/product"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	envFile := flag.String("env", ".env", "optional env file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load %s: %v", *envFile, err)
	}

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		logger.Fatalf("init verifier: %v", err)
	}

	ctx := context.Background()
	products, err := loadCatalog(ctx, cfg)
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}
	metrics.SetCatalogProducts(len(products))
	logger.WithField("products", len(products)).Info("catalog ready")

	snapshots, closeSnapshots, err := openSnapshots(ctx, cfg)
	if err != nil {
		logger.Fatalf("open %s snapshot store: %v", cfg.SnapshotDriver, err)
	}
	defer closeSnapshots()

	productRepo := productrepo.NewMemory(products, logger)
	productService := productsvc.New(productRepo)
	cartStore := cartsvc.New(productRepo, snapshots, logger)
	cartStore.Restore(ctx)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		ProductSvc: productService,
		CartSvc:    cartStore,
		Verifier:   verifier,
		Snapshots:  snapshots,
	}, httpserver.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Infof("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Errorf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	} else {
		logger.Info("server stopped")
	}

	if err := cartStore.Close(shutdownCtx); err != nil {
		logger.Errorf("final cart flush: %v", err)
	} else {
		logger.WithField("carts", cartStore.Len()).Info("carts flushed")
	}
}

func loadCatalog(ctx context.Context, cfg config.Config) ([]domain.Product, error) {
	if cfg.CatalogFile != "" {
		return importer.LoadFile(ctx, cfg.CatalogFile)
	}
	return seed.Generate(cfg.CatalogSize, cfg.CatalogSeed, time.Now()), nil
}

// openSnapshots builds the configured snapshot backend and a func releasing
// its connections.
func openSnapshots(ctx context.Context, cfg config.Config) (cartrepo.Snapshotter, func(), error) {
	switch cfg.SnapshotDriver {
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return nil, nil, err
		}
		return cartrepo.NewPostgres(pool), pool.Close, nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		return cartrepo.NewRedis(client, cfg.RedisSnapshotKey), func() { client.Close() }, nil
	case config.DriverFile:
		return cartrepo.NewFile(cfg.CartsFile), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot driver %q", cfg.SnapshotDriver)
	}
}

