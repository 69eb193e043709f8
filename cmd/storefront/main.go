package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

const purgeInterval = 10 * time.Minute

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("storefront stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backing, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	products, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", zap.Int("products", products.Len()))

	notifier, closeNotifier, err := openNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	store, err := cart.NewStore(backing, logger.Named("cart"))
	if err != nil {
		return fmt.Errorf("create cart store: %w", err)
	}

	h, err := httpapi.NewHandler(httpapi.Deps{
		Carts:          store,
		Flow:           cart.NewFlow(store, logger.Named("cart")),
		Checkout:       cart.NewCheckout(store, notifier, logger.Named("checkout")),
		Catalog:        products,
		Shipping:       cart.FlatShipping(cfg.ShippingFlat),
		ConfirmStyle:   cfg.ConfirmStyle,
		AllowedOrigins: cfg.AllowedOrigins(),
		CookieSecure:   cfg.CookieSecure,
		SessionTTL:     cfg.SessionTTL,
		Logger:         logger.Named("http"),
	})
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", zap.String("addr", cfg.HTTPAddr), zap.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
	return nil
}

// openStorage returns the configured session storage and a func that releases it.
func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Storage, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		if cfg.RunMigrations {
			version, err := db.RunMigrations(cfg.DatabaseDSN)
			if err != nil {
				return nil, nil, fmt.Errorf("run migrations: %w", err)
			}
			logger.Info("schema migrated", zap.Uint("version", version))
		}

		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		pg := storage.NewPostgres(pool)

		purgeCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		if cfg.SessionTTL > 0 {
			go func() {
				defer close(done)
				storage.PurgeLoop(purgeCtx, pg, cfg.SessionTTL, purgeInterval, logger.Named("purge"))
			}()
		} else {
			close(done)
		}

		return pg, func() {
			cancel()
			<-done
			pool.Close()
		}, nil

	default:
		mem := storage.NewMemory(cfg.SessionTTL)
		mem.Start()
		return mem, func() {
			if err := mem.Close(); err != nil {
				logger.Warn("close memory storage", zap.Error(err))
			}
		}, nil
	}
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogFile == "" {
		c, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("load built-in catalog: %w", err)
		}
		return c, nil
	}
	c, err := catalog.LoadFile(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.CatalogFile, err)
	}
	return c, nil
}

func openNotifier(cfg config.Config, logger *zap.Logger) (cart.Notifier, func(), error) {
	if cfg.RabbitMQURL == "" {
		return events.NewLogNotifier(logger.Named("events")), func() {}, nil
	}

	conn, err := events.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, nil, err
	}
	pub, err := events.NewRabbitPublisher(conn, logger.Named("events"))
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("create checkout publisher: %w", err)
	}
	return pub, func() {
		if err := pub.Close(); err != nil {
			logger.Warn("publisher close error", zap.Error(err))
		}
		if err := conn.Close(); err != nil {
			logger.Warn("rabbitmq close error", zap.Error(err))
		}
	}, nil
}
