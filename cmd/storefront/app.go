package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_cart/storefront/internal/client"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

// storefront is the state of one CLI run: loaded at start, used by a single
// command, closed on exit.
type storefront struct {
	out    io.Writer
	logger *log.Logger

	store    storage.Store
	catalog  *client.CatalogClient
	session  *service.SessionService
	cart     *service.CartService
	checkout *service.CheckoutService
}

func newApp(out io.Writer, logger *log.Logger) *cli.App {
	sf := &storefront{out: out, logger: logger}

	return &cli.App{
		Name:      "storefront",
		Usage:     "browse the shop, manage your cart and place orders",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Usage: "shop API base URL (overrides STOREFRONT_API_URL)"},
			&cli.StringFlag{Name: "store", Usage: "local state backend: sqlite, redis or memory"},
			&cli.StringFlag{Name: "db", Usage: "SQLite state file"},
		},
		After:    sf.close,
		Commands: sf.commands(),
	}
}

func (sf *storefront) open(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.IsSet("api-url") {
		cfg.APIURL = c.String("api-url")
	}
	if c.IsSet("store") {
		cfg.Store = c.String("store")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return sf.wire(c.Context, cfg)
}

func (sf *storefront) wire(ctx context.Context, cfg config.Config) error {
	store, err := openStore(ctx, cfg, sf.logger)
	if err != nil {
		return err
	}
	sf.store = store

	api, err := client.New(client.Config{
		Name:    "shop",
		BaseURL: cfg.APIURL,
		HTTP: &http.Client{
			Timeout:   cfg.HTTPTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger:          sf.logger,
		BreakerFailures: cfg.BreakerFailures,
	})
	if err != nil {
		return err
	}

	sf.catalog = client.NewCatalogClient(api)
	sf.session = service.NewSessionService(client.NewAuthClient(api), store, sf.logger)
	sf.cart = service.NewCartService(sf.catalog, sf.session, store, sf.logger)
	sf.checkout = service.NewCheckoutService(client.NewOrderClient(api), sf.session, sf.cart, sf.logger)

	if err := sf.session.Restore(ctx); err != nil {
		sf.logger.Printf("session restore error: %v", err)
	}
	if err := sf.cart.Load(ctx); err != nil {
		sf.logger.Printf("cart load error: %v", err)
	}
	sf.cart.Subscribe(func(cart domain.Cart) {
		renderBadge(sf.out, cart)
	})
	return nil
}

func (sf *storefront) close(*cli.Context) error {
	if sf.store == nil {
		return nil
	}
	return sf.store.Close()
}

func openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return storage.NewRedisStore(rdb, logger), nil
	case config.StoreMemory:
		return storage.NewMemoryStore(logger), nil
	default:
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create state dir: %w", err)
			}
		}
		return storage.NewSQLiteStore(ctx, cfg.DBPath, logger)
	}
}
