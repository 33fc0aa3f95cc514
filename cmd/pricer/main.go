package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pricing/internal/bookstore"
	"github.com/noah-isme/backend-pricing/internal/catalog"
	"github.com/noah-isme/backend-pricing/internal/config"
	"github.com/noah-isme/backend-pricing/internal/obs"
	"github.com/noah-isme/backend-pricing/internal/pricing"
)

const usage = `usage:
  pricer cart  -items cart.json
  pricer order -order order.json [-catalog books.json] [-buy]`

func main() {
	cfg := config.MustLoad()
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "pricer").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
		ServiceName:   "pricer",
		Endpoint:      cfg.OTelEndpoint,
		Exporter:      cfg.OTelExporter,
		SamplingRatio: cfg.OTelSamplingRatio,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init tracer")
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown tracer")
		}
	}()

	a := &app{cfg: cfg, logger: logger, metrics: obs.NewPricingMetrics(cfg.MetricsNamespace, prometheus.NewRegistry()), out: os.Stdout}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		logger.Error().Err(err).Msg("pricer failed")
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	metrics *obs.PricingMetrics
	out     io.Writer
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "cart":
		return a.runCart(args[1:])
	case "order":
		return a.runOrder(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func (a *app) runCart(args []string) error {
	fs := flag.NewFlagSet("cart", flag.ContinueOnError)
	itemsPath := fs.String("items", "", "JSON file holding the cart items")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *itemsPath == "" {
		return errors.New("cart: -items is required")
	}

	var items []pricing.Item
	if err := readJSON(*itemsPath, &items); err != nil {
		return fmt.Errorf("cart: %w", err)
	}
	pricer := pricing.NewCartPricer(pricing.NewMemoryCart(), pricing.DefaultRules(a.cfg.ElectronicsSurcharge),
		pricing.WithMetrics(a.metrics),
	)
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("cart: %w", err)
		}
		pricer.AddItem(it)
	}
	return writeJSON(a.out, pricer.Breakdown())
}

func (a *app) runOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	orderPath := fs.String("order", "", "JSON file mapping ISBN to requested quantity")
	catalogPath := fs.String("catalog", "", "JSON catalog file, used when DATABASE_URL is unset")
	buy := fs.Bool("buy", false, "execute the purchase after pricing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *orderPath == "" {
		return errors.New("order: -order is required")
	}

	var order map[string]int
	if err := readJSON(*orderPath, &order); err != nil {
		return fmt.Errorf("order: %w", err)
	}

	books, closeCatalog, err := a.openCatalog(ctx, *catalogPath)
	if err != nil {
		return err
	}
	defer closeCatalog()

	pricer := bookstore.NewOrderPricer(books, logProcess{logger: a.logger},
		bookstore.WithLogger(a.logger),
		bookstore.WithMetrics(a.metrics),
	)
	var summary *bookstore.PurchaseSummary
	if *buy {
		summary, err = pricer.Purchase(ctx, order)
	} else {
		summary, err = pricer.PriceOrder(ctx, order)
	}
	if err != nil {
		return err
	}
	return writeJSON(a.out, summary)
}

func (a *app) openCatalog(ctx context.Context, path string) (bookstore.Catalog, func(), error) {
	if a.cfg.DatabaseURL == "" {
		if path == "" {
			return nil, nil, errors.New("order: -catalog is required when DATABASE_URL is unset")
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open catalog: %w", err)
		}
		defer f.Close()
		mem, err := catalog.LoadJSON(f)
		if err != nil {
			return nil, nil, err
		}
		return mem, func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(a.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	var books bookstore.Catalog = catalog.Postgres{Q: pool}
	closers := []func(){pool.Close}

	if a.cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(a.cfg.RedisURL)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			a.logger.Error().Err(err).Msg("instrument redis tracing")
		}
		books = catalog.Cached{Source: books, Cache: catalog.NewCache(redisClient, a.cfg.CatalogCacheTTL), Logger: a.logger}
		closers = append(closers, func() {
			if err := redisClient.Close(); err != nil {
				a.logger.Error().Err(err).Msg("close redis")
			}
		})
	}
	return books, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}

// logProcess records purchases in the log; fulfilment happens downstream.
type logProcess struct {
	logger zerolog.Logger
}

func (p logProcess) BuyBook(_ context.Context, product bookstore.Product, qty int) error {
	p.logger.Info().Str("isbn", product.ISBN).Int("qty", qty).Str("unit_price", product.Price.String()).Msg("book purchased")
	return nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
