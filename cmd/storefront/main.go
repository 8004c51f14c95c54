// Command storefront runs one storefront operation for a visitor against
// the bookstore backend.
//
// Usage:
//
//	storefront [flags] <command> [productId]
//
// Commands: products, cart, add, remove, update, wishlist, toggle, total,
// quote, orders, migrate. Guest state survives between runs only with the
// postgres or redis storage driver.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/logging"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/remote"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/shop"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	redisKeyPrefix = "storefront:"
	sessionCookie  = "token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	visitorID  string
	userID     string
	session    string
	format     string
	quantity   int
	category   string
	search     string
}

func parseArgs(args []string) (options, []string, error) {
	var o options

	fs := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	fs.StringVarP(&o.configPath, "config", "c", "storefront.yaml", "path to the YAML config file")
	fs.StringVar(&o.visitorID, "visitor", "cli", "visitor ID keying the guest collections")
	fs.StringVar(&o.userID, "user", "", "signed-in user ID, guest when empty")
	fs.StringVar(&o.session, "session", "", "session cookie of the signed-in user")
	fs.StringVarP(&o.format, "format", "f", "", "book format of the cart line")
	fs.IntVarP(&o.quantity, "quantity", "q", 1, "line quantity for add and update")
	fs.StringVar(&o.category, "category", "", "catalog category filter")
	fs.StringVar(&o.search, "search", "", "catalog search filter")

	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	if fs.NArg() == 0 {
		return options{}, nil, fmt.Errorf("command is missing")
	}
	return o, fs.Args(), nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	opts, rest, err := parseArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Environment == config.EnvDevelopment)
	if err != nil {
		return fmt.Errorf("logging.New: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	kv, closeKV, err := openKV(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeKV()

	engine, err := newEngine(cfg, opts, kv, logger)
	if err != nil {
		return err
	}

	filter := domain.ProductFilter{Category: opts.category, Search: opts.search}
	if err := engine.Catalog().Fetch(ctx, filter); err != nil {
		logger.Warn("catalog unavailable", zap.Error(err))
	}

	if opts.userID != "" {
		err = engine.Login(ctx, domain.User{ID: opts.userID})
	} else {
		err = engine.Load(ctx)
	}
	if err != nil {
		logger.Warn("loading cart and wishlist failed", zap.Error(err))
	}

	return execute(ctx, engine, opts, rest, out)
}

func newEngine(cfg *config.Config, opts options, kv port.KVStore, logger *zap.Logger) (*shop.Engine, error) {
	clientOpts := []remote.Option{
		remote.WithTimeout(cfg.API.Timeout),
		remote.WithRetries(cfg.API.MaxRetries, 200*time.Millisecond),
		remote.WithLogger(logger),
	}
	if opts.session != "" {
		clientOpts = append(clientOpts, remote.WithCookies(&http.Cookie{Name: sessionCookie, Value: opts.session}))
	}

	client, err := remote.New(cfg.API.BaseURL, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("remote.New: %w", err)
	}

	unit, err := cfg.Shop.Unit()
	if err != nil {
		return nil, err
	}
	taxRate, shippingFee, err := cfg.Shop.Rates()
	if err != nil {
		return nil, err
	}

	engine, err := shop.NewEngine(client, repository.NewGuestStore(kv, logger), opts.visitorID,
		shop.WithLogger(logger),
		shop.WithCatalog(shop.NewCatalog(client, logger, cfg.Shop.CatalogLimit)),
		shop.WithRates(taxRate, shippingFee),
		shop.WithCurrency(unit),
	)
	if err != nil {
		return nil, fmt.Errorf("shop.NewEngine: %w", err)
	}
	return engine, nil
}

func openKV(ctx context.Context, cfg config.StorageConfig) (port.KVStore, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("pool.Ping: %w", err)
		}
		return repository.NewPostgresKV(pool), pool.Close, nil

	case config.DriverRedis:
		client, err := repository.ConnectRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("client.Ping: %w", err)
		}
		return repository.NewRedisKV(client, redisKeyPrefix, cfg.TTL), func() { _ = client.Close() }, nil

	default:
		return repository.NewMemoryKV(), func() {}, nil
	}
}

func execute(ctx context.Context, e *shop.Engine, opts options, args []string, out io.Writer) error {
	command := args[0]

	productID := func() (uuid.UUID, error) {
		if len(args) < 2 {
			return uuid.Nil, fmt.Errorf("%s: productId is missing", command)
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return uuid.Nil, fmt.Errorf("%s: uuid.Parse: %w", command, err)
		}
		return id, nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer w.Flush()

	switch command {
	case "products":
		if err := e.Catalog().Err(); err != nil {
			return err
		}
		for _, p := range e.Catalog().Products() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, e.Money(p.Price))
		}
		return nil

	case "cart":
		printCart(w, e)
		return nil

	case "add", "remove", "update", "toggle":
		id, err := productID()
		if err != nil {
			return err
		}
		switch command {
		case "add":
			err = e.AddToCart(ctx, id, opts.format, opts.quantity)
		case "remove":
			err = e.RemoveFromCart(ctx, id, opts.format)
		case "update":
			err = e.UpdateCart(ctx, id, opts.format, opts.quantity)
		case "toggle":
			err = e.ToggleWishlistItem(ctx, id)
		}
		if err != nil {
			return err
		}
		if command == "toggle" {
			fmt.Fprintf(w, "in wishlist: %t\n", e.IsInWishlist(id))
			return nil
		}
		printCart(w, e)
		return nil

	case "wishlist":
		for _, entry := range e.Wishlist() {
			name := ""
			if p, ok := e.Catalog().Find(entry.ProductID); ok {
				name = p.Name
			}
			fmt.Fprintf(w, "%s\t%s\n", entry.ProductID, name)
		}
		return nil

	case "total":
		fmt.Fprintln(w, e.CartTotal())
		return nil

	case "quote":
		quote, err := e.CheckoutQuote(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "subtotal\t%s\n", e.Money(quote.Subtotal))
		fmt.Fprintf(w, "taxes\t%s\n", e.Money(quote.Taxes))
		fmt.Fprintf(w, "shipping\t%s\n", e.Money(quote.ShippingFee))
		fmt.Fprintf(w, "total\t%s\n", e.Money(quote.Total))
		if quote.Local {
			fmt.Fprintln(w, "(computed locally)")
		}
		return nil

	case "orders":
		orders, err := e.Orders(ctx)
		if err != nil {
			return err
		}
		for _, o := range orders {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.ID, o.Status, o.CreatedAt.Format(time.DateOnly), e.Money(o.TotalPrice))
		}
		return nil

	case "migrate":
		err := e.MigrateGuestState(ctx)
		if err != nil && !errors.Is(err, domain.ErrRemoteRequestFailed) {
			return err
		}
		if err != nil {
			fmt.Fprintf(w, "partially migrated: %v\n", err)
		}
		printCart(w, e)
		return nil
	}

	return fmt.Errorf("unknown command %q", command)
}

func printCart(w io.Writer, e *shop.Engine) {
	for _, l := range e.Cart() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", l.ProductID, l.Name, l.Format, l.Quantity, e.Money(l.Price))
	}
	fmt.Fprintf(w, "items: %d\ttotal: %s\n", e.CartCount(), e.CartTotal())
}
