package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/thomas/knits-terminal-go/internal/cache"
	"github.com/thomas/knits-terminal-go/internal/cart"
	"github.com/thomas/knits-terminal-go/internal/catalog"
	"github.com/thomas/knits-terminal-go/internal/checkout"
	"github.com/thomas/knits-terminal-go/internal/config"
	"github.com/thomas/knits-terminal-go/internal/metrics"
	"github.com/thomas/knits-terminal-go/internal/storage"
	"github.com/thomas/knits-terminal-go/internal/tui"
)

// app holds what every session shares.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	provider catalog.Provider
	carts    *storage.SQLite
}

func newApp(cfg *config.Config, out io.Writer) (*app, error) {
	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "knitssh",
		Level:           cfg.Level(),
	})

	a := &app{
		cfg:      cfg,
		logger:   logger,
		provider: newProvider(cfg),
	}

	if cfg.CartDBPath != "" {
		carts, err := storage.OpenSQLite(cfg.CartDBPath)
		if err != nil {
			return nil, fmt.Errorf("opening cart database: %w", err)
		}
		a.carts = carts

		if saved, err := carts.Namespaces(); err != nil {
			logger.Warn("listing saved carts", "err", err)
		} else {
			logger.Info("opened cart database", "path", cfg.CartDBPath, "saved_carts", len(saved))
		}
	} else {
		logger.Warn("CART_DB_PATH is empty, carts will not survive a restart")
	}

	return a, nil
}

func (a *app) Close() error {
	if a.carts == nil {
		return nil
	}
	return a.carts.Close()
}

// newProvider picks the embedded catalog or the catalog service behind a
// TTL cache.
func newProvider(cfg *config.Config) catalog.Provider {
	if cfg.CatalogSource != config.CatalogRemote {
		return catalog.EmbeddedProvider
	}

	c := cache.New[string, *catalog.Catalog](cfg.CacheTTL, cache.WithObserver(metrics.RecordCacheOperation))
	return catalog.NewCached(catalog.NewClient(cfg.CatalogURL), c)
}

// cartBucket returns the storage for a customer's cart. Customers without a
// namespace get a cart that lives only as long as the session.
func (a *app) cartBucket(namespace string) storage.KV {
	if a.carts == nil || namespace == "" {
		return storage.NewMemory()
	}
	return a.carts.Bucket(namespace)
}

// newModel wires a cart store and a TUI model for one customer. The
// returned func cancels any pending checkout redirect and detaches the
// store from the metrics.
func (a *app) newModel(namespace string, logger *log.Logger, extra ...tui.Option) (tui.Model, func()) {
	store := cart.NewStore(a.cartBucket(namespace), cart.WithLogger(logger))
	unsubscribe := store.Subscribe(metrics.RecordCartEvent)

	opts := []tui.Option{
		tui.WithLogger(logger),
		tui.WithRedirectDelay(a.cfg.CheckoutRedirect),
		tui.WithCheckoutOptions(
			checkout.WithPlacedHook(metrics.RecordOrder),
			checkout.WithRejectedHook(metrics.RecordCheckoutRejection),
		),
	}
	opts = append(opts, extra...)

	model := tui.NewModel(a.provider, store, opts...)
	return model, func() {
		model.Teardown()
		unsubscribe()
	}
}

// releaseOnDone runs each func in order once ctx is done.
func releaseOnDone(ctx context.Context, release ...func()) {
	go func() {
		<-ctx.Done()
		for _, fn := range release {
			fn()
		}
	}()
}

// parseStartProduct understands "product <id>" as the session command.
func parseStartProduct(args []string) (int, bool) {
	if len(args) != 2 || !strings.EqualFold(args[0], "product") {
		return 0, false
	}
	id, err := strconv.Atoi(args[1])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
