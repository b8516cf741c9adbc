// Package app wires the synchronization core together behind one explicit
// application context. The App owns every component; nothing in the
// repository keeps ambient package-level state.
package app

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/avertin/pricepulse/internal/alerts"
	"github.com/avertin/pricepulse/internal/api"
	"github.com/avertin/pricepulse/internal/catalog"
	"github.com/avertin/pricepulse/internal/config"
	"github.com/avertin/pricepulse/internal/pricestore"
	"github.com/avertin/pricepulse/internal/render"
	"github.com/avertin/pricepulse/internal/session"
	"github.com/avertin/pricepulse/internal/stream"
)

// App is the top-level application context.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	Catalog *catalog.Catalog
	Store   *pricestore.Store
	API     *api.Client
	Alerts  *alerts.Registry
	Session *session.Manager
	Stream  *stream.Manager
}

// New constructs and wires the application context from configuration.
func New(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	cat := catalog.Default()
	store := pricestore.NewStore(cat)

	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
	)

	registry := alerts.NewRegistry(client, logger)
	sess := session.NewManager(client, session.NewFileTokenStore(cfg.Session.TokenFile), registry, logger)

	sm := stream.NewManager(stream.Config{
		URL:              cfg.Stream.URL,
		ReconnectDelay:   cfg.Stream.ReconnectDelay,
		HandshakeTimeout: cfg.Stream.HandshakeTimeout,
		WriteTimeout:     cfg.Stream.WriteTimeout,
	}, store, logger)

	sm.OnStateChange(func(s stream.State) {
		logger.Info("connectivity changed", "state", s)
	})

	return &App{
		cfg:     cfg,
		logger:  logger,
		Catalog: cat,
		Store:   store,
		API:     client,
		Alerts:  registry,
		Session: sess,
		Stream:  sm,
	}
}

// Bootstrap brings the core up: session restore and the REST price
// snapshot run concurrently, and the stream connects only after both have
// finished. Merging the bootstrap snapshot before any stream frame can
// arrive means a live delta always wins over bootstrap data; there is no
// completion-order race between the two price sources.
//
// Bootstrap degrades rather than fails: an invalid persisted session
// leaves the app anonymous, and a failed snapshot fetch leaves the store
// empty until the first stream frame.
func (a *App) Bootstrap(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Session.Restore(gctx); err != nil {
			a.logger.Warn("starting anonymous", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		prices, err := a.API.PriceSnapshot(gctx)
		if err != nil {
			a.logger.Warn("bootstrap price fetch failed, waiting for stream", "error", err)
			return nil
		}
		a.Store.MergeSnapshot(prices)
		a.logger.Info("bootstrap prices merged", "symbols", len(prices))
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if err := a.Stream.Connect(ctx); err != nil {
		// The manager has already scheduled its reconnect; the dashboard
		// comes up on bootstrap data in the meantime.
		a.logger.Warn("initial stream connect failed", "error", err)
	}

	return nil
}

// ViewInput assembles the render input for a category filter from the
// current core state.
func (a *App) ViewInput(category string) render.Input {
	entries := a.Store.FilteredView(category)

	changes := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		if change, ok := a.Store.ChangePercent(e.Instrument.Symbol); ok {
			changes[e.Instrument.Symbol] = change
		}
	}

	return render.Input{
		Entries:       entries,
		Changes:       changes,
		Rules:         a.Alerts.Rules(),
		Connection:    a.Stream.State(),
		Authenticated: a.Session.Authenticated(),
	}
}

// View derives the current immutable view for a category filter.
func (a *App) View(category string) render.View {
	return render.Build(a.ViewInput(category))
}

// Shutdown tears the core down.
func (a *App) Shutdown() {
	a.Stream.Stop()
	a.logger.Info("application stopped")
}
