package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/packhub/packhub/internal/config"
	"github.com/packhub/packhub/pkg/cache"
	"github.com/packhub/packhub/pkg/fetch"
	"github.com/packhub/packhub/pkg/observability"
	"github.com/packhub/packhub/pkg/observability/prom"
	"github.com/packhub/packhub/pkg/ops"
	opsmongo "github.com/packhub/packhub/pkg/ops/mongo"
	"github.com/packhub/packhub/pkg/server"
	"github.com/packhub/packhub/pkg/store"
)

// shutdownTimeout bounds graceful HTTP shutdown on SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the packhub HTTP API server",
		Long: `Run the HTTP API server.

Without --config the server uses in-memory cache and operation storage and
fetches manifests from raw.githubusercontent.com. See the config file for
redis/mongo backends.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	observability.SetStoreHooks(prom.NewStoreHooks())
	observability.SetOpsHooks(prom.NewOpsHooks())

	bundleCache, err := newBundleCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer bundleCache.Close()
	keyer := newKeyer(cfg.Cache)

	httpClient := &http.Client{Timeout: cfg.Fetch.Timeout.Value()}
	fetcher := fetch.NewHTTPFetcher(cfg.Fetch.URLTemplate, httpClient,
		fetch.WithResponseCache(bundleCache, keyer))
	st := store.New(bundleCache, fetcher,
		store.WithLogger(c.Logger),
		store.WithKeyer(keyer))

	opsStore, err := newOpsStore(ctx, cfg.Ops)
	if err != nil {
		return err
	}
	registry := ops.NewRegistry(opsStore)

	srv := server.New(st, registry, server.WithLogger(c.Logger))
	httpServer := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Server.Listen)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newBundleCache builds the configured cache backend.
func newBundleCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheFile:
		return cache.NewFileCache(cfg.Dir)
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case config.CacheNone:
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// newKeyer derives cache keys, scoped by the configured prefix when
// several instances share one backend.
func newKeyer(cfg config.CacheConfig) cache.Keyer {
	if cfg.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, cfg.Prefix)
}

// newOpsStore builds the configured operation store. An empty mongo URI
// selects the in-memory store.
func newOpsStore(ctx context.Context, cfg config.OpsConfig) (ops.Store, error) {
	if cfg.MongoURI == "" {
		return ops.NewMemoryStore(), nil
	}
	return opsmongo.NewStore(ctx, opsmongo.Config{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
	})
}
