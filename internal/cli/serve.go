package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/traceband/traceband/internal/api"
	"github.com/traceband/traceband/internal/config"
	"github.com/traceband/traceband/pkg/cache"
	"github.com/traceband/traceband/pkg/pipeline"
	"github.com/traceband/traceband/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		listen     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API over a trace catalog",
		Long: `Run the HTTP API over a trace catalog.

Traces registered in the config file (or at runtime through the catalog
backend) can be queried by name:

  GET /v1/layout?trace=boot&tracks=1,2
  GET /v1/tracks?trace=boot
  GET /v1/traces
  GET /healthz

The cache and catalog backends are selected in traceband.toml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), configPath, listen)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default: traceband.toml if present)")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, configPath, listen string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}

	serverCache, err := newServerCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	runner := pipeline.NewRunner(serverCache, nil, c.Logger)
	runner.TTL = cfg.Cache.TTL.Duration(pipeline.DefaultTTL)
	defer runner.Close()

	catalog, err := newCatalog(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize catalog: %w", err)
	}
	defer catalog.Close()

	for _, tr := range cfg.Traces {
		info := store.TraceInfo{
			Name:        tr.Name,
			Path:        tr.Path,
			Description: tr.Description,
			AddedAt:     time.Now(),
		}
		if err := catalog.Put(ctx, info); err != nil {
			return fmt.Errorf("register trace %q: %w", tr.Name, err)
		}
		c.Logger.Debug("registered trace", "name", tr.Name, "path", tr.Path)
	}

	server := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      api.NewServer(catalog, runner, c.Logger).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(10 * time.Second),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(60 * time.Second),
	}

	errs := make(chan error, 1)
	go func() {
		c.Logger.Info("serving", "addr", cfg.Server.Listen, "traces", len(cfg.Traces))
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.Logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}

// newServerCache builds the cache backend selected in the config.
func newServerCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err != nil {
			return nil, err
		}
		return cache.WithRetry(rc, 3, 100*time.Millisecond), nil
	default:
		dir, err := cfg.CacheDir()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	}
}

// newCatalog builds the trace catalog backend selected in the config.
func newCatalog(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store.Backend == "mongo" {
		return store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
	}
	return store.NewMemoryStore(), nil
}
