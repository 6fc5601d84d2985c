package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"powerd/internal/cache"
	"powerd/internal/common/fsutil"
	"powerd/internal/config"
	"powerd/internal/httpapi"
	"powerd/internal/model"
	"powerd/internal/registry"
	"powerd/internal/schema"
	"powerd/internal/service"
	"powerd/internal/store"
)

const defaultCacheDir = "~/.cache/powerd/artifacts"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "powerd:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	var configPath, logLevel string
	root := &cobra.Command{
		Use:           "powerd",
		Short:         "Household power draw prediction server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", envOr("POWERD_CONFIG", "powerd.yaml"), "Path to config file (.yaml/.json/.toml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", envOr("POWERD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")

	root.AddCommand(newServeCmd(&configPath, &logLevel))
	root.AddCommand(newFetchCmd(&configPath))
	root.AddCommand(newValidateCmd(&configPath))
	return root
}

func newServeCmd(configPath, logLevel *string) *cobra.Command {
	var addr, cacheDir, corsOrigins string
	var prefetch bool
	var predictTimeoutSec int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(*logLevel)
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if cfg.Addr == "" {
				cfg.Addr = ":8080"
			}
			if cacheDir != "" {
				cfg.CacheDir = cacheDir
			}
			svc, reg, err := buildService(cfg)
			if err != nil {
				return err
			}

			httpapi.SetLogger(logger)
			httpapi.SetPredictTimeout(time.Duration(predictTimeoutSec) * time.Second)
			if corsOrigins != "" {
				origins := strings.Split(corsOrigins, ",")
				for i := range origins {
					origins[i] = strings.TrimSpace(origins[i])
				}
				httpapi.SetCORSOptions(true, origins,
					[]string{"GET", "POST", "OPTIONS"},
					[]string{"Content-Type"})
			}
			baseCtx, cancelBase := context.WithCancel(context.Background())
			defer cancelBase()
			httpapi.SetBaseContext(baseCtx)

			if prefetch {
				if err := reg.Prefetch(baseCtx); err != nil {
					// Degraded start is fine: the failing models stay lazy,
					// the rest are warm.
					logger.Warn().Err(err).Msg("prefetch incomplete")
				}
			}

			srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(svc)}
			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", cfg.Addr).Str("cache_dir", cfg.CacheDir).Msg("powerd listening")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			// Graceful shutdown (Ctrl+C / SIGTERM)
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-stop:
			}
			cancelBase()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOr("POWERD_ADDR", ""), "HTTP listen address, e.g. :8080 (overrides config)")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Local artifact cache directory (overrides config)")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", envOr("POWERD_CORS_ORIGINS", ""), "Comma-separated allowed CORS origins (empty disables CORS)")
	cmd.Flags().BoolVar(&prefetch, "prefetch", false, "Fetch and load all model artifacts before serving")
	cmd.Flags().IntVar(&predictTimeoutSec, "predict-timeout-sec", 0, "Per-request predict timeout in seconds (0 disables)")
	return cmd
}

func newFetchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and load all model artifacts, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			_, reg, err := buildService(cfg)
			if err != nil {
				return err
			}
			if err := reg.Prefetch(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("fetched %d models into %s\n", len(reg.ModelIDs()), cfg.CacheDir)
			return nil
		},
	}
}

func newValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and feature schemas, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			// Full construction exercises schema parsing and the
			// schema/artifact pairing checks.
			if _, _, err := buildService(cfg); err != nil {
				return err
			}
			fmt.Printf("config ok: %d models\n", len(cfg.Models))
			return nil
		},
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = defaultCacheDir
	}
	return cfg, nil
}

// buildService wires store, cache, schemas, registry, and service from a
// validated config. Any error here is a fatal startup error.
func buildService(cfg config.Config) (*service.Service, *registry.Registry, error) {
	var (
		st  store.Store
		err error
	)
	if cfg.StoreURL != "" {
		st, err = store.NewHTTPStore(cfg.StoreURL, time.Duration(cfg.FetchTimeoutSec)*time.Second)
	} else {
		st, err = store.NewDirStore(cfg.StoreDir)
	}
	if err != nil {
		return nil, nil, err
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = defaultCacheDir
	}
	dir, err := fsutil.ExpandHome(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	c, err := cache.NewWithConfig(cache.Config{Dir: dir, Store: st, MaxAttempts: cfg.FetchAttempts})
	if err != nil {
		return nil, nil, err
	}

	featureNames := make(map[string][]string, len(cfg.Models))
	specs := make(map[string]registry.Spec, len(cfg.Models))
	for id, m := range cfg.Models {
		featureNames[id] = m.Features
		specs[id] = registry.Spec{
			Kind: model.Kind(m.Kind),
			Ref:  cache.Ref{ModelID: id, Key: m.Key},
		}
	}
	schemas, err := schema.NewRegistry(featureNames)
	if err != nil {
		return nil, nil, err
	}
	reg, err := registry.NewWithConfig(registry.Config{Schemas: schemas, Cache: c, Specs: specs})
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewWithConfig(service.Config{
		Schemas:      schemas,
		Models:       reg,
		DefaultModel: cfg.DefaultModel,
		CacheDir:     dir,
	})
	return svc, reg, nil
}
