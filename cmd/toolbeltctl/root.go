package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"toolbelt/internal/dispatch"
	"toolbelt/internal/domain"
	"toolbelt/internal/infra/configload"
	"toolbelt/internal/infra/remote"
	"toolbelt/internal/infra/telemetry"
	"toolbelt/internal/infra/userdata"
	"toolbelt/internal/registry"
	"toolbelt/internal/tools/filetool"
	"toolbelt/internal/toolset"
)

type cliOptions struct {
	configPath     string
	entityID       string
	baseURL        string
	cacheDir       string
	workspace      string
	jsonOutput     bool
	verbose        bool
	metricsEnabled bool
	logger         *zap.Logger
	metrics        domain.Metrics

	config configload.Config
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{
		logger: zap.NewNop(),
	}

	root := &cobra.Command{
		Use:   "toolbeltctl",
		Short: "CLI client for the toolbelt action layer",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := buildLogger(opts.verbose)
			if err != nil {
				return err
			}
			opts.logger = logger

			cfg, err := configload.NewLoader(logger).Load(opts.configPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, &opts, &cfg)
			opts.config = cfg

			if opts.metricsEnabled {
				promRegistry := prometheus.NewRegistry()
				opts.metrics = telemetry.NewPrometheusMetrics(promRegistry)
				go func() {
					err := telemetry.StartMetricsServer(cmd.Context(), telemetry.HTTPServerOptions{
						Addr:     cfg.MetricsListenAddress,
						Registry: promRegistry,
					}, opts.logger)
					if err != nil {
						opts.logger.Warn("metrics server exited", zap.Error(err))
					}
				}()
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (optional)")
	root.PersistentFlags().StringVar(&opts.entityID, "entity", "", "entity id to execute as")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "remote API base URL")
	root.PersistentFlags().StringVar(&opts.cacheDir, "cache-dir", "", "metadata cache directory")
	root.PersistentFlags().StringVar(&opts.workspace, "workspace", "", "working directory for local file actions")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().BoolVar(&opts.metricsEnabled, "metrics", false, "serve prometheus metrics on the configured listen address")

	root.AddCommand(
		newExecuteCmd(&opts),
		newAppsCmd(&opts),
		newActionsCmd(&opts),
		newTriggersCmd(&opts),
		newSchemasCmd(&opts),
		newLoginCmd(&opts),
		newWhoamiCmd(&opts),
	)

	return root
}

// applyFlagOverrides copies explicitly set persistent flags over the loaded
// config, so flags win over file, env and stored credentials.
func applyFlagOverrides(cmd *cobra.Command, opts *cliOptions, cfg *configload.Config) {
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "entity":
			cfg.EntityID = opts.entityID
		case "base-url":
			cfg.BaseURL = opts.baseURL
		case "cache-dir":
			cfg.CacheDir = opts.cacheDir
		}
	})
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// buildToolSet wires the full stack: registry, resolver with disk cache,
// local dispatcher with the filetool, remote client, and the toolset.
func buildToolSet(opts *cliOptions) (*toolset.ToolSet, error) {
	cfg := opts.config
	logger := opts.logger
	metrics := opts.metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}

	client := remote.NewClient(remote.Options{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: time.Duration(cfg.RemoteTimeoutSeconds) * time.Second,
		Logger:  logger,
		Metrics: metrics,
	})

	reg := registry.New(logger)
	resolver := registry.NewResolver(reg, registry.ResolverOptions{
		Logger:   logger,
		Remote:   client,
		CacheDir: cfg.CacheDir,
		Metrics:  metrics,
	})

	workspace := opts.workspace
	if workspace == "" {
		workspace, _ = os.Getwd()
	}
	dispatcher := dispatch.NewDispatcher(dispatch.DispatcherOptions{
		Logger:    logger,
		Metrics:   metrics,
		Registrar: reg,
		Env:       dispatch.NewHostEnv(workspace),
	})

	ts := toolset.New(resolver, dispatcher, toolset.Options{
		EntityID:     cfg.EntityID,
		OutputInFile: cfg.OutputInFile,
		OutputDir:    cfg.OutputDir,
		Logger:       logger,
		Metrics:      metrics,
		Remote:       client,
	})
	if err := ts.RegisterTool(filetool.New()); err != nil {
		return nil, err
	}
	return ts, nil
}

func openUserData(opts *cliOptions) (*userdata.Store, error) {
	return userdata.OpenStore(filepath.Join(opts.config.CacheDir, domain.DefaultUserDataFileName))
}
