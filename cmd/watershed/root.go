package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/watershed/internal/catalog"
	"github.com/katalvlaran/watershed/internal/config"
	"github.com/katalvlaran/watershed/internal/logging"
	"github.com/katalvlaran/watershed/internal/metrics"
	"github.com/katalvlaran/watershed/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "watershed",
	Short: "Flow paths and upstream areas over D8 flow direction grids",
	Long: `watershed traces downhill flow paths, delineates upstream drainage areas
and thresholds raster layers into polygons. It runs one operation from the
command line or serves all of them over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "watershed.yaml", "Path to the configuration file")
}

// app bundles what every command needs.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	store    *catalog.Store
	svc      *service.Service
}

// newApp loads the configuration and the layers named by it.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	store, err := catalog.NewStore(ctx, cfg.Layers, log, m)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &app{
		cfg:      cfg,
		log:      log,
		registry: reg,
		store:    store,
		svc:      service.New(store, cfg.Tracing, log, m),
	}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}
