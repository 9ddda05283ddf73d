package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/watershed/internal/catalog"
	"github.com/katalvlaran/watershed/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the HTTP server exposing flowPath, upstreamArea, queryRaster and
queryPoints, plus /health and /metrics. SIGINT or SIGTERM shut it down
gracefully.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.Server.Addr = addr
		}
		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			a.cfg.Server.Watch = true
		}
		return serve(cmd.Context(), a)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().Bool("watch", false, "Reload layers when their files change")
}

func serve(ctx context.Context, a *app) error {
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.cfg.Server.Watch {
		w, err := catalog.NewWatcher(a.store, catalog.DefaultDebounce)
		if err != nil {
			return err
		}
		w.Start(ctx)
		defer w.Stop()
	}

	srv := &http.Server{
		Addr: a.cfg.Server.Addr,
		Handler: httpapi.NewHandler(a.svc,
			httpapi.WithLogger(a.log),
			httpapi.WithGatherer(a.registry),
			httpapi.WithTimeout(a.cfg.Server.RequestTimeout),
			httpapi.WithTolerance(a.cfg.Tracing.SnapTolerance)),
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", srv.Addr), zap.Bool("watch", a.cfg.Server.Watch))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-shutdown:
		a.log.Info("shutting down", zap.Stringer("signal", sig))
	case <-ctx.Done():
		a.log.Info("shutting down", zap.Error(ctx.Err()))
	}

	// Give outstanding requests a deadline for completion.
	sctx, scancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		a.log.Warn("graceful shutdown did not complete", zap.Duration("timeout", a.cfg.Server.ShutdownTimeout), zap.Error(err))
		return srv.Close()
	}
	a.log.Info("server stopped")
	return nil
}
