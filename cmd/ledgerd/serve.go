package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/internal/config"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
				cfg.ListenAddr = addr
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}

			var registry *prometheus.Registry
			if cfg.Metrics {
				registry = prometheus.NewRegistry()
				registry.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
			}
			a, closeDB, err := openApplication(cfg, logger, registerer(registry))
			if err != nil {
				return err
			}
			defer closeDB()
			if a.ChainID() == "" {
				return errors.Wrap(errors.ErrState, "chain not initialized, run init first")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			l, err := net.Listen("tcp", cfg.ListenAddr)
			if err != nil {
				return errors.Wrapf(errors.ErrInput, "listen on %s: %s", cfg.ListenAddr, err)
			}
			return serve(ctx, l, a, logger, gatherer(registry), cfg.Debug)
		},
	}
	cmd.Flags().String("listen", "", "address to listen on, overrides the configuration")
	return cmd
}

// serve runs the HTTP API on l until ctx is canceled.
func serve(ctx context.Context, l net.Listener, a *app.Application, logger log.Logger, g prometheus.Gatherer, debug bool) error {
	srv := &http.Server{
		Handler:           newServer(a, logger, g, debug),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", l.Addr().String(), "chain_id", a.ChainID(), "height", a.Height())
		errc <- srv.Serve(l)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// registerer and gatherer avoid wrapping a nil registry in a non nil
// interface.
func registerer(r *prometheus.Registry) prometheus.Registerer {
	if r == nil {
		return nil
	}
	return r
}

func gatherer(r *prometheus.Registry) prometheus.Gatherer {
	if r == nil {
		return nil
	}
	return r
}
