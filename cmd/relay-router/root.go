package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"relayrouter/internal/config"
	"relayrouter/internal/keyfunc"
	"relayrouter/internal/logging"
	"relayrouter/internal/lookup"
	"relayrouter/internal/relay"
)

type app struct {
	cfg    *config.Config
	out    io.Writer
	logger logging.Logger
}

func newRootCmd(cfg *config.Config, out io.Writer) *cobra.Command {
	a := &app{cfg: cfg, out: out}

	root := &cobra.Command{
		Use:           "relay-router",
		Short:         "Decide which carbon destinations metrics are relayed to",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ApplyFlags(cmd.Flags()); err != nil {
				return err
			}
			a.logger = logging.NewZapLogger(logging.LogConfig{
				Level: logging.ParseLevel(a.cfg.LogLevel),
				Name:  "relay-router",
			})
			return nil
		},
	}
	cfg.BindFlags(root.PersistentFlags())
	root.SetOut(out)

	root.AddCommand(a.newRouteCmd(), a.newServeCmd())
	return root
}

func (a *app) build() (*relay.Reconciler, error) {
	return relay.Build(a.cfg, keyfunc.NewDefaultRegistry(), a.logger)
}

// syncLogger flushes the logger. Sync errors on a terminal stderr are
// expected and ignored.
func (a *app) syncLogger() {
	_ = logging.Sync(a.logger)
}

func (a *app) newRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route METRIC...",
		Short: "Print the destinations each metric is routed to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			defer a.syncLogger()

			rc, err := a.build()
			if err != nil {
				return err
			}
			for _, metric := range args {
				fmt.Fprint(a.out, metric)
				for _, addr := range rc.Router().GetDestinations(metric) {
					fmt.Fprint(a.out, " ", addr.String())
				}
				fmt.Fprintln(a.out)
			}
			return nil
		},
	}
}

func (a *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve route lookups over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			defer a.syncLogger()

			rc, err := a.build()
			if err != nil {
				return err
			}

			srv := lookup.NewServer(rc.Router(), a.logger)
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			go func() {
				<-sigCh
				srv.Stop()
			}()

			return srv.ListenAndServe(a.cfg.ListenAddr)
		},
	}
}
