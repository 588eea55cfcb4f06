package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/lattix/server"
)

func newServeCmd(e *env) *cobra.Command {
	var (
		addr       string
		maxPeriods int
		timeout    time.Duration
		origins    []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP pricing API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv("LATTIX_ENV") == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Config{
				Registry:       e.cfg.Registry,
				Logger:         e.cfg.Logger,
				Registerer:     prometheus.DefaultRegisterer,
				Gatherer:       prometheus.DefaultGatherer,
				MaxPeriods:     maxPeriods,
				Timeout:        timeout,
				AllowedOrigins: origins,
			})

			return srv.Run(ctx, addr)
		},
	}

	defaultAddr := ":8080"
	if v := os.Getenv("LATTIX_ADDR"); v != "" {
		defaultAddr = v
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "Listen address")
	cmd.Flags().IntVar(&maxPeriods, "max-periods", server.DefaultMaxPeriods, "Largest lattice a request may ask for")
	cmd.Flags().DurationVar(&timeout, "timeout", server.DefaultTimeout, "Per-request pricing timeout")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "CORS origin (repeatable; all when unset)")

	return cmd
}
