package cli

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/breeze-rmm/breeze-console/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the usage chart over HTTP",
		Long: `Start an HTTP server exposing the active profile's usage history:
  GET /usage.svg?days=N   SVG chart
  GET /usage.json?days=N  normalized points and the drop report
  GET /healthz            liveness probe
The listen address defaults to LISTEN_ADDR.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHeadless()
			if err != nil {
				return err
			}
			defer h.Close()

			if addr == "" {
				addr = h.cfg.ListenAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			name := strings.ReplaceAll(h.profileName(), "%", "%%")
			srv := server.New(server.HistoryFunc(h.manager.Backup().FetchUsageHistory),
				server.WithTitle(name+" storage usage, last %d days"))
			fmt.Fprintf(cmd.OutOrStdout(), "Serving usage chart on http://%s/usage.svg\n", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from LISTEN_ADDR, 127.0.0.1:8089)")

	return cmd
}
