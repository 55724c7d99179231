// Package cli defines the breeze-console command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/breeze-rmm/breeze-console/internal/version"
)

// NewRootCmd builds the command tree. Without a subcommand it runs the TUI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "breeze-console",
		Short: "Terminal console for Breeze RMM backups and integrations",
		Long: `Breeze Console shows backup storage usage, growth projections, jobs and
snapshots for one or more Breeze RMM instances, and lets you test monitors,
webhooks and third-party integrations from the terminal.

Profiles are read from profiles.json; BREEZE_API_URL and BREEZE_API_TOKEN
(or the Breeze CLI credentials file) provide a profile when the file is empty.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}

	root.AddCommand(
		newChartCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	root.Version = version.GetVersion()
	root.SetVersionTemplate(version.Info() + "\n")

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
