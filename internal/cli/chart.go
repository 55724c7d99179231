package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/ui/components"
	"github.com/breeze-rmm/breeze-console/internal/usage"
)

const (
	defaultChartDays = 30
	asciiWidth       = 72
	asciiHeight      = 12
)

func newChartCmd() *cobra.Command {
	var days int
	var out string
	var ascii bool

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Export the usage-history chart",
		Long: `Fetch the storage usage history of the active profile and write it as an
SVG chart. Use --out - to write the SVG to stdout, or --ascii to print a
terminal chart instead. Falls back to the local cache when the API is down.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 || days > 365 {
				return fmt.Errorf("--days must be between 1 and 365, got %d", days)
			}

			h, err := openHeadless()
			if err != nil {
				return err
			}
			defer h.Close()

			history, err := h.manager.Backup().FetchUsageHistory(cmd.Context(), days)
			if err != nil {
				return err
			}
			if history.FromCache {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: API unreachable, using cached usage history")
			}

			title := fmt.Sprintf("%s storage usage, last %d days", h.profileName(), days)
			switch {
			case ascii:
				return renderASCII(cmd.OutOrStdout(), history, title)
			case out == "-":
				return usage.RenderSVG(cmd.OutOrStdout(), history.Points, usage.SVGOptions{Title: title})
			default:
				if err := writeChartFile(out, history, title); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d points)\n", out, len(history.Points))
				return nil
			}
		},
	}

	cmd.Flags().IntVar(&days, "days", defaultChartDays, "Days of history to fetch (1-365)")
	cmd.Flags().StringVarP(&out, "out", "o", "breeze-usage.svg", "Output SVG file, or - for stdout")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "Print a terminal chart instead of writing SVG")

	return cmd
}

func writeChartFile(path string, h *models.UsageHistory, title string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := usage.RenderSVG(f, h.Points, usage.SVGOptions{Title: title}); err != nil {
		_ = f.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// renderASCII prints the same chart the history tab shows.
func renderASCII(w io.Writer, h *models.UsageHistory, title string) error {
	series, ok := usage.Aggregate(h.Points)
	if !ok {
		_, err := fmt.Fprintln(w, usage.NoDataText)
		return err
	}

	_, err := fmt.Fprintf(w, "%s\n\n%s\n%s\n\n%s\n",
		title,
		components.RenderUsageChart(series, asciiWidth, asciiHeight),
		components.RenderDateAxis(series, asciiWidth+10),
		components.RenderLegend(components.SeriesLegend(series)),
	)
	return err
}
