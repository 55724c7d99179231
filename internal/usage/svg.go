package usage

import (
	"bufio"
	"fmt"
	"html"
	"io"
)

// NoDataText is shown in place of a chart when there is nothing to plot.
const NoDataText = "No provider timeline available"

// SVGOptions controls the pixel size and title of a rendered chart.
type SVGOptions struct {
	Title  string
	Width  int
	Height int
}

func (o SVGOptions) withDefaults() SVGOptions {
	if o.Width <= 0 {
		o.Width = 640
	}
	if o.Height <= 0 {
		o.Height = 280
	}
	return o
}

const (
	svgPad         = 12
	svgLegendRow   = 18
	svgLabelHeight = 16
)

// RenderSVG writes a standalone SVG document plotting the total (dashed) and
// each provider (solid) over a 0 0 100 100 viewBox, with a legend and the
// first and last date labels. Without data it writes a placeholder.
func RenderSVG(w io.Writer, points []UsagePoint, opts SVGOptions) error {
	opts = opts.withDefaults()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height)

	top := svgPad
	if opts.Title != "" {
		fmt.Fprintf(bw, `<text x="%d" y="%d" font-size="14" font-weight="600" fill="#0f172a">%s</text>`+"\n",
			svgPad, svgPad+12, html.EscapeString(opts.Title))
		top += 20
	}

	series, ok := Aggregate(points)
	if !ok {
		fmt.Fprintf(bw, `<text x="%d" y="%d" font-size="13" fill="#64748b" text-anchor="middle">%s</text>`+"\n",
			opts.Width/2, opts.Height/2, NoDataText)
		bw.WriteString("</svg>\n")
		return bw.Flush()
	}

	plotW := opts.Width - 2*svgPad
	plotH := opts.Height - top - svgLabelHeight - svgLegendRow - svgPad
	if plotH < 10 {
		plotH = 10
	}

	fmt.Fprintf(bw, `<svg x="%d" y="%d" width="%d" height="%d" viewBox="0 0 100 100" preserveAspectRatio="none">`+"\n",
		svgPad, top, plotW, plotH)
	fmt.Fprintf(bw, `<polyline fill="none" stroke="%s" stroke-width="1.5" stroke-dasharray="4 3" vector-effect="non-scaling-stroke" points="%s"/>`+"\n",
		TotalColor, Polyline(series.Totals, series.MaxValue))
	for _, name := range series.Providers {
		fmt.Fprintf(bw, `<polyline fill="none" stroke="%s" stroke-width="2" vector-effect="non-scaling-stroke" points="%s"><title>%s</title></polyline>`+"\n",
			ProviderColor(name), Polyline(series.Values[name], series.MaxValue), html.EscapeString(name))
	}
	bw.WriteString("</svg>\n")

	labelY := top + plotH + svgLabelHeight - 4
	first := FormatDateLabel(series.Timestamps[0])
	last := FormatDateLabel(series.Timestamps[series.Len()-1])
	fmt.Fprintf(bw, `<text x="%d" y="%d" font-size="11" fill="#64748b">%s</text>`+"\n",
		svgPad, labelY, html.EscapeString(first))
	fmt.Fprintf(bw, `<text x="%d" y="%d" font-size="11" fill="#64748b" text-anchor="end">%s</text>`+"\n",
		opts.Width-svgPad, labelY, html.EscapeString(last))

	legendY := labelY + svgLegendRow
	x := svgPad
	x = writeLegendItem(bw, x, legendY, "Total", TotalColor, true)
	for _, name := range series.Providers {
		x = writeLegendItem(bw, x, legendY, name, ProviderColor(name), false)
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func writeLegendItem(w *bufio.Writer, x, y int, label, color string, dashed bool) int {
	dash := ""
	if dashed {
		dash = ` stroke-dasharray="4 3"`
	}
	fmt.Fprintf(w, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"%s/>`+"\n",
		x, y-4, x+14, y-4, color, dash)
	fmt.Fprintf(w, `<text x="%d" y="%d" font-size="11" fill="#334155">%s</text>`+"\n",
		x+18, y, html.EscapeString(label))
	return x + 18 + 7*len(label) + 14
}
