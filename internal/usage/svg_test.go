package usage

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderSVG_WithData(t *testing.T) {
	points := Normalize(decode(t, `{"data":{"points":[{"timestamp":"2026-02-01T00:00:00Z","totalBytes":1000,"providers":[{"provider":"s3","bytes":700},{"provider":"local","bytes":300}]},{"timestamp":"2026-02-03T00:00:00Z","totalBytes":2000,"providers":[{"provider":"s3","bytes":1300},{"provider":"local","bytes":700}]}]}}`))

	var buf bytes.Buffer
	if err := RenderSVG(&buf, points, SVGOptions{Title: "Usage <30d>"}); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, NoDataText) {
		t.Error("placeholder rendered despite data")
	}
	if !strings.HasPrefix(out, "<svg") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("output is not a single svg document")
	}
	for _, want := range []string{
		`viewBox="0 0 100 100"`,
		`points="0,50 100,0"`,
		`points="0,65 100,35"`,
		`points="0,85 100,65"`,
		`stroke-dasharray="4 3"`,
		"Feb 1",
		"Feb 3",
		">s3<",
		">local<",
		">Total<",
		"Usage &lt;30d&gt;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if got := strings.Count(out, "<polyline"); got != 3 {
		t.Errorf("polyline count = %d, want 3", got)
	}
	if strings.Contains(out, "NaN") {
		t.Error("output contains NaN")
	}
}

func TestRenderSVG_Placeholder(t *testing.T) {
	for name, points := range map[string][]UsagePoint{
		"empty":        {},
		"no providers": {{Timestamp: "t1", TotalBytes: 10, Providers: []ProviderSample{}}},
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderSVG(&buf, points, SVGOptions{}); err != nil {
				t.Fatalf("RenderSVG: %v", err)
			}
			out := buf.String()
			if !strings.Contains(out, NoDataText) {
				t.Error("placeholder missing")
			}
			if strings.Contains(out, "<polyline") || strings.Contains(out, "NaN") {
				t.Error("placeholder should not plot anything")
			}
		})
	}
}
