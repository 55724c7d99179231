package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/usage"
)

func testSeries(t *testing.T) *usage.Series {
	t.Helper()
	s, ok := usage.Aggregate([]usage.UsagePoint{
		{Timestamp: "2026-01-01T00:00:00Z", TotalBytes: 3 << 30, Providers: []usage.ProviderSample{
			{Provider: "s3", Bytes: 2 << 30}, {Provider: "local", Bytes: 1 << 30},
		}},
		{Timestamp: "2026-01-05T00:00:00Z", TotalBytes: 4 << 30, Providers: []usage.ProviderSample{
			{Provider: "s3", Bytes: 3 << 30}, {Provider: "local", Bytes: 1 << 30},
		}},
	})
	require.True(t, ok)
	return s
}

func TestSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	assert.Equal(t, "Loading", s.Label())

	s.SetLabel("Fetching")
	assert.Contains(t, s.View(), "Fetching")
	assert.NotNil(t, s.Tick())

	_, cmd := s.Update(spinner.TickMsg{})
	assert.NotNil(t, cmd, "spinner should keep ticking")

	assert.Contains(t, RenderLoading(s, 40, 5), "Fetching")
}

func TestRenderError(t *testing.T) {
	view := ansi.Strip(RenderError("Dashboard unavailable", "connection refused", 60, 10))
	assert.Contains(t, view, "Dashboard unavailable")
	assert.Contains(t, view, "connection refused")
	assert.Contains(t, view, "press r to retry")
}

func TestScaleFor(t *testing.T) {
	tests := []struct {
		max     float64
		divisor float64
		unit    string
	}{
		{0, 1, "B"},
		{512, 1, "B"},
		{2048, 1024, "KiB"},
		{5 << 30, 1 << 30, "GiB"},
		{3 << 40, 1 << 40, "TiB"},
	}
	for _, tt := range tests {
		d, u := scaleFor(tt.max)
		assert.Equal(t, tt.divisor, d, "max=%v", tt.max)
		assert.Equal(t, tt.unit, u, "max=%v", tt.max)
	}
}

func TestRenderUsageChart(t *testing.T) {
	assert.Contains(t, RenderUsageChart(nil, 40, 5), "No data available")

	chart := ansi.Strip(RenderUsageChart(testSeries(t), 40, 6))
	assert.Contains(t, chart, "Storage (GiB)")
}

func TestRenderUsageChart_SinglePoint(t *testing.T) {
	s, ok := usage.Aggregate([]usage.UsagePoint{
		{Timestamp: "2026-01-01T00:00:00Z", TotalBytes: 100, Providers: []usage.ProviderSample{{Provider: "b2", Bytes: 100}}},
	})
	require.True(t, ok)
	assert.NotEmpty(t, RenderUsageChart(s, 30, 4))
}

func TestRenderDateAxis(t *testing.T) {
	axis := ansi.Strip(RenderDateAxis(testSeries(t), 30))
	assert.True(t, strings.HasPrefix(axis, "Jan 1"), axis)
	assert.True(t, strings.HasSuffix(axis, "Jan 5"), axis)
	assert.Equal(t, 30, len(axis))
	assert.Empty(t, RenderDateAxis(nil, 30))
}

func TestSeriesLegend(t *testing.T) {
	items := SeriesLegend(testSeries(t))
	require.Len(t, items, 3)
	assert.Equal(t, "s3", items[0].Label)
	assert.Equal(t, "local", items[1].Label)
	assert.Equal(t, "total", items[2].Label)

	legend := ansi.Strip(RenderLegend(items))
	assert.Equal(t, "■ s3  ■ local  ■ total", legend)
}

func TestProviderColor(t *testing.T) {
	assert.Equal(t, ProviderColor("S3"), ProviderColor(" aws "))
	assert.NotEqual(t, ProviderColor("s3"), ProviderColor("azure"))
	assert.Equal(t, ProviderColor("unknown"), ProviderColor("other"))
}

func TestRenderBarChart(t *testing.T) {
	assert.Empty(t, RenderBarChart(nil, nil, 40))

	chart := ansi.Strip(RenderBarChart([]float64{2048, 1024}, []string{"s3", "local"}, 40))
	lines := strings.Split(chart, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "2.0 KiB")
	assert.Contains(t, lines[1], "1.0 KiB")
	assert.Greater(t, strings.Count(lines[0], "█"), strings.Count(lines[1], "█"))
}

func TestRenderSparkline(t *testing.T) {
	assert.Empty(t, RenderSparkline(nil, 10))
	assert.Equal(t, "▁█", RenderSparkline([]float64{0, 10}, 10))
	assert.Equal(t, 5, len([]rune(RenderSparkline([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5))))
}

func TestUsageBar(t *testing.T) {
	bar := NewUsageBar()
	view := ansi.Strip(bar.View(42, "Storage", 60))
	assert.Contains(t, view, "Storage")
	assert.Contains(t, view, "42%")

	assert.Contains(t, ansi.Strip(bar.ViewCompact(150, 20)), "150%")
}

func TestRenderGradientBar(t *testing.T) {
	assert.Empty(t, RenderGradientBar(50, 0))

	bar := ansi.Strip(RenderGradientBar(50, 10))
	assert.Equal(t, 5, strings.Count(bar, "█"))
	assert.Equal(t, 5, strings.Count(bar, "░"))

	full := ansi.Strip(RenderGradientBar(250, 4))
	assert.Equal(t, "████", full)
}

func TestSimpleUsageBar(t *testing.T) {
	view := ansi.Strip(SimpleUsageBar(91, "Used", 40))
	assert.Contains(t, view, "Used [")
	assert.Contains(t, view, "91%")
}

func TestLoadingBar(t *testing.T) {
	a := ansi.Strip(LoadingBar(30, 0))
	b := ansi.Strip(LoadingBar(30, 30))
	assert.NotEqual(t, a, b, "shimmer should move between frames")
}

func TestInterpolateColor(t *testing.T) {
	assert.Equal(t, "#000000", interpolateColor("#000000", "#ffffff", 0))
	assert.Equal(t, "#ffffff", interpolateColor("#000000", "#ffffff", 1))
	assert.Equal(t, [3]int{0, 0, 0}, hexToRGB("zz"))
}

func treeFixture() *models.TreeNode {
	return models.BuildFileTree([]models.SnapshotFile{
		{SourcePath: "C:\\Users\\ana\\notes.txt", Size: 10},
		{SourcePath: "C:\\Users\\ana\\docs\\a.pdf", Size: 100},
		{SourcePath: "/etc/hosts", Size: 5},
	})
}

func TestFileTree_Navigation(t *testing.T) {
	tree := NewFileTree(treeFixture())

	// Root children are the C: drive then etc; names sort byte-wise.
	require.Equal(t, 2, tree.Len())
	assert.Equal(t, "C:", tree.Selected().Name)

	tree.Toggle()
	assert.Equal(t, 3, tree.Len(), "C: expanded shows Users")

	tree.MoveDown()
	assert.Equal(t, "Users", tree.Selected().Name)
	tree.Toggle()
	assert.Equal(t, 4, tree.Len(), "Users expanded shows ana")

	tree.MoveDown()
	assert.Equal(t, "ana", tree.Selected().Name)
	assert.Equal(t, `C:\Users\ana`, tree.Selected().SourcePath)
	tree.Toggle()
	assert.Equal(t, 6, tree.Len())

	tree.MoveDown()
	assert.Equal(t, "docs", tree.Selected().Name)
	tree.MoveDown()
	assert.Equal(t, "notes.txt", tree.Selected().Name)

	// Toggle on a file is a no-op.
	tree.Toggle()
	assert.Equal(t, 6, tree.Len())

	// Collapse on a file jumps to its parent.
	tree.Collapse()
	assert.Equal(t, "ana", tree.Selected().Name)
	tree.Collapse()
	assert.Equal(t, 4, tree.Len())

	for range 10 {
		tree.MoveDown()
	}
	assert.Equal(t, "etc", tree.Selected().Name)
	for range 10 {
		tree.MoveUp()
	}
	assert.Equal(t, "C:", tree.Selected().Name)
}

func TestFileTree_View(t *testing.T) {
	tree := NewFileTree(treeFixture())
	view := ansi.Strip(tree.View(60, 10))
	assert.Contains(t, view, "▸ C:")
	assert.Contains(t, view, "2 files")

	empty := NewFileTree(nil)
	assert.Nil(t, empty.Selected())
	assert.Contains(t, empty.View(40, 5), "No files")
}

func TestFileTree_ViewScrolls(t *testing.T) {
	files := make([]models.SnapshotFile, 0, 20)
	for i := range 20 {
		files = append(files, models.SnapshotFile{SourcePath: "/data/f" + string(rune('a'+i)), Size: 1})
	}
	tree := NewFileTree(models.BuildFileTree(files))
	tree.Toggle()
	for range 15 {
		tree.MoveDown()
	}
	view := ansi.Strip(tree.View(40, 5))
	assert.Len(t, strings.Split(view, "\n"), 5)
	assert.Contains(t, view, "fo")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "…", truncate("abcdef", 1))
}
