package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/ui/styles"
)

type treeRow struct {
	node  *models.TreeNode
	depth int
}

// FileTree is a collapsible view over a snapshot's file tree. Only the root
// starts expanded.
type FileTree struct {
	root     *models.TreeNode
	expanded map[string]bool
	rows     []treeRow
	cursor   int
	offset   int
}

// NewFileTree creates a tree view for root. A nil root renders as empty.
func NewFileTree(root *models.TreeNode) FileTree {
	t := FileTree{root: root, expanded: map[string]bool{}}
	if root != nil {
		t.expanded[root.Path] = true
	}
	t.rebuild()
	return t
}

func (t *FileTree) rebuild() {
	t.rows = t.rows[:0]
	if t.root == nil {
		return
	}
	t.root.Walk(func(n *models.TreeNode, depth int) bool {
		// The root itself is implied by the header.
		if n != t.root {
			t.rows = append(t.rows, treeRow{node: n, depth: depth - 1})
		}
		return n.IsDir && t.expanded[n.Path]
	})
	t.cursor = min(t.cursor, max(len(t.rows)-1, 0))
}

// Len returns the number of visible rows.
func (t FileTree) Len() int {
	return len(t.rows)
}

// Selected returns the node under the cursor, or nil when the tree is empty.
func (t FileTree) Selected() *models.TreeNode {
	if len(t.rows) == 0 {
		return nil
	}
	return t.rows[t.cursor].node
}

// MoveUp moves the cursor one row up.
func (t *FileTree) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
	}
}

// MoveDown moves the cursor one row down.
func (t *FileTree) MoveDown() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
	}
}

// Toggle expands or collapses the directory under the cursor.
func (t *FileTree) Toggle() {
	n := t.Selected()
	if n == nil || !n.IsDir {
		return
	}
	t.expanded[n.Path] = !t.expanded[n.Path]
	t.rebuild()
}

// Collapse closes the selected directory, or jumps to the parent of a file.
func (t *FileTree) Collapse() {
	n := t.Selected()
	if n == nil {
		return
	}
	if n.IsDir && t.expanded[n.Path] {
		t.expanded[n.Path] = false
		t.rebuild()
		return
	}
	depth := t.rows[t.cursor].depth
	for i := t.cursor - 1; i >= 0; i-- {
		if t.rows[i].depth < depth {
			t.cursor = i
			return
		}
	}
}

// View renders up to height rows, scrolling to keep the cursor visible.
func (t *FileTree) View(width, height int) string {
	if len(t.rows) == 0 {
		return styles.HelpStyle.Render("No files in this snapshot")
	}
	height = max(height, 1)

	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+height {
		t.offset = t.cursor - height + 1
	}

	end := min(t.offset+height, len(t.rows))
	lines := make([]string, 0, end-t.offset)
	for i := t.offset; i < end; i++ {
		lines = append(lines, t.renderRow(t.rows[i], i == t.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func (t FileTree) renderRow(row treeRow, selected bool, width int) string {
	n := row.node
	icon := "  "
	if n.IsDir {
		icon = "▸ "
		if t.expanded[n.Path] {
			icon = "▾ "
		}
	}

	name := strings.Repeat("  ", row.depth) + icon + n.Name
	size := humanize.IBytes(uint64(max(n.Size, 0)))
	if n.IsDir {
		size = fmt.Sprintf("%s  %d files", size, n.FileCount())
	}

	nameWidth := max(width-lipgloss.Width(size)-2, 10)
	if lipgloss.Width(name) > nameWidth {
		name = truncate(name, nameWidth)
	}

	line := lipgloss.NewStyle().Width(nameWidth).Render(name) + "  " + styles.HelpStyle.Render(size)
	if selected {
		return styles.SelectedRowStyle.Render(line)
	}
	return line
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
