package models

import (
	"path"
	"sort"
	"strings"
	"time"
)

// TreeNode is one directory or file in a snapshot's file tree.
// Path is the normalized tree key; SourcePath is the same location spelled
// the way the agent reported it, and is what a restore request carries.
type TreeNode struct {
	ModTime    time.Time
	Name       string
	Path       string
	SourcePath string
	Children   []*TreeNode
	Size       float64
	IsDir      bool
}

// Walk visits n and its descendants depth-first, children in order.
// Returning false from fn skips the node's children.
func (n *TreeNode) Walk(fn func(node *TreeNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *TreeNode) walk(fn func(*TreeNode, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// FileCount returns the number of file leaves below n.
func (n *TreeNode) FileCount() int {
	if !n.IsDir {
		return 1
	}
	count := 0
	for _, c := range n.Children {
		count += c.FileCount()
	}
	return count
}

// BuildFileTree builds a directory tree from the source paths of files.
// Windows drives become top-level directories named like "C:". Children are
// sorted directories first, then by name. Directory sizes are the sum of
// their children.
func BuildFileTree(files []SnapshotFile) *TreeNode {
	root := &TreeNode{Name: "/", Path: "/", IsDir: true}
	index := map[string]*TreeNode{"": root}

	for _, f := range files {
		parts, style := splitSourcePath(f.SourcePath)
		if len(parts) == 0 {
			continue
		}
		parent := root
		for i, part := range parts[:len(parts)-1] {
			key := strings.Join(parts[:i+1], "/")
			dir, ok := index[key]
			if !ok {
				dir = &TreeNode{
					Name:       part,
					Path:       "/" + key,
					SourcePath: style.join(parts[:i+1]),
					IsDir:      true,
				}
				index[key] = dir
				parent.Children = append(parent.Children, dir)
			}
			parent = dir
		}
		parent.Children = append(parent.Children, &TreeNode{
			Name:       parts[len(parts)-1],
			Path:       "/" + strings.Join(parts, "/"),
			SourcePath: strings.TrimSpace(f.SourcePath),
			Size:       f.Size,
			ModTime:    f.ModTime,
		})
	}

	finishTree(root)
	return root
}

// sourceStyle rebuilds source-form paths for directories.
type sourceStyle struct {
	prefix string
	sep    string
}

func (s sourceStyle) join(parts []string) string {
	p := s.prefix + strings.Join(parts, s.sep)
	if len(parts) == 1 && isDrive(parts[0]) {
		p += s.sep
	}
	return p
}

// splitSourcePath splits a POSIX, Windows or UNC path into tree components.
// A drive letter is kept as the first component.
func splitSourcePath(raw string) ([]string, sourceStyle) {
	raw = strings.TrimSpace(raw)
	style := sourceStyle{sep: "/"}
	if strings.Contains(raw, `\`) {
		style.sep = `\`
	}

	p := strings.ReplaceAll(raw, `\`, "/")
	var drive string
	if len(p) >= 2 && isDrive(p[:2]) {
		drive = strings.ToUpper(p[:1]) + ":"
		p = p[2:]
	} else if strings.HasPrefix(p, "//") {
		style.prefix = style.sep + style.sep
	} else if strings.HasPrefix(p, "/") {
		style.prefix = style.sep
	}

	clean := strings.Trim(path.Clean("/"+p), "/")
	if clean == "" {
		return nil, style
	}
	parts := strings.Split(clean, "/")
	if drive != "" {
		parts = append([]string{drive}, parts...)
	}
	return parts, style
}

func isDrive(s string) bool {
	if len(s) != 2 || s[1] != ':' {
		return false
	}
	c := s[0] | 0x20
	return c >= 'a' && c <= 'z'
}

func finishTree(n *TreeNode) float64 {
	if !n.IsDir {
		return n.Size
	}
	var total float64
	for _, c := range n.Children {
		total += finishTree(c)
		if c.ModTime.After(n.ModTime) {
			n.ModTime = c.ModTime
		}
	}
	n.Size = total
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})
	return total
}
