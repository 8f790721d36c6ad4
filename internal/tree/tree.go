// Package tree builds and prints note, tag and task hierarchies.
package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/pbaille/kbc/internal/domain"
)

// Item is a record that can sit in a hierarchy
type Item struct {
	ID    int64
	Title string
}

// Build turns flat items plus parent/child entries into a forest.
//
// Roots are the items that are never a child, in input order, and children
// follow entry order. Entries that mention an unknown item are ignored. A
// node already on the current path is not descended into again, so cycles
// terminate; items reachable only through a cycle are appended as extra roots.
func Build(items []Item, entries []domain.HierarchyEntry) []*domain.TreeNode {
	byID := make(map[int64]Item, len(items))
	order := make([]int64, 0, len(items))
	for _, it := range items {
		if _, dup := byID[it.ID]; dup {
			continue
		}
		byID[it.ID] = it
		order = append(order, it.ID)
	}

	children := make(map[int64][]domain.HierarchyEntry)
	isChild := make(map[int64]bool)
	for _, e := range entries {
		if e.ParentID == e.ChildID {
			continue
		}
		if _, ok := byID[e.ParentID]; !ok {
			continue
		}
		if _, ok := byID[e.ChildID]; !ok {
			continue
		}
		children[e.ParentID] = append(children[e.ParentID], e)
		isChild[e.ChildID] = true
	}

	emitted := make(map[int64]bool)
	onPath := make(map[int64]bool)

	var build func(id int64, kind string) *domain.TreeNode
	build = func(id int64, kind string) *domain.TreeNode {
		it := byID[id]
		node := &domain.TreeNode{ID: it.ID, Title: it.Title, Type: kind}
		emitted[id] = true
		onPath[id] = true
		for _, e := range children[id] {
			if onPath[e.ChildID] {
				continue
			}
			node.Children = append(node.Children, build(e.ChildID, e.Type))
		}
		delete(onPath, id)
		return node
	}

	var forest []*domain.TreeNode
	for _, id := range order {
		if !isChild[id] {
			forest = append(forest, build(id, ""))
		}
	}
	for _, id := range order {
		if !emitted[id] {
			forest = append(forest, build(id, ""))
		}
	}
	return forest
}

// TagItems adapts tags for Build
func TagItems(tags []domain.Tag) []Item {
	items := make([]Item, len(tags))
	for i, t := range tags {
		items[i] = Item{ID: t.ID, Title: t.Name}
	}
	return items
}

// TagEntries adapts tag hierarchy entries for Build
func TagEntries(entries []domain.TagHierarchyEntry) []domain.HierarchyEntry {
	out := make([]domain.HierarchyEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Entry()
	}
	return out
}

// Render writes one line per node, indented two spaces per level
func Render(w io.Writer, forest []*domain.TreeNode) error {
	var walk func(n *domain.TreeNode, level int) error
	walk = func(n *domain.TreeNode, level int) error {
		line := fmt.Sprintf("%s├─ %s (ID: %d)", strings.Repeat("  ", level), n.Title, n.ID)
		if n.Type != "" {
			line += " [" + n.Type + "]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := walk(child, level+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range forest {
		if err := walk(root, 0); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of nodes in the forest
func Count(forest []*domain.TreeNode) int {
	n := 0
	for _, node := range forest {
		n += 1 + Count(node.Children)
	}
	return n
}
