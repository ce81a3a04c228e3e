// Package hierarchy holds the pure tree logic for category parent
// chains: cycle detection before a parent assignment is persisted, and
// flattening a tree into an indented list for select inputs.
package hierarchy

import (
	"errors"
	"sort"
	"strings"
)

// MaxDepth bounds the parent-chain walk. A chain longer than this is
// treated as circular.
const MaxDepth = 100

var (
	ErrCircular       = errors.New("circular reference detected")
	ErrParentNotFound = errors.New("parent category not found")
)

// Node is the minimal category shape the tree logic needs.
type Node struct {
	ID        uint
	Name      string
	SortOrder int
	ParentID  *uint
}

// WouldCycle reports whether assigning parentID as the parent of
// childID would create a cycle. parents maps every known category in
// the scope to its current parent (nil for roots). A nil parentID is
// always valid. The visited set is seeded with the child's own id, so a
// self-referential assignment is caught on the first step.
func WouldCycle(childID uint, parentID *uint, parents map[uint]*uint) error {
	if parentID == nil {
		return nil
	}
	visited := map[uint]bool{childID: true}
	cur := *parentID
	for hops := 0; hops < MaxDepth; hops++ {
		if visited[cur] {
			return ErrCircular
		}
		next, ok := parents[cur]
		if !ok {
			return ErrParentNotFound
		}
		visited[cur] = true
		if next == nil {
			return nil
		}
		cur = *next
	}
	return ErrCircular
}

// Entry is one line of a flattened tree.
type Entry struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
	Depth int    `json:"depth"`
}

// Flatten walks the tree depth-first over an explicit stack (so deeply
// nested trees cannot exhaust the call stack) and returns entries in
// display order, each label prefixed with indent repeated per depth.
// Siblings are ordered by sort order, ties by id.
func Flatten(nodes []Node, indent string) []Entry {
	children := make(map[uint][]Node)
	for _, n := range nodes {
		key := uint(0)
		if n.ParentID != nil {
			key = *n.ParentID
		}
		children[key] = append(children[key], n)
	}
	for _, list := range children {
		sort.Slice(list, func(i, j int) bool {
			if list[i].SortOrder != list[j].SortOrder {
				return list[i].SortOrder < list[j].SortOrder
			}
			return list[i].ID < list[j].ID
		})
	}

	type frame struct {
		node  Node
		depth int
	}
	var stack []frame
	roots := children[0]
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 0})
	}

	entries := make([]Entry, 0, len(nodes))
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		entries = append(entries, Entry{
			ID:    top.node.ID,
			Label: strings.Repeat(indent, top.depth) + top.node.Name,
			Depth: top.depth,
		})
		kids := children[top.node.ID]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{kids[i], top.depth + 1})
		}
	}
	return entries
}
