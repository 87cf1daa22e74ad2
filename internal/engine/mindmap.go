package engine

import (
	"github.com/ideaforge/ideaforge/internal/types"
)

// MindmapNode mirrors one thread or branch for presentation. Thread nodes
// carry no category; branch nodes carry their payload's category.
type MindmapNode struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Category types.Category `json:"category,omitempty"`
	Children []*MindmapNode `json:"children,omitempty"`
}

// Mindmap is the presentation tree for the whole session: one root node
// per thread, branch nodes nested under their thread or parent branch.
type Mindmap struct {
	Roots []*MindmapNode `json:"roots"`
}

// ProjectMindmap derives the mindmap from the thread registry and branch
// store. Because it is a pure projection of the same parent/child index
// the operations maintain, the result is isomorphic to the thread/branch
// forest by construction: one node per thread and per branch, children in
// creation order.
func ProjectMindmap(reg *Registry, store *Store) *Mindmap {
	m := &Mindmap{}
	for _, thread := range reg.List(true) {
		node := &MindmapNode{
			ID:   string(thread.ID),
			Name: thread.Name,
		}
		for _, root := range store.Roots(thread) {
			node.Children = append(node.Children, projectBranch(store, root))
		}
		m.Roots = append(m.Roots, node)
	}
	return m
}

func projectBranch(store *Store, b *types.Branch) *MindmapNode {
	node := &MindmapNode{
		ID:       b.ID.String(),
		Name:     b.Payload.Heading(),
		Category: b.Category(),
	}
	for _, childID := range b.ChildIDs {
		if child, err := store.Get(childID); err == nil {
			node.Children = append(node.Children, projectBranch(store, child))
		}
	}
	return node
}

// Find locates the node with the given id, depth first across all roots.
// Returns nil when no such node exists.
func (m *Mindmap) Find(id string) *MindmapNode {
	for _, root := range m.Roots {
		if found := findNode(root, id); found != nil {
			return found
		}
	}
	return nil
}

func findNode(n *MindmapNode, id string) *MindmapNode {
	if n.ID == id {
		return n
	}
	for _, child := range n.Children {
		if found := findNode(child, id); found != nil {
			return found
		}
	}
	return nil
}

// BranchIDs collects every branch id reachable under the node, in
// depth-first order. Thread nodes themselves are not included.
func (n *MindmapNode) BranchIDs() []string {
	var ids []string
	for _, child := range n.Children {
		ids = append(ids, child.ID)
		ids = append(ids, child.BranchIDs()...)
	}
	return ids
}
