// Package engine implements the branch/thread graph: an arena of branch
// records indexed by id, a thread registry, the lifecycle operations that
// mutate them, and the mindmap projection derived from them.
package engine

import (
	"github.com/ideaforge/ideaforge/internal/types"
)

// Store is the authoritative registry of all branches in a session. Branch
// ids come from a monotonically increasing counter and are never reused,
// even after deletion.
type Store struct {
	branches map[types.BranchID]*types.Branch
	next     types.BranchID
}

// NewStore creates an empty branch store.
func NewStore() *Store {
	return &Store{
		branches: make(map[types.BranchID]*types.Branch),
	}
}

// Create allocates the next branch id, inserts the record, and wires it
// into the owning thread's branch set and, when a parent is given, the
// parent's ordered child list. The parent must belong to the same thread.
func (s *Store) Create(thread *types.Thread, parent types.BranchID, origin types.Origin, payload types.Payload) (*types.Branch, error) {
	if parent != types.NoBranch {
		p, ok := s.branches[parent]
		if !ok {
			return nil, refErr("branch", parent.String())
		}
		if p.ThreadID != thread.ID {
			return nil, validationErr("parent %s belongs to %s, not %s", parent, p.ThreadID, thread.ID)
		}
	}

	s.next++
	b := &types.Branch{
		ID:       s.next,
		ThreadID: thread.ID,
		ParentID: parent,
		Origin:   origin,
		Payload:  payload,
	}
	s.branches[b.ID] = b

	thread.BranchIDs = append(thread.BranchIDs, b.ID)
	if parent != types.NoBranch {
		s.branches[parent].ChildIDs = append(s.branches[parent].ChildIDs, b.ID)
	}
	return b, nil
}

// Get returns the branch with the given id.
func (s *Store) Get(id types.BranchID) (*types.Branch, error) {
	b, ok := s.branches[id]
	if !ok {
		return nil, refErr("branch", id.String())
	}
	return b, nil
}

// Has reports whether the branch exists.
func (s *Store) Has(id types.BranchID) bool {
	_, ok := s.branches[id]
	return ok
}

// Len returns the number of live branches.
func (s *Store) Len() int {
	return len(s.branches)
}

// CountDescendants counts every branch reachable below the given branch.
// Used to warn before a destructive deletion.
func (s *Store) CountDescendants(id types.BranchID) int {
	b, ok := s.branches[id]
	if !ok {
		return 0
	}
	count := 0
	for _, child := range b.ChildIDs {
		count += 1 + s.CountDescendants(child)
	}
	return count
}

// Delete removes the branch and its entire subtree, depth first: children
// go before the branch itself, then the branch is detached from its
// parent's child list and from the owning thread's branch set. The ids of
// every removed branch are returned in removal order.
func (s *Store) Delete(thread *types.Thread, id types.BranchID) ([]types.BranchID, error) {
	b, ok := s.branches[id]
	if !ok {
		return nil, refErr("branch", id.String())
	}
	if b.ThreadID != thread.ID {
		return nil, validationErr("%s belongs to %s, not %s", id, b.ThreadID, thread.ID)
	}

	removed := s.deleteSubtree(thread, b)

	if b.ParentID != types.NoBranch {
		if parent, ok := s.branches[b.ParentID]; ok {
			parent.ChildIDs = removeID(parent.ChildIDs, id)
		}
	}
	return removed, nil
}

// deleteSubtree removes b and its descendants from the arena and the
// thread's branch set. Detaching from b's own parent is the caller's job.
func (s *Store) deleteSubtree(thread *types.Thread, b *types.Branch) []types.BranchID {
	var removed []types.BranchID
	for _, child := range append([]types.BranchID(nil), b.ChildIDs...) {
		if c, ok := s.branches[child]; ok {
			removed = append(removed, s.deleteSubtree(thread, c)...)
		}
	}
	delete(s.branches, b.ID)
	thread.BranchIDs = removeID(thread.BranchIDs, b.ID)
	removed = append(removed, b.ID)
	return removed
}

// Roots returns the thread's top-level branches in creation order.
func (s *Store) Roots(thread *types.Thread) []*types.Branch {
	var roots []*types.Branch
	for _, id := range thread.BranchIDs {
		if b, ok := s.branches[id]; ok && b.Root() {
			roots = append(roots, b)
		}
	}
	return roots
}

func removeID(ids []types.BranchID, id types.BranchID) []types.BranchID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
