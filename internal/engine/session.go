package engine

import (
	"github.com/google/uuid"

	"github.com/ideaforge/ideaforge/internal/ai"
	"github.com/ideaforge/ideaforge/internal/types"
)

// Session owns all mutable state of one ideation session: the branch
// store, the thread registry, and the active-selection references. Every
// lifecycle operation is a method on it; nothing mutates the graph from
// outside. Execution is single-threaded: one operation runs to completion
// before the next begins.
type Session struct {
	ID        uuid.UUID
	Problem   types.ProblemStatement
	Store     *Store
	Threads   *Registry
	Completer ai.Completer

	ActiveThread types.ThreadID
	ActiveBranch types.BranchID
}

// NewSession creates a session with an empty graph.
func NewSession(completer ai.Completer) *Session {
	return &Session{
		ID:        uuid.New(),
		Store:     NewStore(),
		Threads:   NewRegistry(),
		Completer: completer,
	}
}

// ConfirmProblem fixes the final problem statement and creates the three
// fixed lens threads, each seeded with the confirmation transcript. The
// statement is immutable afterwards.
func (s *Session) ConfirmProblem(ps types.ProblemStatement) error {
	if s.Problem.Confirmed() {
		return validationErr("problem statement already confirmed")
	}
	if !ps.Confirmed() {
		return validationErr("no final problem statement chosen")
	}

	infos := make([]FixedThreadInfo, 0, len(types.Lenses()))
	for _, lens := range types.Lenses() {
		spec := ai.SpecFor(lens)
		infos = append(infos, FixedThreadInfo{
			Lens:        lens,
			Name:        spec.Name,
			Description: spec.Description,
			Seed:        ai.ConfirmationSeed(ps.Final, spec.Name),
		})
	}
	if _, err := s.Threads.CreateFixedThreads(infos); err != nil {
		return err
	}
	s.Problem = ps
	return nil
}

// Mindmap projects the current presentation tree.
func (s *Session) Mindmap() *Mindmap {
	return ProjectMindmap(s.Threads, s.Store)
}

// DeleteBranch removes the branch and its entire subtree. The caller is
// expected to have run the confirmation protocol already. If the active
// branch is among the removed, the selection is cleared.
func (s *Session) DeleteBranch(id types.BranchID) ([]types.BranchID, error) {
	b, err := s.Store.Get(id)
	if err != nil {
		return nil, err
	}
	thread, err := s.Threads.Get(b.ThreadID)
	if err != nil {
		return nil, err
	}

	removed, err := s.Store.Delete(thread, id)
	if err != nil {
		return nil, err
	}
	for _, rid := range removed {
		if rid == s.ActiveBranch {
			s.ActiveBranch = types.NoBranch
			break
		}
	}
	return removed, nil
}

// ResetThreadBranches deletes every branch of the thread. Used by the
// regenerate-on-reselect policy for fixed lens threads before a fresh
// harvest.
func (s *Session) ResetThreadBranches(threadID types.ThreadID) error {
	thread, err := s.Threads.Get(threadID)
	if err != nil {
		return err
	}
	for len(thread.BranchIDs) > 0 {
		if _, err := s.DeleteBranch(thread.BranchIDs[0]); err != nil {
			return err
		}
	}
	return nil
}

// OpResult reports the outcome of a lifecycle operation. Degraded results
// mean the collaborator's output could not be structured as expected: the
// operation still completed with its documented fallback, and Note carries
// the human-readable explanation.
type OpResult struct {
	Created  []types.BranchID
	Threads  []types.ThreadID // combine only: new threads in creation order
	Degraded bool
	Note     string
}

func degraded(note string) *OpResult {
	return &OpResult{Degraded: true, Note: note}
}
