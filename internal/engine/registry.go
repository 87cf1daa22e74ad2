package engine

import (
	"fmt"

	"github.com/ideaforge/ideaforge/internal/types"
)

// Registry holds the session's threads: the three fixed exploration
// lenses, created once, plus combined-concept threads created on demand.
// Thread ids continue a single numbering (thread_1..thread_3 fixed, then
// thread_4 onward for combined), independent of the branch counter.
type Registry struct {
	threads  map[types.ThreadID]*types.Thread
	fixed    []types.ThreadID
	combined []types.ThreadID
	nextNum  int
}

// NewRegistry creates an empty thread registry.
func NewRegistry() *Registry {
	return &Registry{
		threads: make(map[types.ThreadID]*types.Thread),
		nextNum: 1,
	}
}

// FixedThreadInfo names one fixed lens thread at creation time.
type FixedThreadInfo struct {
	Lens        types.Lens
	Name        string
	Description string
	Seed        string // seeded into the transcript as the system message
}

// CreateFixedThreads creates the three fixed lens threads. Calling it
// twice is a programming error and returns a ValidationError.
func (r *Registry) CreateFixedThreads(infos []FixedThreadInfo) ([]*types.Thread, error) {
	if len(r.fixed) > 0 {
		return nil, validationErr("fixed threads already created")
	}
	if len(infos) != 3 {
		return nil, validationErr("expected 3 fixed lens threads, got %d", len(infos))
	}

	threads := make([]*types.Thread, 0, len(infos))
	for _, info := range infos {
		t := &types.Thread{
			ID:          r.allocID(),
			Name:        info.Name,
			Description: info.Description,
			Kind:        types.ThreadFixedLens,
			Lens:        info.Lens,
		}
		if info.Seed != "" {
			t.Append(types.RoleSystem, info.Seed)
		}
		r.threads[t.ID] = t
		r.fixed = append(r.fixed, t.ID)
		threads = append(threads, t)
	}
	return threads, nil
}

// CreateCombined creates a thread to hold one combined product concept.
// Each call allocates a fresh thread id; combined threads are never
// re-used across combinations.
func (r *Registry) CreateCombined(name, description string, sources []types.BranchID) *types.Thread {
	t := &types.Thread{
		ID:             r.allocID(),
		Name:           name,
		Description:    description,
		Kind:           types.ThreadCombined,
		SourceConcepts: append([]types.BranchID(nil), sources...),
	}
	r.threads[t.ID] = t
	r.combined = append(r.combined, t.ID)
	return t
}

func (r *Registry) allocID() types.ThreadID {
	id := types.ThreadID(fmt.Sprintf("thread_%d", r.nextNum))
	r.nextNum++
	return id
}

// Get returns the thread with the given id.
func (r *Registry) Get(id types.ThreadID) (*types.Thread, error) {
	t, ok := r.threads[id]
	if !ok {
		return nil, refErr("thread", string(id))
	}
	return t, nil
}

// List returns threads in display order: fixed lenses first, in their
// fixed order, then combined threads in creation order.
func (r *Registry) List(includeCombined bool) []*types.Thread {
	out := make([]*types.Thread, 0, len(r.fixed)+len(r.combined))
	for _, id := range r.fixed {
		out = append(out, r.threads[id])
	}
	if includeCombined {
		for _, id := range r.combined {
			out = append(out, r.threads[id])
		}
	}
	return out
}

// ByIndex resolves a 1-based display index (fixed lenses first, then
// combined threads) to a thread.
func (r *Registry) ByIndex(idx int) (*types.Thread, error) {
	all := r.List(true)
	if idx < 1 || idx > len(all) {
		return nil, refErr("thread", fmt.Sprintf("#%d", idx))
	}
	return all[idx-1], nil
}

// Len returns the total number of threads.
func (r *Registry) Len() int {
	return len(r.threads)
}
