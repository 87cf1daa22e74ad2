package engine

import (
	"context"
	"fmt"

	"github.com/ideaforge/ideaforge/internal/ai"
	"github.com/ideaforge/ideaforge/internal/normalize"
	"github.com/ideaforge/ideaforge/internal/types"
)

// Harvest asks the completion collaborator to explore the problem
// statement through the thread's lens and turns the structured response
// into sibling top-level concept branches. Section order follows the
// lens's fixed section ordering, so branch ids enumerate sections in
// order, never interleaved.
//
// A malformed response degrades instead of failing: the raw text lands on
// the thread transcript, no branches are created, and the result is
// flagged degraded.
func (s *Session) Harvest(ctx context.Context, threadID types.ThreadID) (*OpResult, error) {
	thread, err := s.Threads.Get(threadID)
	if err != nil {
		return nil, err
	}
	if thread.Kind != types.ThreadFixedLens {
		return nil, validationErr("%s is a combined thread; only lens threads are harvested", threadID)
	}
	if !s.Problem.Confirmed() {
		return nil, validationErr("no confirmed problem statement to explore")
	}

	prompt := ai.HarvestPrompt(thread.Lens, s.Problem.Final)
	response, err := s.Completer.Complete(ctx, prompt)
	if err != nil {
		return degraded(fmt.Sprintf("completion call failed: %v", err)), nil
	}

	items, ok := parseHarvest(thread.Lens, response)
	thread.Append(types.RoleUser, prompt)
	thread.Append(types.RoleAssistant, response)
	if !ok {
		return degraded("could not extract structured data from the response; raw text kept on the transcript"), nil
	}

	result := &OpResult{}
	for _, item := range items {
		b, err := s.Store.Create(thread, types.NoBranch, types.OriginHarvested, normalize.Concept(item))
		if err != nil {
			return nil, err
		}
		result.Created = append(result.Created, b.ID)
	}
	return result, nil
}

// parseHarvest flattens the lens-specific response shape into an ordered
// list of raw concept records. Sectioned lenses iterate their named
// sections in fixed order; flat lenses take the array as-is.
func parseHarvest(lens types.Lens, response string) ([]map[string]any, bool) {
	spec := ai.SpecFor(lens)

	if spec.Flat {
		parsed := ai.Parse[[]map[string]any](response)
		if !parsed.Success {
			return nil, false
		}
		return parsed.Data, true
	}

	parsed := ai.Parse[map[string][]map[string]any](response)
	if !parsed.Success {
		return nil, false
	}
	var items []map[string]any
	for _, section := range spec.Sections {
		for _, item := range parsed.Data[section] {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}
