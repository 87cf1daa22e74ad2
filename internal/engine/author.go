package engine

import (
	"context"

	"github.com/ideaforge/ideaforge/internal/ai"
	"github.com/ideaforge/ideaforge/internal/normalize"
	"github.com/ideaforge/ideaforge/internal/types"
)

// Author turns a free-text user idea into exactly one child branch under
// the target. The collaborator structures the idea relative to the
// parent; when its output cannot be parsed, a minimal concept carrying the
// user's text verbatim is created instead, so the idea is never lost. The
// child is tagged user-authored either way.
func (s *Session) Author(ctx context.Context, parentID types.BranchID, idea string) (*OpResult, error) {
	parent, err := s.Store.Get(parentID)
	if err != nil {
		return nil, err
	}
	thread, err := s.Threads.Get(parent.ThreadID)
	if err != nil {
		return nil, err
	}
	if idea == "" {
		return nil, validationErr("idea text is empty")
	}

	var (
		payload    types.ConceptPayload
		isDegraded bool
		note       string
	)

	prompt := ai.AuthorPrompt(parent.Payload.Heading(), parent.Payload.Content(), idea)
	response, err := s.Completer.Complete(ctx, prompt)
	if err != nil {
		isDegraded = true
		note = "completion call failed; your idea was kept verbatim"
	} else {
		thread.Append(types.RoleUser, prompt)
		thread.Append(types.RoleAssistant, response)
		if parsed := ai.Parse[map[string]any](response); parsed.Success {
			payload = normalize.Concept(parsed.Data)
		} else {
			isDegraded = true
			note = "could not structure the idea; it was kept verbatim"
		}
	}

	if isDegraded {
		payload = normalize.Concept(map[string]any{"explanation": idea})
	}

	child, err := s.Store.Create(thread, parentID, types.OriginUserAuthored, payload)
	if err != nil {
		return nil, err
	}
	return &OpResult{
		Created:  []types.BranchID{child.ID},
		Degraded: isDegraded,
		Note:     note,
	}, nil
}
