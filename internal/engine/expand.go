package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ideaforge/ideaforge/internal/ai"
	"github.com/ideaforge/ideaforge/internal/normalize"
	"github.com/ideaforge/ideaforge/internal/types"
)

// expansionArrayKeys are the object keys an expansion response may nest
// its concept array under, tried in order.
var expansionArrayKeys = []string{"concepts", "ideas", "branches", "items", "sub_concepts"}

// Expand turns one branch plus free-text guidance into child concept
// branches, in response order. Empty guidance falls back to the default
// suggestion. The branch is marked expanded either way; on a degraded
// parse the raw text is stored as the expansion payload and no children
// are created.
func (s *Session) Expand(ctx context.Context, branchID types.BranchID, guidance string) (*OpResult, error) {
	branch, err := s.Store.Get(branchID)
	if err != nil {
		return nil, err
	}
	thread, err := s.Threads.Get(branch.ThreadID)
	if err != nil {
		return nil, err
	}

	if guidance == "" {
		guidance = ai.DefaultExpansionGuidance
	}

	prompt := ai.ExpandPrompt(branch.Payload.Heading(), branch.Payload.Content(), guidance)
	response, err := s.Completer.Complete(ctx, prompt)
	if err != nil {
		return degraded(fmt.Sprintf("completion call failed: %v", err)), nil
	}

	thread.Append(types.RoleUser, prompt)
	thread.Append(types.RoleAssistant, response)

	records, ok := parseConceptArray(response)
	if !ok {
		branch.Expanded = true
		branch.ExpansionRaw = response
		return degraded("could not extract structured concepts; the raw response was kept on the branch"), nil
	}

	result := &OpResult{}
	for _, record := range records {
		child, err := s.Store.Create(thread, branchID, types.OriginExpanded, normalize.Concept(record))
		if err != nil {
			return nil, err
		}
		result.Created = append(result.Created, child.ID)
	}

	branch.Expanded = true
	if raw, err := json.Marshal(records); err == nil {
		branch.ExpansionRaw = string(raw)
	} else {
		branch.ExpansionRaw = response
	}
	return result, nil
}

// parseConceptArray accepts either a bare JSON array of concept records or
// an object nesting such an array under a known key.
func parseConceptArray(response string) ([]map[string]any, bool) {
	if parsed := ai.Parse[[]map[string]any](response); parsed.Success {
		return parsed.Data, true
	}

	wrapped := ai.Parse[map[string]json.RawMessage](response)
	if !wrapped.Success {
		return nil, false
	}
	for _, key := range expansionArrayKeys {
		raw, ok := wrapped.Data[key]
		if !ok {
			continue
		}
		var records []map[string]any
		if err := json.Unmarshal(raw, &records); err == nil && len(records) > 0 {
			return records, true
		}
	}
	// Last resort: any value that is an array of objects.
	for _, raw := range wrapped.Data {
		var records []map[string]any
		if err := json.Unmarshal(raw, &records); err == nil && len(records) > 0 {
			return records, true
		}
	}
	return nil, false
}
