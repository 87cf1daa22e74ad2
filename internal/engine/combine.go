package engine

import (
	"context"
	"fmt"

	"github.com/ideaforge/ideaforge/internal/ai"
	"github.com/ideaforge/ideaforge/internal/normalize"
	"github.com/ideaforge/ideaforge/internal/types"
)

// Combine merges two or more branches into new product concepts. Each
// concept the collaborator returns gets a brand-new combined thread
// holding exactly one product branch whose SourceConcepts records the
// combined branch ids. The first new thread becomes the active thread.
//
// All validation happens before any mutation: with fewer than two ids or
// any unknown id, nothing changes. A response that cannot be structured
// still produces one fallback product thread from the raw text, so the
// operation never silently does nothing.
func (s *Session) Combine(ctx context.Context, ids []types.BranchID) (*OpResult, error) {
	if len(ids) < 2 {
		return nil, validationErr("combine needs at least 2 branches, got %d", len(ids))
	}
	branches := make([]*types.Branch, 0, len(ids))
	for _, id := range ids {
		b, err := s.Store.Get(id)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}

	parts := make([]string, 0, len(branches))
	for _, b := range branches {
		parts = append(parts, fmt.Sprintf("%s\n%s", b.Payload.Heading(), b.Payload.Content()))
	}

	prompt := ai.CombinePrompt(s.Problem.Final, parts)
	response, err := s.Completer.Complete(ctx, prompt)
	if err != nil {
		return degraded(fmt.Sprintf("completion call failed: %v", err)), nil
	}

	records, isDegraded := parseProductRecords(response)

	result := &OpResult{Degraded: isDegraded}
	if isDegraded {
		result.Note = "could not extract structured product concepts; a fallback concept was created from the raw text"
	}

	for _, record := range records {
		sources := declaredSources(record, ids)
		payload := normalize.Product(record)
		payload.SourceConcepts = sources

		thread := s.Threads.CreateCombined(payload.Title, payload.Description, sources)
		thread.Append(types.RoleUser, prompt)
		thread.Append(types.RoleAssistant, response)

		b, err := s.Store.Create(thread, types.NoBranch, types.OriginCombined, payload)
		if err != nil {
			return nil, err
		}
		result.Created = append(result.Created, b.ID)
		result.Threads = append(result.Threads, thread.ID)
	}

	s.ActiveThread = result.Threads[0]
	return result, nil
}

// parseProductRecords accepts a JSON array of product records, a bare
// object (treated as a single-element array), or, failing both, wraps the
// raw text into one minimal product record and reports degradation.
func parseProductRecords(response string) ([]map[string]any, bool) {
	if parsed := ai.Parse[[]map[string]any](response); parsed.Success && len(parsed.Data) > 0 {
		return parsed.Data, false
	}
	if parsed := ai.Parse[map[string]any](response); parsed.Success {
		return []map[string]any{parsed.Data}, false
	}
	return []map[string]any{{"description": response}}, true
}

// declaredSources honors the collaborator's own declared source subset
// when it names valid supplied branches; otherwise the originally supplied
// ids are recorded.
func declaredSources(record map[string]any, supplied []types.BranchID) []types.BranchID {
	raw, ok := record["sourceConcepts"].([]any)
	if !ok {
		raw, ok = record["source_concepts"].([]any)
	}
	if !ok {
		return append([]types.BranchID(nil), supplied...)
	}

	valid := make(map[types.BranchID]bool, len(supplied))
	for _, id := range supplied {
		valid[id] = true
	}

	var declared []types.BranchID
	for _, item := range raw {
		var id types.BranchID
		switch v := item.(type) {
		case string:
			parsed, err := types.ParseBranchID(v)
			if err != nil {
				continue
			}
			id = parsed
		case float64:
			id = types.BranchID(int64(v))
		default:
			continue
		}
		if valid[id] {
			declared = append(declared, id)
		}
	}
	if len(declared) == 0 {
		return append([]types.BranchID(nil), supplied...)
	}
	return declared
}
