package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge/ideaforge/internal/types"
)

// stubCompleter returns canned responses in order, repeating the last one,
// or fails every call with err.
type stubCompleter struct {
	responses []string
	err       error
	calls     []string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls = append(s.calls, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "{}", nil
	}
	r := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return r, nil
}

const testStatement = "How might we help solo founders stay accountable without a co-founder?"

// confirmedSession returns a session with the problem confirmed and the
// three lens threads created.
func confirmedSession(t *testing.T, completer *stubCompleter) *Session {
	t.Helper()
	s := NewSession(completer)
	require.NoError(t, s.ConfirmProblem(types.ProblemStatement{Final: testStatement}))
	return s
}

func TestConfirmProblem_CreatesLensThreads(t *testing.T) {
	s := confirmedSession(t, &stubCompleter{})

	threads := s.Threads.List(true)
	require.Len(t, threads, 3)
	for i, thread := range threads {
		assert.Equal(t, types.ThreadFixedLens, thread.Kind)
		assert.Equal(t, types.Lens(i), thread.Lens)
		require.Len(t, thread.Transcript, 1, "each lens thread starts with a seed message")
		assert.Equal(t, types.RoleSystem, thread.Transcript[0].Role)
		assert.Contains(t, thread.Transcript[0].Text, testStatement)
	}
	assert.Equal(t, types.ThreadID("thread_1"), threads[0].ID)
	assert.Equal(t, types.ThreadID("thread_3"), threads[2].ID)
}

func TestConfirmProblem_Twice(t *testing.T) {
	s := confirmedSession(t, &stubCompleter{})

	err := s.ConfirmProblem(types.ProblemStatement{Final: "How might we do it again?"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 3, s.Threads.Len())
	assert.Equal(t, testStatement, s.Problem.Final)
}

func TestConfirmProblem_RequiresFinalStatement(t *testing.T) {
	s := NewSession(&stubCompleter{})

	err := s.ConfirmProblem(types.ProblemStatement{Candidate1: "How might we?"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, s.Threads.Len())
}

func TestDeleteBranch_ClearsActiveSelection(t *testing.T) {
	s := confirmedSession(t, &stubCompleter{responses: []string{
		`[{"persona": "a", "heading": "One", "feedback": "f1"},
		  {"persona": "b", "heading": "Two", "feedback": "f2"}]`,
	}})
	result, err := s.Harvest(context.Background(), "thread_3")
	require.NoError(t, err)
	require.Len(t, result.Created, 2)

	s.ActiveBranch = result.Created[0]
	removed, err := s.DeleteBranch(result.Created[0])
	require.NoError(t, err)

	assert.Equal(t, []types.BranchID{result.Created[0]}, removed)
	assert.Equal(t, types.NoBranch, s.ActiveBranch)
	assert.True(t, s.Store.Has(result.Created[1]), "sibling survives")
}

func TestDeleteBranch_Unknown(t *testing.T) {
	s := confirmedSession(t, &stubCompleter{})

	_, err := s.DeleteBranch(types.BranchID(99))

	var rerr *ReferenceError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "branch", rerr.Kind)
}

func TestResetThreadBranches(t *testing.T) {
	s := confirmedSession(t, &stubCompleter{responses: []string{
		`[{"persona": "a", "heading": "One", "feedback": "f1"},
		  {"persona": "b", "heading": "Two", "feedback": "f2"}]`,
	}})
	_, err := s.Harvest(context.Background(), "thread_3")
	require.NoError(t, err)
	require.Equal(t, 2, s.Store.Len())

	require.NoError(t, s.ResetThreadBranches("thread_3"))

	assert.Equal(t, 0, s.Store.Len())
	thread, err := s.Threads.Get("thread_3")
	require.NoError(t, err)
	assert.Empty(t, thread.BranchIDs)
}
