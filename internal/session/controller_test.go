package session

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge/ideaforge/internal/engine"
	"github.com/ideaforge/ideaforge/internal/types"
)

func init() {
	color.NoColor = true
}

// scriptedCompleter returns canned responses in order, repeating the last.
type scriptedCompleter struct {
	responses []string
	calls     []string
}

func (s *scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls = append(s.calls, prompt)
	if len(s.responses) == 0 {
		return "{}", nil
	}
	r := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return r, nil
}

const personaHarvest = `[
	{"persona": "indie hacker", "heading": "Shipping alone", "feedback": "I lose weeks to side quests.", "productDirection": "Weekly check-ins."},
	{"persona": "ex-consultant", "heading": "No deadlines", "feedback": "Nobody notices when I slip.", "productDirection": "Public commitments."}
]`

const subConcepts = `[
	{"heading": "Pair sprints", "explanation": "Match two founders for a week.", "productDirection": "Matching service."},
	{"heading": "Loss stakes", "explanation": "Money on the line.", "productDirection": "Escrowed pledges."},
	{"heading": "Streak rituals", "explanation": "Daily visible streaks.", "productDirection": "Streak board."}
]`

const productConcepts = `[
	{"heading": "PeerPledge", "description": "Escrowed commitments with a peer circle.", "features": ["pledges", "weekly check-ins"]}
]`

// exploreController returns a controller already past the problem flow.
func exploreController(t *testing.T, responses ...string) (*Controller, *engine.Session, *bytes.Buffer) {
	t.Helper()
	sess := engine.NewSession(&scriptedCompleter{responses: responses})
	require.NoError(t, sess.ConfirmProblem(types.ProblemStatement{
		Final: "How might we help solo founders stay accountable?",
	}))
	buf := &bytes.Buffer{}
	c := New(sess, nil, buf)
	c.step = StepExplore
	return c, sess, buf
}

func TestController_ProblemFlow(t *testing.T) {
	ctx := context.Background()
	sess := engine.NewSession(&scriptedCompleter{responses: []string{
		"How might we help solo founders stay accountable?",
		"How might we use public streaks to keep solo founders on track?",
	}})
	buf := &bytes.Buffer{}
	c := New(sess, nil, buf)

	assert.Equal(t, "Target audience: ", c.Prompt())
	c.Handle(ctx, "solo founders")
	assert.Equal(t, "Problem: ", c.Prompt())

	c.Handle(ctx, "no external accountability")
	assert.Equal(t, StepStatementChoice, c.Step())
	assert.Contains(t, buf.String(), "1. How might we help solo founders stay accountable?")
	assert.Contains(t, buf.String(), "2. How might we use public streaks")

	c.Handle(ctx, "2")
	assert.Equal(t, StepExplore, c.Step())
	assert.Equal(t, "How might we use public streaks to keep solo founders on track?", sess.Problem.Final)
	assert.Equal(t, 3, sess.Threads.Len())
	assert.Contains(t, buf.String(), "Problem statement confirmed")
}

func TestController_ProblemFlowRejectsEmptyInput(t *testing.T) {
	ctx := context.Background()
	sess := engine.NewSession(&scriptedCompleter{})
	buf := &bytes.Buffer{}
	c := New(sess, nil, buf)

	c.Handle(ctx, "")

	assert.Equal(t, "Target audience: ", c.Prompt())
	assert.Contains(t, buf.String(), "Please enter a value.")
}

func TestController_StatementRegenerate(t *testing.T) {
	ctx := context.Background()
	sess := engine.NewSession(&scriptedCompleter{responses: []string{
		"How might we do A?",
		"How might we do B?",
		"How might we do A, but better?",
	}})
	buf := &bytes.Buffer{}
	c := New(sess, nil, buf)
	c.Handle(ctx, "founders")
	c.Handle(ctx, "a problem")

	c.Handle(ctx, "r1")
	assert.Equal(t, StepStatementChoice, c.Step())
	assert.Contains(t, buf.String(), "How might we do A, but better?")

	c.Handle(ctx, "1")
	assert.Equal(t, "How might we do A, but better?", sess.Problem.Final)
}

func TestController_UnclearChoiceDefaultsToFirst(t *testing.T) {
	ctx := context.Background()
	sess := engine.NewSession(&scriptedCompleter{responses: []string{
		"How might we do A?",
		"How might we do B?",
	}})
	buf := &bytes.Buffer{}
	c := New(sess, nil, buf)
	c.Handle(ctx, "founders")
	c.Handle(ctx, "a problem")

	c.Handle(ctx, "hmm, whatever")

	assert.Contains(t, buf.String(), "Unclear choice. Defaulting to statement 1.")
	assert.Equal(t, "How might we do A?", sess.Problem.Final)
	assert.Equal(t, StepExplore, c.Step())
}

func TestController_ThreadSelectionHarvests(t *testing.T) {
	c, sess, buf := exploreController(t, personaHarvest)

	c.Handle(context.Background(), "3")

	assert.Equal(t, types.ThreadID("thread_3"), sess.ActiveThread)
	assert.Equal(t, 2, sess.Store.Len())
	assert.Contains(t, buf.String(), "Exploring Imaginary Feedback")
	assert.Contains(t, buf.String(), "Shipping alone")
}

func TestController_ReselectRegeneratesLensThread(t *testing.T) {
	c, sess, buf := exploreController(t, personaHarvest, personaHarvest)
	ctx := context.Background()
	c.Handle(ctx, "3")
	require.True(t, sess.Store.Has(types.BranchID(1)))

	c.Handle(ctx, "3")

	assert.Contains(t, buf.String(), "Regenerating")
	assert.False(t, sess.Store.Has(types.BranchID(1)), "old branches are wiped")
	assert.True(t, sess.Store.Has(types.BranchID(3)), "fresh ids continue the counter")
	assert.Equal(t, 2, sess.Store.Len())
}

func TestController_DeleteRequiresConfirmation(t *testing.T) {
	c, sess, buf := exploreController(t, personaHarvest)
	ctx := context.Background()
	c.Handle(ctx, "3")

	c.Handle(ctx, "delete b1")
	assert.Equal(t, "Confirm (y/n): ", c.Prompt())
	assert.Contains(t, buf.String(), `Delete b1 "Shipping alone"`)
	assert.True(t, sess.Store.Has(types.BranchID(1)), "nothing removed before confirmation")

	c.Handle(ctx, "n")
	assert.Contains(t, buf.String(), "Deletion cancelled")
	assert.True(t, sess.Store.Has(types.BranchID(1)))

	c.Handle(ctx, "delete b1")
	c.Handle(ctx, "y")
	assert.False(t, sess.Store.Has(types.BranchID(1)))
	assert.Contains(t, buf.String(), "Deleted 1 branch(es).")
}

func TestController_DeleteUnknownBranch(t *testing.T) {
	c, _, buf := exploreController(t)

	c.Handle(context.Background(), "delete b9")

	assert.Contains(t, buf.String(), "unknown branch b9. Nothing was changed.")
	assert.NotEqual(t, "Confirm (y/n): ", c.Prompt())
}

func TestController_AddIdeaInline(t *testing.T) {
	c, sess, buf := exploreController(t, personaHarvest,
		`{"heading": "Office hours", "explanation": "Weekly open call.", "productDirection": "Community calendar."}`)
	ctx := context.Background()
	c.Handle(ctx, "3")

	c.Handle(ctx, "add idea b1 Weekly Office Hours with peers")

	assert.Equal(t, 3, sess.Store.Len())
	assert.Contains(t, buf.String(), "Added b3 under b1.")
	child, err := sess.Store.Get(types.BranchID(3))
	require.NoError(t, err)
	assert.Equal(t, types.OriginUserAuthored, child.Origin)
}

func TestController_AddIdeaPromptsForText(t *testing.T) {
	c, sess, buf := exploreController(t, personaHarvest,
		`{"heading": "Office hours", "explanation": "Weekly open call.", "productDirection": "Community calendar."}`)
	ctx := context.Background()
	c.Handle(ctx, "3")

	c.Handle(ctx, "add idea b1")
	assert.Equal(t, "Your idea: ", c.Prompt())
	assert.True(t, c.expectsText())

	c.Handle(ctx, "weekly office hours")
	assert.Equal(t, 3, sess.Store.Len())
	assert.Contains(t, buf.String(), "Added b3 under b1.")
}

func TestController_AddIdeaEmptyTextAddsNothing(t *testing.T) {
	c, sess, buf := exploreController(t, personaHarvest)
	ctx := context.Background()
	c.Handle(ctx, "3")

	c.Handle(ctx, "add idea b1")
	c.Handle(ctx, "")

	assert.Equal(t, 2, sess.Store.Len())
	assert.Contains(t, buf.String(), "No idea text given")
}

func TestController_BranchSelectionOffersExpansion(t *testing.T) {
	c, sess, buf := exploreController(t, personaHarvest, subConcepts)
	ctx := context.Background()
	c.Handle(ctx, "3")

	c.Handle(ctx, "b1")
	assert.Equal(t, types.BranchID(1), sess.ActiveBranch)
	assert.Contains(t, buf.String(), "has not been expanded yet")
	assert.Equal(t, "Guidance (enter for default): ", c.Prompt())

	c.Handle(ctx, "")
	assert.Equal(t, 5, sess.Store.Len(), "three sub-branches created")
	assert.Contains(t, buf.String(), "Created 3 sub-branch(es) under b1.")

	parent, err := sess.Store.Get(types.BranchID(1))
	require.NoError(t, err)
	assert.True(t, parent.Expanded)
}

func TestController_ExpandedBranchJustDisplays(t *testing.T) {
	c, sess, _ := exploreController(t, personaHarvest, subConcepts)
	ctx := context.Background()
	c.Handle(ctx, "3")
	c.Handle(ctx, "b1")
	c.Handle(ctx, "")
	require.Equal(t, 5, sess.Store.Len())

	c.Handle(ctx, "b1")

	assert.Equal(t, "ideaforge> ", c.Prompt(), "no guidance prompt the second time")
	assert.Equal(t, 5, sess.Store.Len())
}

func TestController_CombineCreatesProductThread(t *testing.T) {
	c, sess, buf := exploreController(t, personaHarvest, productConcepts)
	ctx := context.Background()
	c.Handle(ctx, "3")

	c.Handle(ctx, "combine b1 b2")

	assert.Equal(t, 4, sess.Threads.Len())
	assert.Equal(t, types.ThreadID("thread_4"), sess.ActiveThread)
	assert.Contains(t, buf.String(), "New product concept b3 in thread_4")
	assert.Contains(t, buf.String(), "PeerPledge")
}

func TestController_CombineTooFewBranches(t *testing.T) {
	c, sess, buf := exploreController(t, personaHarvest)
	ctx := context.Background()
	c.Handle(ctx, "3")

	c.Handle(ctx, "combine b1")

	assert.Contains(t, buf.String(), "Nothing was changed.")
	assert.Equal(t, 3, sess.Threads.Len())
}

func TestController_SimilarWithoutCatalog(t *testing.T) {
	c, _, buf := exploreController(t, personaHarvest)
	ctx := context.Background()
	c.Handle(ctx, "3")

	c.Handle(ctx, "similar b1")

	assert.Contains(t, buf.String(), "No product catalog configured")
}

func TestController_BackDeselectsBranch(t *testing.T) {
	c, sess, buf := exploreController(t, personaHarvest)
	ctx := context.Background()
	c.Handle(ctx, "3")
	sess.ActiveBranch = types.BranchID(1)

	c.Handle(ctx, "back")

	assert.Equal(t, types.NoBranch, sess.ActiveBranch)
	assert.Contains(t, buf.String(), "Branch deselected.")
}

func TestController_MapAndThreads(t *testing.T) {
	c, _, buf := exploreController(t, personaHarvest)
	ctx := context.Background()
	c.Handle(ctx, "3")

	c.Handle(ctx, "map")
	c.Handle(ctx, "threads")

	out := buf.String()
	assert.Contains(t, out, "Emotional Root Causes")
	assert.Contains(t, out, "Unconventional Associations")
	assert.Contains(t, out, "Imaginary Feedback")
}

func TestController_UnknownCommand(t *testing.T) {
	c, _, buf := exploreController(t)

	c.Handle(context.Background(), "frobnicate the mindmap")

	assert.Contains(t, buf.String(), "Unrecognized command")
}

func TestController_StopEndsSession(t *testing.T) {
	c, _, buf := exploreController(t)
	ctx := context.Background()

	c.Handle(ctx, "stop")
	assert.True(t, c.Done())
	assert.Contains(t, buf.String(), "Session ended")

	c.Handle(ctx, "map")
	assert.Contains(t, buf.String(), "The session has ended.")
}
