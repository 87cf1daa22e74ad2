// Package session drives an ideation session: a step-indexed controller
// that turns user commands into engine operations, plus the terminal REPL
// around it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/ideaforge/ideaforge/internal/catalog"
	"github.com/ideaforge/ideaforge/internal/engine"
	"github.com/ideaforge/ideaforge/internal/types"
)

// Step indexes the session phases. The controller processes exactly one
// command to completion before accepting the next.
type Step int

const (
	// StepProblemInput collects the target audience and the problem.
	StepProblemInput Step = iota
	// StepStatementChoice lets the user pick or regenerate one of the two
	// candidate problem statements.
	StepStatementChoice
	// StepExplore is the main loop: threads, branches, and the command
	// grammar operating on them.
	StepExplore
	// StepDone is terminal; no further mutation happens.
	StepDone
)

// confirmState is the two-state delete-confirmation machine: a delete
// request parks the branch id in awaiting state, and only an explicit
// affirmative on the next line runs the mutation.
type confirmState int

const (
	confirmIdle confirmState = iota
	confirmAwaiting
)

// pendingKind marks a command that consumes the next input line as its
// free-text argument.
type pendingKind int

const (
	pendingNone     pendingKind = iota
	pendingIdea                 // next line is the idea text for an authoring target
	pendingGuidance             // next line is the expansion guidance (may be empty)
)

// Controller routes user commands to the engine. All recoverable
// conditions (unknown references, invalid commands, degraded parses)
// surface as feedback text; nothing but "stop" terminates the session.
type Controller struct {
	sess    *engine.Session
	catalog *catalog.Store // optional; nil disables "similar"
	out     io.Writer
	topN    int

	step       Step
	inputStage int     // within StepProblemInput: 0 = audience, 1 = problem
	inflight   problem // problem statement under construction

	confirm struct {
		state  confirmState
		branch types.BranchID
	}
	pending struct {
		kind   pendingKind
		branch types.BranchID
	}
}

// New creates a controller writing its output to out. The catalog store
// may be nil, which disables the "similar" command.
func New(sess *engine.Session, cat *catalog.Store, out io.Writer) *Controller {
	return &Controller{
		sess:    sess,
		catalog: cat,
		out:     out,
		topN:    5,
	}
}

// Step returns the current session phase.
func (c *Controller) Step() Step {
	return c.step
}

// Done reports whether the session has reached its terminal step.
func (c *Controller) Done() bool {
	return c.step == StepDone
}

// Prompt returns the input prompt for the current state.
func (c *Controller) Prompt() string {
	switch {
	case c.step == StepProblemInput && c.inputStage == 0:
		return "Target audience: "
	case c.step == StepProblemInput:
		return "Problem: "
	case c.step == StepStatementChoice:
		return "Choose (1/2/r1/r2): "
	case c.confirm.state == confirmAwaiting:
		return "Confirm (y/n): "
	case c.pending.kind == pendingIdea:
		return "Your idea: "
	case c.pending.kind == pendingGuidance:
		return "Guidance (enter for default): "
	default:
		return "ideaforge> "
	}
}

// expectsText reports whether the next line is free text rather than a
// command, so the REPL forwards even empty input.
func (c *Controller) expectsText() bool {
	return c.step == StepProblemInput || c.pending.kind != pendingNone
}

// Start prints the welcome banner.
func (c *Controller) Start() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(c.out, "\n%s\n", cyan("Welcome to ideaforge"))
	fmt.Fprintln(c.out, "Co-create a brainstorming mindmap around one problem statement.")
	fmt.Fprintln(c.out, "\nLet's narrow down your problem first.")
	fmt.Fprintln(c.out)
}

// Handle processes one line of user input to completion. Input is
// whitespace-trimmed and commands are case-insensitive. It never returns
// an error for user mistakes; those become feedback text.
func (c *Controller) Handle(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" && !c.expectsText() && c.confirm.state != confirmAwaiting {
		return
	}

	switch c.step {
	case StepProblemInput:
		c.handleProblemInput(ctx, line)
	case StepStatementChoice:
		c.handleStatementChoice(ctx, line)
	case StepExplore:
		c.handleExplore(ctx, line)
	case StepDone:
		c.feedback("The session has ended.")
	}
}

func (c *Controller) handleExplore(ctx context.Context, line string) {
	// The confirmation and pending-text machines consume the line before
	// any command parsing.
	if c.confirm.state == confirmAwaiting {
		c.resolveDelete(ctx, line)
		return
	}
	switch c.pending.kind {
	case pendingIdea:
		branch := c.pending.branch
		c.pending.kind = pendingNone
		c.authorIdea(ctx, branch, line)
		return
	case pendingGuidance:
		branch := c.pending.branch
		c.pending.kind = pendingNone
		c.expandBranch(ctx, branch, line)
		return
	}

	lower := strings.ToLower(line)
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return
	}

	switch {
	case lower == "stop" || lower == "exit" || lower == "quit":
		c.step = StepDone
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(c.out, "\n%s Session ended. Happy building!\n", green("✓"))
	case lower == "help" || lower == "?":
		c.printHelp()
	case lower == "map":
		c.renderMindmap()
	case lower == "threads":
		c.renderThreads()
	case lower == "back":
		c.sess.ActiveBranch = types.NoBranch
		c.feedback("Branch deselected.")
	case isInteger(fields[0]) && len(fields) == 1:
		idx, _ := strconv.Atoi(fields[0])
		c.selectThread(ctx, idx)
	case fields[0] == "add" && len(fields) >= 3 && fields[1] == "idea":
		c.startAuthor(ctx, lower, line)
	case fields[0] == "delete" && len(fields) == 2:
		c.requestDelete(fields[1])
	case fields[0] == "combine":
		c.combine(ctx, fields[1:])
	case fields[0] == "similar" && len(fields) == 2:
		c.similar(ctx, fields[1])
	case strings.HasPrefix(fields[0], "b") && len(fields) == 1:
		c.selectBranch(ctx, fields[0])
	default:
		c.feedback("Unrecognized command %q. Type 'help' for the command list.", line)
	}
}

// requestDelete starts the two-step confirmation: report the branch
// heading and descendant count, then wait for an explicit affirmative.
func (c *Controller) requestDelete(ref string) {
	id, err := types.ParseBranchID(ref)
	if err != nil {
		c.feedback("%v", err)
		return
	}
	b, err := c.sess.Store.Get(id)
	if err != nil {
		c.reportError(err)
		return
	}

	descendants := c.sess.Store.CountDescendants(id)
	yellow := color.New(color.FgYellow).SprintFunc()
	if descendants > 0 {
		fmt.Fprintf(c.out, "%s Delete %s %q and its %d descendant branch(es)?\n",
			yellow("Warning:"), id, b.Payload.Heading(), descendants)
	} else {
		fmt.Fprintf(c.out, "%s Delete %s %q?\n", yellow("Warning:"), id, b.Payload.Heading())
	}

	c.confirm.state = confirmAwaiting
	c.confirm.branch = id
}

// resolveDelete finishes the confirmation protocol. Anything but an
// explicit yes performs no mutation.
func (c *Controller) resolveDelete(ctx context.Context, line string) {
	id := c.confirm.branch
	c.confirm.state = confirmIdle
	c.confirm.branch = types.NoBranch

	answer := strings.ToLower(strings.TrimSpace(line))
	if answer != "y" && answer != "yes" {
		c.feedback("Deletion cancelled; nothing was changed.")
		return
	}

	removed, err := c.sess.DeleteBranch(id)
	if err != nil {
		c.reportError(err)
		return
	}
	c.feedback("Deleted %d branch(es).", len(removed))
}

func (c *Controller) selectThread(ctx context.Context, idx int) {
	thread, err := c.sess.Threads.ByIndex(idx)
	if err != nil {
		c.reportError(err)
		return
	}
	c.sess.ActiveThread = thread.ID
	c.sess.ActiveBranch = types.NoBranch

	// Re-selecting a fixed lens thread wipes and regenerates its branches.
	// Deliberate policy carried over from the original flow.
	if thread.Kind == types.ThreadFixedLens {
		if len(thread.BranchIDs) > 0 {
			c.feedback("Regenerating %s: its existing branches are replaced.", thread.Name)
			if err := c.sess.ResetThreadBranches(thread.ID); err != nil {
				c.reportError(err)
				return
			}
		}
		fmt.Fprintf(c.out, "Exploring %s...\n", thread.Name)
		result, err := c.sess.Harvest(ctx, thread.ID)
		if err != nil {
			c.reportError(err)
			return
		}
		c.reportDegraded(result)
	}
	c.renderThread(thread)
}

func (c *Controller) selectBranch(ctx context.Context, ref string) {
	id, err := types.ParseBranchID(ref)
	if err != nil {
		c.feedback("%v", err)
		return
	}
	b, err := c.sess.Store.Get(id)
	if err != nil {
		c.reportError(err)
		return
	}

	c.sess.ActiveBranch = id
	c.sess.ActiveThread = b.ThreadID
	c.renderBranch(b)

	if !b.Expanded && b.Category() == types.CategoryConcept {
		c.pending.kind = pendingGuidance
		c.pending.branch = id
		fmt.Fprintln(c.out, "This branch has not been expanded yet.")
	}
}

func (c *Controller) expandBranch(ctx context.Context, id types.BranchID, guidance string) {
	result, err := c.sess.Expand(ctx, id, strings.TrimSpace(guidance))
	if err != nil {
		c.reportError(err)
		return
	}
	c.reportDegraded(result)
	if len(result.Created) > 0 {
		c.feedback("Created %d sub-branch(es) under %s.", len(result.Created), id)
		if b, err := c.sess.Store.Get(id); err == nil {
			c.renderBranch(b)
		}
	}
}

// startAuthor handles "add idea b<n> [text...]". Without inline text the
// next line is consumed as the idea.
func (c *Controller) startAuthor(ctx context.Context, lower, original string) {
	fields := strings.Fields(lower)
	id, err := types.ParseBranchID(fields[2])
	if err != nil {
		c.feedback("%v", err)
		return
	}
	if !c.sess.Store.Has(id) {
		c.reportError(&engine.ReferenceError{Kind: "branch", Ref: id.String()})
		return
	}

	// Recover the idea text from the original line to keep its casing.
	rest := strings.Fields(original)
	if len(rest) > 3 {
		c.authorIdea(ctx, id, strings.Join(rest[3:], " "))
		return
	}
	c.pending.kind = pendingIdea
	c.pending.branch = id
}

func (c *Controller) authorIdea(ctx context.Context, id types.BranchID, idea string) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		c.feedback("No idea text given; nothing was added.")
		return
	}
	result, err := c.sess.Author(ctx, id, idea)
	if err != nil {
		c.reportError(err)
		return
	}
	c.reportDegraded(result)
	c.feedback("Added %s under %s.", result.Created[0], id)
}

func (c *Controller) combine(ctx context.Context, refs []string) {
	ids := make([]types.BranchID, 0, len(refs))
	for _, ref := range refs {
		id, err := types.ParseBranchID(ref)
		if err != nil {
			c.feedback("%v", err)
			return
		}
		ids = append(ids, id)
	}

	result, err := c.sess.Combine(ctx, ids)
	if err != nil {
		c.reportError(err)
		return
	}
	c.reportDegraded(result)
	for i, threadID := range result.Threads {
		if thread, err := c.sess.Threads.Get(threadID); err == nil {
			fmt.Fprintf(c.out, "New product concept %s in %s:\n", result.Created[i], threadID)
			c.renderThread(thread)
		}
	}
}

func (c *Controller) similar(ctx context.Context, ref string) {
	if c.catalog == nil {
		c.feedback("No product catalog configured; run 'ideaforge catalog fetch' first.")
		return
	}
	id, err := types.ParseBranchID(ref)
	if err != nil {
		c.feedback("%v", err)
		return
	}
	b, err := c.sess.Store.Get(id)
	if err != nil {
		c.reportError(err)
		return
	}

	query := b.Payload.Heading() + " " + b.Payload.Content()
	matches, err := c.catalog.Search(ctx, query, c.topN)
	if err != nil {
		c.reportError(err)
		return
	}
	c.renderMatches(b, matches)
}

func (c *Controller) reportDegraded(result *engine.OpResult) {
	if result != nil && result.Degraded {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(c.out, "%s %s\n", yellow("Note:"), result.Note)
	}
}

// reportError surfaces recoverable errors as feedback. Anything outside
// the taxonomy is printed too; nothing terminates the session.
func (c *Controller) reportError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	var refErr *engine.ReferenceError
	var valErr *engine.ValidationError
	switch {
	case errors.As(err, &refErr), errors.As(err, &valErr):
		fmt.Fprintf(c.out, "%s %v. Nothing was changed.\n", red("Error:"), err)
	default:
		fmt.Fprintf(c.out, "%s %v\n", red("Error:"), err)
	}
}

func (c *Controller) feedback(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func isInteger(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
