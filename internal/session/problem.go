package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/ideaforge/ideaforge/internal/ai"
	"github.com/ideaforge/ideaforge/internal/types"
)

// problem holds the in-flight problem statement before confirmation.
type problem struct {
	audience   string
	text       string
	candidate1 string
	candidate2 string
}

func (c *Controller) handleProblemInput(ctx context.Context, line string) {
	if line == "" {
		c.feedback("Please enter a value.")
		return
	}

	switch c.inputStage {
	case 0:
		c.inflight.audience = line
		c.inputStage = 1
	case 1:
		c.inflight.text = line
		fmt.Fprintln(c.out, "\nGenerating problem statements...")
		c.generateCandidate1(ctx)
		c.generateCandidate2(ctx)
		c.printChoices()
		c.step = StepStatementChoice
	}
}

func (c *Controller) handleStatementChoice(ctx context.Context, line string) {
	choice := strings.ToLower(strings.TrimSpace(line))
	switch {
	case strings.Contains(choice, "r1"):
		fmt.Fprintln(c.out, "Regenerating statement 1...")
		c.generateCandidate1(ctx)
		c.printChoices()
	case strings.Contains(choice, "r2"):
		fmt.Fprintln(c.out, "Regenerating statement 2...")
		c.generateCandidate2(ctx)
		c.printChoices()
	case strings.Contains(choice, "2"):
		c.confirmStatement(c.inflight.candidate2)
	case strings.Contains(choice, "1"):
		c.confirmStatement(c.inflight.candidate1)
	default:
		// Unclear input defaults to statement 1, as the original flow did.
		c.feedback("Unclear choice. Defaulting to statement 1.")
		c.confirmStatement(c.inflight.candidate1)
	}
}

func (c *Controller) generateCandidate1(ctx context.Context) {
	prompt := ai.ProblemStatementPrompt(c.inflight.audience, c.inflight.text)
	response, err := c.sess.Completer.Complete(ctx, prompt)
	if err != nil {
		c.feedback("Could not generate a statement (%v); using a plain one instead.", err)
		c.inflight.candidate1 = fmt.Sprintf("How might we help %s overcome %s?", c.inflight.audience, c.inflight.text)
		return
	}
	c.inflight.candidate1 = ai.ExtractHowMightWe(response)
}

func (c *Controller) generateCandidate2(ctx context.Context) {
	if c.inflight.candidate1 == "" {
		return
	}
	prompt := ai.AlternativeStatementPrompt(c.inflight.candidate1)
	response, err := c.sess.Completer.Complete(ctx, prompt)
	if err != nil {
		c.feedback("Could not generate an alternative statement (%v).", err)
		c.inflight.candidate2 = c.inflight.candidate1
		return
	}
	c.inflight.candidate2 = ai.ExtractHowMightWe(response)
}

func (c *Controller) printChoices() {
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(c.out, "\n%s\n", cyan("Choose which problem statement to use:"))
	fmt.Fprintf(c.out, "  1. %s\n", c.inflight.candidate1)
	fmt.Fprintf(c.out, "  2. %s\n", c.inflight.candidate2)
	fmt.Fprintln(c.out, "  r1. Regenerate statement 1")
	fmt.Fprintln(c.out, "  r2. Regenerate statement 2")
}

func (c *Controller) confirmStatement(final string) {
	ps := types.ProblemStatement{
		TargetAudience: c.inflight.audience,
		Problem:        c.inflight.text,
		Candidate1:     c.inflight.candidate1,
		Candidate2:     c.inflight.candidate2,
		Final:          final,
	}
	if err := c.sess.ConfirmProblem(ps); err != nil {
		c.reportError(err)
		return
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(c.out, "\n%s Problem statement confirmed:\n  %s\n", green("✓"), final)
	fmt.Fprintln(c.out, "\nPick a thread to start exploring:")
	c.renderThreads()
	c.step = StepExplore
}
