package session

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/ideaforge/ideaforge/internal/catalog"
	"github.com/ideaforge/ideaforge/internal/engine"
	"github.com/ideaforge/ideaforge/internal/types"
)

func (c *Controller) renderThreads() {
	cyan := color.New(color.FgCyan).SprintFunc()
	for i, thread := range c.sess.Threads.List(true) {
		marker := " "
		if thread.ID == c.sess.ActiveThread {
			marker = "*"
		}
		kind := ""
		if thread.Kind == types.ThreadCombined {
			kind = " (combined)"
		}
		fmt.Fprintf(c.out, "%s %d. %s%s - %s\n", marker, i+1, cyan(thread.Name), kind,
			firstLine(thread.Description))
	}
}

func (c *Controller) renderThread(thread *types.Thread) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(c.out, "\n%s\n", cyan(thread.Name))
	roots := c.sess.Store.Roots(thread)
	if len(roots) == 0 {
		fmt.Fprintln(c.out, "  (no branches yet)")
		return
	}
	for _, b := range roots {
		c.renderBranchLine(b, 1)
	}
	fmt.Fprintln(c.out)
}

func (c *Controller) renderBranchLine(b *types.Branch, depth int) {
	green := color.New(color.FgGreen).SprintFunc()
	indent := strings.Repeat("  ", depth)
	suffix := ""
	if b.Origin == types.OriginUserAuthored {
		suffix = " [yours]"
	}
	fmt.Fprintf(c.out, "%s%s %s%s\n", indent, green(b.ID.String()), b.Payload.Heading(), suffix)
	for _, childID := range b.ChildIDs {
		if child, err := c.sess.Store.Get(childID); err == nil {
			c.renderBranchLine(child, depth+1)
		}
	}
}

func (c *Controller) renderBranch(b *types.Branch) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(c.out, "\n%s %s (%s)\n", green(b.ID.String()), b.Payload.Heading(), b.Category())
	fmt.Fprintln(c.out, indentText(b.Payload.Content(), "  "))
	if product, ok := b.Payload.(types.ProductPayload); ok && len(product.SourceConcepts) > 0 {
		refs := make([]string, len(product.SourceConcepts))
		for i, id := range product.SourceConcepts {
			refs[i] = id.String()
		}
		fmt.Fprintf(c.out, "  Combined from: %s\n", strings.Join(refs, ", "))
	}
	if len(b.ChildIDs) > 0 {
		fmt.Fprintln(c.out, "  Sub-branches:")
		for _, childID := range b.ChildIDs {
			if child, err := c.sess.Store.Get(childID); err == nil {
				c.renderBranchLine(child, 2)
			}
		}
	}
}

func (c *Controller) renderMindmap() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(c.out, "\n%s\n", cyan("Mindmap"))
	if c.sess.Problem.Confirmed() {
		fmt.Fprintf(c.out, "Problem: %s\n", c.sess.Problem.Final)
	}
	for _, root := range c.sess.Mindmap().Roots {
		c.renderMindmapNode(root, 1)
	}
	fmt.Fprintln(c.out)
}

func (c *Controller) renderMindmapNode(n *engine.MindmapNode, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.Category == "" {
		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Fprintf(c.out, "%s%s\n", indent, cyan(n.Name))
	} else {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(c.out, "%s%s %s\n", indent, green(n.ID), n.Name)
	}
	for _, child := range n.Children {
		c.renderMindmapNode(child, depth+1)
	}
}

func (c *Controller) renderMatches(b *types.Branch, matches []catalog.Match) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	if len(matches) == 0 {
		fmt.Fprintf(c.out, "No products similar to %q were found.\n", b.Payload.Heading())
		return
	}
	fmt.Fprintf(c.out, "\n%s %s\n", cyan("Similar existing products for"), b.Payload.Heading())
	for i, m := range matches {
		fmt.Fprintf(c.out, "%d. %s (%.2f, %s)\n", i+1, m.Name, m.Score, m.Source)
		if m.Blurb != "" {
			fmt.Fprintf(c.out, "   %s\n", m.Blurb)
		}
		if m.Description != "" {
			fmt.Fprintf(c.out, "   %s\n", truncateText(m.Description, 150))
		}
		if m.URL != "" {
			fmt.Fprintf(c.out, "   %s\n", m.URL)
		}
	}
	fmt.Fprintln(c.out)
}

func (c *Controller) printHelp() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(c.out, "\n%s\n", cyan("Commands:"))
	commands := []struct {
		name string
		desc string
	}{
		{"<number>", "Select a thread by its display index (re-selecting a lens regenerates it)"},
		{"b<number>", "Select a branch; unexpanded concepts offer expansion"},
		{"add idea b<number>", "Add your own idea under a branch"},
		{"combine b<n> b<m> ...", "Combine 2+ branches into new product concepts"},
		{"delete b<number>", "Delete a branch and its subtree (asks first)"},
		{"similar b<number>", "Show existing products similar to a branch"},
		{"map", "Show the whole mindmap"},
		{"threads", "List threads"},
		{"back", "Deselect the current branch"},
		{"stop", "End the session"},
	}
	for _, cmd := range commands {
		fmt.Fprintf(c.out, "  %-22s %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Fprintln(c.out)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func indentText(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func truncateText(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
