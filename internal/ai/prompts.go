package ai

import (
	"fmt"
	"regexp"
	"strings"
)

// SystemTemplate is the persona prefix carried on every completion call.
const SystemTemplate = `Persona: You are an extremely creative entrepreneur with a proven track record of developing innovative, profitable products. As my co-founder and ideation partner, your primary mission is to empower me to generate my own high-quality ideas. Challenge my assumptions, introduce fresh perspectives, and guide me to explore new angles while letting me take the lead in discovering the possibilities.

Goal: In this session, we will co-create a brainstorming mindmap focused on a single problem statement at the center. Together, we'll explore and expand on interconnected concepts, directions, and ideas branching out from that central theme. By combining and refining the various elements in the mindmap, we will ultimately arrive at a set of well-defined product concepts.`

// DefaultExpansionGuidance is used when the user submits empty guidance
// for a branch expansion.
const DefaultExpansionGuidance = "Explore the most promising and non-obvious directions this idea could take."

var howMightWeRegex = regexp.MustCompile(`How might we[^.?!]*[.?!]`)

// ExtractHowMightWe pulls the final "How might we ..." sentence out of a
// response that may carry extra prose. Returns the trimmed input when no
// such sentence is found.
func ExtractHowMightWe(text string) string {
	trimmed := strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `"`))
	if len(strings.Split(trimmed, "\n")) > 1 || strings.Count(trimmed, ".") > 1 {
		if matches := howMightWeRegex.FindAllString(trimmed, -1); len(matches) > 0 {
			return strings.TrimSpace(matches[len(matches)-1])
		}
	}
	return trimmed
}

// ProblemStatementPrompt renders the prompt generating the first candidate
// problem statement from the target audience and problem.
func ProblemStatementPrompt(targetAudience, problem string) string {
	return fmt.Sprintf(`%s

Generate a single-sentence problem statement for:
Target Audience: %s
Problem: %s

Your response must be:
1. A single sentence starting with "How might we"
2. Include the target audience and problem
3. Include the preferred outcome of the solution in the end
4. End with a question mark
5. No longer than 20 words
6. No additional text or explanations`, SystemTemplate, targetAudience, problem)
}

// AlternativeStatementPrompt renders the prompt generating the second
// candidate statement: same preferable outcome, alternate approach.
func AlternativeStatementPrompt(statement string) string {
	return fmt.Sprintf(`%s

Please generate an alternative problem statement based on this original problem statement:
"%s"

1. Extract the preferable outcome: after this problem is solved, what is the ideal situation or behavior?
2. Brainstorm an alternate method that would also fulfill that outcome.
3. Form another "How might we + [alternate method] + [preferable outcome]?" statement.

Output only the newly formed "How might we" statement, as a single sentence, no longer than 20 words, with no explanation or additional text.`, SystemTemplate, statement)
}

// ConfirmationSeed renders the transcript seed placed on each fixed lens
// thread when the final problem statement is confirmed.
func ConfirmationSeed(finalStatement, lensName string) string {
	return fmt.Sprintf("%s\n\nWe'll use the following problem statement for our ideation session:\n\n%s\n\nThis thread explores it through the lens: %s.", SystemTemplate, finalStatement, lensName)
}

// ExpandPrompt renders the prompt turning one branch plus guidance into
// child concepts.
func ExpandPrompt(heading, content, guidance string) string {
	return fmt.Sprintf(`%s

We are expanding one node of our mindmap.

Current branch: %s
%s

Guidance: %s

Generate 3 distinct sub-concepts that deepen or reframe this branch. Respond with only a JSON array of objects, each shaped like:
{"heading": "...", "explanation": "...", "productDirection": "..."}`, SystemTemplate, heading, content, guidance)
}

// AuthorPrompt renders the prompt structuring a free-text user idea as a
// child concept of the given branch.
func AuthorPrompt(parentHeading, parentContent, idea string) string {
	return fmt.Sprintf(`%s

I want to add my own idea underneath this branch of our mindmap.

Parent branch: %s
%s

My idea: %s

Structure my idea relative to the parent branch. Respond with only a single JSON object shaped like:
{"heading": "...", "explanation": "...", "productDirection": "..."}
Keep my intent intact; do not replace my idea with your own.`, SystemTemplate, parentHeading, parentContent, idea)
}

// CombinePrompt renders the prompt merging the gathered branch contents
// into well-defined product concepts.
func CombinePrompt(problemStatement string, parts []string) string {
	var b strings.Builder
	for i, part := range parts {
		fmt.Fprintf(&b, "Element %d:\n%s\n\n", i+1, part)
	}
	return fmt.Sprintf(`%s

Problem statement: %s

Combine the following mindmap elements into one or more well-defined product concepts:

%sRespond with only a JSON array of objects, each shaped like:
{"heading": "...", "description": "...", "features": ["...", "..."]}`, SystemTemplate, problemStatement, b.String())
}
