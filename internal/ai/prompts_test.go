package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHowMightWe(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "clean statement passes through",
			input: "How might we help founders stay accountable?",
			want:  "How might we help founders stay accountable?",
		},
		{
			name:  "surrounding quotes stripped",
			input: `"How might we help founders stay accountable?"`,
			want:  "How might we help founders stay accountable?",
		},
		{
			name:  "preamble on its own line",
			input: "Here is the statement you asked for.\nHow might we help founders stay accountable?",
			want:  "How might we help founders stay accountable?",
		},
		{
			name:  "last statement wins",
			input: "How might we do X? Hmm. A better one follows. How might we do Y?",
			want:  "How might we do Y?",
		},
		{
			name:  "no match returns trimmed input",
			input: "  a single sentence with no keyphrase  ",
			want:  "a single sentence with no keyphrase",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHowMightWe(tt.input))
		})
	}
}

func TestProblemStatementPrompt(t *testing.T) {
	prompt := ProblemStatementPrompt("solo founders", "lack of accountability")

	assert.Contains(t, prompt, SystemTemplate)
	assert.Contains(t, prompt, "solo founders")
	assert.Contains(t, prompt, "lack of accountability")
	assert.Contains(t, prompt, `starting with "How might we"`)
}

func TestAlternativeStatementPrompt(t *testing.T) {
	statement := "How might we help founders stay accountable?"

	prompt := AlternativeStatementPrompt(statement)

	assert.Contains(t, prompt, statement)
	assert.Contains(t, prompt, "alternate method")
}

func TestConfirmationSeed(t *testing.T) {
	seed := ConfirmationSeed("How might we do X?", "Emotional Root Causes")

	assert.Contains(t, seed, SystemTemplate)
	assert.Contains(t, seed, "How might we do X?")
	assert.Contains(t, seed, "Emotional Root Causes")
}

func TestCombinePrompt_NumbersElements(t *testing.T) {
	prompt := CombinePrompt("How might we do X?", []string{"first element", "second element"})

	assert.Contains(t, prompt, "Element 1:\nfirst element")
	assert.Contains(t, prompt, "Element 2:\nsecond element")
	assert.Contains(t, prompt, "How might we do X?")
}
