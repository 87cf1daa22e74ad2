package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConcept struct {
	Heading     string `json:"heading"`
	Explanation string `json:"explanation"`
}

func TestParse_DirectJSON(t *testing.T) {
	result := Parse[sampleConcept](`{"heading": "H", "explanation": "E"}`)

	require.True(t, result.Success)
	assert.Equal(t, "H", result.Data.Heading)
}

func TestParse_CodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"json fence", "```json\n{\"heading\": \"H\"}\n```"},
		{"bare fence", "```\n{\"heading\": \"H\"}\n```"},
		{"fence without newlines", "```json{\"heading\": \"H\"}```"},
		{"fence inside prose", "Here you go:\n```json\n{\"heading\": \"H\"}\n```\nHope that helps!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse[sampleConcept](tt.input)
			require.True(t, result.Success, "input: %q", tt.input)
			assert.Equal(t, "H", result.Data.Heading)
		})
	}
}

func TestParse_ExtractsEmbeddedObject(t *testing.T) {
	input := `Sure! Here is the concept you asked for: {"heading": "H", "explanation": "E"} — let me know if you want more.`

	result := Parse[sampleConcept](input)

	require.True(t, result.Success)
	assert.Equal(t, "E", result.Data.Explanation)
}

func TestParse_ArrayNotNarrowedToFirstElement(t *testing.T) {
	input := `[{"heading": "A"}, {"heading": "B"}]`

	result := Parse[[]sampleConcept](input)

	require.True(t, result.Success)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "B", result.Data[1].Heading)
}

func TestParse_TrailingComma(t *testing.T) {
	input := `Response: {"heading": "H", "explanation": "E",}`

	result := Parse[sampleConcept](input)

	require.True(t, result.Success)
	assert.Equal(t, "H", result.Data.Heading)
}

func TestParse_FailureKeepsOriginalText(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain prose", "I would rather describe this in words."},
		{"empty", ""},
		{"whitespace", "   \n\t "},
		{"broken json", `{"heading": "unterminated`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse[sampleConcept](tt.input)
			assert.False(t, result.Success)
			assert.NotEmpty(t, result.Error)
			assert.Equal(t, tt.input, result.OriginalText)
		})
	}
}

func TestParse_GenericMapTarget(t *testing.T) {
	result := Parse[map[string][]map[string]any](`{"section": [{"heading": "H"}]}`)

	require.True(t, result.Success)
	require.Len(t, result.Data["section"], 1)
	assert.Equal(t, "H", result.Data["section"][0]["heading"])
}

func TestExtractJSON_PrefersLeadingShape(t *testing.T) {
	assert.Equal(t, `[1, 2]`, extractJSON(`[1, 2]`))
	assert.Equal(t, `{"a": 1}`, extractJSON(`{"a": 1}`))
	assert.Equal(t, `{"a": 1}`, extractJSON(`text {"a": 1} text`))
	assert.Empty(t, extractJSON("no json here"))
}
