// Package ai provides the completion collaborator client and the parsing
// of its free-text responses into structured records.
package ai

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions. Compiling on every parse is an order
// of magnitude slower than reusing patterns.
var (
	// Code fence patterns. Newlines are optional: models do not always
	// include them. Matches ```json\n{...}\n```, ```{...}```, etc.
	codeFenceStartRegex = regexp.MustCompile(`(?s)^` + "`" + `{3}(?:json|javascript|js)?\s*\n?([\s\S]*?)\n?` + "`" + `{3}\s*$`)
	codeFenceAnyRegex   = regexp.MustCompile(`(?s)` + "`" + `{3}(?:json|javascript|js)?\s*\n?([\s\S]*?)\n?` + "`" + `{3}`)

	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)

	// Greedy extraction of the first top-level object or array span.
	objectRegex = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	arrayRegex  = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// ParseResult is the outcome of a fallback-chain parse. On failure the
// original text is preserved so callers can degrade gracefully instead of
// raising.
type ParseResult[T any] struct {
	Success      bool
	Data         T
	Error        string
	OriginalText string
}

// Parse runs the response parsing fallback chain, stopping at the first
// strategy that succeeds:
//
//  1. Strict parse of the entire response
//  2. Strip code fences and retry
//  3. Extract the first top-level {...} or [...] span and parse that
//  4. Report failure; the caller stores the raw text and degrades
//
// The same chain serves harvesting, expansion, authoring, and combination.
func Parse[T any](text string) ParseResult[T] {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return parseError[T]("empty response", text)
	}

	if result, err := tryParse[T](trimmed); err == nil {
		return ParseResult[T]{Success: true, Data: result, OriginalText: text}
	} else {
		slog.Debug("direct parse failed, trying cleanup strategies",
			"error", err.Error(),
			"preview", truncate(trimmed, 100))
	}

	withoutFences := removeCodeFences(trimmed)
	if withoutFences != trimmed {
		if result, err := tryParse[T](withoutFences); err == nil {
			return ParseResult[T]{Success: true, Data: result, OriginalText: text}
		}
	}

	if extracted := extractJSON(withoutFences); extracted != "" {
		if result, err := tryParse[T](extracted); err == nil {
			return ParseResult[T]{Success: true, Data: result, OriginalText: text}
		}
		// Models occasionally emit trailing commas inside otherwise valid
		// JSON; fix those and retry the extracted span once.
		cleaned := trailingCommaRegex.ReplaceAllString(extracted, "$1")
		if cleaned != extracted {
			if result, err := tryParse[T](cleaned); err == nil {
				return ParseResult[T]{Success: true, Data: result, OriginalText: text}
			}
		}
	}

	return parseError[T]("all parsing strategies failed", text)
}

func tryParse[T any](text string) (T, error) {
	var result T
	err := json.Unmarshal([]byte(text), &result)
	return result, err
}

// removeCodeFences strips markdown code fences, preferring a fence that
// wraps the whole response over one embedded in prose.
func removeCodeFences(text string) string {
	cleaned := codeFenceStartRegex.ReplaceAllString(text, "$1")
	if cleaned == text {
		cleaned = codeFenceAnyRegex.ReplaceAllString(text, "$1")
	}
	if strings.HasPrefix(cleaned, "`") && strings.HasSuffix(cleaned, "`") {
		cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "`"), "`")
	}
	return strings.TrimSpace(cleaned)
}

// extractJSON pulls the first top-level object or array span out of mixed
// content. The first-character check keeps an array response from being
// narrowed to its first element.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '[':
			if match := arrayRegex.FindString(text); match != "" {
				return match
			}
		case '{':
			if match := objectRegex.FindString(text); match != "" {
				return match
			}
		}
	}
	if match := objectRegex.FindString(text); match != "" {
		return match
	}
	if match := arrayRegex.FindString(text); match != "" {
		return match
	}
	return ""
}

func parseError[T any](message, text string) ParseResult[T] {
	var zero T
	return ParseResult[T]{
		Success:      false,
		Data:         zero,
		Error:        message,
		OriginalText: text,
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
