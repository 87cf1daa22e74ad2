// Package normalize canonicalizes raw key/value records into the two fixed
// branch payload shapes. Collaborator output and hand-authored ideas arrive
// with missing fields, merged content strings, and inconsistent key names;
// every function here is best-effort and never fails.
package normalize

import (
	"fmt"
	"strings"

	"github.com/ideaforge/ideaforge/internal/types"
)

// PlaceholderHeading is the default heading when a record has none.
const PlaceholderHeading = "Untitled idea"

// contentSeparators split a pre-concatenated "content" string into
// explanation and product direction. Matched case-insensitively, first
// hit wins.
var contentSeparators = []string{
	"product direction:",
	"direction:",
}

// headingKeys, in priority order, are the key names a heading may arrive
// under.
var headingKeys = []string{"heading", "title", "name"}

// Concept canonicalizes a raw record into a ConceptPayload. Missing fields
// get defaults; a merged "content" string is split on the known separator
// phrases, or treated wholly as the explanation when no separator is found.
// Idempotent: Concept(p.AsRaw()) == p for any already-normalized p.
func Concept(raw map[string]any) types.ConceptPayload {
	p := types.ConceptPayload{
		Title:            stringField(raw, headingKeys...),
		Explanation:      stringField(raw, "explanation"),
		ProductDirection: stringField(raw, "productDirection", "product_direction", "direction"),
		UserProfile:      stringField(raw, "userProfile", "user_profile", "persona"),
	}

	if p.Explanation == "" {
		if content := stringField(raw, "content", "text", "feedback"); content != "" {
			explanation, direction := splitContent(content)
			p.Explanation = explanation
			if p.ProductDirection == "" {
				p.ProductDirection = direction
			}
		}
	}

	if p.Title == "" {
		p.Title = PlaceholderHeading
	}
	return p
}

// Product canonicalizes a raw record into a ProductPayload. Features are
// accepted under several key names and as strings or lists of arbitrary
// values. Idempotent in the same sense as Concept.
func Product(raw map[string]any) types.ProductPayload {
	p := types.ProductPayload{
		Title:       stringField(raw, headingKeys...),
		Description: stringField(raw, "description", "desc", "summary", "content"),
		Features:    listField(raw, "features", "feature_list", "keyFeatures", "key_features"),
	}

	if p.Title == "" {
		p.Title = PlaceholderHeading
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return p
}

// splitContent splits a merged content string on the first known separator
// phrase. Without a separator the entire content is the explanation.
func splitContent(content string) (explanation, direction string) {
	lower := strings.ToLower(content)
	for _, sep := range contentSeparators {
		idx := strings.Index(lower, sep)
		if idx < 0 {
			continue
		}
		explanation = strings.TrimSpace(content[:idx])
		direction = strings.TrimSpace(content[idx+len(sep):])
		return explanation, direction
	}
	return strings.TrimSpace(content), ""
}

// stringField returns the first non-empty string value found under the
// given keys. Non-string scalars are rendered with fmt; lists and maps
// yield "".
func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
		case float64, int, int64, bool:
			return fmt.Sprintf("%v", val)
		}
	}
	return ""
}

// listField returns the first usable list of strings found under the given
// keys. A bare string is treated as a single-element list; list elements
// that are maps contribute their heading-ish field.
func listField(raw map[string]any, keys ...string) []string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case []string:
			return append([]string(nil), val...)
		case []any:
			out := make([]string, 0, len(val))
			for _, item := range val {
				switch it := item.(type) {
				case string:
					if s := strings.TrimSpace(it); s != "" {
						out = append(out, s)
					}
				case map[string]any:
					if s := stringField(it, "name", "title", "feature", "heading"); s != "" {
						out = append(out, s)
					}
				default:
					out = append(out, fmt.Sprintf("%v", it))
				}
			}
			return out
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return []string{s}
			}
		}
	}
	return nil
}
