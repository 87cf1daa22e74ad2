// Package types defines the core data model for an ideation session:
// branches, threads, payloads, and the identifiers that tie them together.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// BranchID is a globally unique, monotonically increasing handle for a
// branch. IDs are never reused within a session, even after deletion.
type BranchID int64

// NoBranch is the zero BranchID, used where a parent reference is absent.
const NoBranch BranchID = 0

// String renders the id in the user-facing "b<n>" form used by the
// command surface.
func (id BranchID) String() string {
	return fmt.Sprintf("b%d", int64(id))
}

// ParseBranchID parses the "b<n>" form (case-insensitive). It returns an
// error for anything that is not a 'b' followed by a positive integer.
func ParseBranchID(s string) (BranchID, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if !strings.HasPrefix(s, "b") {
		return NoBranch, fmt.Errorf("branch reference must look like b3, got %q", s)
	}
	n, err := strconv.ParseInt(s[1:], 10, 64)
	if err != nil || n <= 0 {
		return NoBranch, fmt.Errorf("branch reference must look like b3, got %q", s)
	}
	return BranchID(n), nil
}

// Category distinguishes the two branch payload shapes.
type Category string

const (
	CategoryConcept Category = "concept"
	CategoryProduct Category = "product"
)

// IsValid checks if the category value is valid.
func (c Category) IsValid() bool {
	return c == CategoryConcept || c == CategoryProduct
}

// Origin records how a branch came into existence. Display-only; never
// used for structural decisions.
type Origin string

const (
	OriginHarvested    Origin = "harvested"
	OriginExpanded     Origin = "expanded"
	OriginUserAuthored Origin = "user"
	OriginCombined     Origin = "combined"
)

// Payload is the sealed sum of the two branch payload shapes. A branch
// carries exactly one payload, so a concept branch can never hold product
// fields and vice versa.
type Payload interface {
	Category() Category
	Heading() string
	// Content is a display-only rendering of the payload's text fields.
	// It is never re-parsed.
	Content() string

	sealed()
}

// ConceptPayload is the normalized shape of an exploratory idea fragment.
type ConceptPayload struct {
	Title            string `json:"heading"`
	Explanation      string `json:"explanation"`
	ProductDirection string `json:"productDirection"`
	UserProfile      string `json:"userProfile,omitempty"`
}

func (p ConceptPayload) Category() Category { return CategoryConcept }
func (p ConceptPayload) Heading() string    { return p.Title }
func (p ConceptPayload) sealed()            {}

// Content re-concatenates the normalized fields for legacy text rendering.
func (p ConceptPayload) Content() string {
	var b strings.Builder
	if p.UserProfile != "" {
		b.WriteString("Persona: ")
		b.WriteString(p.UserProfile)
		b.WriteString("\n")
	}
	b.WriteString(p.Explanation)
	if p.ProductDirection != "" {
		b.WriteString("\n\nProduct direction: ")
		b.WriteString(p.ProductDirection)
	}
	return b.String()
}

// AsRaw converts the payload back into the raw key/value form accepted by
// the normalizer. Normalizing the result yields an identical payload.
func (p ConceptPayload) AsRaw() map[string]any {
	raw := map[string]any{
		"heading":          p.Title,
		"explanation":      p.Explanation,
		"productDirection": p.ProductDirection,
	}
	if p.UserProfile != "" {
		raw["userProfile"] = p.UserProfile
	}
	return raw
}

// ProductPayload is the normalized shape of an actionable product concept
// produced by combining branches.
type ProductPayload struct {
	Title          string     `json:"heading"`
	Description    string     `json:"description"`
	Features       []string   `json:"features"`
	SourceConcepts []BranchID `json:"sourceConcepts"`
}

func (p ProductPayload) Category() Category { return CategoryProduct }
func (p ProductPayload) Heading() string    { return p.Title }
func (p ProductPayload) sealed()            {}

// Content renders the product fields for display.
func (p ProductPayload) Content() string {
	var b strings.Builder
	b.WriteString(p.Description)
	if len(p.Features) > 0 {
		b.WriteString("\n\nKey features:")
		for _, f := range p.Features {
			b.WriteString("\n- ")
			b.WriteString(f)
		}
	}
	return b.String()
}

// AsRaw converts the payload back into the raw key/value form accepted by
// the normalizer.
func (p ProductPayload) AsRaw() map[string]any {
	features := make([]any, len(p.Features))
	for i, f := range p.Features {
		features[i] = f
	}
	return map[string]any{
		"heading":     p.Title,
		"description": p.Description,
		"features":    features,
	}
}

// Branch is one idea fragment node in the forest. Parent and children
// always reference branches in the same thread.
type Branch struct {
	ID       BranchID `json:"id"`
	ThreadID ThreadID `json:"thread_id"`
	// ParentID is NoBranch for thread-level (root) branches.
	ParentID BranchID   `json:"parent_id,omitempty"`
	ChildIDs []BranchID `json:"child_ids,omitempty"`
	Origin   Origin     `json:"origin"`
	Expanded bool       `json:"expanded"`
	// ExpansionRaw holds the raw parsed structure (or raw text, on a
	// degraded parse) returned by the last expansion of this branch.
	ExpansionRaw string  `json:"expansion_raw,omitempty"`
	Payload      Payload `json:"payload"`
}

// Category reports the payload's category.
func (b *Branch) Category() Category {
	return b.Payload.Category()
}

// Root reports whether this branch sits directly under its thread.
func (b *Branch) Root() bool {
	return b.ParentID == NoBranch
}
