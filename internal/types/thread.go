package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ThreadID identifies a thread. Fixed lens threads are thread_1..thread_3;
// combined threads continue the numbering from thread_4.
type ThreadID string

// ThreadKind distinguishes the fixed exploration lenses from threads
// spawned by combination.
type ThreadKind string

const (
	ThreadFixedLens ThreadKind = "fixed_lens"
	ThreadCombined  ThreadKind = "combined"
)

// Lens enumerates the three fixed exploration lenses, in display order.
type Lens int

const (
	LensEmotionalRootCauses Lens = iota
	LensUnconventionalAssociations
	LensImaginaryFeedback
	lensCount
)

// Lenses returns all fixed lenses in display order.
func Lenses() []Lens {
	return []Lens{LensEmotionalRootCauses, LensUnconventionalAssociations, LensImaginaryFeedback}
}

func (l Lens) String() string {
	switch l {
	case LensEmotionalRootCauses:
		return "emotional_root_causes"
	case LensUnconventionalAssociations:
		return "unconventional_associations"
	case LensImaginaryFeedback:
		return "imaginary_feedback"
	default:
		return fmt.Sprintf("lens(%d)", int(l))
	}
}

// IsValid checks if the lens value is valid.
func (l Lens) IsValid() bool {
	return l >= 0 && l < lensCount
}

// Role tags a transcript message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a thread's transcript.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a transcript message stamped with a fresh id.
func NewMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.New(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// Thread is a named exploration context owning a transcript and the set of
// branches created within it.
type Thread struct {
	ID          ThreadID   `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Kind        ThreadKind `json:"kind"`
	// Lens is meaningful only for fixed-lens threads.
	Lens       Lens      `json:"lens,omitempty"`
	Transcript []Message `json:"transcript"`
	// BranchIDs holds every branch whose ThreadID is this thread (roots and
	// descendants alike), in creation order.
	BranchIDs []BranchID `json:"branch_ids"`
	// SourceConcepts records, for combined threads, the branches whose
	// combination spawned this thread.
	SourceConcepts []BranchID `json:"source_concepts,omitempty"`
}

// Append adds a message to the thread transcript.
func (t *Thread) Append(role Role, text string) {
	t.Transcript = append(t.Transcript, NewMessage(role, text))
}

// HasBranch reports whether the branch is registered on this thread.
func (t *Thread) HasBranch(id BranchID) bool {
	for _, b := range t.BranchIDs {
		if b == id {
			return true
		}
	}
	return false
}

// ProblemStatement holds the two generated candidate texts and the chosen
// final text. Immutable once confirmed.
type ProblemStatement struct {
	TargetAudience string `json:"target_audience"`
	Problem        string `json:"problem"`
	Candidate1     string `json:"candidate_1"`
	Candidate2     string `json:"candidate_2"`
	Final          string `json:"final"`
}

// Confirmed reports whether a final statement has been chosen.
func (p ProblemStatement) Confirmed() bool {
	return p.Final != ""
}
