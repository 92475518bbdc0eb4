package requirement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

// NodeType discriminates the kinds of requirement tree nodes.
type NodeType string

const (
	TypeTrait    NodeType = "trait"
	TypeHas      NodeType = "has"
	TypeCountTag NodeType = "count_tag"
	TypeAny      NodeType = "any"
	TypeAll      NodeType = "all"
)

// Node is one node of a requirement tree. The Type field selects which of
// the remaining fields are meaningful:
//
//   - trait: Name plus at least one of Minimum/Maximum/Exact
//   - has: Collection plus at least one of ItemID/Name/Matcher
//   - count_tag: Collection, Tag, plus at least one of Minimum/Maximum
//   - any, all: Children
//
// Trees are treated as immutable once validated; use Clone before editing.
type Node struct {
	Type       NodeType          `json:"type"`
	Name       string            `json:"name,omitempty"`
	Collection string            `json:"collection,omitempty"`
	Tag        string            `json:"tag,omitempty"`
	ItemID     string            `json:"id,omitempty"`
	Matcher    map[string]string `json:"matcher,omitempty"`
	Minimum    *int              `json:"minimum,omitempty"`
	Maximum    *int              `json:"maximum,omitempty"`
	Exact      *int              `json:"exact,omitempty"`
	Children   []*Node           `json:"children,omitempty"`
}

// UnmarshalJSON decodes a node strictly, rejecting unknown keys.
// Nested children go through the same strict decode.
func (n *Node) UnmarshalJSON(data []byte) error {
	type alias Node
	var a alias
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return fmt.Errorf("failed to decode requirement node: %w", err)
	}
	*n = Node(a)
	return nil
}

// IsCombinator reports whether the node is a logical combinator (any/all).
func (n *Node) IsCombinator() bool {
	return n.Type == TypeAny || n.Type == TypeAll
}

// Clone returns a deep copy of the node and all of its children.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Minimum = cloneIntPtr(n.Minimum)
	out.Maximum = cloneIntPtr(n.Maximum)
	out.Exact = cloneIntPtr(n.Exact)
	if n.Matcher != nil {
		out.Matcher = maps.Clone(n.Matcher)
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.Clone()
		}
	}
	return &out
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// SubjectRef is a tagged reference to an external subject or owning entity,
// e.g. {Kind: "character", ID: "pirate_captain"}. Resolution to a concrete
// subject is the caller's responsibility.
type SubjectRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (r SubjectRef) String() string {
	return r.Kind + ":" + r.ID
}

// IsZero reports whether the reference is unset.
func (r SubjectRef) IsZero() bool {
	return r.Kind == "" && r.ID == ""
}

// Prerequisite is a named wrapper around one requirement tree. It may stand
// alone or be attached to exactly one external entity via Subject. Edits
// replace the Requirements tree wholesale; the tree itself is never mutated.
type Prerequisite struct {
	ID           uuid.UUID   `json:"id"`
	Description  string      `json:"description"`
	Requirements *Node       `json:"requirements"`
	Subject      *SubjectRef `json:"subject,omitempty"`
	CreatedAt    time.Time   `json:"created_at,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at,omitempty"`
}

// NewPrerequisite creates a Prerequisite with a fresh ID and timestamps.
// The requirements tree is not validated here; callers must run Validate
// before persisting or evaluating untrusted input.
func NewPrerequisite(description string, requirements *Node) *Prerequisite {
	now := time.Now().UTC()
	return &Prerequisite{
		ID:           uuid.New(),
		Description:  description,
		Requirements: requirements,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
