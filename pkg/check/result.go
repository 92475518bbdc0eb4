package check

import "github.com/jwebster45206/prereq-engine/pkg/requirement"

// Result mirrors the shape of the requirement tree node it was produced
// from. Children are only populated for any/all nodes. Results are built
// fresh on every check and never mutated afterwards.
type Result struct {
	Type     requirement.NodeType `json:"type"`
	Passed   bool                 `json:"passed"`
	Message  string               `json:"message"`
	Children []*Result            `json:"children,omitempty"`
}

// FailureReasons walks the result tree and returns the messages of all
// failed leaves, in evaluation order. Combinator nodes contribute nothing
// themselves; the leaves carry the explanations.
func (r *Result) FailureReasons() []string {
	var reasons []string
	r.collectFailures(&reasons)
	return reasons
}

func (r *Result) collectFailures(reasons *[]string) {
	if r == nil {
		return
	}
	if len(r.Children) == 0 {
		if !r.Passed && r.Message != "" {
			*reasons = append(*reasons, r.Message)
		}
		return
	}
	for _, child := range r.Children {
		child.collectFailures(reasons)
	}
}
