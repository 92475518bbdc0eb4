package requirement

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	// MaxDepth caps requirement tree nesting. The root is depth 0; a node
	// at depth 5 fails validation before evaluation ever sees it.
	MaxDepth = 5

	// MaxValueLength caps name/tag/collection/matcher string lengths.
	MaxValueLength = 200
)

// Validation failure categories. Use errors.Is against these to classify a
// ValidationError.
var (
	ErrMalformedStructure = errors.New("malformed structure")
	ErrInvalidBounds      = errors.New("invalid bounds")
	ErrDepthExceeded      = errors.New("depth exceeded")
	ErrEmptyCombinator    = errors.New("empty combinator")
	ErrUnsafeValue        = errors.New("unsafe value")
)

// ValidationError reports a single structural problem, with the path of the
// offending node (e.g. "$.children[1].children[0]").
type ValidationError struct {
	Path   string
	Detail string
	err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.err.Error(), e.Path, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

// safeValueRegex allowlists characters for user-supplied string values, to
// keep stored trees safe for downstream rendering and storage layers.
var safeValueRegex = regexp.MustCompile(`^[a-zA-Z0-9 _.,:'()\-]+$`)

// Validate walks an arbitrary (possibly untrusted) requirement tree and
// rejects malformed, oversized, or too-deep structures before evaluation.
// It returns nil or a *ValidationError; the walk aborts on the first
// problem found, including the instant the depth cap is reached.
//
// Validation is mandatory before persisting a Prerequisite and before
// evaluating any tree that crossed a trust boundary. Trees built in-process
// by the builder functions for one-shot evaluation may skip it.
func Validate(n *Node) error {
	return validateNode(n, "$", 0)
}

func validateNode(n *Node, path string, depth int) error {
	if n == nil {
		return &ValidationError{Path: path, Detail: "node is nil", err: ErrMalformedStructure}
	}
	if depth >= MaxDepth {
		return &ValidationError{
			Path:   path,
			Detail: fmt.Sprintf("nesting deeper than %d levels", MaxDepth),
			err:    ErrDepthExceeded,
		}
	}

	switch n.Type {
	case TypeTrait:
		if n.Name == "" {
			return &ValidationError{Path: path, Detail: "trait requires name", err: ErrMalformedStructure}
		}
		if err := rejectFields(path, field{"collection", n.Collection != ""}, field{"tag", n.Tag != ""},
			field{"id", n.ItemID != ""}, field{"matcher", len(n.Matcher) > 0}, field{"children", len(n.Children) > 0}); err != nil {
			return err
		}
		if err := validateBounds(n, path, true); err != nil {
			return err
		}
		return validateStrings(path, value{"name", n.Name})

	case TypeHas:
		if n.Collection == "" {
			return &ValidationError{Path: path, Detail: "has requires collection", err: ErrMalformedStructure}
		}
		if n.ItemID == "" && n.Name == "" && len(n.Matcher) == 0 {
			return &ValidationError{Path: path, Detail: "has requires at least one of id, name, or matcher", err: ErrMalformedStructure}
		}
		if err := rejectFields(path, field{"tag", n.Tag != ""}, field{"minimum", n.Minimum != nil},
			field{"maximum", n.Maximum != nil}, field{"exact", n.Exact != nil}, field{"children", len(n.Children) > 0}); err != nil {
			return err
		}
		values := []value{{"collection", n.Collection}}
		if n.ItemID != "" {
			values = append(values, value{"id", n.ItemID})
		}
		if n.Name != "" {
			values = append(values, value{"name", n.Name})
		}
		for k, v := range n.Matcher {
			values = append(values, value{"matcher key", k}, value{fmt.Sprintf("matcher[%s]", k), v})
		}
		return validateStrings(path, values...)

	case TypeCountTag:
		if n.Collection == "" || n.Tag == "" {
			return &ValidationError{Path: path, Detail: "count_tag requires collection and tag", err: ErrMalformedStructure}
		}
		if err := rejectFields(path, field{"name", n.Name != ""}, field{"id", n.ItemID != ""},
			field{"matcher", len(n.Matcher) > 0}, field{"exact", n.Exact != nil}, field{"children", len(n.Children) > 0}); err != nil {
			return err
		}
		if err := validateBounds(n, path, false); err != nil {
			return err
		}
		return validateStrings(path, value{"collection", n.Collection}, value{"tag", n.Tag})

	case TypeAny, TypeAll:
		if err := rejectFields(path, field{"name", n.Name != ""}, field{"collection", n.Collection != ""},
			field{"tag", n.Tag != ""}, field{"id", n.ItemID != ""}, field{"matcher", len(n.Matcher) > 0},
			field{"minimum", n.Minimum != nil}, field{"maximum", n.Maximum != nil}, field{"exact", n.Exact != nil}); err != nil {
			return err
		}
		if len(n.Children) == 0 {
			return &ValidationError{Path: path, Detail: fmt.Sprintf("%s requires at least one child", n.Type), err: ErrEmptyCombinator}
		}
		for i, child := range n.Children {
			childPath := fmt.Sprintf("%s.children[%d]", path, i)
			if err := validateNode(child, childPath, depth+1); err != nil {
				return err
			}
		}
		return nil

	default:
		return &ValidationError{
			Path:   path,
			Detail: fmt.Sprintf("unknown requirement type %q", string(n.Type)),
			err:    ErrMalformedStructure,
		}
	}
}

type field struct {
	name string
	set  bool
}

func rejectFields(path string, fields ...field) error {
	for _, f := range fields {
		if f.set {
			return &ValidationError{
				Path:   path,
				Detail: fmt.Sprintf("field %q is not allowed on this node type", f.name),
				err:    ErrMalformedStructure,
			}
		}
	}
	return nil
}

func validateBounds(n *Node, path string, allowExact bool) error {
	if n.Minimum == nil && n.Maximum == nil && (!allowExact || n.Exact == nil) {
		return &ValidationError{Path: path, Detail: "at least one bound is required", err: ErrInvalidBounds}
	}
	if allowExact && n.Exact != nil && (n.Minimum != nil || n.Maximum != nil) {
		return &ValidationError{Path: path, Detail: "exact cannot be combined with minimum or maximum", err: ErrInvalidBounds}
	}
	for _, b := range []struct {
		name string
		v    *int
	}{{"minimum", n.Minimum}, {"maximum", n.Maximum}, {"exact", n.Exact}} {
		if b.v != nil && *b.v < 0 {
			return &ValidationError{Path: path, Detail: fmt.Sprintf("%s must be non-negative", b.name), err: ErrInvalidBounds}
		}
	}
	if n.Minimum != nil && n.Maximum != nil && *n.Minimum > *n.Maximum {
		return &ValidationError{Path: path, Detail: "minimum is greater than maximum", err: ErrInvalidBounds}
	}
	return nil
}

type value struct {
	name string
	v    string
}

func validateStrings(path string, values ...value) error {
	for _, val := range values {
		if len(val.v) > MaxValueLength {
			return &ValidationError{
				Path:   path,
				Detail: fmt.Sprintf("%s is longer than %d characters", val.name, MaxValueLength),
				err:    ErrUnsafeValue,
			}
		}
		if !safeValueRegex.MatchString(val.v) {
			return &ValidationError{
				Path:   path,
				Detail: fmt.Sprintf("%s contains disallowed characters", val.name),
				err:    ErrUnsafeValue,
			}
		}
	}
	return nil
}
