package requirement

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned by builder functions when called with
// missing or contradictory parameters.
var ErrInvalidArgument = errors.New("invalid argument")

// Bounds carries the optional numeric bounds for trait and count_tag nodes.
// Use Int to build the pointer values.
type Bounds struct {
	Minimum *int
	Maximum *int
	Exact   *int
}

// Int returns a pointer to v, for filling Bounds fields.
func Int(v int) *int {
	return &v
}

// HasCriteria describes what a possession check matches against. At least
// one field must be set.
type HasCriteria struct {
	ID      string
	Name    string
	Matcher map[string]string
}

func (c HasCriteria) isEmpty() bool {
	return c.ID == "" && c.Name == "" && len(c.Matcher) == 0
}

// Trait builds a trait comparison node. At least one bound is required,
// and Exact cannot be combined with Minimum or Maximum.
func Trait(name string, bounds Bounds) (*Node, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: trait requires a name", ErrInvalidArgument)
	}
	if err := checkBounds(bounds, true); err != nil {
		return nil, err
	}
	return &Node{
		Type:    TypeTrait,
		Name:    name,
		Minimum: bounds.Minimum,
		Maximum: bounds.Maximum,
		Exact:   bounds.Exact,
	}, nil
}

// Has builds a possession check node. At least one of the criteria fields
// must be set.
func Has(collection string, criteria HasCriteria) (*Node, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: has requires a collection", ErrInvalidArgument)
	}
	if criteria.isEmpty() {
		return nil, fmt.Errorf("%w: has requires at least one of id, name, or a matcher entry", ErrInvalidArgument)
	}
	return &Node{
		Type:       TypeHas,
		Collection: collection,
		ItemID:     criteria.ID,
		Name:       criteria.Name,
		Matcher:    criteria.Matcher,
	}, nil
}

// CountWithTag builds a tag-count comparison node. At least one of
// Minimum/Maximum is required; Exact is not supported for counts.
func CountWithTag(collection, tag string, bounds Bounds) (*Node, error) {
	if collection == "" || tag == "" {
		return nil, fmt.Errorf("%w: count_tag requires a collection and a tag", ErrInvalidArgument)
	}
	if bounds.Exact != nil {
		return nil, fmt.Errorf("%w: count_tag does not support exact", ErrInvalidArgument)
	}
	if err := checkBounds(bounds, false); err != nil {
		return nil, err
	}
	return &Node{
		Type:       TypeCountTag,
		Collection: collection,
		Tag:        tag,
		Minimum:    bounds.Minimum,
		Maximum:    bounds.Maximum,
	}, nil
}

// AnyOf builds a logical OR node over the given children.
func AnyOf(children ...*Node) (*Node, error) {
	return combinator(TypeAny, children)
}

// AllOf builds a logical AND node over the given children.
func AllOf(children ...*Node) (*Node, error) {
	return combinator(TypeAll, children)
}

func combinator(t NodeType, children []*Node) (*Node, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: %s requires at least one child", ErrInvalidArgument, t)
	}
	for i, child := range children {
		if child == nil {
			return nil, fmt.Errorf("%w: %s child %d is nil", ErrInvalidArgument, t, i)
		}
	}
	return &Node{Type: t, Children: children}, nil
}

// checkBounds enforces the at-least-one rule and the exact exclusivity rule.
// Builders only catch contradictory construction; numeric range rules
// (non-negative, minimum <= maximum) are the validator's job, so trees built
// in-memory for tests stay unconstrained until they cross a trust boundary.
func checkBounds(bounds Bounds, allowExact bool) error {
	if bounds.Minimum == nil && bounds.Maximum == nil && bounds.Exact == nil {
		return fmt.Errorf("%w: at least one of minimum, maximum, or exact is required", ErrInvalidArgument)
	}
	if allowExact && bounds.Exact != nil && (bounds.Minimum != nil || bounds.Maximum != nil) {
		return fmt.Errorf("%w: exact cannot be combined with minimum or maximum", ErrInvalidArgument)
	}
	return nil
}
