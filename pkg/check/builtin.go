package check

import (
	"fmt"

	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

// Built-in evaluators for the trait, has, and count_tag node types.
// Messages describe the outcome in terms a player-facing layer can surface
// directly ("strength is 3, minimum 3 met").

func evaluateTrait(subject Subject, node *requirement.Node) (bool, string, error) {
	value, ok := subject.GetTrait(node.Name)
	if !ok {
		return false, fmt.Sprintf("trait %q is not present", node.Name), nil
	}

	if node.Exact != nil {
		if value != *node.Exact {
			return false, fmt.Sprintf("%s is %d, expected exactly %d", node.Name, value, *node.Exact), nil
		}
		return true, fmt.Sprintf("%s is exactly %d", node.Name, value), nil
	}

	if node.Minimum != nil && value < *node.Minimum {
		return false, fmt.Sprintf("%s is %d, minimum %d not met", node.Name, value, *node.Minimum), nil
	}
	if node.Maximum != nil && value > *node.Maximum {
		return false, fmt.Sprintf("%s is %d, maximum %d exceeded", node.Name, value, *node.Maximum), nil
	}
	return true, fmt.Sprintf("%s is %d, %s", node.Name, value, boundsMet(node)), nil
}

func evaluateHas(subject Subject, node *requirement.Node) (bool, string, error) {
	criteria := requirement.HasCriteria{
		ID:      node.ItemID,
		Name:    node.Name,
		Matcher: node.Matcher,
	}
	found, err := subject.HasMatching(node.Collection, criteria)
	if err != nil {
		return false, "", fmt.Errorf("possession lookup in %q failed: %w", node.Collection, err)
	}
	if !found {
		return false, fmt.Sprintf("no matching object in %q", node.Collection), nil
	}
	return true, fmt.Sprintf("matching object found in %q", node.Collection), nil
}

func evaluateCountTag(subject Subject, node *requirement.Node) (bool, string, error) {
	count, err := subject.CountTagged(node.Collection, node.Tag)
	if err != nil {
		return false, "", fmt.Errorf("tag count in %q failed: %w", node.Collection, err)
	}

	if node.Minimum != nil && count < *node.Minimum {
		return false, fmt.Sprintf("%d objects tagged %q in %q, minimum %d not met", count, node.Tag, node.Collection, *node.Minimum), nil
	}
	if node.Maximum != nil && count > *node.Maximum {
		return false, fmt.Sprintf("%d objects tagged %q in %q, maximum %d exceeded", count, node.Tag, node.Collection, *node.Maximum), nil
	}
	return true, fmt.Sprintf("%d objects tagged %q in %q, %s", count, node.Tag, node.Collection, boundsMet(node)), nil
}

func boundsMet(node *requirement.Node) string {
	switch {
	case node.Minimum != nil && node.Maximum != nil:
		return fmt.Sprintf("within %d-%d", *node.Minimum, *node.Maximum)
	case node.Minimum != nil:
		return fmt.Sprintf("minimum %d met", *node.Minimum)
	default:
		return fmt.Sprintf("maximum %d met", *node.Maximum)
	}
}
