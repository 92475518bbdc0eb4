package check

import (
	"fmt"

	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

// Checker evaluates requirement trees against subjects using a registry of
// leaf evaluators. Each Check call is a pure function of (subject, tree);
// the only shared state is the registry, which is safe for concurrent use.
type Checker struct {
	registry *Registry
}

// NewChecker creates a checker backed by the given registry. A nil registry
// gets a fresh one with the built-in evaluators.
func NewChecker(registry *Registry) *Checker {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Checker{registry: registry}
}

// Registry returns the checker's evaluator registry, for registering custom
// requirement types during process setup.
func (c *Checker) Registry() *Registry {
	return c.registry
}

// Check evaluates a requirement tree against a subject and returns a result
// tree mirroring the input's shape. The tree is assumed to be validated;
// depth is already bounded, so plain recursion is safe.
//
// Check never fails: evaluator errors, panics, and unknown requirement
// types degrade to failed leaves while sibling and ancestor nodes continue
// to be evaluated. Combinator children are all evaluated, with no
// short-circuit, so callers always see the full breakdown.
func (c *Checker) Check(subject Subject, tree *requirement.Node) *Result {
	if tree == nil {
		return &Result{Passed: false, Message: "no requirements to evaluate"}
	}

	switch tree.Type {
	case requirement.TypeAny:
		result := &Result{Type: tree.Type, Children: make([]*Result, 0, len(tree.Children))}
		for _, child := range tree.Children {
			childResult := c.Check(subject, child)
			result.Children = append(result.Children, childResult)
			if childResult.Passed {
				result.Passed = true
			}
		}
		if result.Passed {
			result.Message = "at least one requirement met"
		} else {
			result.Message = "none of the requirements met"
		}
		return result

	case requirement.TypeAll:
		result := &Result{Type: tree.Type, Passed: true, Children: make([]*Result, 0, len(tree.Children))}
		for _, child := range tree.Children {
			childResult := c.Check(subject, child)
			result.Children = append(result.Children, childResult)
			if !childResult.Passed {
				result.Passed = false
			}
		}
		if result.Passed {
			result.Message = "all requirements met"
		} else {
			result.Message = "one or more requirements not met"
		}
		return result

	default:
		return c.checkLeaf(subject, tree)
	}
}

// checkLeaf dispatches a non-combinator node to its registered evaluator.
// Errors and panics are contained here so one bad evaluator cannot break
// evaluation outside its own node.
func (c *Checker) checkLeaf(subject Subject, node *requirement.Node) (result *Result) {
	result = &Result{Type: node.Type}

	defer func() {
		if r := recover(); r != nil {
			result.Passed = false
			result.Message = fmt.Sprintf("evaluator for %q panicked: %v", node.Type, r)
		}
	}()

	evaluator, ok := c.registry.lookup(string(node.Type))
	if !ok {
		result.Message = fmt.Sprintf("%s: %q", ErrUnknownRequirementType.Error(), node.Type)
		return result
	}

	passed, message, err := evaluator(subject, node)
	if err != nil {
		result.Passed = false
		result.Message = err.Error()
		return result
	}

	result.Passed = passed
	result.Message = message
	return result
}
