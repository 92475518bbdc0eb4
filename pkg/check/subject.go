package check

import "github.com/jwebster45206/prereq-engine/pkg/requirement"

// Subject provides the minimal read-only interface the checking engine
// needs from a character (or any other evaluable entity). Implementations
// resolve their own concrete kind internally; the engine calls the same
// three operations regardless.
//
// All three must be pure reads with respect to the engine. Lookups may be
// backed by I/O; any error is caught at the node boundary and reported as
// a failed leaf, never as an aborted check.
type Subject interface {
	// GetTrait returns the numeric value of a named attribute, or false
	// if the subject has no such attribute.
	GetTrait(name string) (int, bool)

	// HasMatching reports whether the named collection holds an object
	// matching the given criteria.
	HasMatching(collection string, criteria requirement.HasCriteria) (bool, error)

	// CountTagged returns how many objects in the named collection carry
	// the given tag.
	CountTagged(collection, tag string) (int, error)
}
