package check

import (
	"errors"
	"sync"

	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

// ErrUnknownRequirementType is returned by registry lookups for tags that
// have no registered evaluator. The checking engine recovers it locally,
// converting the node into a failed leaf.
var ErrUnknownRequirementType = errors.New("unknown requirement type")

// Evaluator evaluates one leaf requirement node against a subject. It
// returns whether the requirement passed and a human-readable message
// explaining the outcome. A returned error (or a panic) is converted into
// a failed leaf by the engine.
type Evaluator func(subject Subject, node *requirement.Node) (bool, string, error)

// Registry maps requirement-type tags to evaluator functions. The built-in
// tags (trait, has, count_tag) are pre-registered; custom tags may be added
// at process start. Registration is last-wins. The registry is safe for
// concurrent use, so evaluators can be hot-swapped while checks are running.
type Registry struct {
	mu         sync.RWMutex
	evaluators map[string]Evaluator
}

// NewRegistry creates a registry with the built-in evaluators registered.
func NewRegistry() *Registry {
	r := &Registry{
		evaluators: make(map[string]Evaluator),
	}
	r.Register(string(requirement.TypeTrait), evaluateTrait)
	r.Register(string(requirement.TypeHas), evaluateHas)
	r.Register(string(requirement.TypeCountTag), evaluateCountTag)
	return r
}

// Register binds an evaluator to a tag, replacing any previous binding.
func (r *Registry) Register(tag string, evaluator Evaluator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluators[tag] = evaluator
}

// Unregister removes the evaluator for a tag, if any.
func (r *Registry) Unregister(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.evaluators, tag)
}

func (r *Registry) lookup(tag string) (Evaluator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.evaluators[tag]
	return ev, ok
}
