package check

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

// mockSubject implements Subject for testing
type mockSubject struct {
	traits      map[string]int
	collections map[string][]mockItem
	lookupErr   error
}

type mockItem struct {
	id   string
	name string
	tags []string
}

func (m *mockSubject) GetTrait(name string) (int, bool) {
	v, ok := m.traits[name]
	return v, ok
}

func (m *mockSubject) HasMatching(collection string, criteria requirement.HasCriteria) (bool, error) {
	if m.lookupErr != nil {
		return false, m.lookupErr
	}
	for _, item := range m.collections[collection] {
		if criteria.ID != "" && item.id != criteria.ID {
			continue
		}
		if criteria.Name != "" && item.name != criteria.Name {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (m *mockSubject) CountTagged(collection, tag string) (int, error) {
	if m.lookupErr != nil {
		return 0, m.lookupErr
	}
	count := 0
	for _, item := range m.collections[collection] {
		for _, t := range item.tags {
			if t == tag {
				count++
				break
			}
		}
	}
	return count, nil
}

func mustTrait(t *testing.T, name string, bounds requirement.Bounds) *requirement.Node {
	t.Helper()
	node, err := requirement.Trait(name, bounds)
	if err != nil {
		t.Fatalf("Failed to build trait: %v", err)
	}
	return node
}

func TestCheckSimpleTraitGate(t *testing.T) {
	subject := &mockSubject{traits: map[string]int{"strength": 3}}
	checker := NewChecker(nil)

	node := mustTrait(t, "strength", requirement.Bounds{Minimum: requirement.Int(3)})
	result := checker.Check(subject, node)

	if !result.Passed {
		t.Errorf("Expected pass, got fail: %s", result.Message)
	}
	if !strings.Contains(result.Message, "minimum 3 met") {
		t.Errorf("Message should indicate threshold met, got %q", result.Message)
	}
}

func TestCheckTraitVariants(t *testing.T) {
	subject := &mockSubject{traits: map[string]int{"strength": 3, "corruption": 7}}
	checker := NewChecker(nil)

	tests := []struct {
		name       string
		trait      string
		bounds     requirement.Bounds
		wantPassed bool
	}{
		{"minimum met", "strength", requirement.Bounds{Minimum: requirement.Int(2)}, true},
		{"minimum not met", "strength", requirement.Bounds{Minimum: requirement.Int(4)}, false},
		{"maximum met", "corruption", requirement.Bounds{Maximum: requirement.Int(10)}, true},
		{"maximum exceeded", "corruption", requirement.Bounds{Maximum: requirement.Int(5)}, false},
		{"exact met", "strength", requirement.Bounds{Exact: requirement.Int(3)}, true},
		{"exact not met", "strength", requirement.Bounds{Exact: requirement.Int(4)}, false},
		{"range met", "strength", requirement.Bounds{Minimum: requirement.Int(1), Maximum: requirement.Int(5)}, true},
		{"absent trait", "agility", requirement.Bounds{Minimum: requirement.Int(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.Check(subject, mustTrait(t, tt.trait, tt.bounds))
			if result.Passed != tt.wantPassed {
				t.Errorf("Expected passed=%v, got %v (%s)", tt.wantPassed, result.Passed, result.Message)
			}
			if result.Message == "" {
				t.Error("Leaf results should always carry a message")
			}
		})
	}
}

func TestCheckAllNoShortCircuit(t *testing.T) {
	subject := &mockSubject{traits: map[string]int{"strength": 3}}
	checker := NewChecker(nil)

	passing := mustTrait(t, "strength", requirement.Bounds{Minimum: requirement.Int(3)})
	failing := mustTrait(t, "strength", requirement.Bounds{Minimum: requirement.Int(9)})

	all, err := requirement.AllOf(passing, failing)
	if err != nil {
		t.Fatalf("Failed to build all: %v", err)
	}

	result := checker.Check(subject, all)
	if result.Passed {
		t.Error("all_of with a failing child should fail")
	}
	if len(result.Children) != 2 {
		t.Fatalf("Expected 2 child results (no short-circuit), got %d", len(result.Children))
	}
	if !result.Children[0].Passed || result.Children[1].Passed {
		t.Errorf("Expected first child passed and second failed, got %v and %v",
			result.Children[0].Passed, result.Children[1].Passed)
	}
}

func TestCheckAnyNoShortCircuit(t *testing.T) {
	subject := &mockSubject{traits: map[string]int{"strength": 3}}
	checker := NewChecker(nil)

	failing := mustTrait(t, "strength", requirement.Bounds{Minimum: requirement.Int(9)})
	passing := mustTrait(t, "strength", requirement.Bounds{Minimum: requirement.Int(3)})

	anyNode, err := requirement.AnyOf(failing, passing)
	if err != nil {
		t.Fatalf("Failed to build any: %v", err)
	}

	result := checker.Check(subject, anyNode)
	if !result.Passed {
		t.Error("any_of with a passing child should pass")
	}
	if len(result.Children) != 2 {
		t.Fatalf("Expected 2 child results (no short-circuit), got %d", len(result.Children))
	}
	if result.Children[0].Passed || !result.Children[1].Passed {
		t.Errorf("Expected first child failed and second passed, got %v and %v",
			result.Children[0].Passed, result.Children[1].Passed)
	}
}

// Composite advancement scenario: xp gate passes, but neither the training
// certificate nor enough tagged achievements are present, so the any_of
// branch drags the whole check down.
func TestCheckCompositeAdvancement(t *testing.T) {
	subject := &mockSubject{
		traits: map[string]int{"experience_points": 60},
		collections: map[string][]mockItem{
			"achievements": {
				{id: "first_blood", tags: []string{"combat"}},
				{id: "duelist", tags: []string{"combat"}},
				{id: "scholar", tags: []string{"lore"}},
			},
		},
	}
	checker := NewChecker(nil)

	xp := mustTrait(t, "experience_points", requirement.Bounds{Minimum: requirement.Int(50)})
	cert, err := requirement.Has("training", requirement.HasCriteria{Name: "Combat Certificate"})
	if err != nil {
		t.Fatalf("Failed to build has: %v", err)
	}
	kills, err := requirement.CountWithTag("achievements", "combat", requirement.Bounds{Minimum: requirement.Int(3)})
	if err != nil {
		t.Fatalf("Failed to build count_tag: %v", err)
	}
	either, err := requirement.AnyOf(cert, kills)
	if err != nil {
		t.Fatalf("Failed to build any: %v", err)
	}
	tree, err := requirement.AllOf(xp, either)
	if err != nil {
		t.Fatalf("Failed to build all: %v", err)
	}

	result := checker.Check(subject, tree)
	if result.Passed {
		t.Error("Composite advancement should fail: 2 tagged achievements < 3 and no certificate")
	}
	if !result.Children[0].Passed {
		t.Errorf("Experience points leaf should pass: %s", result.Children[0].Message)
	}
	anyResult := result.Children[1]
	if anyResult.Passed || len(anyResult.Children) != 2 {
		t.Errorf("any_of branch should fail with both children reported, got %+v", anyResult)
	}

	reasons := result.FailureReasons()
	if len(reasons) != 2 {
		t.Errorf("Expected 2 failure reasons (both any_of leaves), got %v", reasons)
	}
}

func TestCheckIdempotence(t *testing.T) {
	subject := &mockSubject{
		traits: map[string]int{"experience_points": 60},
		collections: map[string][]mockItem{
			"achievements": {{id: "first_blood", tags: []string{"combat"}}},
		},
	}
	checker := NewChecker(nil)

	kills, err := requirement.CountWithTag("achievements", "combat", requirement.Bounds{Minimum: requirement.Int(3)})
	if err != nil {
		t.Fatalf("Failed to build count_tag: %v", err)
	}
	tree, err := requirement.AllOf(
		mustTrait(t, "experience_points", requirement.Bounds{Minimum: requirement.Int(50)}),
		kills,
	)
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}

	first := checker.Check(subject, tree)
	second := checker.Check(subject, tree)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Repeated checks against unchanged state should be identical:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCheckRegistryIsolation(t *testing.T) {
	subject := &mockSubject{traits: map[string]int{"strength": 3, "resonance": 7}}

	registry := NewRegistry()
	registry.Register("resonance_match", func(s Subject, node *requirement.Node) (bool, string, error) {
		v, ok := s.GetTrait("resonance")
		return ok && v > 5, "resonance matched", nil
	})
	checker := NewChecker(registry)

	tree := &requirement.Node{Type: requirement.TypeAll, Children: []*requirement.Node{
		{Type: requirement.TypeTrait, Name: "strength", Minimum: requirement.Int(3)},
		{Type: "resonance_match"},
		{Type: "nonexistent"},
	}}

	result := checker.Check(subject, tree)
	if result.Passed {
		t.Error("Tree containing an unregistered type should fail overall")
	}
	if !result.Children[0].Passed {
		t.Errorf("Passing trait sibling should still report passed: %s", result.Children[0].Message)
	}
	if !result.Children[1].Passed {
		t.Errorf("Custom evaluator should pass: %s", result.Children[1].Message)
	}
	unknown := result.Children[2]
	if unknown.Passed {
		t.Error("Unregistered type should produce a failed leaf")
	}
	if !strings.Contains(unknown.Message, ErrUnknownRequirementType.Error()) {
		t.Errorf("Unregistered leaf message should indicate the unknown type, got %q", unknown.Message)
	}
}

func TestCheckEvaluatorErrorIsContained(t *testing.T) {
	subject := &mockSubject{
		traits:    map[string]int{"strength": 3},
		lookupErr: errors.New("inventory store unreachable"),
	}
	checker := NewChecker(nil)

	cert, err := requirement.Has("training", requirement.HasCriteria{Name: "Combat Certificate"})
	if err != nil {
		t.Fatalf("Failed to build has: %v", err)
	}
	tree, err := requirement.AllOf(
		mustTrait(t, "strength", requirement.Bounds{Minimum: requirement.Int(3)}),
		cert,
	)
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}

	result := checker.Check(subject, tree)
	if result.Passed {
		t.Error("Tree with a failing lookup should fail overall")
	}
	if !result.Children[0].Passed {
		t.Error("Sibling of the erroring node should still be evaluated")
	}
	if result.Children[1].Passed || !strings.Contains(result.Children[1].Message, "inventory store unreachable") {
		t.Errorf("Erroring node should become a failed leaf carrying the error, got %+v", result.Children[1])
	}
}

func TestCheckEvaluatorPanicIsContained(t *testing.T) {
	subject := &mockSubject{traits: map[string]int{"strength": 3}}

	registry := NewRegistry()
	registry.Register("explosive", func(s Subject, node *requirement.Node) (bool, string, error) {
		panic("boom")
	})
	checker := NewChecker(registry)

	tree := &requirement.Node{Type: requirement.TypeAll, Children: []*requirement.Node{
		{Type: "explosive"},
		{Type: requirement.TypeTrait, Name: "strength", Minimum: requirement.Int(3)},
	}}

	result := checker.Check(subject, tree)
	if result.Passed {
		t.Error("Tree with a panicking evaluator should fail overall")
	}
	if result.Children[0].Passed || !strings.Contains(result.Children[0].Message, "panicked") {
		t.Errorf("Panicking node should become a failed leaf, got %+v", result.Children[0])
	}
	if !result.Children[1].Passed {
		t.Error("Sibling of the panicking node should still be evaluated")
	}
}

func TestRegistryLastWinsAndUnregister(t *testing.T) {
	registry := NewRegistry()
	registry.Register("custom", func(s Subject, node *requirement.Node) (bool, string, error) {
		return false, "first", nil
	})
	registry.Register("custom", func(s Subject, node *requirement.Node) (bool, string, error) {
		return true, "second", nil
	})

	checker := NewChecker(registry)
	subject := &mockSubject{}
	node := &requirement.Node{Type: "custom"}

	result := checker.Check(subject, node)
	if !result.Passed || result.Message != "second" {
		t.Errorf("Last registration should win, got %+v", result)
	}

	registry.Unregister("custom")
	result = checker.Check(subject, node)
	if result.Passed || !strings.Contains(result.Message, ErrUnknownRequirementType.Error()) {
		t.Errorf("Unregistered tag should fail lookup, got %+v", result)
	}
}
