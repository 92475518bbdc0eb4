package check

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

func TestNewRecord(t *testing.T) {
	subject := &mockSubject{traits: map[string]int{"strength": 2}}
	checker := NewChecker(nil)

	tree, err := requirement.AllOf(
		mustTrait(t, "strength", requirement.Bounds{Minimum: requirement.Int(3)}),
	)
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}

	result := checker.Check(subject, tree)
	ref := requirement.SubjectRef{Kind: "character", ID: "pirate_captain"}
	record := NewRecord(ref, tree, result)

	if record.ID == uuid.Nil {
		t.Error("Record should get an ID")
	}
	if record.Subject != ref {
		t.Errorf("Unexpected subject ref: %+v", record.Subject)
	}
	if record.Passed {
		t.Error("Record should capture the failed outcome")
	}
	if record.CheckedAt.IsZero() {
		t.Error("Record should be timestamped")
	}
	if len(record.FailureReasons) != 1 {
		t.Fatalf("Expected 1 failure reason, got %v", record.FailureReasons)
	}

	// The snapshot must be insulated from later edits to the live tree.
	*tree.Children[0].Minimum = 1
	if *record.Requirements.Children[0].Minimum != 3 {
		t.Error("Record snapshot should not be affected by edits to the source tree")
	}
}
