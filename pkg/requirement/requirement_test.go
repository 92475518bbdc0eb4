package requirement

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func buildAdvancementTree(t *testing.T) *Node {
	t.Helper()
	xp, err := Trait("experience_points", Bounds{Minimum: Int(50)})
	if err != nil {
		t.Fatalf("Failed to build trait: %v", err)
	}
	cert, err := Has("training", HasCriteria{Name: "Combat Certificate"})
	if err != nil {
		t.Fatalf("Failed to build has: %v", err)
	}
	kills, err := CountWithTag("achievements", "combat", Bounds{Minimum: Int(3)})
	if err != nil {
		t.Fatalf("Failed to build count_tag: %v", err)
	}
	either, err := AnyOf(cert, kills)
	if err != nil {
		t.Fatalf("Failed to build any: %v", err)
	}
	tree, err := AllOf(xp, either)
	if err != nil {
		t.Fatalf("Failed to build all: %v", err)
	}
	return tree
}

func TestNodeJSONRoundTrip(t *testing.T) {
	tree := buildAdvancementTree(t)
	if err := Validate(tree); err != nil {
		t.Fatalf("Tree should be valid: %v", err)
	}

	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Failed to marshal tree: %v", err)
	}

	var decoded Node
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal tree: %v", err)
	}

	if !reflect.DeepEqual(tree, &decoded) {
		t.Errorf("Round-trip mismatch:\noriginal: %+v\ndecoded:  %+v", tree, &decoded)
	}
}

func TestNodeUnmarshalRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "unknown key on root",
			data: `{"type":"trait","name":"strength","minimum":3,"sneaky":"value"}`,
		},
		{
			name: "unknown key on nested child",
			data: `{"type":"all","children":[{"type":"trait","name":"strength","minimum":3,"extra":1}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var node Node
			if err := json.Unmarshal([]byte(tt.data), &node); err == nil {
				t.Error("Expected strict decode to reject unknown keys")
			}
		})
	}
}

func TestNodeClone(t *testing.T) {
	tree := buildAdvancementTree(t)
	clone := tree.Clone()

	if !reflect.DeepEqual(tree, clone) {
		t.Fatal("Clone should be structurally equal to the original")
	}

	// Mutating the clone must not leak into the original.
	*clone.Children[0].Minimum = 99
	clone.Children[1].Children = nil

	if *tree.Children[0].Minimum != 50 {
		t.Error("Clone mutation leaked into original bounds")
	}
	if len(tree.Children[1].Children) != 2 {
		t.Error("Clone mutation leaked into original children")
	}
}

func TestPrerequisite(t *testing.T) {
	tree := buildAdvancementTree(t)
	p := NewPrerequisite("Veteran advancement", tree)

	if p.ID == uuid.Nil {
		t.Error("Prerequisite should get an ID")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("Prerequisite should be timestamped")
	}
	if p.Subject != nil {
		t.Error("Subject should be optional and default to nil")
	}

	p.Subject = &SubjectRef{Kind: "ability", ID: "whirlwind_strike"}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Failed to marshal prerequisite: %v", err)
	}

	var decoded Prerequisite
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal prerequisite: %v", err)
	}
	if decoded.Subject == nil || decoded.Subject.String() != "ability:whirlwind_strike" {
		t.Errorf("Unexpected subject ref: %+v", decoded.Subject)
	}
	if !reflect.DeepEqual(decoded.Requirements, tree) {
		t.Error("Requirements tree should survive the round trip")
	}
}
