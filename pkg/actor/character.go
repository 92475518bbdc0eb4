package actor

import (
	"fmt"
	"maps"

	"github.com/jwebster45206/d20"
	"github.com/jwebster45206/prereq-engine/pkg/check"
	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

// Item is one object a character possesses: an inventory entry, a completed
// training, an achievement. Tags drive count_tag requirements; Props are
// free-form key-value pairs for has matchers.
type Item struct {
	ID    string            `json:"id"`
	Name  string            `json:"name,omitempty"`
	Tags  []string          `json:"tags,omitempty"`
	Props map[string]string `json:"props,omitempty"`
}

// CharacterSpec is the serializable specification for a character sheet.
// Collections are named groups of items ("inventory", "training",
// "achievements") that possession and tag-count requirements run against.
type CharacterSpec struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Class       string            `json:"class,omitempty"`
	Level       int               `json:"level,omitempty"`
	Pronouns    string            `json:"pronouns,omitempty"`
	Description string            `json:"description,omitempty"`
	HP          int               `json:"hp,omitempty"`
	MaxHP       int               `json:"max_hp,omitempty"`
	AC          int               `json:"ac,omitempty"`
	Attributes  map[string]int    `json:"attributes,omitempty"`
	Collections map[string][]Item `json:"collections,omitempty"`
}

// Character is the runtime representation of a character. Attribute state
// lives on the d20.Actor; possessions stay on the spec. Character satisfies
// the checking engine's subject interface.
type Character struct {
	Spec  *CharacterSpec
	Actor *d20.Actor
}

var _ check.Subject = (*Character)(nil)

// NewCharacterFromSpec creates a Character from a CharacterSpec.
// This is the preferred way to construct characters after loading from storage.
func NewCharacterFromSpec(spec *CharacterSpec) (*Character, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}

	// Level is surfaced as a regular trait alongside the sheet attributes
	allAttrs := make(map[string]int, len(spec.Attributes)+1)
	maps.Copy(allAttrs, spec.Attributes)
	if spec.Level > 0 {
		allAttrs["level"] = spec.Level
	}

	actor, err := d20.NewActor(spec.ID).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(allAttrs).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if spec.HP != spec.MaxHP && spec.HP > 0 {
		if err := actor.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &Character{Spec: spec, Actor: actor}, nil
}

// Ref returns the tagged subject reference for this character.
func (c *Character) Ref() requirement.SubjectRef {
	return requirement.SubjectRef{Kind: "character", ID: c.Spec.ID}
}

// GetTrait returns the current value of a named attribute.
func (c *Character) GetTrait(name string) (int, bool) {
	return c.Actor.Attribute(name)
}

// HasMatching reports whether any item in the named collection matches all
// of the given criteria. Unset criteria fields are ignored; matcher entries
// compare against the item's Props.
func (c *Character) HasMatching(collection string, criteria requirement.HasCriteria) (bool, error) {
	for _, item := range c.Spec.Collections[collection] {
		if itemMatches(item, criteria) {
			return true, nil
		}
	}
	return false, nil
}

// CountTagged returns how many items in the named collection carry the tag.
func (c *Character) CountTagged(collection, tag string) (int, error) {
	count := 0
	for _, item := range c.Spec.Collections[collection] {
		for _, t := range item.Tags {
			if t == tag {
				count++
				break
			}
		}
	}
	return count, nil
}

func itemMatches(item Item, criteria requirement.HasCriteria) bool {
	if criteria.ID != "" && item.ID != criteria.ID {
		return false
	}
	if criteria.Name != "" && item.Name != criteria.Name {
		return false
	}
	for key, want := range criteria.Matcher {
		if item.Props[key] != want {
			return false
		}
	}
	return true
}
