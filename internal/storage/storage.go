package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/prereq-engine/pkg/actor"
	"github.com/jwebster45206/prereq-engine/pkg/check"
	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

// ErrCharacterNotFound is returned when no character sheet exists for an ID.
var ErrCharacterNotFound = errors.New("character not found")

// Storage defines a unified interface for all storage operations.
// This interface combines prerequisite and check-record persistence (Redis)
// with character sheet loading (filesystem).
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Prerequisite operations (Redis-backed). Trees must be validated
	// before they reach SavePrerequisite.
	SavePrerequisite(ctx context.Context, p *requirement.Prerequisite) error
	GetPrerequisite(ctx context.Context, id uuid.UUID) (*requirement.Prerequisite, error)
	ListPrerequisites(ctx context.Context) ([]*requirement.Prerequisite, error)
	DeletePrerequisite(ctx context.Context, id uuid.UUID) error

	// Check record operations (Redis-backed). Records are append-only.
	SaveCheckRecord(ctx context.Context, record *check.Record) error
	ListCheckRecords(ctx context.Context, subject requirement.SubjectRef) ([]*check.Record, error)

	// Character operations (filesystem-backed, returns CharacterSpec not Character)
	// Use actor.NewCharacterFromSpec to build the full Character from the returned spec
	GetCharacterSpec(ctx context.Context, characterID string) (*actor.CharacterSpec, error)
	ListCharacters(ctx context.Context) ([]string, error)
}
