package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/prereq-engine/pkg/actor"
	"github.com/jwebster45206/prereq-engine/pkg/check"
	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu         sync.RWMutex
	prereqs    map[uuid.UUID]*requirement.Prerequisite
	records    map[string][]*check.Record
	characters map[string]*actor.CharacterSpec
	pingError  error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		prereqs:    make(map[uuid.UUID]*requirement.Prerequisite),
		records:    make(map[string][]*check.Record),
		characters: make(map[string]*actor.CharacterSpec),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SavePrerequisite mocks saving a prerequisite
func (m *MockStorage) SavePrerequisite(ctx context.Context, p *requirement.Prerequisite) error {
	if p == nil {
		return errors.New("prerequisite cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prereqs[p.ID] = p
	return nil
}

// GetPrerequisite mocks loading a prerequisite
func (m *MockStorage) GetPrerequisite(ctx context.Context, id uuid.UUID) (*requirement.Prerequisite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, exists := m.prereqs[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return p, nil
}

// ListPrerequisites mocks listing prerequisites
func (m *MockStorage) ListPrerequisites(ctx context.Context) ([]*requirement.Prerequisite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*requirement.Prerequisite, 0, len(m.prereqs))
	for _, p := range m.prereqs {
		result = append(result, p)
	}
	return result, nil
}

// DeletePrerequisite mocks deleting a prerequisite
func (m *MockStorage) DeletePrerequisite(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prereqs, id)
	return nil
}

// SaveCheckRecord mocks saving a check record
func (m *MockStorage) SaveCheckRecord(ctx context.Context, record *check.Record) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := record.Subject.String()
	m.records[key] = append(m.records[key], record)
	return nil
}

// ListCheckRecords mocks listing check records for a subject
func (m *MockStorage) ListCheckRecords(ctx context.Context, subject requirement.SubjectRef) ([]*check.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := m.records[subject.String()]
	result := make([]*check.Record, len(records))
	copy(result, records)
	return result, nil
}

// GetCharacterSpec mocks getting a character spec by ID
func (m *MockStorage) GetCharacterSpec(ctx context.Context, characterID string) (*actor.CharacterSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	spec, exists := m.characters[characterID]
	if !exists {
		return nil, ErrCharacterNotFound
	}
	return spec, nil
}

// ListCharacters mocks listing characters
func (m *MockStorage) ListCharacters(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]string, 0, len(m.characters))
	for id := range m.characters {
		result = append(result, id)
	}
	return result, nil
}

// AddCharacterSpec adds a character spec to the mock storage (for testing)
func (m *MockStorage) AddCharacterSpec(characterID string, spec *actor.CharacterSpec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.characters[characterID] = spec
}
