// Package repository keeps saved resumes. Only an in-memory implementation exists;
// nothing survives a restart.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/types"
)

// SavedResume is one saved document with its presentation settings
type SavedResume struct {
	ID       uuid.UUID                  `json:"id"`
	Content  json.RawMessage            `json:"content"`
	Settings types.PresentationSettings `json:"settings"`
	SavedAt  time.Time                  `json:"saved_at"`
}

// Repository saves and opens resumes.
type Repository interface {
	// Save stores a copy of doc and returns its new id.
	Save(ctx context.Context, doc types.ResumeDocument, settings types.PresentationSettings) (uuid.UUID, error)
	// Get returns the saved resume, or nil when id is unknown.
	Get(ctx context.Context, id uuid.UUID) (*SavedResume, error)
}

// MemoryRepository is a Repository backed by a map
type MemoryRepository struct {
	mu      sync.RWMutex
	resumes map[uuid.UUID]SavedResume
	now     func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		resumes: make(map[uuid.UUID]SavedResume),
		now:     time.Now,
	}
}

// Save implements Repository.
func (m *MemoryRepository) Save(ctx context.Context, doc types.ResumeDocument, settings types.PresentationSettings) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	content, err := json.Marshal(doc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode resume: %w", err)
	}

	saved := SavedResume{
		ID:       uuid.New(),
		Content:  content,
		Settings: settings,
		SavedAt:  m.now().UTC(),
	}

	m.mu.Lock()
	m.resumes[saved.ID] = saved
	m.mu.Unlock()
	return saved.ID, nil
}

// Get implements Repository.
func (m *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (*SavedResume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	saved, ok := m.resumes[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &saved, nil
}

// Len returns the number of saved resumes.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.resumes)
}
