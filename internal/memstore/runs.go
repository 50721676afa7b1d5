package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Fastgraph/internal/domain"
	"github.com/shaiso/Fastgraph/internal/repo"
)

// RunStore — in-memory реализация workflow.RunStore.
//
// Семантика совпадает с repo.RunRepo: значения нормализуются через
// JSON при записи, обе реализации возвращают repo.ErrNotFound.
type RunStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*domain.Run
}

// NewRunStore создаёт пустой RunStore.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[uuid.UUID]*domain.Run)}
}

// Create сохраняет новый run.
func (s *RunStore) Create(ctx context.Context, run *domain.Run) error {
	meta, err := cloneValue(run.Meta)
	if err != nil {
		return fmt.Errorf("clone meta: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return repo.ErrAlreadyExists
	}

	stored := *run
	stored.Meta = meta
	s.runs[run.ID] = &stored
	return nil
}

// Update изменяет только заданные поля и обновляет updated_at.
func (s *RunStore) Update(ctx context.Context, id uuid.UUID, upd domain.RunUpdate) error {
	result, err := cloneValue(upd.Result)
	if err != nil {
		return fmt.Errorf("clone result: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.runs[id]
	if !exists {
		return repo.ErrNotFound
	}

	if upd.Status != nil {
		run.Status = *upd.Status
	}
	if result != nil {
		run.Result = result
	}
	run.UpdatedAt = time.Now().UTC()
	return nil
}

// Get возвращает копию run.
func (s *RunStore) Get(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return nil, repo.ErrNotFound
	}

	out := *run
	return &out, nil
}

// List возвращает копии всех runs. Порядок не специфицирован.
func (s *RunStore) List(ctx context.Context) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, *run)
	}
	return runs, nil
}
