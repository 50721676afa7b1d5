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

// checkpointKey — ключ снимка: (run, step).
type checkpointKey struct {
	runID uuid.UUID
	step  string
}

// CheckpointStore — in-memory реализация workflow.CheckpointStore.
type CheckpointStore struct {
	mu      sync.RWMutex
	data    map[checkpointKey]*domain.Checkpoint
	order   map[checkpointKey]int64
	nextSeq int64
}

// NewCheckpointStore создаёт пустой CheckpointStore.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		data:  make(map[checkpointKey]*domain.Checkpoint),
		order: make(map[checkpointKey]int64),
	}
}

// Save сохраняет снимок стадии; повторное сохранение перезаписывает
// прежний снимок этой стадии и делает его последним по порядку.
func (s *CheckpointStore) Save(ctx context.Context, runID uuid.UUID, step string, state map[string]any) error {
	cloned, err := cloneValue(state)
	if err != nil {
		return fmt.Errorf("clone state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := checkpointKey{runID: runID, step: step}
	s.nextSeq++
	s.data[key] = &domain.Checkpoint{
		RunID:   runID,
		Step:    step,
		State:   cloned,
		SavedAt: time.Now().UTC(),
	}
	s.order[key] = s.nextSeq
	return nil
}

// Load возвращает снимок конкретной стадии.
func (s *CheckpointStore) Load(ctx context.Context, runID uuid.UUID, step string) (*domain.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, exists := s.data[checkpointKey{runID: runID, step: step}]
	if !exists {
		return nil, repo.ErrNotFound
	}

	out := *cp
	return &out, nil
}

// LoadLatest возвращает последний по порядку сохранения снимок run.
func (s *CheckpointStore) LoadLatest(ctx context.Context, runID uuid.UUID) (*domain.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Checkpoint
	var latestSeq int64
	for key, cp := range s.data {
		if key.runID != runID {
			continue
		}
		if seq := s.order[key]; seq > latestSeq {
			latestSeq = seq
			latest = cp
		}
	}

	if latest == nil {
		return nil, repo.ErrNotFound
	}

	out := *latest
	return &out, nil
}

// Steps возвращает метки сохранённых стадий run в порядке сохранения.
func (s *CheckpointStore) Steps(runID uuid.UUID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		step string
		seq  int64
	}
	var entries []entry
	for key, seq := range s.order {
		if key.runID == runID {
			entries = append(entries, entry{step: key.step, seq: seq})
		}
	}

	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].seq < entries[j-1].seq; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}

	steps := make([]string, len(entries))
	for i, e := range entries {
		steps[i] = e.step
	}
	return steps
}
