package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Fastgraph/internal/domain"
)

// CheckpointRepo — репозиторий снимков промежуточного состояния runs.
//
// Ключ — (run_id, step); повторный Save той же стадии перезаписывает
// её прежний снимок и делает его последним по порядку сохранения.
type CheckpointRepo struct {
	pool *pgxpool.Pool
}

// NewCheckpointRepo создаёт новый CheckpointRepo.
func NewCheckpointRepo(pool *pgxpool.Pool) *CheckpointRepo {
	return &CheckpointRepo{pool: pool}
}

// Save сохраняет снимок стадии. Запись атомарна: частично записанный
// снимок невозможен.
func (r *CheckpointRepo) Save(ctx context.Context, runID uuid.UUID, step string, state map[string]any) error {
	stateJSON, err := marshalJSON(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	query := `
		INSERT INTO checkpoints (run_id, step, state, saved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id, step) DO UPDATE
		SET state    = EXCLUDED.state,
		    saved_at = EXCLUDED.saved_at,
		    seq      = nextval(pg_get_serial_sequence('checkpoints', 'seq'))
	`
	_, err = r.pool.Exec(ctx, query, runID, step, stateJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Load возвращает снимок конкретной стадии run.
func (r *CheckpointRepo) Load(ctx context.Context, runID uuid.UUID, step string) (*domain.Checkpoint, error) {
	query := `
		SELECT run_id, step, state, saved_at
		FROM checkpoints
		WHERE run_id = $1 AND step = $2
	`
	return scanCheckpoint(r.pool.QueryRow(ctx, query, runID, step))
}

// LoadLatest возвращает последний по порядку сохранения снимок run.
func (r *CheckpointRepo) LoadLatest(ctx context.Context, runID uuid.UUID) (*domain.Checkpoint, error) {
	query := `
		SELECT run_id, step, state, saved_at
		FROM checkpoints
		WHERE run_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`
	return scanCheckpoint(r.pool.QueryRow(ctx, query, runID))
}

// ListByRun возвращает все снимки run в порядке сохранения.
func (r *CheckpointRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.Checkpoint, error) {
	query := `
		SELECT run_id, step, state, saved_at
		FROM checkpoints
		WHERE run_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []domain.Checkpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, err
		}
		checkpoints = append(checkpoints, *cp)
	}
	return checkpoints, rows.Err()
}

// scanCheckpoint сканирует одну строку в Checkpoint.
func scanCheckpoint(row pgx.Row) (*domain.Checkpoint, error) {
	var cp domain.Checkpoint
	var stateJSON []byte

	err := row.Scan(&cp.RunID, &cp.Step, &stateJSON, &cp.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan checkpoint: %w", err)
	}

	if stateJSON != nil {
		if err := json.Unmarshal(stateJSON, &cp.State); err != nil {
			return nil, fmt.Errorf("unmarshal state: %w", err)
		}
	}

	return &cp, nil
}
