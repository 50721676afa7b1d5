package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/shaiso/Fastgraph/internal/domain"
)

// RunStore — персистентное хранилище runs.
//
// Реализации: repo.RunRepo (Postgres), memstore.RunStore (in-memory).
// Update и Get возвращают repo.ErrNotFound для неизвестного id.
type RunStore interface {
	// Create сохраняет новый run. Ровно одна запись на id.
	Create(ctx context.Context, run *domain.Run) error

	// Update изменяет только заданные в upd поля и обновляет updated_at.
	Update(ctx context.Context, id uuid.UUID, upd domain.RunUpdate) error

	// Get возвращает текущее состояние run.
	Get(ctx context.Context, id uuid.UUID) (*domain.Run, error)

	// List возвращает все созданные runs. Порядок не специфицирован.
	List(ctx context.Context) ([]domain.Run, error)
}

// CheckpointStore — хранилище снимков промежуточного состояния.
//
// Снимки пишутся по ключу (run, step); повторное сохранение той же
// стадии перезаписывает её прежний снимок. Load и LoadLatest
// возвращают repo.ErrNotFound при отсутствии снимка.
type CheckpointStore interface {
	// Save атомарно сохраняет снимок стадии.
	Save(ctx context.Context, runID uuid.UUID, step string, state map[string]any) error

	// Load возвращает снимок конкретной стадии.
	Load(ctx context.Context, runID uuid.UUID, step string) (*domain.Checkpoint, error)

	// LoadLatest возвращает последний по порядку сохранения снимок run.
	LoadLatest(ctx context.Context, runID uuid.UUID) (*domain.Checkpoint, error)
}

// ArtifactStore — хранилище байтовых артефактов.
// Оркестратору нужна только запись.
type ArtifactStore interface {
	// Put сохраняет именованные байты под run, возвращает artifact ID.
	Put(runID uuid.UUID, name string, data []byte) (string, error)
}

// Notifier — опциональный внешний получатель терминальных событий run
// (например, AMQP relay). Вызов best-effort: ошибка логируется
// реализацией и не влияет на run.
type Notifier interface {
	RunFinished(ctx context.Context, run *domain.Run)
}
