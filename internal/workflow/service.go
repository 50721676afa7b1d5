package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Fastgraph/internal/domain"
	"github.com/shaiso/Fastgraph/internal/stream"
	"github.com/shaiso/Fastgraph/internal/taskqueue"
	"github.com/shaiso/Fastgraph/internal/telemetry"
)

// Default configuration values.
const (
	defaultStageDelay = 500 * time.Millisecond
	defaultRunName    = "run"
)

// defaultConfidence — оценка уверенности для успешного run.
const defaultConfidence = 0.95

// Service — оркестратор runs.
//
// Service управляет жизненным циклом каждого run:
//   - Создаёт запись в Run Store и ставит выполнение в очередь
//   - Проходит стадии по фиксированному порядку (plan → execute → validate)
//   - После каждой стадии пишет checkpoint и рассылает node_update
//   - Финализирует run (completed/failed/cancelled) и рассылает
//     ровно одно терминальное событие
//
// Обязательство вызывающего: на один run ID ставится не более одного
// выполнения. Submit соблюдает это сам (он единственный создаёт id);
// внутренняя взаимная блокировка повторного execute не предусмотрена.
type Service struct {
	// Stores
	runs        RunStore
	checkpoints CheckpointStore
	artifacts   ArtifactStore

	// Координация
	hub   *stream.Hub
	queue *taskqueue.Queue

	// Опциональный relay терминальных событий
	notifier Notifier

	// Стадии в фиксированном порядке выполнения
	stages []Stage

	// cancels — активные runs (runID → cancel). Отмена видна
	// выполняющейся или ещё не начавшейся задаче run.
	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc

	baseCtx context.Context
	logger  *slog.Logger
}

// Config — конфигурация Service.
type Config struct {
	// Stores
	Runs        RunStore
	Checkpoints CheckpointStore
	Artifacts   ArtifactStore

	// Координация
	Hub   *stream.Hub
	Queue *taskqueue.Queue

	// Notifier — опциональный получатель терминальных событий (может быть nil).
	Notifier Notifier

	// Stages — последовательность стадий (default: DefaultStages(StageDelay)).
	Stages []Stage

	// StageDelay — длительность работы стадии по умолчанию (default: 500ms).
	StageDelay time.Duration

	// BaseContext — родительский контекст выполнений; его отмена
	// отменяет все активные runs (default: context.Background()).
	BaseContext context.Context

	// Logger (default: slog.Default()).
	Logger *slog.Logger
}

// NewService создаёт новый Service.
func NewService(cfg Config) *Service {
	stageDelay := cfg.StageDelay
	if stageDelay <= 0 {
		stageDelay = defaultStageDelay
	}

	stages := cfg.Stages
	if stages == nil {
		stages = DefaultStages(stageDelay)
	}

	baseCtx := cfg.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		runs:        cfg.Runs,
		checkpoints: cfg.Checkpoints,
		artifacts:   cfg.Artifacts,
		hub:         cfg.Hub,
		queue:       cfg.Queue,
		notifier:    cfg.Notifier,
		stages:      stages,
		cancels:     make(map[uuid.UUID]context.CancelFunc),
		baseCtx:     baseCtx,
		logger:      logger,
	}
}

// Submit создаёт run и ставит его выполнение в очередь.
// Возвращает сразу, не дожидаясь выполнения.
//
// Невалидный payload отклоняется с ErrInvalidPayload — run при этом
// не создаётся.
func (s *Service) Submit(ctx context.Context, name string, payload map[string]any) (uuid.UUID, error) {
	if err := validatePayload(payload); err != nil {
		return uuid.Nil, err
	}

	if name == "" {
		name = defaultRunName
	}

	now := time.Now().UTC()
	run := &domain.Run{
		ID:        uuid.New(),
		Name:      name,
		Status:    domain.RunStatusRunning,
		Meta:      payload,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.runs.Create(ctx, run); err != nil {
		return uuid.Nil, fmt.Errorf("create run: %w", err)
	}

	runsStarted.Inc()

	// Контекст run живёт от baseCtx, а не от запроса: выполнение
	// переживает HTTP-запрос, но отменяется при shutdown и Cancel.
	runCtx, cancel := context.WithCancel(s.baseCtx)
	s.mu.Lock()
	s.cancels[run.ID] = cancel
	s.mu.Unlock()

	runID := run.ID
	s.queue.Enqueue(func(context.Context) error {
		defer func() {
			s.mu.Lock()
			delete(s.cancels, runID)
			s.mu.Unlock()
			cancel()
		}()
		s.execute(runCtx, runID, payload)
		return nil
	})

	return run.ID, nil
}

// Status возвращает текущее состояние run или repo.ErrNotFound.
func (s *Service) Status(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	return s.runs.Get(ctx, id)
}

// List возвращает все runs.
func (s *Service) List(ctx context.Context) ([]domain.Run, error) {
	return s.runs.List(ctx)
}

// Cancel сигнализирует отмену выполнения run.
//
// Отмена кооперативная: терминальный переход в cancelled выполняет
// сама задача run, наблюдая отменённый контекст. Для уже
// завершённого run возвращает ErrRunFinished.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	cancel, active := s.cancels[id]
	s.mu.Unlock()

	if active {
		cancel()
		return nil
	}

	run, err := s.runs.Get(ctx, id)
	if err != nil {
		return err
	}
	if run.IsFinished() {
		return ErrRunFinished
	}
	// Run существует, но не активен и не завершён: создан другим
	// процессом либо запись осталась после рестарта. Отменять нечего.
	return ErrRunFinished
}

// execute — тело одного run: стадии, checkpoints, события, финализация.
// Вызывается ровно один раз на run из очереди задач.
func (s *Service) execute(ctx context.Context, runID uuid.UUID, payload map[string]any) {
	logger := telemetry.WithRunID(s.logger, runID.String())
	topic := runID.String()

	logger.Info("run started", "stages", len(s.stages))
	s.hub.Broadcast(ctx, topic, stream.Event{
		Event: stream.EventStarted,
		RunID: runID.String(),
	})

	outputs := make(map[string]any, len(s.stages))

	for _, stage := range s.stages {
		if ctx.Err() != nil {
			s.finalizeCancelled(ctx, runID, logger)
			return
		}

		out, err := stage.Run(ctx, payload, outputs)
		if err != nil {
			if ctx.Err() != nil {
				s.finalizeCancelled(ctx, runID, logger)
				return
			}
			s.finalizeFailed(ctx, runID, fmt.Errorf("%w: stage %s: %v", ErrStageFailed, stage.Name, err), logger)
			return
		}

		// Checkpoint — диагностика; его ошибка не валит run.
		if err := s.checkpoints.Save(ctx, runID, stage.Name, out); err != nil {
			logger.Warn("checkpoint save failed", "step", stage.Name, "error", err)
		}

		s.hub.Broadcast(ctx, topic, stream.Event{
			Event:  stream.EventNodeUpdate,
			RunID:  runID.String(),
			Node:   stage.Name,
			Output: out,
		})

		outputs[stage.Name] = out
		logger.Debug("stage finished", "stage", stage.Name)
	}

	if ctx.Err() != nil {
		s.finalizeCancelled(ctx, runID, logger)
		return
	}

	artifactID, err := s.writeResultArtifact(runID, outputs)
	if err != nil {
		s.finalizeFailed(ctx, runID, fmt.Errorf("write result artifact: %w", err), logger)
		return
	}

	result := map[string]any{
		"summary":          fmt.Sprintf("finished %d stages", len(s.stages)),
		"confidence_score": defaultConfidence,
		"artifacts":        []any{artifactID},
	}

	s.finalize(ctx, runID, domain.RunStatusCompleted, result, stream.Event{
		Event:  stream.EventCompleted,
		RunID:  runID.String(),
		Result: result,
	}, logger)

	logger.Info("run completed", "artifact", artifactID)
}

// writeResultArtifact сохраняет выходы стадий как JSON-артефакт run.
func (s *Service) writeResultArtifact(runID uuid.UUID, outputs map[string]any) (string, error) {
	data, err := json.Marshal(outputs)
	if err != nil {
		return "", fmt.Errorf("marshal outputs: %w", err)
	}
	return s.artifacts.Put(runID, "result.json", data)
}

// finalizeFailed переводит run в failed с описанием ошибки в result.
func (s *Service) finalizeFailed(ctx context.Context, runID uuid.UUID, runErr error, logger *slog.Logger) {
	logger.Error("run failed", "error", runErr)

	result := map[string]any{"error": runErr.Error()}
	s.finalize(ctx, runID, domain.RunStatusFailed, result, stream.Event{
		Event: stream.EventFailed,
		RunID: runID.String(),
		Error: runErr.Error(),
	}, logger)
}

// finalizeCancelled переводит run в cancelled. Result не заполняется.
func (s *Service) finalizeCancelled(ctx context.Context, runID uuid.UUID, logger *slog.Logger) {
	logger.Info("run cancelled")

	s.finalize(ctx, runID, domain.RunStatusCancelled, nil, stream.Event{
		Event: stream.EventCancelled,
		RunID: runID.String(),
	}, logger)
}

// finalize выполняет терминальный переход: запись в Run Store, затем
// терминальное событие.
//
// Порядок фиксирован: сначала персист, потом рассылка — читатель
// Run Store никогда не видит терминальное событие раньше записи.
// Ошибка одной из сторон не блокирует другую.
func (s *Service) finalize(ctx context.Context, runID uuid.UUID, status domain.RunStatus, result map[string]any, event stream.Event, logger *slog.Logger) {
	// Контекст run к этому моменту может быть уже отменён —
	// финализация обязана дойти до хранилища.
	ctx = context.WithoutCancel(ctx)

	upd := domain.RunUpdate{Status: &status, Result: result}
	if err := s.runs.Update(ctx, runID, upd); err != nil {
		logger.Error("terminal run update failed", "status", status, "error", err)
	}

	s.hub.Broadcast(ctx, runID.String(), event)

	if s.notifier != nil {
		if run, err := s.runs.Get(ctx, runID); err == nil {
			s.notifier.RunFinished(ctx, run)
		}
	}

	runsFinished.WithLabelValues(string(status)).Inc()
}

// validatePayload проверяет, что payload сериализуем в JSON.
func validatePayload(payload map[string]any) error {
	if payload == nil {
		return nil
	}
	if _, err := json.Marshal(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
