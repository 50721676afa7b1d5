package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Fastgraph/internal/domain"
	"github.com/shaiso/Fastgraph/internal/llm"
	"github.com/shaiso/Fastgraph/internal/stream"
	"github.com/shaiso/Fastgraph/internal/taskqueue"
	"github.com/shaiso/Fastgraph/internal/telemetry"
)

// Service — обработка chat-сообщений с потоковой выдачей ответа.
//
// Send ставит обработку в очередь задач и возвращает сразу.
// Обработка: сохранить сообщение пользователя → загрузить историю
// треда → стримить фрагменты ответа модели, рассылая token-событие
// на топик треда для каждого → сохранить полный ответ одним
// сообщением → разослать completed.
type Service struct {
	messages MessageStore
	hub      *stream.Hub
	queue    *taskqueue.Queue
	streamer llm.Streamer
	logger   *slog.Logger
}

// Config — конфигурация Service.
type Config struct {
	Messages MessageStore
	Hub      *stream.Hub
	Queue    *taskqueue.Queue
	Streamer llm.Streamer

	// Logger (default: slog.Default()).
	Logger *slog.Logger
}

// NewService создаёт новый chat Service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		messages: cfg.Messages,
		hub:      cfg.Hub,
		queue:    cfg.Queue,
		streamer: cfg.Streamer,
		logger:   logger,
	}
}

// Send ставит обработку сообщения пользователя в очередь.
// Подписчики топика threadID получат token-события по мере генерации.
func (s *Service) Send(ctx context.Context, threadID, text string) error {
	if threadID == "" {
		return ErrEmptyThread
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	s.queue.Enqueue(func(qctx context.Context) error {
		return s.process(qctx, threadID, text)
	})
	return nil
}

// History возвращает историю треда в порядке создания.
func (s *Service) History(ctx context.Context, threadID string) ([]domain.ChatMessage, error) {
	if threadID == "" {
		return nil, ErrEmptyThread
	}
	return s.messages.History(ctx, threadID)
}

// process — тело одной chat-задачи. Ошибка возвращается очереди,
// которая её логирует; тред при этом остаётся пригодным для
// следующих сообщений.
func (s *Service) process(ctx context.Context, threadID, text string) error {
	logger := telemetry.WithThreadID(s.logger, threadID)

	if err := s.append(ctx, threadID, domain.RoleUser, text); err != nil {
		return fmt.Errorf("save user message: %w", err)
	}

	history, err := s.messages.History(ctx, threadID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	var full strings.Builder
	err = s.streamer.Stream(ctx, toLLMHistory(history), func(chunk string) error {
		full.WriteString(chunk)
		s.hub.Broadcast(ctx, threadID, stream.Event{
			Event:    stream.EventToken,
			ThreadID: threadID,
			Content:  chunk,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("stream response: %w", err)
	}

	if err := s.append(ctx, threadID, domain.RoleAssistant, full.String()); err != nil {
		return fmt.Errorf("save assistant message: %w", err)
	}

	s.hub.Broadcast(ctx, threadID, stream.Event{
		Event:    stream.EventCompleted,
		ThreadID: threadID,
	})

	chatMessages.Inc()
	logger.Debug("chat message processed", "response_len", full.Len())
	return nil
}

// append сохраняет одно сообщение треда.
func (s *Service) append(ctx context.Context, threadID string, role domain.Role, content string) error {
	return s.messages.Append(ctx, &domain.ChatMessage{
		ID:        uuid.New(),
		ThreadID:  threadID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
}

// toLLMHistory конвертирует историю треда в формат модели.
func toLLMHistory(history []domain.ChatMessage) []llm.Message {
	out := make([]llm.Message, len(history))
	for i, m := range history {
		out[i] = llm.Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}
