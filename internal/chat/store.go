package chat

import (
	"context"

	"github.com/shaiso/Fastgraph/internal/domain"
)

// MessageStore — персистентное хранилище chat-сообщений.
//
// Реализации: repo.ChatRepo (Postgres), memstore.MessageStore (in-memory).
type MessageStore interface {
	// Append добавляет сообщение в конец истории треда.
	Append(ctx context.Context, msg *domain.ChatMessage) error

	// History возвращает все сообщения треда в порядке создания.
	// Для неизвестного треда возвращает пустой срез.
	History(ctx context.Context, threadID string) ([]domain.ChatMessage, error)
}
