package memstore

import (
	"context"
	"sync"

	"github.com/shaiso/Fastgraph/internal/domain"
)

// MessageStore — in-memory реализация chat.MessageStore.
//
// Сообщения хранятся в порядке добавления; History возвращает их
// как есть, что совпадает с порядком created_at в Postgres-реализации.
type MessageStore struct {
	mu      sync.RWMutex
	threads map[string][]domain.ChatMessage
}

// NewMessageStore создаёт пустой MessageStore.
func NewMessageStore() *MessageStore {
	return &MessageStore{threads: make(map[string][]domain.ChatMessage)}
}

// Append добавляет сообщение в конец истории треда.
func (s *MessageStore) Append(ctx context.Context, msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads[msg.ThreadID] = append(s.threads[msg.ThreadID], *msg)
	return nil
}

// History возвращает копию истории треда в порядке создания.
// Для неизвестного треда — пустой срез.
func (s *MessageStore) History(ctx context.Context, threadID string) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.threads[threadID]
	out := make([]domain.ChatMessage, len(messages))
	copy(out, messages)
	return out, nil
}
