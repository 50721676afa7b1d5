package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role — роль автора сообщения в chat-диалоге.
type Role string

const (
	// RoleUser — сообщение пользователя.
	RoleUser Role = "user"

	// RoleAssistant — ответ модели.
	RoleAssistant Role = "assistant"

	// RoleSystem — системная инструкция.
	RoleSystem Role = "system"
)

// ChatMessage — одно сообщение в chat-треде.
//
// Сообщения упорядочены по CreatedAt внутри треда; история треда —
// это все его сообщения в порядке создания.
type ChatMessage struct {
	// ID — уникальный идентификатор сообщения.
	ID uuid.UUID `json:"id"`

	// ThreadID — тред, к которому относится сообщение.
	ThreadID string `json:"thread_id"`

	// Role — автор сообщения (user / assistant / system).
	Role Role `json:"role"`

	// Content — текст сообщения.
	Content string `json:"content"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}
