package chat

import "errors"

// Ошибки chat-сервиса.
var (
	// ErrEmptyThread — не указан thread ID.
	ErrEmptyThread = errors.New("empty thread id")

	// ErrEmptyMessage — пустой текст сообщения.
	ErrEmptyMessage = errors.New("empty message")
)
