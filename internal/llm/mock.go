package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// defaultChunkDelay — пауза между фрагментами, имитирующая генерацию.
const defaultChunkDelay = 50 * time.Millisecond

// Mock — детерминированная реализация Streamer для разработки и тестов.
//
// Отвечает на последнее user-сообщение шаблонной фразой, отдавая её
// по словам с небольшой задержкой.
type Mock struct {
	// ChunkDelay — пауза между фрагментами (default: 50ms).
	ChunkDelay time.Duration

	// Reply — фиксированный ответ. Если пуст, ответ строится из
	// последнего сообщения пользователя.
	Reply string
}

// Stream реализует Streamer.
func (m *Mock) Stream(ctx context.Context, history []Message, emit func(chunk string) error) error {
	delay := m.ChunkDelay
	if delay <= 0 {
		delay = defaultChunkDelay
	}

	reply := m.Reply
	if reply == "" {
		reply = fmt.Sprintf("You said: %q. This is a mock response.", lastUserContent(history))
	}

	for _, word := range strings.Fields(reply) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		if err := emit(word + " "); err != nil {
			return err
		}
	}
	return nil
}

// lastUserContent возвращает текст последнего user-сообщения.
func lastUserContent(history []Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return history[i].Content
		}
	}
	return ""
}
