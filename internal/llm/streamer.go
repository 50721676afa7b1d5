package llm

import "context"

// Message — одно сообщение истории диалога с ролью автора.
type Message struct {
	// Role — user, assistant или system.
	Role string `json:"role"`

	// Content — текст сообщения.
	Content string `json:"content"`
}

// Streamer — абстракция языковой модели.
//
// Stream получает упорядоченную историю диалога и вызывает emit для
// каждого фрагмента текста ответа по мере генерации. Последовательность
// фрагментов конечна; конкатенация всех фрагментов — полный ответ.
//
// Если emit возвращает ошибку, генерация прерывается и Stream
// возвращает эту ошибку. Отмена ctx также прерывает генерацию.
type Streamer interface {
	Stream(ctx context.Context, history []Message, emit func(chunk string) error) error
}
