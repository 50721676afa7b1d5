package stream

// EventType — тип события, доставляемого подписчикам.
type EventType string

// Типы событий.
const (
	// EventStarted — оркестратор начал выполнение run.
	EventStarted EventType = "started"

	// EventNodeUpdate — стадия run завершилась, Output содержит её результат.
	EventNodeUpdate EventType = "node_update"

	// EventCompleted — run (или chat-ответ) успешно завершён.
	EventCompleted EventType = "completed"

	// EventFailed — run завершился с ошибкой.
	EventFailed EventType = "failed"

	// EventCancelled — run отменён.
	EventCancelled EventType = "cancelled"

	// EventToken — очередной фрагмент текста chat-ответа.
	EventToken EventType = "token"
)

// Event — событие, рассылаемое по топику.
//
// Одна запись с тегом Event; остальные поля заполняются в зависимости
// от типа. token-события несут инкрементальный текст chat-ответа,
// остальные — прогресс workflow.
type Event struct {
	// Event — тег типа события.
	Event EventType `json:"event"`

	// RunID — идентификатор run (workflow-события).
	RunID string `json:"run_id,omitempty"`

	// ThreadID — идентификатор chat-треда (token-события).
	ThreadID string `json:"thread_id,omitempty"`

	// Node — имя стадии (node_update).
	Node string `json:"node,omitempty"`

	// Output — результат стадии (node_update).
	Output map[string]any `json:"output,omitempty"`

	// Result — итоговый результат run (completed).
	Result map[string]any `json:"result,omitempty"`

	// Error — описание ошибки (failed).
	Error string `json:"error,omitempty"`

	// Content — фрагмент текста (token).
	Content string `json:"content,omitempty"`
}
