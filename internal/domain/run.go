package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — экземпляр выполнения workflow.
//
// Run создаётся когда:
// - Пользователь отправляет workflow через API/CLI
// - Клиентское приложение вызывает Submit программно
//
// Каждый run выполняется ровно один раз и проходит фиксированную
// последовательность стадий (plan → execute → validate).
type Run struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// Name — отображаемое имя run, задаётся при создании.
	Name string `json:"name"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// Meta — произвольные структурированные входные данные.
	// Устанавливаются один раз при создании, далее неизменяемы.
	Meta map[string]any `json:"meta,omitempty"`

	// Result — структурированный результат выполнения.
	// Устанавливается ровно один раз при терминальном переходе
	// (completed или failed). Nil, пока run выполняется.
	Result map[string]any `json:"result,omitempty"`

	// CreatedAt — время создания run.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения статуса или результата.
	UpdatedAt time.Time `json:"updated_at"`
}

// RunUpdate — частичное обновление run.
//
// Изменяются только ненулевые поля; UpdatedAt обновляется хранилищем
// при любой мутации.
type RunUpdate struct {
	// Status — новый статус (nil — не менять).
	Status *RunStatus

	// Result — результат выполнения (nil — не менять).
	Result map[string]any
}

// IsFinished возвращает true, если run завершён (в любом терминальном статусе).
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// Duration возвращает продолжительность run от создания до последнего
// обновления статуса.
func (r *Run) Duration() time.Duration {
	if r.UpdatedAt.IsZero() {
		return 0
	}
	return r.UpdatedAt.Sub(r.CreatedAt)
}
