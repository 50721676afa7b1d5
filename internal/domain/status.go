package domain

// RunStatus — статус выполнения run.
//
// Жизненный цикл:
//
//	running → completed
//	        ↘ failed
//	        ↘ cancelled
//
// running — единственный начальный статус; все остальные терминальные.
// Переходы из терминального статуса запрещены.
type RunStatus string

const (
	// RunStatusRunning — run создан и выполняется.
	RunStatusRunning RunStatus = "running"

	// RunStatusCompleted — run успешно завершён, result заполнен.
	RunStatusCompleted RunStatus = "completed"

	// RunStatusFailed — run завершился с ошибкой, result содержит описание.
	RunStatusFailed RunStatus = "failed"

	// RunStatusCancelled — run отменён до завершения.
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление RunStatus.
func (s RunStatus) String() string {
	return string(s)
}
