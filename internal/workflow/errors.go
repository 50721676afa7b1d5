package workflow

import "errors"

// Ошибки оркестратора.
var (
	// ErrInvalidPayload — payload не прошёл валидацию; run не создан.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrRunFinished — run уже в терминальном статусе.
	ErrRunFinished = errors.New("run already finished")

	// ErrStageFailed — стадия завершилась с ошибкой.
	ErrStageFailed = errors.New("stage failed")
)
