package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Stage — одна упорядоченная единица работы оркестрации.
//
// Run получает входной payload run и выходы уже завершённых стадий
// (stage name → output). Возвращённый output попадает в checkpoint
// стадии и в node_update событие.
type Stage struct {
	// Name — метка стадии. Используется как ключ checkpoint
	// и как поле node в событиях.
	Name string

	// Run выполняет работу стадии. Может приостанавливаться
	// (I/O, ожидание); обязан уважать отмену ctx.
	Run func(ctx context.Context, payload map[string]any, prior map[string]any) (map[string]any, error)
}

// DefaultStages возвращает фиксированную последовательность стадий
// plan → execute → validate.
//
// delay — длительность "работы" каждой стадии (имитация
// вычислений/I/O); в тестах ставится минимальной.
func DefaultStages(delay time.Duration) []Stage {
	return []Stage{
		{
			Name: "plan",
			Run: func(ctx context.Context, payload, _ map[string]any) (map[string]any, error) {
				if err := wait(ctx, delay); err != nil {
					return nil, err
				}
				keys := make([]string, 0, len(payload))
				for k := range payload {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				return map[string]any{
					"summary":    "planned execution",
					"input_keys": keys,
				}, nil
			},
		},
		{
			Name: "execute",
			Run: func(ctx context.Context, payload, _ map[string]any) (map[string]any, error) {
				if err := wait(ctx, delay); err != nil {
					return nil, err
				}
				out := map[string]any{"processed": true}
				if input, ok := payload["input"]; ok {
					out["echo"] = input
				}
				return out, nil
			},
		},
		{
			Name: "validate",
			Run: func(ctx context.Context, _, prior map[string]any) (map[string]any, error) {
				if err := wait(ctx, delay); err != nil {
					return nil, err
				}
				if prior["execute"] == nil {
					return nil, fmt.Errorf("nothing to validate: execute produced no output")
				}
				return map[string]any{"ok": true}, nil
			},
		},
	}
}

// wait приостанавливает стадию на d, уважая отмену контекста.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
