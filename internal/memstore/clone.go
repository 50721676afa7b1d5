package memstore

import (
	"encoding/json"
	"fmt"
)

// cloneValue возвращает глубокую копию структурированного значения,
// нормализованную через JSON — то же множество типов (float64, string,
// bool, nil, []any, map[string]any), что и при чтении из jsonb.
// Благодаря этому in-memory и Postgres хранилища неразличимы для
// round-trip проверок.
func cloneValue(m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal value: %w", err)
	}
	return out, nil
}
