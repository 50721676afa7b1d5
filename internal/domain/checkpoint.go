package domain

import (
	"time"

	"github.com/google/uuid"
)

// Checkpoint — снимок промежуточного состояния run на одной стадии.
//
// Checkpoints пишутся оркестратором после каждой стадии и служат
// для диагностики и инспекции. Они не участвуют в определении
// статуса run и хранятся бессрочно.
//
// Ключ — пара (RunID, Step). Повторное сохранение с тем же ключом
// перезаписывает предыдущий снимок этой стадии.
type Checkpoint struct {
	// RunID — run, к которому относится снимок.
	RunID uuid.UUID `json:"run_id"`

	// Step — метка стадии (plan, execute, validate).
	Step string `json:"step"`

	// State — произвольное структурированное состояние.
	State map[string]any `json:"state"`

	// SavedAt — время сохранения снимка.
	SavedAt time.Time `json:"saved_at"`
}
