package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Fastgraph/internal/domain"
)

// Run DTOs

// CreateRunRequest — запрос на создание run.
type CreateRunRequest struct {
	Name    string         `json:"name,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// CreateRunResponse — ответ на создание run.
type CreateRunResponse struct {
	RunID uuid.UUID `json:"run_id"`
}

// RunResponse — ответ с run.
type RunResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Status    domain.RunStatus `json:"status"`
	Meta      map[string]any   `json:"meta,omitempty"`
	Result    map[string]any   `json:"result,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// RunFromDomain конвертирует domain.Run в RunResponse.
func RunFromDomain(r domain.Run) RunResponse {
	return RunResponse{
		ID:        r.ID,
		Name:      r.Name,
		Status:    r.Status,
		Meta:      r.Meta,
		Result:    r.Result,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Chat DTOs

// SendMessageRequest — запрос на отправку chat-сообщения.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessageResponse — ответ на постановку сообщения в очередь.
type SendMessageResponse struct {
	Status string `json:"status"`
}

// ChatMessageResponse — одно сообщение истории треда.
type ChatMessageResponse struct {
	ID        uuid.UUID   `json:"id"`
	ThreadID  string      `json:"thread_id"`
	Role      domain.Role `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// ChatMessageFromDomain конвертирует domain.ChatMessage в ChatMessageResponse.
func ChatMessageFromDomain(m domain.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// Artifact DTOs

// UploadArtifactResponse — ответ на загрузку артефакта.
type UploadArtifactResponse struct {
	ArtifactID string `json:"artifact_id"`
}

// RunArtifactsResponse — список артефактов run.
type RunArtifactsResponse struct {
	Artifacts []string `json:"artifacts"`
}
