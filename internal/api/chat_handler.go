package api

import (
	"encoding/json"
	"net/http"
)

// SendMessage ставит обработку chat-сообщения в очередь.
// POST /api/v1/chat/{thread_id}/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("thread_id")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if err := h.chat.Send(r.Context(), threadID, req.Message); HandleServiceError(w, h.logger, err, "") {
		return
	}

	JSON(w, http.StatusAccepted, DataResponse{Data: SendMessageResponse{Status: "queued"}})
}

// GetHistory возвращает историю chat-треда.
// GET /api/v1/chat/{thread_id}/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("thread_id")

	history, err := h.chat.History(r.Context(), threadID)
	if HandleServiceError(w, h.logger, err, "") {
		return
	}

	result := make([]ChatMessageResponse, len(history))
	for i, msg := range history {
		result[i] = ChatMessageFromDomain(msg)
	}

	List(w, result, len(result))
}
