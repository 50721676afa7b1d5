package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// CreateRun создаёт run и ставит его выполнение в очередь.
// POST /api/v1/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	runID, err := h.workflow.Submit(r.Context(), req.Name, req.Payload)
	if HandleServiceError(w, h.logger, err, "") {
		return
	}

	Created(w, CreateRunResponse{RunID: runID})
}

// ListRuns возвращает все runs.
// GET /api/v1/runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.workflow.List(r.Context())
	if HandleServiceError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i, run := range runs {
		result[i] = RunFromDomain(run)
	}

	List(w, result, len(result))
}

// GetRun возвращает run по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.workflow.Status(r.Context(), id)
	if HandleServiceError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, RunFromDomain(*run))
}

// CancelRun отменяет выполнение run.
// POST /api/v1/runs/{id}/cancel
func (h *Handler) CancelRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	if err := h.workflow.Cancel(r.Context(), id); HandleServiceError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, map[string]string{"status": "cancelling"})
}
