package api

import (
	"io"
	"net/http"

	"github.com/google/uuid"
)

// Предельный размер загружаемого артефакта.
const maxArtifactSize = 32 << 20 // 32 MiB

// UploadArtifact принимает файл артефакта для run.
// POST /api/v1/artifacts/{run_id}
func (h *Handler) UploadArtifact(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("run_id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	if err := r.ParseMultipartForm(maxArtifactSize); err != nil {
		BadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		BadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxArtifactSize))
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	artifactID, err := h.artifacts.Put(runID, header.Filename, data)
	if HandleServiceError(w, h.logger, err, "") {
		return
	}

	Created(w, UploadArtifactResponse{ArtifactID: artifactID})
}

// DownloadArtifact отдаёт содержимое артефакта.
// GET /api/v1/artifacts/{id}
func (h *Handler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	path, err := h.artifacts.Path(r.PathValue("id"))
	if HandleServiceError(w, h.logger, err, "artifact not found") {
		return
	}

	http.ServeFile(w, r, path)
}

// ListRunArtifacts возвращает идентификаторы артефактов run.
// GET /api/v1/runs/{id}/artifacts
func (h *Handler) ListRunArtifacts(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	ids, err := h.artifacts.ListByRun(runID)
	if HandleServiceError(w, h.logger, err, "") {
		return
	}

	Success(w, RunArtifactsResponse{Artifacts: ids})
}
