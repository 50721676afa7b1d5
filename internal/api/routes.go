package api

import "net/http"

// RegisterRoutes регистрирует все маршруты API на mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Runs
	mux.Handle("POST /api/v1/runs", chain(http.HandlerFunc(h.CreateRun)))
	mux.Handle("GET /api/v1/runs", chain(http.HandlerFunc(h.ListRuns)))
	mux.Handle("GET /api/v1/runs/{id}", chain(http.HandlerFunc(h.GetRun)))
	mux.Handle("POST /api/v1/runs/{id}/cancel", chain(http.HandlerFunc(h.CancelRun)))
	mux.Handle("GET /api/v1/runs/{id}/artifacts", chain(http.HandlerFunc(h.ListRunArtifacts)))

	// Chat
	mux.Handle("POST /api/v1/chat/{thread_id}/messages", chain(http.HandlerFunc(h.SendMessage)))
	mux.Handle("GET /api/v1/chat/{thread_id}/history", chain(http.HandlerFunc(h.GetHistory)))

	// Artifacts
	mux.Handle("POST /api/v1/artifacts/{run_id}", chain(http.HandlerFunc(h.UploadArtifact)))
	mux.Handle("GET /api/v1/artifacts/{id}", chain(http.HandlerFunc(h.DownloadArtifact)))

	// WebSocket живёт вне Logging: обёртка responseWriter прячет
	// http.Hijacker, который нужен для апгрейда соединения.
	mux.Handle("GET /api/v1/ws/{topic}", Recovery(h.logger)(http.HandlerFunc(h.SubscribeWS)))
}
