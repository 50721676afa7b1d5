package api

import (
	"log/slog"

	"github.com/shaiso/Fastgraph/internal/artifact"
	"github.com/shaiso/Fastgraph/internal/chat"
	"github.com/shaiso/Fastgraph/internal/stream"
	"github.com/shaiso/Fastgraph/internal/workflow"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	workflow  *workflow.Service
	chat      *chat.Service
	artifacts *artifact.Store
	hub       *stream.Hub
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Workflow  *workflow.Service
	Chat      *chat.Service
	Artifacts *artifact.Store
	Hub       *stream.Hub
	Logger    *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		workflow:  cfg.Workflow,
		chat:      cfg.Chat,
		artifacts: cfg.Artifacts,
		hub:       cfg.Hub,
		logger:    logger,
	}
}
