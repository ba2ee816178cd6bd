package http

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codefoundry/foundry-backend/internal/finetune"
	"github.com/codefoundry/foundry-backend/internal/ollama"
	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
	"github.com/codefoundry/foundry-backend/internal/workspace/hub"
	"github.com/codefoundry/foundry-backend/internal/workspace/store"
)

// ChatGateway is the slice of the model gateway the chat turn needs.
type ChatGateway interface {
	GenerateReply(ctx context.Context, model string, history []ollama.ChatMessage) string
}

// Handler carries the workspace boundary's collaborators.
type Handler struct {
	store        *store.Store
	hub          *hub.Hub
	chat         ChatGateway
	orchestrator *finetune.Orchestrator
}

func New(st *store.Store, h *hub.Hub, chat ChatGateway, orch *finetune.Orchestrator) *Handler {
	return &Handler{store: st, hub: h, chat: chat, orchestrator: orch}
}

func pathInt(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, domain.ErrValidation)
	}
	return v, nil
}
