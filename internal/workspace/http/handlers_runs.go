package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codefoundry/foundry-backend/internal/ollama"
	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

func (h *Handler) listRuns(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	var taskID *int
	if raw := c.Query("taskId"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, fmt.Errorf("taskId must be an integer: %w", domain.ErrValidation))
			return
		}
		taskID = &v
	}
	runs, err := h.store.ListRuns(projectID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "runs": runs})
}

func (h *Handler) startRun(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	taskID, err := pathInt(c, "taskId")
	if err != nil {
		respondError(c, err)
		return
	}
	run, err := h.store.StartRunForTask(projectID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "run": run})
}

func (h *Handler) updateRun(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	runID, err := pathInt(c, "runId")
	if err != nil {
		respondError(c, err)
		return
	}
	var req domain.UpdateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	run, err := h.store.UpdateRun(projectID, runID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "run": run})
}

func (h *Handler) listMessages(c *gin.Context) {
	runID, err := pathInt(c, "runId")
	if err != nil {
		respondError(c, err)
		return
	}
	messages, err := h.store.ListMessages(runID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "messages": messages})
}

// addMessage records a user message, fans it out, asks the model for a
// reply and fans that out too. The gateway never fails the turn: an
// unreachable backend yields the deterministic fallback reply.
func (h *Handler) addMessage(c *gin.Context) {
	runID, err := pathInt(c, "runId")
	if err != nil {
		respondError(c, err)
		return
	}
	var req addMessageReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		respondError(c, fmt.Errorf("content is required: %w", domain.ErrValidation))
		return
	}
	role := req.Role
	if role == "" {
		role = "user"
	}

	userMessage, err := h.store.AddMessage(runID, role, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	h.hub.SendAppend(runID, userMessage)

	runCtx, err := h.store.RunContext(runID)
	if err != nil {
		respondError(c, err)
		return
	}

	history := make([]ollama.ChatMessage, 0, len(runCtx.Messages)+2)
	if runCtx.Project.BasePrompt != nil {
		history = append(history, ollama.ChatMessage{Role: "system", Content: *runCtx.Project.BasePrompt})
	}
	if runCtx.Task.TaskPrompt != nil {
		history = append(history, ollama.ChatMessage{Role: "system", Content: *runCtx.Task.TaskPrompt})
	}
	for _, m := range runCtx.Messages {
		history = append(history, ollama.ChatMessage{Role: m.Role, Content: m.Content})
	}

	model := ""
	if runCtx.Run.Model != nil {
		model = *runCtx.Run.Model
	}
	assistantText := h.chat.GenerateReply(c.Request.Context(), model, history)

	assistantMessage, err := h.store.AddMessage(runID, "assistant", assistantText)
	if err != nil {
		respondError(c, err)
		return
	}
	h.hub.SendAppend(runID, assistantMessage)

	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": userMessage})
}
