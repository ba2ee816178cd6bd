package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codefoundry/foundry-backend/internal/finetune"
	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

// createFineTune records a job and hands it to the orchestrator. The
// response carries the queued record; the pipeline runs detached and its
// progress is only observable through the job's status and log.
func (h *Handler) createFineTune(c *gin.Context) {
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
	var req createFineTuneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if strings.TrimSpace(req.BaseModel) == "" {
		respondError(c, fmt.Errorf("base_model is required: %w", domain.ErrValidation))
		return
	}
	if strings.TrimSpace(req.TargetModel) == "" {
		respondError(c, fmt.Errorf("target_model is required: %w", domain.ErrValidation))
		return
	}

	task, err := h.store.GetTask(projectID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	ft, err := h.store.CreateFineTune(projectID, taskID, domain.CreateFineTuneRequest{
		BaseModel:      req.BaseModel,
		TargetModel:    req.TargetModel,
		DatasetName:    req.DatasetName,
		ReferenceURL:   req.ReferenceURL,
		DatasetPreview: req.DatasetPreview,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.orchestrator.Start(finetune.JobInput{
		FineTune:    ft,
		DatasetText: req.DatasetText,
		TaskTitle:   task.Title,
	})

	c.JSON(http.StatusCreated, gin.H{"ok": true, "fine_tune": ft})
}

func (h *Handler) listFineTunes(c *gin.Context) {
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
	fineTunes, err := h.store.ListFineTunes(projectID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "fine_tunes": fineTunes})
}

func (h *Handler) getFineTune(c *gin.Context) {
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
	ft, err := h.store.GetFineTune(projectID, taskID, c.Param("fineTuneId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "fine_tune": ft})
}
