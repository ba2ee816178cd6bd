package http

import (
	"encoding/json"
	"fmt"

	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

type updateTaskReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *int    `json:"priority"`
	TaskPrompt  *string `json:"task_prompt"`

	// RawMessage so an explicit null (clear the activation) can be told
	// apart from an absent key (leave it alone).
	ActiveFineTuneID json.RawMessage `json:"active_fine_tune_id"`
}

func (r updateTaskReq) toDomain() (domain.UpdateTaskRequest, error) {
	out := domain.UpdateTaskRequest{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		TaskPrompt:  r.TaskPrompt,
	}
	if r.ActiveFineTuneID != nil {
		out.SetActiveFineTune = true
		if string(r.ActiveFineTuneID) != "null" {
			var id string
			if err := json.Unmarshal(r.ActiveFineTuneID, &id); err != nil {
				return out, fmt.Errorf("active_fine_tune_id must be a string or null: %w", domain.ErrValidation)
			}
			out.ActiveFineTuneID = &id
		}
	}
	return out, nil
}

type assignTasksReq struct {
	TaskIDs []int `json:"taskIds"`
}

type addMessageReq struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type createFineTuneReq struct {
	BaseModel      string  `json:"base_model"`
	TargetModel    string  `json:"target_model"`
	DatasetName    *string `json:"dataset_name"`
	ReferenceURL   *string `json:"reference_url"`
	DatasetText    string  `json:"dataset_text"`
	DatasetPreview *string `json:"dataset_preview"`
}
