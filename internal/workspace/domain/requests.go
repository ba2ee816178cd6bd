package domain

// CreateProjectRequest carries optional fields for a new project. Missing
// fields get defaults applied by the store.
type CreateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	BasePrompt  *string `json:"base_prompt"`
}

// UpdateProjectRequest is a partial patch; nil fields are left untouched.
type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	BasePrompt  *string `json:"base_prompt"`
}

// CreateTaskRequest carries optional fields for a new task.
type CreateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *int    `json:"priority"`
	TaskPrompt  *string `json:"task_prompt"`
}

// UpdateTaskRequest is a partial patch. ActiveFineTuneID is applied with the
// activation invariant: only a succeeded fine-tune belonging to the same
// project/task may be activated, and activation also sets ActiveModel.
// SetActiveFineTune distinguishes "leave alone" from "clear".
type UpdateTaskRequest struct {
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	Status            *string `json:"status"`
	Priority          *int    `json:"priority"`
	TaskPrompt        *string `json:"task_prompt"`
	SetActiveFineTune bool    `json:"-"`
	ActiveFineTuneID  *string `json:"active_fine_tune_id"`
}

// CreateGroupRequest carries optional fields for a new group.
type CreateGroupRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// UpdateGroupRequest is a partial patch for a group's own fields; membership
// moves through AssignTasksToGroup/RemoveTaskFromGroup only.
type UpdateGroupRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// UpdateRunRequest patches run metadata after the fact.
type UpdateRunRequest struct {
	Status     *string `json:"status"`
	FinishedAt *string `json:"finished_at"`
	RunSummary *string `json:"run_summary"`
}

// CreateFineTuneRequest carries the inputs for a new fine-tune job.
type CreateFineTuneRequest struct {
	BaseModel      string  `json:"base_model"`
	TargetModel    string  `json:"target_model"`
	DatasetName    *string `json:"dataset_name"`
	ReferenceURL   *string `json:"reference_url"`
	DatasetPreview *string `json:"dataset_preview"`
}

// FineTunePatch updates job-level metadata as the orchestrator progresses.
type FineTunePatch struct {
	Status       *string
	ResultModel  *string
	ErrorMessage *string
}

// TasksAsCodeTask is one task in the declarative tasks-as-code tree. A nil ID
// means create; a present ID upserts that task.
type TasksAsCodeTask struct {
	ID          *int    `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
}

// TasksAsCodeGroup is one group with its nested tasks.
type TasksAsCodeGroup struct {
	ID          *int              `json:"id,omitempty"`
	Title       string            `json:"title"`
	Description *string           `json:"description,omitempty"`
	Tasks       []TasksAsCodeTask `json:"tasks"`
}

// TasksAsCodeProject is the slim project header in the exported tree.
type TasksAsCodeProject struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// TasksAsCode is the full declarative tree for one project. Applying it is a
// reconcile: groups and tasks omitted from the payload are deleted.
type TasksAsCode struct {
	Project        TasksAsCodeProject `json:"project"`
	Groups         []TasksAsCodeGroup `json:"groups"`
	UngroupedTasks []TasksAsCodeTask  `json:"ungrouped_tasks"`
}

// TasksAsCodePayload is the inbound reconcile request (no project header).
type TasksAsCodePayload struct {
	Groups         []TasksAsCodeGroup `json:"groups"`
	UngroupedTasks []TasksAsCodeTask  `json:"ungrouped_tasks"`
}
