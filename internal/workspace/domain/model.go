package domain

import "time"

// Project is the top-level container for tasks and groups.
type Project struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	BasePrompt  *string   `json:"base_prompt"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectSummary is a project enriched with read-time aggregates.
type ProjectSummary struct {
	Project
	TaskCount int        `json:"task_count"`
	LastRunAt *time.Time `json:"last_run_at"`
}

// Task status constants. Status is free-form; these are the known values.
const (
	TaskStatusIdle    = "idle"
	TaskStatusRunning = "running"
	TaskStatusPaused  = "paused"
	TaskStatusDone    = "done"
)

// Task belongs to a project and owns runs and fine-tune jobs.
type Task struct {
	ID               int       `json:"id"`
	ProjectID        int       `json:"project_id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description"`
	Status           string    `json:"status"`
	Priority         int       `json:"priority"`
	TaskPrompt       *string   `json:"task_prompt"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	GroupIDs         []int     `json:"group_ids"`
	ActiveFineTuneID *string   `json:"active_fine_tune_id"`
	ActiveModel      *string   `json:"active_model"`
}

// TaskSummary is a task enriched with its run count.
type TaskSummary struct {
	Task
	RunsCount int `json:"runs_count"`
}

// Group is a named set of tasks within one project. Group.TaskIDs and
// Task.GroupIDs mirror each other; the store keeps both sides consistent.
type Group struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"project_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	TaskIDs     []int     `json:"task_ids"`
}

// GroupSummary is a group enriched with its task count.
type GroupSummary struct {
	Group
	TaskCount int `json:"task_count"`
}

// Run is one conversational session tied to a task. Model is frozen at
// creation so later task edits don't rewrite history.
type Run struct {
	ID         int        `json:"id"`
	TaskID     int        `json:"task_id"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	RunSummary *string    `json:"run_summary"`
	TaskTitle  string     `json:"task_title"`
	Model      *string    `json:"model"`
}

// Message is an append-only chat record inside a run.
type Message struct {
	ID        int       `json:"id"`
	TaskRunID int       `json:"task_run_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UUID      string    `json:"uuid"`
}

// FineTune status values. Stage statuses mirror the orchestrator pipeline.
const (
	FineTuneStatusQueued    = "queued"
	FineTuneStatusPulling   = "pulling"
	FineTuneStatusTraining  = "training"
	FineTuneStatusPushing   = "pushing"
	FineTuneStatusSucceeded = "succeeded"
	FineTuneStatusFailed    = "failed"
)

// FineTune tracks one model adaptation request. Its id doubles as an
// external correlation token, so it is random rather than sequential.
type FineTune struct {
	ID               string        `json:"id"`
	ProjectID        int           `json:"project_id"`
	TaskID           int           `json:"task_id"`
	BaseModel        string        `json:"base_model"`
	TargetModel      string        `json:"target_model"`
	DatasetName      string        `json:"dataset_name"`
	DatasetReference *string       `json:"dataset_reference"`
	DatasetPreview   *string       `json:"dataset_preview"`
	Status           string        `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	ResultModel      *string       `json:"result_model"`
	ErrorMessage     *string       `json:"error_message"`
	Logs             []FineTuneLog `json:"logs"`
}

// FineTuneLog is one stage-tagged progress line.
type FineTuneLog struct {
	ID      string    `json:"id"`
	At      time.Time `json:"at"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
}

// RunContext bundles everything needed to assemble a prompt for a run.
type RunContext struct {
	Project  Project   `json:"project"`
	Task     Task      `json:"task"`
	Run      Run       `json:"run"`
	Messages []Message `json:"messages"`
}
