package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

func (s *Store) findRun(runID int) (*domain.Run, error) {
	for _, r := range s.runs {
		if r.ID == runID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("run %d: %w", runID, domain.ErrNotFound)
}

func cloneRun(r *domain.Run) domain.Run {
	return *r
}

// ListRuns returns a project's runs, optionally filtered to one task.
func (s *Store) ListRuns(projectID int, taskID *int) ([]domain.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findProject(projectID); err != nil {
		return nil, err
	}
	out := []domain.Run{}
	for _, r := range s.runs {
		t, err := s.findTask(r.TaskID)
		if err != nil || t.ProjectID != projectID {
			continue
		}
		if taskID != nil && r.TaskID != *taskID {
			continue
		}
		out = append(out, cloneRun(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) createRunLocked(t *domain.Task, model *string) *domain.Run {
	r := &domain.Run{
		ID:        s.nextRunID(),
		TaskID:    t.ID,
		Status:    domain.TaskStatusRunning,
		StartedAt: now(),
		TaskTitle: t.Title,
		Model:     model,
	}
	s.runs = append(s.runs, r)
	return r
}

// StartRunForTask creates a run for a task and flips the task to "running".
// If the task has an active fine-tune, the referenced job must still be
// succeeded; a job superseded or failed after activation fails the start.
// The run snapshots the task's current active model.
func (s *Store) StartRunForTask(projectID, taskID int) (domain.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.findProjectTask(projectID, taskID)
	if err != nil {
		return domain.Run{}, err
	}
	if t.ActiveFineTuneID != nil {
		ft, err := s.findFineTuneForTask(projectID, taskID, *t.ActiveFineTuneID)
		if err != nil {
			return domain.Run{}, err
		}
		if ft.Status != domain.FineTuneStatusSucceeded {
			return domain.Run{}, fmt.Errorf("fine-tune %s is %s, not succeeded: %w",
				ft.ID, ft.Status, domain.ErrPreconditionFailed)
		}
	}
	t.Status = domain.TaskStatusRunning
	t.UpdatedAt = now()
	return cloneRun(s.createRunLocked(t, t.ActiveModel)), nil
}

// UpdateRun patches run metadata. The run must belong to the given project.
func (s *Store) UpdateRun(projectID, runID int, req domain.UpdateRunRequest) (domain.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.findRun(runID)
	if err != nil {
		return domain.Run{}, err
	}
	t, err := s.findTask(r.TaskID)
	if err != nil {
		return domain.Run{}, err
	}
	if t.ProjectID != projectID {
		return domain.Run{}, fmt.Errorf("run %d in project %d: %w", runID, projectID, domain.ErrNotFound)
	}
	if req.Status != nil {
		r.Status = *req.Status
	}
	if req.FinishedAt != nil {
		at, err := time.Parse(time.RFC3339, *req.FinishedAt)
		if err != nil {
			return domain.Run{}, fmt.Errorf("finished_at %q: %w", *req.FinishedAt, domain.ErrValidation)
		}
		r.FinishedAt = &at
	}
	if req.RunSummary != nil {
		r.RunSummary = req.RunSummary
	}
	return cloneRun(r), nil
}

// RunContext bundles a run with its task, project and ordered messages for
// prompt assembly.
func (s *Store) RunContext(runID int) (domain.RunContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.findRun(runID)
	if err != nil {
		return domain.RunContext{}, err
	}
	t, err := s.findTask(r.TaskID)
	if err != nil {
		return domain.RunContext{}, err
	}
	p, err := s.findProject(t.ProjectID)
	if err != nil {
		return domain.RunContext{}, err
	}
	return domain.RunContext{
		Project:  cloneProject(p),
		Task:     cloneTask(t),
		Run:      cloneRun(r),
		Messages: s.listMessagesLocked(r.ID),
	}, nil
}
