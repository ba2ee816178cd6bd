package store

import (
	"fmt"
	"sort"

	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

func (s *Store) findTask(taskID int) (*domain.Task, error) {
	for _, t := range s.tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return nil, fmt.Errorf("task %d: %w", taskID, domain.ErrNotFound)
}

func (s *Store) findProjectTask(projectID, taskID int) (*domain.Task, error) {
	t, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if t.ProjectID != projectID {
		return nil, fmt.Errorf("task %d in project %d: %w", taskID, projectID, domain.ErrNotFound)
	}
	return t, nil
}

func cloneTask(t *domain.Task) domain.Task {
	out := *t
	out.GroupIDs = append([]int(nil), t.GroupIDs...)
	return out
}

// ListTasks returns a project's tasks enriched with run counts.
func (s *Store) ListTasks(projectID int) ([]domain.TaskSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findProject(projectID); err != nil {
		return nil, err
	}
	out := []domain.TaskSummary{}
	for _, t := range s.tasks {
		if t.ProjectID != projectID {
			continue
		}
		summary := domain.TaskSummary{Task: cloneTask(t)}
		for _, r := range s.runs {
			if r.TaskID == t.ID {
				summary.RunsCount++
			}
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateTask materializes a new task under a project with defaults applied:
// status "idle", priority 1, empty membership.
func (s *Store) CreateTask(projectID int, req domain.CreateTaskRequest) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.createTaskLocked(projectID, req)
	if err != nil {
		return domain.Task{}, err
	}
	return cloneTask(t), nil
}

func (s *Store) createTaskLocked(projectID int, req domain.CreateTaskRequest) (*domain.Task, error) {
	if _, err := s.findProject(projectID); err != nil {
		return nil, err
	}
	ts := now()
	t := &domain.Task{
		ID:          s.nextTaskID(),
		ProjectID:   projectID,
		Title:       "Untitled task",
		Description: req.Description,
		Status:      domain.TaskStatusIdle,
		Priority:    1,
		TaskPrompt:  req.TaskPrompt,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		GroupIDs:    []int{},
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	s.tasks = append(s.tasks, t)
	return t, nil
}

// GetTask returns a task scoped to its project.
func (s *Store) GetTask(projectID, taskID int) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.findProjectTask(projectID, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	return cloneTask(t), nil
}

// UpdateTask applies a partial patch. The active fine-tune reference is
// special-cased: it may only point at a succeeded fine-tune of the same
// project/task pair, and setting it also derives active_model from the job's
// result. Clearing it clears active_model. Any failed check leaves the task
// untouched.
func (s *Store) UpdateTask(projectID, taskID int, req domain.UpdateTaskRequest) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.findProjectTask(projectID, taskID)
	if err != nil {
		return domain.Task{}, err
	}

	var activate *domain.FineTune
	if req.SetActiveFineTune && req.ActiveFineTuneID != nil {
		activate, err = s.findFineTuneForTask(projectID, taskID, *req.ActiveFineTuneID)
		if err != nil {
			return domain.Task{}, err
		}
		if activate.Status != domain.FineTuneStatusSucceeded {
			return domain.Task{}, fmt.Errorf("fine-tune %s is %s, not succeeded: %w",
				activate.ID, activate.Status, domain.ErrPreconditionFailed)
		}
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.TaskPrompt != nil {
		t.TaskPrompt = req.TaskPrompt
	}
	if req.SetActiveFineTune {
		if activate == nil {
			t.ActiveFineTuneID = nil
			t.ActiveModel = nil
		} else {
			t.ActiveFineTuneID = strPtr(activate.ID)
			model := activate.TargetModel
			if activate.ResultModel != nil {
				model = *activate.ResultModel
			}
			t.ActiveModel = strPtr(model)
		}
	}
	t.UpdatedAt = now()
	return cloneTask(t), nil
}

// DeleteTask removes a task, its runs, messages and fine-tunes, and clears
// its membership from every group.
func (s *Store) DeleteTask(projectID, taskID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.findProjectTask(projectID, taskID)
	if err != nil {
		return err
	}
	s.deleteTaskLocked(t)
	return nil
}

func (s *Store) deleteTaskLocked(t *domain.Task) {
	kept := s.tasks[:0]
	for _, other := range s.tasks {
		if other.ID != t.ID {
			kept = append(kept, other)
		}
	}
	s.tasks = kept

	for _, g := range s.groups {
		g.TaskIDs = removeInt(g.TaskIDs, t.ID)
	}

	runIDs := map[int]bool{}
	runs := s.runs[:0]
	for _, r := range s.runs {
		if r.TaskID == t.ID {
			runIDs[r.ID] = true
			continue
		}
		runs = append(runs, r)
	}
	s.runs = runs

	messages := s.messages[:0]
	for _, m := range s.messages {
		if !runIDs[m.TaskRunID] {
			messages = append(messages, m)
		}
	}
	s.messages = messages

	fineTunes := s.fineTunes[:0]
	for _, ft := range s.fineTunes {
		if ft.TaskID != t.ID {
			fineTunes = append(fineTunes, ft)
		}
	}
	s.fineTunes = fineTunes
}
