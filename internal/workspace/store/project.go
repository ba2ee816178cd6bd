package store

import (
	"fmt"
	"sort"

	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

func (s *Store) findProject(projectID int) (*domain.Project, error) {
	for _, p := range s.projects {
		if p.ID == projectID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("project %d: %w", projectID, domain.ErrNotFound)
}

func cloneProject(p *domain.Project) domain.Project {
	return *p
}

// ListProjects returns every project enriched with its task count and the
// most recent run start across its tasks. Both are computed at read time.
func (s *Store) ListProjects() []domain.ProjectSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ProjectSummary, 0, len(s.projects))
	for _, p := range s.projects {
		summary := domain.ProjectSummary{Project: cloneProject(p)}
		taskIDs := map[int]bool{}
		for _, t := range s.tasks {
			if t.ProjectID == p.ID {
				summary.TaskCount++
				taskIDs[t.ID] = true
			}
		}
		for _, r := range s.runs {
			if !taskIDs[r.TaskID] {
				continue
			}
			if summary.LastRunAt == nil || r.StartedAt.After(*summary.LastRunAt) {
				at := r.StartedAt
				summary.LastRunAt = &at
			}
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateProject materializes a new project, applying defaults for missing
// optional fields. It never fails on valid input.
func (s *Store) CreateProject(req domain.CreateProjectRequest) domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProject(s.createProjectLocked(req))
}

func (s *Store) createProjectLocked(req domain.CreateProjectRequest) *domain.Project {
	ts := now()
	p := &domain.Project{
		ID:          s.nextProjectID(),
		Title:       "Untitled project",
		Description: req.Description,
		BasePrompt:  req.BasePrompt,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	s.projects = append(s.projects, p)
	return p
}

// GetProject returns a single project.
func (s *Store) GetProject(projectID int) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.findProject(projectID)
	if err != nil {
		return domain.Project{}, err
	}
	return cloneProject(p), nil
}

// UpdateProject applies a partial patch and refreshes updated_at.
func (s *Store) UpdateProject(projectID int, req domain.UpdateProjectRequest) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.findProject(projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.BasePrompt != nil {
		p.BasePrompt = req.BasePrompt
	}
	p.UpdatedAt = now()
	return cloneProject(p), nil
}

// DeleteProject removes a project and cascades to its tasks, groups, runs,
// messages and fine-tune jobs. Deleting an already-deleted id fails NotFound.
func (s *Store) DeleteProject(projectID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.findProject(projectID)
	if err != nil {
		return err
	}

	kept := s.projects[:0]
	for _, other := range s.projects {
		if other.ID != p.ID {
			kept = append(kept, other)
		}
	}
	s.projects = kept

	taskIDs := map[int]bool{}
	tasks := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ProjectID == p.ID {
			taskIDs[t.ID] = true
			continue
		}
		tasks = append(tasks, t)
	}
	s.tasks = tasks

	groups := s.groups[:0]
	for _, g := range s.groups {
		if g.ProjectID != p.ID {
			groups = append(groups, g)
		}
	}
	s.groups = groups

	runIDs := map[int]bool{}
	runs := s.runs[:0]
	for _, r := range s.runs {
		if taskIDs[r.TaskID] {
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
		if ft.ProjectID != p.ID {
			fineTunes = append(fineTunes, ft)
		}
	}
	s.fineTunes = fineTunes

	return nil
}
