package store

import (
	"fmt"
	"sort"

	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

func (s *Store) findGroup(projectID, groupID int) (*domain.Group, error) {
	for _, g := range s.groups {
		if g.ID == groupID && g.ProjectID == projectID {
			return g, nil
		}
	}
	return nil, fmt.Errorf("group %d in project %d: %w", groupID, projectID, domain.ErrNotFound)
}

func cloneGroup(g *domain.Group) domain.Group {
	out := *g
	out.TaskIDs = append([]int(nil), g.TaskIDs...)
	return out
}

// ListGroups returns a project's groups with task counts.
func (s *Store) ListGroups(projectID int) ([]domain.GroupSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findProject(projectID); err != nil {
		return nil, err
	}
	out := []domain.GroupSummary{}
	for _, g := range s.groups {
		if g.ProjectID != projectID {
			continue
		}
		out = append(out, domain.GroupSummary{
			Group:     cloneGroup(g),
			TaskCount: len(g.TaskIDs),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateGroup materializes a new empty group under a project.
func (s *Store) CreateGroup(projectID int, req domain.CreateGroupRequest) (domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.createGroupLocked(projectID, req)
	if err != nil {
		return domain.Group{}, err
	}
	return cloneGroup(g), nil
}

func (s *Store) createGroupLocked(projectID int, req domain.CreateGroupRequest) (*domain.Group, error) {
	if _, err := s.findProject(projectID); err != nil {
		return nil, err
	}
	ts := now()
	g := &domain.Group{
		ID:          s.nextGroupID(),
		ProjectID:   projectID,
		Title:       "Untitled group",
		Description: req.Description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		TaskIDs:     []int{},
	}
	if req.Title != nil {
		g.Title = *req.Title
	}
	s.groups = append(s.groups, g)
	return g, nil
}

// UpdateGroup patches a group's own fields.
func (s *Store) UpdateGroup(projectID, groupID int, req domain.UpdateGroupRequest) (domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.findGroup(projectID, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if req.Title != nil {
		g.Title = *req.Title
	}
	if req.Description != nil {
		g.Description = req.Description
	}
	g.UpdatedAt = now()
	return cloneGroup(g), nil
}

// DeleteGroup removes a group and clears its id from every member task.
// Member tasks themselves survive.
func (s *Store) DeleteGroup(projectID, groupID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.findGroup(projectID, groupID)
	if err != nil {
		return err
	}
	kept := s.groups[:0]
	for _, other := range s.groups {
		if other.ID != g.ID {
			kept = append(kept, other)
		}
	}
	s.groups = kept
	for _, t := range s.tasks {
		t.GroupIDs = removeInt(t.GroupIDs, g.ID)
	}
	return nil
}

// AssignTasksToGroup adds tasks to a group, updating both sides of the
// membership mirror. Every task is validated before anything is applied: a
// task from another project fails the whole call with Conflict and the group
// is left untouched. Ids already present are skipped.
func (s *Store) AssignTasksToGroup(projectID, groupID int, taskIDs []int) (domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.findGroup(projectID, groupID)
	if err != nil {
		return domain.Group{}, err
	}

	members := make([]*domain.Task, 0, len(taskIDs))
	for _, taskID := range taskIDs {
		t, err := s.findTask(taskID)
		if err != nil {
			return domain.Group{}, err
		}
		if t.ProjectID != g.ProjectID {
			return domain.Group{}, fmt.Errorf("task %d and group %d belong to different projects: %w",
				t.ID, g.ID, domain.ErrConflict)
		}
		members = append(members, t)
	}

	for _, t := range members {
		if !containsInt(g.TaskIDs, t.ID) {
			g.TaskIDs = append(g.TaskIDs, t.ID)
		}
		if !containsInt(t.GroupIDs, g.ID) {
			t.GroupIDs = append(t.GroupIDs, g.ID)
		}
	}
	return cloneGroup(g), nil
}

// RemoveTaskFromGroup drops a task from a group on both sides of the mirror.
func (s *Store) RemoveTaskFromGroup(projectID, groupID, taskID int) (domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.findGroup(projectID, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	t, err := s.findTask(taskID)
	if err != nil {
		return domain.Group{}, err
	}
	g.TaskIDs = removeInt(g.TaskIDs, t.ID)
	t.GroupIDs = removeInt(t.GroupIDs, g.ID)
	return cloneGroup(g), nil
}
