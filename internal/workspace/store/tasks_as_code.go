package store

import (
	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

// TasksAsCode exports a project's groups and tasks as the declarative tree.
// Tasks in no group land in ungrouped_tasks.
func (s *Store) TasksAsCode(projectID int) (domain.TasksAsCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.findProject(projectID)
	if err != nil {
		return domain.TasksAsCode{}, err
	}

	out := domain.TasksAsCode{
		Project: domain.TasksAsCodeProject{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
		},
		Groups:         []domain.TasksAsCodeGroup{},
		UngroupedTasks: []domain.TasksAsCodeTask{},
	}

	grouped := map[int]bool{}
	for _, g := range s.groups {
		if g.ProjectID != projectID {
			continue
		}
		node := domain.TasksAsCodeGroup{
			ID:          intPtr(g.ID),
			Title:       g.Title,
			Description: g.Description,
			Tasks:       []domain.TasksAsCodeTask{},
		}
		for _, taskID := range g.TaskIDs {
			t, err := s.findTask(taskID)
			if err != nil {
				continue
			}
			grouped[t.ID] = true
			node.Tasks = append(node.Tasks, taskAsCode(t))
		}
		out.Groups = append(out.Groups, node)
	}

	for _, t := range s.tasks {
		if t.ProjectID != projectID || grouped[t.ID] {
			continue
		}
		out.UngroupedTasks = append(out.UngroupedTasks, taskAsCode(t))
	}
	return out, nil
}

func taskAsCode(t *domain.Task) domain.TasksAsCodeTask {
	return domain.TasksAsCodeTask{
		ID:          intPtr(t.ID),
		Title:       t.Title,
		Description: t.Description,
		Status:      strPtr(t.Status),
		Priority:    intPtr(t.Priority),
	}
}

func intPtr(v int) *int { return &v }

// ApplyTasksAsCode reconciles a project against the desired tree. Groups and
// tasks are upserted by id (absence of id means create); anything belonging
// to the project but omitted from the payload is deleted, with the usual
// cascade for tasks. A task's membership becomes exactly the set of payload
// groups that mention it.
func (s *Store) ApplyTasksAsCode(projectID int, payload domain.TasksAsCodePayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findProject(projectID); err != nil {
		return err
	}

	touchedGroups := map[int]bool{}
	touchedTasks := map[int]bool{}
	membership := map[int][]int{} // task id -> group ids from the payload

	for _, groupPayload := range payload.Groups {
		var g *domain.Group
		var err error
		if groupPayload.ID != nil {
			g, err = s.findGroup(projectID, *groupPayload.ID)
		} else {
			g, err = s.createGroupLocked(projectID, domain.CreateGroupRequest{})
		}
		if err != nil {
			return err
		}
		touchedGroups[g.ID] = true
		g.Title = groupPayload.Title
		g.Description = groupPayload.Description
		g.UpdatedAt = now()
		g.TaskIDs = []int{}

		for _, taskPayload := range groupPayload.Tasks {
			t, err := s.upsertCodeTaskLocked(projectID, taskPayload)
			if err != nil {
				return err
			}
			touchedTasks[t.ID] = true
			membership[t.ID] = append(membership[t.ID], g.ID)
			if !containsInt(g.TaskIDs, t.ID) {
				g.TaskIDs = append(g.TaskIDs, t.ID)
			}
		}
	}

	for _, taskPayload := range payload.UngroupedTasks {
		t, err := s.upsertCodeTaskLocked(projectID, taskPayload)
		if err != nil {
			return err
		}
		touchedTasks[t.ID] = true
		if _, ok := membership[t.ID]; !ok {
			membership[t.ID] = []int{}
		}
	}

	for taskID, groupIDs := range membership {
		if t, err := s.findTask(taskID); err == nil {
			t.GroupIDs = groupIDs
		}
	}

	// Drop groups the payload no longer mentions.
	groups := s.groups[:0]
	for _, g := range s.groups {
		if g.ProjectID == projectID && !touchedGroups[g.ID] {
			for _, t := range s.tasks {
				t.GroupIDs = removeInt(t.GroupIDs, g.ID)
			}
			continue
		}
		groups = append(groups, g)
	}
	s.groups = groups

	// Omitted tasks are deleted with their runs, messages and fine-tunes.
	var stale []*domain.Task
	for _, t := range s.tasks {
		if t.ProjectID == projectID && !touchedTasks[t.ID] {
			stale = append(stale, t)
		}
	}
	for _, t := range stale {
		s.deleteTaskLocked(t)
	}
	return nil
}

func (s *Store) upsertCodeTaskLocked(projectID int, payload domain.TasksAsCodeTask) (*domain.Task, error) {
	var t *domain.Task
	var err error
	if payload.ID != nil {
		t, err = s.findProjectTask(projectID, *payload.ID)
	} else {
		t, err = s.createTaskLocked(projectID, domain.CreateTaskRequest{})
	}
	if err != nil {
		return nil, err
	}
	t.Title = payload.Title
	t.Description = payload.Description
	if payload.Status != nil {
		t.Status = *payload.Status
	}
	if payload.Priority != nil {
		t.Priority = *payload.Priority
	}
	t.UpdatedAt = now()
	return t, nil
}
