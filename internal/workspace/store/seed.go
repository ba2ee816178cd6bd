package store

import (
	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

// NewSeeded returns a store pre-populated with a small demo workspace so the
// UI is usable immediately after startup.
func NewSeeded(maxPreviewChars int) *Store {
	s := New(maxPreviewChars)

	project := s.CreateProject(domain.CreateProjectRequest{
		Title:       strPtr("LLM Workspace"),
		Description: strPtr("Demo project seeded automatically."),
		BasePrompt:  strPtr("You are CodeFoundry Assistant, a precise engineer focused on actionable, reproducible suggestions."),
	})

	taskOne, _ := s.CreateTask(project.ID, domain.CreateTaskRequest{
		Title:       strPtr("Draft onboarding plan"),
		Description: strPtr("Summarize what new contributors should learn first."),
		Status:      strPtr(domain.TaskStatusRunning),
		Priority:    intPtr(1),
		TaskPrompt:  strPtr("Expand on the project base prompt by outlining onboarding steps for future agents."),
	})

	run, _ := s.StartRunForTask(project.ID, taskOne.ID)
	if project.BasePrompt != nil {
		s.AddMessage(run.ID, "system", *project.BasePrompt)
	}
	s.AddMessage(run.ID, "assistant", "Hello! Ready to discuss the onboarding plan whenever you are.")

	taskTwo, _ := s.CreateTask(project.ID, domain.CreateTaskRequest{
		Title:       strPtr("Evaluate UI polish"),
		Description: strPtr("Collect quick wins to make the dashboard pop."),
		Status:      strPtr(domain.TaskStatusIdle),
		Priority:    intPtr(2),
	})

	group, _ := s.CreateGroup(project.ID, domain.CreateGroupRequest{
		Title:       strPtr("Initial backlog"),
		Description: strPtr("Seed work captured from the kickoff meeting."),
	})
	s.AssignTasksToGroup(project.ID, group.ID, []int{taskOne.ID, taskTwo.ID})

	return s
}
