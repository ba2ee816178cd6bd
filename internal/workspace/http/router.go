package http

import "github.com/gin-gonic/gin"

// Register mounts the workspace REST surface.
func (h *Handler) Register(r gin.IRouter) {
	projects := r.Group("/projects")
	projects.GET("", h.listProjects)
	projects.POST("", h.createProject)
	projects.GET("/:projectId", h.getProject)
	projects.PUT("/:projectId", h.updateProject)
	projects.DELETE("/:projectId", h.deleteProject)

	projects.GET("/:projectId/tasks", h.listTasks)
	projects.POST("/:projectId/tasks", h.createTask)
	projects.GET("/:projectId/tasks/:taskId", h.getTask)
	projects.PUT("/:projectId/tasks/:taskId", h.updateTask)
	projects.DELETE("/:projectId/tasks/:taskId", h.deleteTask)

	projects.GET("/:projectId/groups", h.listGroups)
	projects.POST("/:projectId/groups", h.createGroup)
	projects.PUT("/:projectId/groups/:groupId", h.updateGroup)
	projects.DELETE("/:projectId/groups/:groupId", h.deleteGroup)
	projects.POST("/:projectId/groups/:groupId/tasks", h.assignTasksToGroup)
	projects.DELETE("/:projectId/groups/:groupId/tasks/:taskId", h.removeTaskFromGroup)

	projects.GET("/:projectId/runs", h.listRuns)
	projects.POST("/:projectId/runs/tasks/:taskId/start", h.startRun)
	projects.PUT("/:projectId/runs/:runId", h.updateRun)

	projects.GET("/:projectId/tasks-as-code", h.getTasksAsCode)
	projects.PUT("/:projectId/tasks-as-code", h.putTasksAsCode)

	projects.POST("/:projectId/tasks/:taskId/fine-tunes", h.createFineTune)
	projects.GET("/:projectId/tasks/:taskId/fine-tunes", h.listFineTunes)
	projects.GET("/:projectId/tasks/:taskId/fine-tunes/:fineTuneId", h.getFineTune)

	runs := r.Group("/runs")
	runs.GET("/:runId/messages", h.listMessages)
	runs.POST("/:runId/messages", h.addMessage)
	runs.GET("/:runId/messages/stream", h.streamMessages)
}
