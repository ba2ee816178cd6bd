package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

func (h *Handler) listProjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": h.store.ListProjects()})
}

func (h *Handler) createProject(c *gin.Context) {
	var req domain.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p := h.store.CreateProject(req)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) getProject(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := h.store.GetProject(projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) updateProject(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	var req domain.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p, err := h.store.UpdateProject(projectID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) deleteProject(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.DeleteProject(projectID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listTasks(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	tasks, err := h.store.ListTasks(projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": tasks})
}

func (h *Handler) createTask(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	var req domain.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	t, err := h.store.CreateTask(projectID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "task": t})
}

func (h *Handler) getTask(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	taskID, err := pathInt(c, "taskId")
	if err != nil {
		respondError(c, err)
		return
	}
	t, err := h.store.GetTask(projectID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": t})
}

func (h *Handler) updateTask(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	taskID, err := pathInt(c, "taskId")
	if err != nil {
		respondError(c, err)
		return
	}
	var req updateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	patch, err := req.toDomain()
	if err != nil {
		respondError(c, err)
		return
	}
	t, err := h.store.UpdateTask(projectID, taskID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": t})
}

func (h *Handler) deleteTask(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	taskID, err := pathInt(c, "taskId")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.DeleteTask(projectID, taskID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listGroups(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	groups, err := h.store.ListGroups(projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "groups": groups})
}

func (h *Handler) createGroup(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	var req domain.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	g, err := h.store.CreateGroup(projectID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "group": g})
}

func (h *Handler) updateGroup(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	groupID, err := pathInt(c, "groupId")
	if err != nil {
		respondError(c, err)
		return
	}
	var req domain.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	g, err := h.store.UpdateGroup(projectID, groupID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "group": g})
}

func (h *Handler) deleteGroup(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	groupID, err := pathInt(c, "groupId")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.DeleteGroup(projectID, groupID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) assignTasksToGroup(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	groupID, err := pathInt(c, "groupId")
	if err != nil {
		respondError(c, err)
		return
	}
	var req assignTasksReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	g, err := h.store.AssignTasksToGroup(projectID, groupID, req.TaskIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "group": g})
}

func (h *Handler) removeTaskFromGroup(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	groupID, err := pathInt(c, "groupId")
	if err != nil {
		respondError(c, err)
		return
	}
	taskID, err := pathInt(c, "taskId")
	if err != nil {
		respondError(c, err)
		return
	}
	g, err := h.store.RemoveTaskFromGroup(projectID, groupID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "group": g})
}

func (h *Handler) getTasksAsCode(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	code, err := h.store.TasksAsCode(projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, code)
}

func (h *Handler) putTasksAsCode(c *gin.Context) {
	projectID, err := pathInt(c, "projectId")
	if err != nil {
		respondError(c, err)
		return
	}
	var payload domain.TasksAsCodePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	for _, g := range payload.Groups {
		if g.Title == "" {
			respondError(c, fmt.Errorf("group title is required: %w", domain.ErrValidation))
			return
		}
	}
	if err := h.store.ApplyTasksAsCode(projectID, payload); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
