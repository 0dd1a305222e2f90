package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/workflow"
)

func (s *Server) listProjects(c *gin.Context) {
	projects, err := s.stores.Projects.List(c.Request.Context(), uid(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (s *Server) getProject(c *gin.Context) {
	p, err := s.stores.Projects.Get(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (s *Server) createProject(c *gin.Context) {
	var p models.Project
	if !bind(c, &p) {
		return
	}
	id, err := s.stores.Projects.Create(c.Request.Context(), uid(c), p)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

func (s *Server) updateProject(c *gin.Context) {
	var p models.ProjectPatch
	if !bind(c, &p) {
		return
	}
	if err := s.stores.Projects.Update(c.Request.Context(), uid(c), c.Param("id"), p); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

// Deleting a project leaves next actions that point at it in place.
func (s *Server) deleteProject(c *gin.Context) {
	if err := s.stores.Projects.Delete(c.Request.Context(), uid(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

type addTaskRequest struct {
	Title         string            `json:"title"`
	Description   *string           `json:"description,omitempty"`
	Status        models.TaskStatus `json:"status,omitempty"`
	DelegatedTo   *string           `json:"delegatedTo,omitempty"`
	BlockedReason *string           `json:"blockedReason,omitempty"`
	ParentID      string            `json:"parentId,omitempty"`
}

func (s *Server) addTask(c *gin.Context) {
	var req addTaskRequest
	if !bind(c, &req) {
		return
	}
	id, err := s.stores.Projects.AddTask(c.Request.Context(), uid(c), c.Param("id"), models.ProjectTask{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		DelegatedTo:   req.DelegatedTo,
		BlockedReason: req.BlockedReason,
	}, req.ParentID)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

func (s *Server) updateTask(c *gin.Context) {
	var p models.TaskPatch
	if !bind(c, &p) {
		return
	}
	if err := s.stores.Projects.UpdateTask(c.Request.Context(), uid(c), c.Param("id"), c.Param("taskId"), p); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) deleteTask(c *gin.Context) {
	if err := s.stores.Projects.DeleteTask(c.Request.Context(), uid(c), c.Param("id"), c.Param("taskId")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) taskToNextAction(c *gin.Context) {
	var o workflow.NextActionOverrides
	if !bind(c, &o) {
		return
	}
	id, err := s.engine.ConvertTaskToNextAction(c.Request.Context(), uid(c), c.Param("id"), c.Param("taskId"), o)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

type reorderRequest struct {
	TaskIDs []string `json:"taskIds"`
}

func (s *Server) reorderTasks(c *gin.Context) {
	var req reorderRequest
	if !bind(c, &req) {
		return
	}
	if err := s.stores.Projects.ReorderTasks(c.Request.Context(), uid(c), c.Param("id"), req.TaskIDs); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}
