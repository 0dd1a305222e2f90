package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/ai"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/workflow"
)

func (s *Server) listIssueTrackers(c *gin.Context) {
	trackers, err := s.stores.IssueTrackers.List(c.Request.Context(), uid(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issueTrackers": trackers})
}

func (s *Server) createIssueTracker(c *gin.Context) {
	var t models.IssueTracker
	if !bind(c, &t) {
		return
	}
	id, err := s.stores.IssueTrackers.Create(c.Request.Context(), uid(c), t)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

func (s *Server) updateIssueTracker(c *gin.Context) {
	var p models.IssueTrackerPatch
	if !bind(c, &p) {
		return
	}
	if err := s.stores.IssueTrackers.Update(c.Request.Context(), uid(c), c.Param("id"), p); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) deleteIssueTracker(c *gin.Context) {
	if err := s.stores.IssueTrackers.Delete(c.Request.Context(), uid(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) listTrackerIssues(c *gin.Context) {
	issues, err := s.stores.Issues.ListByTracker(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

func (s *Server) createIssue(c *gin.Context) {
	var i models.Issue
	if !bind(c, &i) {
		return
	}
	id, err := s.stores.Issues.Create(c.Request.Context(), uid(c), i)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

func (s *Server) updateIssue(c *gin.Context) {
	var p models.IssuePatch
	if !bind(c, &p) {
		return
	}
	if err := s.stores.Issues.Update(c.Request.Context(), uid(c), c.Param("id"), p); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) deleteIssue(c *gin.Context) {
	if err := s.stores.Issues.Delete(c.Request.Context(), uid(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) issueToNextAction(c *gin.Context) {
	var o workflow.NextActionOverrides
	if !bind(c, &o) {
		return
	}
	id, err := s.engine.ConvertIssueToNextAction(c.Request.Context(), uid(c), c.Param("id"), o)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

// Classification

func (s *Server) classifyNextAction(c *gin.Context) {
	a, err := s.stores.NextActions.Get(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	result := s.classifier.ClassifyTask(c.Request.Context(), ai.TaskRequestFor(uid(c), a))
	c.JSON(http.StatusOK, gin.H{"classification": result})
}

func (s *Server) classifyIssue(c *gin.Context) {
	i, err := s.stores.Issues.Get(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	result := s.classifier.ClassifyIssue(c.Request.Context(), ai.IssueRequestFor(uid(c), i))
	c.JSON(http.StatusOK, gin.H{"classification": result})
}
