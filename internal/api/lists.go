package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/workflow"
)

// Inbox

func (s *Server) listInbox(c *gin.Context) {
	items, err := s.stores.Inbox.List(c.Request.Context(), uid(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inbox": items})
}

func (s *Server) createInbox(c *gin.Context) {
	var item models.InboxItem
	if !bind(c, &item) {
		return
	}
	id, err := s.stores.Inbox.Capture(c.Request.Context(), uid(c), item)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

func (s *Server) updateInbox(c *gin.Context) {
	var p models.InboxPatch
	if !bind(c, &p) {
		return
	}
	if err := s.stores.Inbox.Update(c.Request.Context(), uid(c), c.Param("id"), p); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) deleteInbox(c *gin.Context) {
	if err := s.stores.Inbox.Delete(c.Request.Context(), uid(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) inboxToNextAction(c *gin.Context) {
	var o workflow.NextActionOverrides
	if !bind(c, &o) {
		return
	}
	id, err := s.engine.ConvertInboxToNextAction(c.Request.Context(), uid(c), c.Param("id"), o)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

func (s *Server) inboxToMaybeSomeday(c *gin.Context) {
	var o workflow.MaybeSomedayOverrides
	if !bind(c, &o) {
		return
	}
	id, err := s.engine.ConvertInboxToMaybeSomeday(c.Request.Context(), uid(c), c.Param("id"), o)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

// Next actions

func (s *Server) listNextActions(c *gin.Context) {
	actions, err := s.stores.NextActions.List(c.Request.Context(), uid(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nextActions": actions})
}

func (s *Server) createNextAction(c *gin.Context) {
	var a models.NextAction
	if !bind(c, &a) {
		return
	}
	id, err := s.stores.NextActions.Create(c.Request.Context(), uid(c), a)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

func (s *Server) updateNextAction(c *gin.Context) {
	var p models.NextActionPatch
	if !bind(c, &p) {
		return
	}
	if err := s.engine.UpdateNextAction(c.Request.Context(), uid(c), c.Param("id"), p); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) deleteNextAction(c *gin.Context) {
	if err := s.stores.NextActions.Delete(c.Request.Context(), uid(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

// Maybe/Someday

func (s *Server) listMaybeSomeday(c *gin.Context) {
	items, err := s.stores.MaybeSomeday.List(c.Request.Context(), uid(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maybeSomeday": items})
}

func (s *Server) createMaybeSomeday(c *gin.Context) {
	var m models.MaybeSomedayItem
	if !bind(c, &m) {
		return
	}
	id, err := s.stores.MaybeSomeday.Create(c.Request.Context(), uid(c), m)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

func (s *Server) updateMaybeSomeday(c *gin.Context) {
	var p models.MaybeSomedayPatch
	if !bind(c, &p) {
		return
	}
	if err := s.stores.MaybeSomeday.Update(c.Request.Context(), uid(c), c.Param("id"), p); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) deleteMaybeSomeday(c *gin.Context) {
	if err := s.stores.MaybeSomeday.Delete(c.Request.Context(), uid(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) maybeSomedayToNextAction(c *gin.Context) {
	var o workflow.NextActionOverrides
	if !bind(c, &o) {
		return
	}
	id, err := s.engine.ConvertMaybeSomedayToNextAction(c.Request.Context(), uid(c), c.Param("id"), o)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

// Reference

func (s *Server) listReference(c *gin.Context) {
	items, err := s.stores.Reference.List(c.Request.Context(), uid(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference": items})
}

func (s *Server) createReference(c *gin.Context) {
	var r models.ReferenceItem
	if !bind(c, &r) {
		return
	}
	id, err := s.stores.Reference.Create(c.Request.Context(), uid(c), r)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, id)
}

func (s *Server) updateReference(c *gin.Context) {
	var p models.ReferencePatch
	if !bind(c, &p) {
		return
	}
	if err := s.stores.Reference.Update(c.Request.Context(), uid(c), c.Param("id"), p); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

func (s *Server) deleteReference(c *gin.Context) {
	if err := s.stores.Reference.Delete(c.Request.Context(), uid(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}
