package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const maxAttachmentSize = 10 << 20

func (s *Server) attach(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	if fh.Size > maxAttachmentSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file larger than %d bytes", maxAttachmentSize)})
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxAttachmentSize))
	if err != nil {
		s.fail(c, err)
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	att, err := s.stores.Reference.Attach(c.Request.Context(), uid(c), c.Param("id"), fh.Filename, contentType, data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attachment": att})
}

func (s *Server) detach(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter path is required"})
		return
	}
	if err := s.stores.Reference.Detach(c.Request.Context(), uid(c), c.Param("id"), path); err != nil {
		s.fail(c, err)
		return
	}
	ok(c)
}

type calendarInviteRequest struct {
	ActionID   string   `json:"actionId"`
	UserEmails []string `json:"userEmails"`
	UserID     string   `json:"userId"`
	// ScheduledDate, when set, schedules the action before the invite is sent.
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
}

func (s *Server) sendCalendarInvite(c *gin.Context) {
	if s.invites == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calendar invites are not configured"})
		return
	}
	var req calendarInviteRequest
	if !bind(c, &req) {
		return
	}
	if req.ActionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actionId is required"})
		return
	}
	if req.UserID != "" && req.UserID != uid(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "userId does not match the signed-in user"})
		return
	}
	ctx := c.Request.Context()
	if req.ScheduledDate != nil {
		if err := s.engine.ScheduleNextAction(ctx, uid(c), req.ActionID, *req.ScheduledDate); err != nil {
			s.fail(c, err)
			return
		}
	}
	if err := s.invites.Send(ctx, uid(c), req.ActionID, req.UserEmails); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recipients": len(req.UserEmails)})
}
