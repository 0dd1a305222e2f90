package api

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleStream serves a live query as Server-Sent Events. Each "snapshot"
// event carries the whole, newest-first list. The listener is released when
// the client goes away.
func (s *Server) handleStream(c *gin.Context) {
	switch c.Param("collection") {
	case "inbox":
		stream(s, c, s.stores.Inbox.Subscribe)
	case "next-actions":
		stream(s, c, s.stores.NextActions.Subscribe)
	case "projects":
		stream(s, c, s.stores.Projects.Subscribe)
	case "maybe-someday":
		stream(s, c, s.stores.MaybeSomeday.Subscribe)
	case "issue-trackers":
		stream(s, c, s.stores.IssueTrackers.Subscribe)
	case "issues":
		stream(s, c, s.stores.Issues.Subscribe)
	case "reference":
		stream(s, c, s.stores.Reference.Subscribe)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
	}
}

func stream[T any](s *Server, c *gin.Context, subscribe func(context.Context, string, func([]T)) (func(), error)) {
	ctx := c.Request.Context()
	// Only the latest list matters; a slow client skips intermediate ones.
	latest := make(chan []T, 1)
	stop, err := subscribe(ctx, uid(c), func(items []T) {
		select {
		case <-latest:
		default:
		}
		latest <- items
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	defer stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case items := <-latest:
			c.SSEvent("snapshot", items)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
