// Package api exposes the GTD stores and workflows over HTTP.
package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/ai"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/auth"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/invite"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/store"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/workflow"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Deps are the services behind the API. Invites may be nil when SMTP is not
// configured.
type Deps struct {
	Stores     *store.Stores
	Engine     *workflow.Engine
	Classifier *ai.Classifier
	Invites    *invite.Service
	Verifier   auth.Verifier
	Logger     zerolog.Logger
}

// Server is the HTTP API.
type Server struct {
	stores     *store.Stores
	engine     *workflow.Engine
	classifier *ai.Classifier
	invites    *invite.Service
	logger     zerolog.Logger
	router     *gin.Engine
}

func NewServer(d Deps) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(d.Logger))

	s := &Server{
		stores:     d.Stores,
		engine:     d.Engine,
		classifier: d.Classifier,
		invites:    d.Invites,
		logger:     d.Logger,
		router:     router,
	}

	router.GET("/api/health", s.handleHealth)

	api := router.Group("/api", auth.Middleware(d.Verifier, d.Logger))
	{
		api.GET("/auth/user", s.handleAuthUser)

		api.GET("/inbox", s.listInbox)
		api.POST("/inbox", s.createInbox)
		api.PUT("/inbox/:id", s.updateInbox)
		api.DELETE("/inbox/:id", s.deleteInbox)
		api.POST("/inbox/:id/to-next-action", s.inboxToNextAction)
		api.POST("/inbox/:id/to-maybe-someday", s.inboxToMaybeSomeday)

		api.GET("/next-actions", s.listNextActions)
		api.POST("/next-actions", s.createNextAction)
		api.PUT("/next-actions/:id", s.updateNextAction)
		api.DELETE("/next-actions/:id", s.deleteNextAction)
		api.POST("/next-actions/:id/classify", s.classifyNextAction)

		api.GET("/projects", s.listProjects)
		api.POST("/projects", s.createProject)
		api.GET("/projects/:id", s.getProject)
		api.PUT("/projects/:id", s.updateProject)
		api.DELETE("/projects/:id", s.deleteProject)
		api.POST("/projects/:id/tasks", s.addTask)
		api.PUT("/projects/:id/tasks/:taskId", s.updateTask)
		api.DELETE("/projects/:id/tasks/:taskId", s.deleteTask)
		api.POST("/projects/:id/tasks/:taskId/to-next-action", s.taskToNextAction)
		api.PUT("/projects/:id/tasks-order", s.reorderTasks)

		api.GET("/maybe-someday", s.listMaybeSomeday)
		api.POST("/maybe-someday", s.createMaybeSomeday)
		api.PUT("/maybe-someday/:id", s.updateMaybeSomeday)
		api.DELETE("/maybe-someday/:id", s.deleteMaybeSomeday)
		api.POST("/maybe-someday/:id/to-next-action", s.maybeSomedayToNextAction)

		api.GET("/issue-trackers", s.listIssueTrackers)
		api.POST("/issue-trackers", s.createIssueTracker)
		api.PUT("/issue-trackers/:id", s.updateIssueTracker)
		api.DELETE("/issue-trackers/:id", s.deleteIssueTracker)
		api.GET("/issue-trackers/:id/issues", s.listTrackerIssues)
		api.POST("/issues", s.createIssue)
		api.PUT("/issues/:id", s.updateIssue)
		api.DELETE("/issues/:id", s.deleteIssue)
		api.POST("/issues/:id/to-next-action", s.issueToNextAction)
		api.POST("/issues/:id/classify", s.classifyIssue)

		api.GET("/reference", s.listReference)
		api.POST("/reference", s.createReference)
		api.PUT("/reference/:id", s.updateReference)
		api.DELETE("/reference/:id", s.deleteReference)
		api.POST("/reference/:id/attachments", s.attach)
		api.DELETE("/reference/:id/attachments", s.detach)

		api.GET("/stream/:collection", s.handleStream)

		api.POST("/send-calendar-invite", s.sendCalendarInvite)
	}

	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Version   string    `json:"version"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Message:   "GTD service is running",
		Version:   Version,
	})
}

func (s *Server) handleAuthUser(c *gin.Context) {
	u, _ := auth.UserFrom(c)
	c.JSON(http.StatusOK, u)
}

// uid is the verified user; every store call is scoped to it.
func uid(c *gin.Context) string {
	u, _ := auth.UserFrom(c)
	return u.UID
}

// bind decodes the JSON body into v. An empty body leaves v untouched.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// fail maps an error onto a response.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation), errors.Is(err, invite.ErrPrerequisite):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, docstore.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.logger.Error().Err(err).Str("userID", uid(c)).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred"})
	}
}

func created(c *gin.Context, id string) {
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
