// Package models holds the GTD entities as they are stored in the document
// database. Field names are identical across the json, bson and firestore
// tags so any gateway backend decodes the same struct.
package models

import (
	"time"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
)

// Collection names under users/{userId}/.
const (
	InboxCollection         = "inbox"
	NextActionsCollection   = "nextActions"
	ProjectsCollection      = "projects"
	MaybeSomedayCollection  = "maybeSomeday"
	IssueTrackersCollection = "issueTrackers"
	IssuesCollection        = "issues"
	ReferenceCollection     = "reference"
)

// Meta carries the id and server-managed timestamps shared by every document.
// The id is the document key and never part of the stored body.
type Meta struct {
	ID        string    `json:"id" bson:"-" firestore:"-"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
}

func (m *Meta) SetID(id string) { m.ID = id }

// DefaultTimestamps fills missing timestamps with now.
func (m *Meta) DefaultTimestamps(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
}

// Document is implemented by every stored entity.
type Document interface {
	SetID(id string)
	DefaultTimestamps(now time.Time)
	// Fields returns the body written when the entity is created.
	Fields() docstore.Fields
}

// InboxItem is an unsorted capture.
type InboxItem struct {
	Meta        `bson:",inline"`
	UserID      string  `json:"userId" bson:"userId" firestore:"userId"`
	Title       string  `json:"title" bson:"title" firestore:"title"`
	Description *string `json:"description,omitempty" bson:"description,omitempty" firestore:"description,omitempty"`
	Notes       *string `json:"notes,omitempty" bson:"notes,omitempty" firestore:"notes,omitempty"`
	Processed   bool    `json:"processed" bson:"processed" firestore:"processed"`
}

func (i InboxItem) Fields() docstore.Fields {
	f := docstore.Fields{
		"userId":    i.UserID,
		"title":     i.Title,
		"processed": i.Processed,
	}
	put(f, "description", i.Description)
	put(f, "notes", i.Notes)
	return stamped(f)
}

// NextAction is a single concrete, schedulable task.
type NextAction struct {
	Meta                   `bson:",inline"`
	UserID                 string              `json:"userId" bson:"userId" firestore:"userId"`
	Title                  string              `json:"title" bson:"title" firestore:"title"`
	Description            *string             `json:"description,omitempty" bson:"description,omitempty" firestore:"description,omitempty"`
	Notes                  *string             `json:"notes,omitempty" bson:"notes,omitempty" firestore:"notes,omitempty"`
	Context                *string             `json:"context,omitempty" bson:"context,omitempty" firestore:"context,omitempty"`
	EstimatedDuration      *int                `json:"estimatedDuration,omitempty" bson:"estimatedDuration,omitempty" firestore:"estimatedDuration,omitempty"`
	Status                 ActionStatus        `json:"status" bson:"status" firestore:"status"`
	ScheduledDate          *time.Time          `json:"scheduledDate,omitempty" bson:"scheduledDate,omitempty" firestore:"scheduledDate,omitempty"`
	CompletedDate          *time.Time          `json:"completedDate,omitempty" bson:"completedDate,omitempty" firestore:"completedDate,omitempty"`
	ProjectID              *string             `json:"projectId,omitempty" bson:"projectId,omitempty" firestore:"projectId,omitempty"`
	ProjectTaskID          *string             `json:"projectTaskId,omitempty" bson:"projectTaskId,omitempty" firestore:"projectTaskId,omitempty"`
	CalendarInviteSent     *bool               `json:"calendarInviteSent,omitempty" bson:"calendarInviteSent,omitempty" firestore:"calendarInviteSent,omitempty"`
	UserEmail              *string             `json:"userEmail,omitempty" bson:"userEmail,omitempty" firestore:"userEmail,omitempty"`
	Is2MinuteRuleCandidate *bool               `json:"is2MinuteRuleCandidate,omitempty" bson:"is2MinuteRuleCandidate,omitempty" firestore:"is2MinuteRuleCandidate,omitempty"`
	IsProjectCandidate     *bool               `json:"isProjectCandidate,omitempty" bson:"isProjectCandidate,omitempty" firestore:"isProjectCandidate,omitempty"`
	AIAnalysisDate         *time.Time          `json:"aiAnalysisDate,omitempty" bson:"aiAnalysisDate,omitempty" firestore:"aiAnalysisDate,omitempty"`
	AIAnalysisData         *TaskClassification `json:"aiAnalysisData,omitempty" bson:"aiAnalysisData,omitempty" firestore:"aiAnalysisData,omitempty"`
}

func (a NextAction) Fields() docstore.Fields {
	if a.Status == "" {
		a.Status = ActionQueued
	}
	f := docstore.Fields{
		"userId": a.UserID,
		"title":  a.Title,
		"status": a.Status,
	}
	put(f, "description", a.Description)
	put(f, "notes", a.Notes)
	put(f, "context", a.Context)
	put(f, "estimatedDuration", a.EstimatedDuration)
	put(f, "scheduledDate", a.ScheduledDate)
	put(f, "completedDate", a.CompletedDate)
	put(f, "projectId", a.ProjectID)
	put(f, "projectTaskId", a.ProjectTaskID)
	put(f, "calendarInviteSent", a.CalendarInviteSent)
	put(f, "userEmail", a.UserEmail)
	put(f, "is2MinuteRuleCandidate", a.Is2MinuteRuleCandidate)
	put(f, "isProjectCandidate", a.IsProjectCandidate)
	put(f, "aiAnalysisDate", a.AIAnalysisDate)
	put(f, "aiAnalysisData", a.AIAnalysisData)
	return stamped(f)
}

// Annotation returns the persisted AI annotation of the action.
func (a NextAction) Annotation() *TaskAnnotation {
	return &TaskAnnotation{
		AnalysisDate:           a.AIAnalysisDate,
		Is2MinuteRuleCandidate: a.Is2MinuteRuleCandidate,
		IsProjectCandidate:     a.IsProjectCandidate,
		Data:                   a.AIAnalysisData,
	}
}

// Project owns an ordered list of tasks. Tasks only exist inside the
// project document.
type Project struct {
	Meta        `bson:",inline"`
	UserID      string        `json:"userId" bson:"userId" firestore:"userId"`
	Title       string        `json:"title" bson:"title" firestore:"title"`
	Description *string       `json:"description,omitempty" bson:"description,omitempty" firestore:"description,omitempty"`
	Notes       *string       `json:"notes,omitempty" bson:"notes,omitempty" firestore:"notes,omitempty"`
	Status      ProjectStatus `json:"status" bson:"status" firestore:"status"`
	Tasks       []ProjectTask `json:"tasks" bson:"tasks" firestore:"tasks"`
	CompletedAt *time.Time    `json:"completedAt,omitempty" bson:"completedAt,omitempty" firestore:"completedAt,omitempty"`
}

func (p Project) Fields() docstore.Fields {
	if p.Status == "" {
		p.Status = ProjectQueued
	}
	if p.Tasks == nil {
		p.Tasks = []ProjectTask{}
	}
	f := docstore.Fields{
		"userId": p.UserID,
		"title":  p.Title,
		"status": p.Status,
		"tasks":  p.Tasks,
	}
	put(f, "description", p.Description)
	put(f, "notes", p.Notes)
	put(f, "completedAt", p.CompletedAt)
	return stamped(f)
}

// ProjectTask is a step of a Project, identified by a locally generated id.
type ProjectTask struct {
	ID            string        `json:"id" bson:"id" firestore:"id"`
	Title         string        `json:"title" bson:"title" firestore:"title"`
	Description   *string       `json:"description,omitempty" bson:"description,omitempty" firestore:"description,omitempty"`
	Status        TaskStatus    `json:"status" bson:"status" firestore:"status"`
	DelegatedTo   *string       `json:"delegatedTo,omitempty" bson:"delegatedTo,omitempty" firestore:"delegatedTo,omitempty"`
	BlockedReason *string       `json:"blockedReason,omitempty" bson:"blockedReason,omitempty" firestore:"blockedReason,omitempty"`
	NextActionID  *string       `json:"nextActionId,omitempty" bson:"nextActionId,omitempty" firestore:"nextActionId,omitempty"`
	Subtasks      []ProjectTask `json:"subtasks,omitempty" bson:"subtasks,omitempty" firestore:"subtasks,omitempty"`
	Order         int           `json:"order" bson:"order" firestore:"order"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty" bson:"completedAt,omitempty" firestore:"completedAt,omitempty"`
}

// MaybeSomedayItem is a deferred idea.
type MaybeSomedayItem struct {
	Meta        `bson:",inline"`
	UserID      string      `json:"userId" bson:"userId" firestore:"userId"`
	Title       string      `json:"title" bson:"title" firestore:"title"`
	Description *string     `json:"description,omitempty" bson:"description,omitempty" firestore:"description,omitempty"`
	Notes       *string     `json:"notes,omitempty" bson:"notes,omitempty" firestore:"notes,omitempty"`
	Status      MaybeStatus `json:"status" bson:"status" firestore:"status"`
	Priority    *Priority   `json:"priority,omitempty" bson:"priority,omitempty" firestore:"priority,omitempty"`
	ReviewDate  *time.Time  `json:"reviewDate,omitempty" bson:"reviewDate,omitempty" firestore:"reviewDate,omitempty"`
	Tags        []string    `json:"tags,omitempty" bson:"tags,omitempty" firestore:"tags,omitempty"`
}

func (m MaybeSomedayItem) Fields() docstore.Fields {
	if m.Status == "" {
		m.Status = MaybeMaybe
	}
	f := docstore.Fields{
		"userId": m.UserID,
		"title":  m.Title,
		"status": m.Status,
	}
	put(f, "description", m.Description)
	put(f, "notes", m.Notes)
	put(f, "priority", m.Priority)
	put(f, "reviewDate", m.ReviewDate)
	if len(m.Tags) > 0 {
		f["tags"] = m.Tags
	}
	return stamped(f)
}

// IssueTracker groups issues, optionally for one project.
type IssueTracker struct {
	Meta        `bson:",inline"`
	UserID      string  `json:"userId" bson:"userId" firestore:"userId"`
	Name        string  `json:"name" bson:"name" firestore:"name"`
	Description *string `json:"description,omitempty" bson:"description,omitempty" firestore:"description,omitempty"`
	ProjectID   *string `json:"projectId,omitempty" bson:"projectId,omitempty" firestore:"projectId,omitempty"`
}

func (t IssueTracker) Fields() docstore.Fields {
	f := docstore.Fields{
		"userId": t.UserID,
		"name":   t.Name,
	}
	put(f, "description", t.Description)
	put(f, "projectId", t.ProjectID)
	return stamped(f)
}

// Issue belongs to exactly one tracker.
type Issue struct {
	Meta               `bson:",inline"`
	UserID             string               `json:"userId" bson:"userId" firestore:"userId"`
	IssueTrackerID     string               `json:"issueTrackerId" bson:"issueTrackerId" firestore:"issueTrackerId"`
	ProjectID          *string              `json:"projectId,omitempty" bson:"projectId,omitempty" firestore:"projectId,omitempty"`
	Title              string               `json:"title" bson:"title" firestore:"title"`
	Description        *string              `json:"description,omitempty" bson:"description,omitempty" firestore:"description,omitempty"`
	Type               IssueType            `json:"type" bson:"type" firestore:"type"`
	Priority           IssuePriority        `json:"priority" bson:"priority" firestore:"priority"`
	Status             IssueStatus          `json:"status" bson:"status" firestore:"status"`
	ReproductionSteps  *string              `json:"reproductionSteps,omitempty" bson:"reproductionSteps,omitempty" firestore:"reproductionSteps,omitempty"`
	AcceptanceCriteria *string              `json:"acceptanceCriteria,omitempty" bson:"acceptanceCriteria,omitempty" firestore:"acceptanceCriteria,omitempty"`
	NextActionID       *string              `json:"nextActionId,omitempty" bson:"nextActionId,omitempty" firestore:"nextActionId,omitempty"`
	Complexity         *Complexity          `json:"complexity,omitempty" bson:"complexity,omitempty" firestore:"complexity,omitempty"`
	IsQuickFix         *bool                `json:"isQuickFix,omitempty" bson:"isQuickFix,omitempty" firestore:"isQuickFix,omitempty"`
	ShouldBeProject    *bool                `json:"shouldBeProject,omitempty" bson:"shouldBeProject,omitempty" firestore:"shouldBeProject,omitempty"`
	AIAnalysisDate     *time.Time           `json:"aiAnalysisDate,omitempty" bson:"aiAnalysisDate,omitempty" firestore:"aiAnalysisDate,omitempty"`
	AIAnalysisData     *IssueClassification `json:"aiAnalysisData,omitempty" bson:"aiAnalysisData,omitempty" firestore:"aiAnalysisData,omitempty"`
}

func (i Issue) Fields() docstore.Fields {
	if i.Type == "" {
		i.Type = IssueTask
	}
	if i.Priority == "" {
		i.Priority = IssuePriorityMedium
	}
	if i.Status == "" {
		i.Status = IssueOpen
	}
	f := docstore.Fields{
		"userId":         i.UserID,
		"issueTrackerId": i.IssueTrackerID,
		"title":          i.Title,
		"type":           i.Type,
		"priority":       i.Priority,
		"status":         i.Status,
	}
	put(f, "projectId", i.ProjectID)
	put(f, "description", i.Description)
	put(f, "reproductionSteps", i.ReproductionSteps)
	put(f, "acceptanceCriteria", i.AcceptanceCriteria)
	put(f, "nextActionId", i.NextActionID)
	put(f, "complexity", i.Complexity)
	put(f, "isQuickFix", i.IsQuickFix)
	put(f, "shouldBeProject", i.ShouldBeProject)
	put(f, "aiAnalysisDate", i.AIAnalysisDate)
	put(f, "aiAnalysisData", i.AIAnalysisData)
	return stamped(f)
}

// Annotation returns the persisted AI annotation of the issue.
func (i Issue) Annotation() *IssueAnnotation {
	return &IssueAnnotation{
		AnalysisDate:    i.AIAnalysisDate,
		IsQuickFix:      i.IsQuickFix,
		ShouldBeProject: i.ShouldBeProject,
		Data:            i.AIAnalysisData,
	}
}

// ReferenceItem is stored reference material with optional file attachments.
type ReferenceItem struct {
	Meta        `bson:",inline"`
	UserID      string       `json:"userId" bson:"userId" firestore:"userId"`
	Title       string       `json:"title" bson:"title" firestore:"title"`
	Description *string      `json:"description,omitempty" bson:"description,omitempty" firestore:"description,omitempty"`
	Notes       *string      `json:"notes,omitempty" bson:"notes,omitempty" firestore:"notes,omitempty"`
	URL         *string      `json:"url,omitempty" bson:"url,omitempty" firestore:"url,omitempty"`
	Tags        []string     `json:"tags,omitempty" bson:"tags,omitempty" firestore:"tags,omitempty"`
	Attachments []Attachment `json:"attachments" bson:"attachments" firestore:"attachments"`
}

// Attachment is a file kept in object storage.
type Attachment struct {
	Name        string    `json:"name" bson:"name" firestore:"name"`
	Path        string    `json:"path" bson:"path" firestore:"path"`
	URL         string    `json:"url" bson:"url" firestore:"url"`
	ContentType string    `json:"contentType" bson:"contentType" firestore:"contentType"`
	Size        int64     `json:"size" bson:"size" firestore:"size"`
	UploadedAt  time.Time `json:"uploadedAt" bson:"uploadedAt" firestore:"uploadedAt"`
}

func (r ReferenceItem) Fields() docstore.Fields {
	if r.Attachments == nil {
		r.Attachments = []Attachment{}
	}
	f := docstore.Fields{
		"userId":      r.UserID,
		"title":       r.Title,
		"attachments": r.Attachments,
	}
	put(f, "description", r.Description)
	put(f, "notes", r.Notes)
	put(f, "url", r.URL)
	if len(r.Tags) > 0 {
		f["tags"] = r.Tags
	}
	return stamped(f)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

func put[T any](f docstore.Fields, key string, v *T) {
	if v != nil {
		f[key] = *v
	}
}

func stamped(f docstore.Fields) docstore.Fields {
	f["createdAt"] = docstore.ServerTimestamp
	f["updatedAt"] = docstore.ServerTimestamp
	return f
}
