package models

import (
	"time"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
)

// Patches list the fields an update may touch. Nil fields are left alone;
// Fields always bumps updatedAt.

type InboxPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Processed   *bool   `json:"processed,omitempty"`
}

func (p InboxPatch) Fields() docstore.Fields {
	f := docstore.Fields{}
	put(f, "title", p.Title)
	put(f, "description", p.Description)
	put(f, "notes", p.Notes)
	put(f, "processed", p.Processed)
	return touched(f)
}

type NextActionPatch struct {
	Title                  *string             `json:"title,omitempty"`
	Description            *string             `json:"description,omitempty"`
	Notes                  *string             `json:"notes,omitempty"`
	Context                *string             `json:"context,omitempty"`
	EstimatedDuration      *int                `json:"estimatedDuration,omitempty"`
	Status                 *ActionStatus       `json:"status,omitempty"`
	ScheduledDate          *time.Time          `json:"scheduledDate,omitempty"`
	CompletedDate          *time.Time          `json:"completedDate,omitempty"`
	ProjectID              *string             `json:"projectId,omitempty"`
	ProjectTaskID          *string             `json:"projectTaskId,omitempty"`
	CalendarInviteSent     *bool               `json:"calendarInviteSent,omitempty"`
	UserEmail              *string             `json:"userEmail,omitempty"`
	Is2MinuteRuleCandidate *bool               `json:"is2MinuteRuleCandidate,omitempty"`
	IsProjectCandidate     *bool               `json:"isProjectCandidate,omitempty"`
	AIAnalysisDate         *time.Time          `json:"aiAnalysisDate,omitempty"`
	AIAnalysisData         *TaskClassification `json:"aiAnalysisData,omitempty"`

	clearCompletedDate bool
}

// Normalize couples completedDate to status: DONE gets a completedDate (now
// unless one was given), any other status removes it.
func (p *NextActionPatch) Normalize(now time.Time) {
	if p.Status == nil {
		return
	}
	if *p.Status == ActionDone {
		if p.CompletedDate == nil {
			p.CompletedDate = &now
		}
		p.clearCompletedDate = false
		return
	}
	p.CompletedDate = nil
	p.clearCompletedDate = true
}

func (p NextActionPatch) Fields() docstore.Fields {
	f := docstore.Fields{}
	put(f, "title", p.Title)
	put(f, "description", p.Description)
	put(f, "notes", p.Notes)
	put(f, "context", p.Context)
	put(f, "estimatedDuration", p.EstimatedDuration)
	put(f, "status", p.Status)
	put(f, "scheduledDate", p.ScheduledDate)
	put(f, "completedDate", p.CompletedDate)
	if p.clearCompletedDate {
		f["completedDate"] = docstore.DeleteField
	}
	put(f, "projectId", p.ProjectID)
	put(f, "projectTaskId", p.ProjectTaskID)
	put(f, "calendarInviteSent", p.CalendarInviteSent)
	put(f, "userEmail", p.UserEmail)
	put(f, "is2MinuteRuleCandidate", p.Is2MinuteRuleCandidate)
	put(f, "isProjectCandidate", p.IsProjectCandidate)
	put(f, "aiAnalysisDate", p.AIAnalysisDate)
	put(f, "aiAnalysisData", p.AIAnalysisData)
	return touched(f)
}

type ProjectPatch struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
	Tasks       []ProjectTask  `json:"-"`

	completedAt      *time.Time
	clearCompletedAt bool
}

// Normalize couples the project's completedAt to status DONE.
func (p *ProjectPatch) Normalize(now time.Time) {
	if p.Status == nil {
		return
	}
	if *p.Status == ProjectDone {
		p.completedAt = &now
		p.clearCompletedAt = false
		return
	}
	p.completedAt = nil
	p.clearCompletedAt = true
}

func (p ProjectPatch) Fields() docstore.Fields {
	f := docstore.Fields{}
	put(f, "title", p.Title)
	put(f, "description", p.Description)
	put(f, "notes", p.Notes)
	put(f, "status", p.Status)
	if p.Tasks != nil {
		f["tasks"] = p.Tasks
	}
	put(f, "completedAt", p.completedAt)
	if p.clearCompletedAt {
		f["completedAt"] = docstore.DeleteField
	}
	return touched(f)
}

// TaskPatch edits a task inside its project. Tasks are not documents, so the
// patch is applied in memory and the whole task list is written back.
type TaskPatch struct {
	Title         *string     `json:"title,omitempty"`
	Description   *string     `json:"description,omitempty"`
	Status        *TaskStatus `json:"status,omitempty"`
	DelegatedTo   *string     `json:"delegatedTo,omitempty"`
	BlockedReason *string     `json:"blockedReason,omitempty"`
	NextActionID  *string     `json:"nextActionId,omitempty"`
	CompletedAt   *time.Time  `json:"completedAt,omitempty"`
}

// Apply writes the patch onto t. completedAt follows status COMPLETED: it is
// taken from the patch, else now, and cleared for any other status.
func (p TaskPatch) Apply(t *ProjectTask, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.DelegatedTo != nil {
		t.DelegatedTo = p.DelegatedTo
	}
	if p.BlockedReason != nil {
		t.BlockedReason = p.BlockedReason
	}
	if p.NextActionID != nil {
		t.NextActionID = p.NextActionID
	}
	if p.Status != nil {
		t.Status = *p.Status
		if t.Status == TaskCompleted {
			completed := now
			if p.CompletedAt != nil {
				completed = *p.CompletedAt
			}
			t.CompletedAt = &completed
		} else {
			t.CompletedAt = nil
		}
	}
	t.UpdatedAt = now
}

type MaybeSomedayPatch struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
	Status      *MaybeStatus `json:"status,omitempty"`
	Priority    *Priority    `json:"priority,omitempty"`
	ReviewDate  *time.Time   `json:"reviewDate,omitempty"`
	Tags        *[]string    `json:"tags,omitempty"`
}

func (p MaybeSomedayPatch) Fields() docstore.Fields {
	f := docstore.Fields{}
	put(f, "title", p.Title)
	put(f, "description", p.Description)
	put(f, "notes", p.Notes)
	put(f, "status", p.Status)
	put(f, "priority", p.Priority)
	put(f, "reviewDate", p.ReviewDate)
	put(f, "tags", p.Tags)
	return touched(f)
}

type IssueTrackerPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ProjectID   *string `json:"projectId,omitempty"`
}

func (p IssueTrackerPatch) Fields() docstore.Fields {
	f := docstore.Fields{}
	put(f, "name", p.Name)
	put(f, "description", p.Description)
	put(f, "projectId", p.ProjectID)
	return touched(f)
}

type IssuePatch struct {
	Title              *string              `json:"title,omitempty"`
	Description        *string              `json:"description,omitempty"`
	Type               *IssueType           `json:"type,omitempty"`
	Priority           *IssuePriority       `json:"priority,omitempty"`
	Status             *IssueStatus         `json:"status,omitempty"`
	ReproductionSteps  *string              `json:"reproductionSteps,omitempty"`
	AcceptanceCriteria *string              `json:"acceptanceCriteria,omitempty"`
	ProjectID          *string              `json:"projectId,omitempty"`
	NextActionID       *string              `json:"nextActionId,omitempty"`
	Complexity         *Complexity          `json:"complexity,omitempty"`
	IsQuickFix         *bool                `json:"isQuickFix,omitempty"`
	ShouldBeProject    *bool                `json:"shouldBeProject,omitempty"`
	AIAnalysisDate     *time.Time           `json:"aiAnalysisDate,omitempty"`
	AIAnalysisData     *IssueClassification `json:"aiAnalysisData,omitempty"`
}

func (p IssuePatch) Fields() docstore.Fields {
	f := docstore.Fields{}
	put(f, "title", p.Title)
	put(f, "description", p.Description)
	put(f, "type", p.Type)
	put(f, "priority", p.Priority)
	put(f, "status", p.Status)
	put(f, "reproductionSteps", p.ReproductionSteps)
	put(f, "acceptanceCriteria", p.AcceptanceCriteria)
	put(f, "projectId", p.ProjectID)
	put(f, "nextActionId", p.NextActionID)
	put(f, "complexity", p.Complexity)
	put(f, "isQuickFix", p.IsQuickFix)
	put(f, "shouldBeProject", p.ShouldBeProject)
	put(f, "aiAnalysisDate", p.AIAnalysisDate)
	put(f, "aiAnalysisData", p.AIAnalysisData)
	return touched(f)
}

type ReferencePatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
	URL         *string       `json:"url,omitempty"`
	Tags        *[]string     `json:"tags,omitempty"`
	Attachments *[]Attachment `json:"-"`
}

func (p ReferencePatch) Fields() docstore.Fields {
	f := docstore.Fields{}
	put(f, "title", p.Title)
	put(f, "description", p.Description)
	put(f, "notes", p.Notes)
	put(f, "url", p.URL)
	put(f, "tags", p.Tags)
	put(f, "attachments", p.Attachments)
	return touched(f)
}

func touched(f docstore.Fields) docstore.Fields {
	f["updatedAt"] = docstore.ServerTimestamp
	return f
}
