package store

import (
	"context"
	"time"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

// NextActionStore persists next actions. It keeps completedDate coupled to
// status DONE on every write.
type NextActionStore struct {
	*Collection[models.NextAction, *models.NextAction]
}

// Validate checks a next action before it is created.
func (s *NextActionStore) Validate(a models.NextAction) error {
	if blank(a.Title) {
		return invalid("title is required")
	}
	if a.Status != "" && !a.Status.Valid() {
		return invalid("unknown status %q", a.Status)
	}
	if a.ProjectTaskID != nil && a.ProjectID == nil {
		return invalid("projectTaskId requires projectId")
	}
	if a.EstimatedDuration != nil && *a.EstimatedDuration < 0 {
		return invalid("estimatedDuration must not be negative")
	}
	return nil
}

// Prepare applies defaults and the status/date coupling to a new action.
func (s *NextActionStore) Prepare(a models.NextAction) models.NextAction {
	if a.Status == "" {
		a.Status = models.ActionQueued
	}
	if a.Status == models.ActionDone {
		if a.CompletedDate == nil {
			now := s.now()
			a.CompletedDate = &now
		}
	} else {
		a.CompletedDate = nil
	}
	return a
}

func (s *NextActionStore) Create(ctx context.Context, userID string, a models.NextAction) (string, error) {
	if err := s.Validate(a); err != nil {
		return "", err
	}
	return s.Add(ctx, userID, s.Prepare(a))
}

// Update normalizes p (so callers can read the effective completedDate
// afterwards) and writes it. completedDate may only be set together with
// status DONE; re-marking a DONE action keeps its original completedDate.
// The merged projectId/projectTaskId pair is checked against the stored action.
func (s *NextActionStore) Update(ctx context.Context, userID, id string, p *models.NextActionPatch) error {
	if blankPtr(p.Title) {
		return invalid("title must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("unknown status %q", *p.Status)
	}
	if p.CompletedDate != nil && (p.Status == nil || *p.Status != models.ActionDone) {
		return invalid("completedDate can only be set with status DONE")
	}
	if p.EstimatedDuration != nil && *p.EstimatedDuration < 0 {
		return invalid("estimatedDuration must not be negative")
	}

	redone := p.Status != nil && *p.Status == models.ActionDone && p.CompletedDate == nil
	if redone || p.ProjectID != nil || p.ProjectTaskID != nil {
		current, err := s.Get(ctx, userID, id)
		if err != nil {
			return err
		}
		if !linked(pick(p.ProjectID, current.ProjectID), pick(p.ProjectTaskID, current.ProjectTaskID)) {
			return invalid("projectTaskId requires projectId")
		}
		if redone && current.Status == models.ActionDone && current.CompletedDate != nil {
			p.CompletedDate = current.CompletedDate
		}
	}

	p.Normalize(s.now())
	return s.Collection.Update(ctx, userID, id, *p)
}

func pick(patch, current *string) *string {
	if patch != nil {
		return patch
	}
	return current
}

// linked reports whether a task link is backed by a project link.
func linked(projectID, taskID *string) bool {
	present := func(s *string) bool { return s != nil && !blank(*s) }
	return !present(taskID) || present(projectID)
}

// SaveTaskAnnotation stores an AI classification on the action.
func (s *NextActionStore) SaveTaskAnnotation(ctx context.Context, userID, id string, c models.TaskClassification, at time.Time) error {
	return s.Collection.Update(ctx, userID, id, models.NextActionPatch{
		Is2MinuteRuleCandidate: models.Ptr(c.Is2MinuteRuleCandidate),
		IsProjectCandidate:     models.Ptr(c.IsProjectCandidate),
		AIAnalysisDate:         &at,
		AIAnalysisData:         &c,
	})
}
