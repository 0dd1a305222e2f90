package store

import (
	"context"
	"time"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

type IssueTrackerStore struct {
	*Collection[models.IssueTracker, *models.IssueTracker]
}

func (s *IssueTrackerStore) Create(ctx context.Context, userID string, t models.IssueTracker) (string, error) {
	if blank(t.Name) {
		return "", invalid("name is required")
	}
	return s.Add(ctx, userID, t)
}

func (s *IssueTrackerStore) Update(ctx context.Context, userID, id string, p models.IssueTrackerPatch) error {
	if blankPtr(p.Name) {
		return invalid("name must not be empty")
	}
	return s.Collection.Update(ctx, userID, id, p)
}

// IssueStore persists issues. Deleting a tracker leaves its issues in place.
type IssueStore struct {
	*Collection[models.Issue, *models.Issue]
}

func (s *IssueStore) Create(ctx context.Context, userID string, i models.Issue) (string, error) {
	if blank(i.Title) {
		return "", invalid("title is required")
	}
	if blank(i.IssueTrackerID) {
		return "", invalid("issueTrackerId is required")
	}
	if i.Type != "" && !i.Type.Valid() {
		return "", invalid("unknown type %q", i.Type)
	}
	if i.Priority != "" && !i.Priority.Valid() {
		return "", invalid("unknown priority %q", i.Priority)
	}
	if i.Status != "" && !i.Status.Valid() {
		return "", invalid("unknown status %q", i.Status)
	}
	return s.Add(ctx, userID, i)
}

func (s *IssueStore) Update(ctx context.Context, userID, id string, p models.IssuePatch) error {
	if blankPtr(p.Title) {
		return invalid("title must not be empty")
	}
	if p.Type != nil && !p.Type.Valid() {
		return invalid("unknown type %q", *p.Type)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid("unknown priority %q", *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("unknown status %q", *p.Status)
	}
	return s.Collection.Update(ctx, userID, id, p)
}

// ListByTracker returns the issues of one tracker, newest first.
func (s *IssueStore) ListByTracker(ctx context.Context, userID, trackerID string) ([]models.Issue, error) {
	issues, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := issues[:0]
	for _, i := range issues {
		if i.IssueTrackerID == trackerID {
			out = append(out, i)
		}
	}
	return out, nil
}

// SaveIssueAnnotation stores an AI classification on the issue.
func (s *IssueStore) SaveIssueAnnotation(ctx context.Context, userID, id string, c models.IssueClassification, at time.Time) error {
	return s.Collection.Update(ctx, userID, id, models.IssuePatch{
		Complexity:      models.Ptr(c.Complexity),
		IsQuickFix:      models.Ptr(c.IsQuickFix),
		ShouldBeProject: models.Ptr(c.ShouldBeProject),
		AIAnalysisDate:  &at,
		AIAnalysisData:  &c,
	})
}
