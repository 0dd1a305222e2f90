package store

import (
	"context"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

type MaybeSomedayStore struct {
	*Collection[models.MaybeSomedayItem, *models.MaybeSomedayItem]
}

func (s *MaybeSomedayStore) Validate(m models.MaybeSomedayItem) error {
	if blank(m.Title) {
		return invalid("title is required")
	}
	if m.Status != "" && !m.Status.Valid() {
		return invalid("unknown status %q", m.Status)
	}
	if m.Priority != nil && !m.Priority.Valid() {
		return invalid("unknown priority %q", *m.Priority)
	}
	return nil
}

func (s *MaybeSomedayStore) Create(ctx context.Context, userID string, m models.MaybeSomedayItem) (string, error) {
	if err := s.Validate(m); err != nil {
		return "", err
	}
	return s.Add(ctx, userID, m)
}

func (s *MaybeSomedayStore) Update(ctx context.Context, userID, id string, p models.MaybeSomedayPatch) error {
	if blankPtr(p.Title) {
		return invalid("title must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("unknown status %q", *p.Status)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid("unknown priority %q", *p.Priority)
	}
	return s.Collection.Update(ctx, userID, id, p)
}
