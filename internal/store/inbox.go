package store

import (
	"context"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

// InboxStore persists captured items.
type InboxStore struct {
	*Collection[models.InboxItem, *models.InboxItem]
}

// Capture stores a new, unprocessed inbox item.
func (s *InboxStore) Capture(ctx context.Context, userID string, item models.InboxItem) (string, error) {
	if blank(item.Title) {
		return "", invalid("title is required")
	}
	item.Processed = false
	return s.Add(ctx, userID, item)
}

func (s *InboxStore) Update(ctx context.Context, userID, id string, p models.InboxPatch) error {
	if blankPtr(p.Title) {
		return invalid("title must not be empty")
	}
	return s.Collection.Update(ctx, userID, id, p)
}

// ListUnprocessed returns the items still waiting to be clarified.
func (s *InboxStore) ListUnprocessed(ctx context.Context, userID string) ([]models.InboxItem, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, it := range items {
		if !it.Processed {
			out = append(out, it)
		}
	}
	return out, nil
}
