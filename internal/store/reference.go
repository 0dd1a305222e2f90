package store

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/blob"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

// ErrStorageUnavailable is returned by attachment operations when no object
// storage is configured.
var ErrStorageUnavailable = errors.New("object storage not configured")

// ReferenceStore persists reference material. Attachment bytes live in the
// bucket; the document keeps their paths and download URLs.
type ReferenceStore struct {
	*Collection[models.ReferenceItem, *models.ReferenceItem]
	bucket blob.Bucket
}

func (s *ReferenceStore) Create(ctx context.Context, userID string, r models.ReferenceItem) (string, error) {
	if blank(r.Title) {
		return "", invalid("title is required")
	}
	r.Attachments = nil
	return s.Add(ctx, userID, r)
}

func (s *ReferenceStore) Update(ctx context.Context, userID, id string, p models.ReferencePatch) error {
	if blankPtr(p.Title) {
		return invalid("title must not be empty")
	}
	p.Attachments = nil
	return s.Collection.Update(ctx, userID, id, p)
}

// Delete removes the item, then its attachments. Attachment cleanup is best
// effort.
func (s *ReferenceStore) Delete(ctx context.Context, userID, id string) error {
	item, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.Collection.Delete(ctx, userID, id); err != nil {
		return err
	}
	if s.bucket == nil {
		return nil
	}
	for _, a := range item.Attachments {
		if err := s.bucket.Delete(ctx, a.Path); err != nil {
			s.logger.Error().Err(err).Str("userID", userID).Str("path", a.Path).Msg("delete attachment")
		}
	}
	return nil
}

// Attach uploads data and records it on the item.
func (s *ReferenceStore) Attach(ctx context.Context, userID, id, name, contentType string, data []byte) (models.Attachment, error) {
	if s.bucket == nil {
		return models.Attachment{}, ErrStorageUnavailable
	}
	if blank(name) {
		return models.Attachment{}, invalid("file name is required")
	}
	item, err := s.Get(ctx, userID, id)
	if err != nil {
		return models.Attachment{}, err
	}

	objectPath := fmt.Sprintf("users/%s/reference/%s/%s-%s", userID, id, uuid.NewString(), path.Base(name))
	url, err := s.bucket.Upload(ctx, objectPath, contentType, data)
	if err != nil {
		return models.Attachment{}, err
	}
	att := models.Attachment{
		Name:        name,
		Path:        objectPath,
		URL:         url,
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  s.now(),
	}
	attachments := append(item.Attachments, att)
	if err := s.Collection.Update(ctx, userID, id, models.ReferencePatch{Attachments: &attachments}); err != nil {
		if derr := s.bucket.Delete(ctx, objectPath); derr != nil {
			s.logger.Error().Err(derr).Str("path", objectPath).Msg("remove orphaned attachment")
		}
		return models.Attachment{}, err
	}
	return att, nil
}

// Detach removes one attachment from the item and from the bucket.
func (s *ReferenceStore) Detach(ctx context.Context, userID, id, objectPath string) error {
	if s.bucket == nil {
		return ErrStorageUnavailable
	}
	item, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	kept := make([]models.Attachment, 0, len(item.Attachments))
	found := false
	for _, a := range item.Attachments {
		if a.Path == objectPath {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return invalid("attachment %q not on item", objectPath)
	}
	if err := s.Collection.Update(ctx, userID, id, models.ReferencePatch{Attachments: &kept}); err != nil {
		return err
	}
	return s.bucket.Delete(ctx, objectPath)
}
