// Package blob stores reference attachments in object storage.
package blob

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
)

// Bucket is the object storage used for attachments.
type Bucket interface {
	// Upload stores data at path and returns a download URL.
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
}

// FirebaseBucket is a Firebase Storage bucket.
type FirebaseBucket struct {
	name   string
	handle *storage.BucketHandle
}

// NewFirebaseBucket opens bucket name of the Firebase app; an empty name
// selects the app's default bucket.
func NewFirebaseBucket(ctx context.Context, app *firebase.App, name string) (*FirebaseBucket, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase storage: %w", err)
	}
	var handle *storage.BucketHandle
	if name == "" {
		handle, err = client.DefaultBucket()
	} else {
		handle, err = client.Bucket(name)
	}
	if err != nil {
		return nil, fmt.Errorf("open bucket %q: %w", name, err)
	}
	if name == "" {
		name = handle.Object("_").BucketName()
	}
	return &FirebaseBucket{name: name, handle: handle}, nil
}

func (b *FirebaseBucket) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	token := uuid.NewString()
	w := b.handle.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return DownloadURL(b.name, path, token), nil
}

func (b *FirebaseBucket) Delete(ctx context.Context, path string) error {
	err := b.handle.Object(path).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// DownloadURL builds the token-protected Firebase download URL of an object.
func DownloadURL(bucket, path, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(path), token)
}
