// Package docstore is the persistence gateway: a per-user document database
// addressed as users/{userId}/{collection}. Backends live in sub-packages.
package docstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document does not exist. Batches that
// update a missing document fail with it and commit nothing.
var ErrNotFound = errors.New("document not found")

// Fields is a partial document body keyed by top-level field name.
type Fields map[string]any

type sentinel struct{ name string }

func (s *sentinel) String() string { return s.name }

var (
	// ServerTimestamp is replaced by the backend's notion of "now" at write time.
	ServerTimestamp any = &sentinel{"ServerTimestamp"}
	// DeleteField removes the field from the stored document.
	DeleteField any = &sentinel{"DeleteField"}
)

// CollectionRef names one user-scoped collection.
type CollectionRef struct {
	UserID string
	Name   string
}

// Collection builds a CollectionRef.
func Collection(userID, name string) CollectionRef {
	return CollectionRef{UserID: userID, Name: name}
}

// Path returns users/{userId}/{name}.
func (c CollectionRef) Path() string {
	return fmt.Sprintf("users/%s/%s", c.UserID, c.Name)
}

// Doc returns a reference to a document of this collection.
func (c CollectionRef) Doc(id string) DocRef {
	return DocRef{Collection: c, ID: id}
}

// DocRef names one document.
type DocRef struct {
	Collection CollectionRef
	ID         string
}

// Path returns users/{userId}/{name}/{id}.
func (d DocRef) Path() string {
	return d.Collection.Path() + "/" + d.ID
}

// Order describes the ordering of a list query.
type Order struct {
	Field string
	Desc  bool
}

// NewestFirst orders by createdAt descending, the order every store lists in.
var NewestFirst = Order{Field: "createdAt", Desc: true}

// Snapshot is one document as read from the backend.
type Snapshot interface {
	ID() string
	// DataTo decodes the document body into v using the backend's codec.
	DataTo(v any) error
}

// Listener receives the complete, ordered contents of a collection on every change.
type Listener func(docs []Snapshot)

// Gateway is the document database seen by the entity stores.
type Gateway interface {
	List(ctx context.Context, col CollectionRef, order Order) ([]Snapshot, error)
	Get(ctx context.Context, doc DocRef) (Snapshot, error)
	// Subscribe delivers the current contents immediately and again after
	// every remote change until stop is called or ctx is done.
	Subscribe(ctx context.Context, col CollectionRef, order Order, fn Listener) (stop func(), err error)
	Add(ctx context.Context, col CollectionRef, data Fields) (string, error)
	Update(ctx context.Context, doc DocRef, data Fields) error
	Delete(ctx context.Context, doc DocRef) error
	Batch() Batch
	Close() error
}

// Batch collects writes that are committed atomically.
type Batch interface {
	// Create queues a new document and returns its reference; the id is
	// known before Commit.
	Create(col CollectionRef, data Fields) DocRef
	Update(doc DocRef, data Fields)
	Delete(doc DocRef)
	Commit(ctx context.Context) error
}

// IsSentinel reports whether v is one of the write sentinels.
func IsSentinel(v any) bool {
	return v == ServerTimestamp || v == DeleteField
}

// Resolve returns a copy of data with ServerTimestamp replaced by now and
// DeleteField entries collected separately.
func Resolve(data Fields, now any) (set Fields, unset []string) {
	set = make(Fields, len(data))
	for k, v := range data {
		switch v {
		case ServerTimestamp:
			set[k] = now
		case DeleteField:
			unset = append(unset, k)
		default:
			set[k] = v
		}
	}
	return set, unset
}
