// Package firestorestore implements the document gateway on Cloud Firestore,
// reached through the Firebase Admin SDK.
package firestorestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
)

// Store implements docstore.Gateway on a Firestore client.
type Store struct {
	client *firestore.Client
	logger zerolog.Logger
}

// New wraps an initialized Firestore client.
func New(client *firestore.Client, logger zerolog.Logger) *Store {
	return &Store{client: client, logger: logger}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) collection(c docstore.CollectionRef) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(c.UserID).Collection(c.Name)
}

func (s *Store) doc(d docstore.DocRef) *firestore.DocumentRef {
	return s.collection(d.Collection).Doc(d.ID)
}

func (s *Store) query(c docstore.CollectionRef, order docstore.Order) firestore.Query {
	q := s.collection(c).Query
	if order.Field != "" {
		dir := firestore.Asc
		if order.Desc {
			dir = firestore.Desc
		}
		q = q.OrderBy(order.Field, dir)
	}
	return q
}

type snapshot struct {
	*firestore.DocumentSnapshot
}

func (sn snapshot) ID() string { return sn.Ref.ID }

func wrap(docs []*firestore.DocumentSnapshot) []docstore.Snapshot {
	out := make([]docstore.Snapshot, len(docs))
	for i, d := range docs {
		out[i] = snapshot{d}
	}
	return out
}

func (s *Store) List(ctx context.Context, col docstore.CollectionRef, order docstore.Order) ([]docstore.Snapshot, error) {
	docs, err := s.query(col, order).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", col.Path(), err)
	}
	return wrap(docs), nil
}

func (s *Store) Get(ctx context.Context, doc docstore.DocRef) (docstore.Snapshot, error) {
	snap, err := s.doc(doc).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", doc.Path(), mapErr(err))
	}
	return snapshot{snap}, nil
}

func (s *Store) Add(ctx context.Context, col docstore.CollectionRef, data docstore.Fields) (string, error) {
	ref := s.collection(col).NewDoc()
	if _, err := ref.Create(ctx, createData(data)); err != nil {
		return "", fmt.Errorf("add %s: %w", col.Path(), mapErr(err))
	}
	return ref.ID, nil
}

func (s *Store) Update(ctx context.Context, doc docstore.DocRef, data docstore.Fields) error {
	if _, err := s.doc(doc).Update(ctx, updates(data)); err != nil {
		return fmt.Errorf("update %s: %w", doc.Path(), mapErr(err))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, doc docstore.DocRef) error {
	if _, err := s.doc(doc).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", doc.Path(), mapErr(err))
	}
	return nil
}

func (s *Store) Subscribe(ctx context.Context, col docstore.CollectionRef, order docstore.Order, fn docstore.Listener) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	it := s.query(col, order).Snapshots(ctx)

	go func() {
		for {
			qs, err := it.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					s.logger.Error().Err(err).Str("path", col.Path()).Msg("live query stopped")
				}
				return
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				s.logger.Error().Err(err).Str("path", col.Path()).Msg("read live query snapshot")
				continue
			}
			fn(wrap(docs))
		}
	}()

	return func() {
		cancel()
		it.Stop()
	}, nil
}

func (s *Store) Batch() docstore.Batch {
	return &batch{store: s, wb: s.client.Batch()}
}

type batch struct {
	store *Store
	wb    *firestore.WriteBatch
}

func (b *batch) Create(col docstore.CollectionRef, data docstore.Fields) docstore.DocRef {
	ref := b.store.collection(col).NewDoc()
	b.wb.Create(ref, createData(data))
	return col.Doc(ref.ID)
}

func (b *batch) Update(doc docstore.DocRef, data docstore.Fields) {
	b.wb.Update(b.store.doc(doc), updates(data))
}

func (b *batch) Delete(doc docstore.DocRef) {
	b.wb.Delete(b.store.doc(doc))
}

func (b *batch) Commit(ctx context.Context) error {
	if _, err := b.wb.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", mapErr(err))
	}
	return nil
}

func createData(data docstore.Fields) map[string]interface{} {
	set, _ := docstore.Resolve(data, firestore.ServerTimestamp)
	return map[string]interface{}(set)
}

func updates(data docstore.Fields) []firestore.Update {
	out := make([]firestore.Update, 0, len(data))
	for k, v := range data {
		switch v {
		case docstore.ServerTimestamp:
			v = firestore.ServerTimestamp
		case docstore.DeleteField:
			v = firestore.Delete
		}
		out = append(out, firestore.Update{Path: k, Value: v})
	}
	return out
}

func mapErr(err error) error {
	if status.Code(err) == codes.NotFound {
		return docstore.ErrNotFound
	}
	return err
}
