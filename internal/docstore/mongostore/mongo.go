// Package mongostore implements the document gateway on MongoDB. Each
// collection name maps to one Mongo collection; documents are scoped to
// their owner by a userId field.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
)

// Store implements docstore.Gateway on a Mongo database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger zerolog.Logger
}

// Connect dials uri and selects database dbName.
func Connect(ctx context.Context, uri, dbName string, logger zerolog.Logger) (*Store, error) {
	if uri == "" {
		return nil, errors.New("MONGODB_URI environment variable not set")
	}
	logger.Info().Str("database", dbName).Msg("connecting to MongoDB")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info().Msg("MongoDB connected successfully")
	return &Store{client: client, db: client.Database(dbName), logger: logger}, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) coll(c docstore.CollectionRef) *mongo.Collection {
	return s.db.Collection(c.Name)
}

func docFilter(d docstore.DocRef) bson.M {
	return bson.M{"_id": d.ID, "userId": d.Collection.UserID}
}

type snapshot struct {
	id  string
	raw bson.Raw
}

func (sn *snapshot) ID() string { return sn.id }

func (sn *snapshot) DataTo(v any) error {
	return bson.Unmarshal(sn.raw, v)
}

func newSnapshot(raw bson.Raw) *snapshot {
	own := make(bson.Raw, len(raw))
	copy(own, raw)
	id, _ := own.Lookup("_id").StringValueOK()
	return &snapshot{id: id, raw: own}
}

func (s *Store) List(ctx context.Context, col docstore.CollectionRef, order docstore.Order) ([]docstore.Snapshot, error) {
	opts := options.Find()
	if order.Field != "" {
		dir := 1
		if order.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: order.Field, Value: dir}})
	}
	cur, err := s.coll(col).Find(ctx, bson.M{"userId": col.UserID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", col.Path(), err)
	}
	defer cur.Close(ctx)

	out := []docstore.Snapshot{}
	for cur.Next(ctx) {
		out = append(out, newSnapshot(cur.Current))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", col.Path(), err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, doc docstore.DocRef) (docstore.Snapshot, error) {
	raw, err := s.coll(doc.Collection).FindOne(ctx, docFilter(doc)).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("get %s: %w", doc.Path(), docstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", doc.Path(), err)
	}
	return newSnapshot(raw), nil
}

func (s *Store) Add(ctx context.Context, col docstore.CollectionRef, data docstore.Fields) (string, error) {
	ref := col.Doc(primitive.NewObjectID().Hex())
	if err := s.insert(ctx, ref, data); err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *Store) insert(ctx context.Context, ref docstore.DocRef, data docstore.Fields) error {
	set, _ := docstore.Resolve(data, time.Now().UTC())
	body := bson.M(set)
	body["_id"] = ref.ID
	body["userId"] = ref.Collection.UserID
	if _, err := s.coll(ref.Collection).InsertOne(ctx, body); err != nil {
		return fmt.Errorf("insert %s: %w", ref.Path(), err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, doc docstore.DocRef, data docstore.Fields) error {
	set, unset := docstore.Resolve(data, time.Now().UTC())
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = bson.M(set)
	}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, k := range unset {
			fields[k] = ""
		}
		update["$unset"] = fields
	}
	res, err := s.coll(doc.Collection).UpdateOne(ctx, docFilter(doc), update)
	if err != nil {
		return fmt.Errorf("update %s: %w", doc.Path(), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update %s: %w", doc.Path(), docstore.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, doc docstore.DocRef) error {
	if _, err := s.coll(doc.Collection).DeleteOne(ctx, docFilter(doc)); err != nil {
		return fmt.Errorf("delete %s: %w", doc.Path(), err)
	}
	return nil
}

// Subscribe lists once, then re-lists on change stream events that touch the
// owner's documents. Inserts, updates and replaces are matched on
// fullDocument.userId; deletes carry only the document key, so they count
// when the id was in the last list. Change streams need a replica set.
func (s *Store) Subscribe(ctx context.Context, col docstore.CollectionRef, order docstore.Order, fn docstore.Listener) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := s.coll(col).Watch(ctx, watchPipeline(col.UserID), opts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch %s: %w", col.Path(), err)
	}

	known := map[string]struct{}{}
	refresh := func() {
		docs, err := s.List(ctx, col, order)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Error().Err(err).Str("path", col.Path()).Msg("subscription refresh failed")
			}
			return
		}
		clear(known)
		for _, d := range docs {
			known[d.ID()] = struct{}{}
		}
		fn(docs)
	}

	go func() {
		defer stream.Close(context.Background())
		refresh()
		for stream.Next(ctx) {
			var ev changeEvent
			if err := stream.Decode(&ev); err != nil {
				s.logger.Warn().Err(err).Str("path", col.Path()).Msg("undecodable change event")
				refresh()
				continue
			}
			if ev.affects(known) {
				refresh()
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Str("path", col.Path()).Msg("change stream stopped")
		}
	}()

	return cancel, nil
}

func watchPipeline(userID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"fullDocument.userId": userID},
			bson.M{"operationType": "delete"},
		}}}},
	}
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
}

// affects reports whether the event changes the subscriber's list. Anything
// but a delete has already been filtered by owner on the server.
func (ev changeEvent) affects(known map[string]struct{}) bool {
	if ev.OperationType != "delete" {
		return true
	}
	_, ok := known[ev.DocumentKey.ID]
	return ok
}

func (s *Store) Batch() docstore.Batch {
	return &batch{store: s}
}

type batch struct {
	store *Store
	ops   []func(ctx context.Context) error
}

func (b *batch) Create(col docstore.CollectionRef, data docstore.Fields) docstore.DocRef {
	ref := col.Doc(primitive.NewObjectID().Hex())
	b.ops = append(b.ops, func(ctx context.Context) error {
		return b.store.insert(ctx, ref, data)
	})
	return ref
}

func (b *batch) Update(doc docstore.DocRef, data docstore.Fields) {
	b.ops = append(b.ops, func(ctx context.Context) error {
		return b.store.Update(ctx, doc, data)
	})
}

func (b *batch) Delete(doc docstore.DocRef) {
	b.ops = append(b.ops, func(ctx context.Context) error {
		return b.store.Delete(ctx, doc)
	})
}

// Commit runs the queued writes in one multi-document transaction.
func (b *batch) Commit(ctx context.Context) error {
	sess, err := b.store.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, op := range b.ops {
			if err := op(sc); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}
