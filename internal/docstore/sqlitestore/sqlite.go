// Package sqlitestore is a single-file document gateway for local use and
// tests. Documents are JSON bodies in one table keyed by collection path and id.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rs/zerolog"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       TEXT NOT NULL,
	PRIMARY KEY (path, id)
);`

// Store implements docstore.Gateway on SQLite.
type Store struct {
	db     *sql.DB
	hub    *hub
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the server clock used for ServerTimestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for subscription errors.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open opens (creating if needed) the database file at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open document db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping document db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s := &Store{
		db:     db,
		hub:    newHub(),
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.hub.closeAll()
	return s.db.Close()
}

type snapshot struct {
	id   string
	body []byte
	key  any
}

func (sn *snapshot) ID() string { return sn.id }

func (sn *snapshot) DataTo(v any) error {
	return json.Unmarshal(sn.body, v)
}

func (s *Store) List(ctx context.Context, col docstore.CollectionRef, order docstore.Order) ([]docstore.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, body FROM documents WHERE path = ?`, col.Path())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", col.Path(), err)
	}
	defer rows.Close()

	var snaps []*snapshot
	for rows.Next() {
		sn := &snapshot{}
		var body string
		if err := rows.Scan(&sn.id, &body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", col.Path(), err)
		}
		sn.body = []byte(body)
		sn.key = orderKey(sn.body, order.Field)
		snaps = append(snaps, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", col.Path(), err)
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		if order.Desc {
			return less(snaps[j].key, snaps[i].key)
		}
		return less(snaps[i].key, snaps[j].key)
	})
	out := make([]docstore.Snapshot, len(snaps))
	for i, sn := range snaps {
		out[i] = sn
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, doc docstore.DocRef) (docstore.Snapshot, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE path = ? AND id = ?`, doc.Collection.Path(), doc.ID,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", doc.Path(), docstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", doc.Path(), err)
	}
	return &snapshot{id: doc.ID, body: []byte(body)}, nil
}

func (s *Store) Add(ctx context.Context, col docstore.CollectionRef, data docstore.Fields) (string, error) {
	b := s.Batch()
	ref := b.Create(col, data)
	if err := b.Commit(ctx); err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *Store) Update(ctx context.Context, doc docstore.DocRef, data docstore.Fields) error {
	b := s.Batch()
	b.Update(doc, data)
	return b.Commit(ctx)
}

func (s *Store) Delete(ctx context.Context, doc docstore.DocRef) error {
	b := s.Batch()
	b.Delete(doc)
	return b.Commit(ctx)
}

func (s *Store) Subscribe(ctx context.Context, col docstore.CollectionRef, order docstore.Order, fn docstore.Listener) (func(), error) {
	return s.hub.subscribe(ctx, col.Path(), func(ctx context.Context) {
		docs, err := s.List(ctx, col, order)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Error().Err(err).Str("path", col.Path()).Msg("subscription refresh failed")
			}
			return
		}
		fn(docs)
	}), nil
}

func (s *Store) Batch() docstore.Batch {
	return &batch{store: s}
}

type op func(ctx context.Context, tx *sql.Tx, now time.Time) error

type batch struct {
	store *Store
	ops   []op
	paths []string
}

func (b *batch) Create(col docstore.CollectionRef, data docstore.Fields) docstore.DocRef {
	ref := col.Doc(uuid.NewString())
	b.paths = append(b.paths, col.Path())
	b.ops = append(b.ops, func(ctx context.Context, tx *sql.Tx, now time.Time) error {
		set, _ := docstore.Resolve(data, now)
		body, err := json.Marshal(set)
		if err != nil {
			return fmt.Errorf("encode %s: %w", ref.Path(), err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (path, id, body) VALUES (?, ?, ?)`,
			col.Path(), ref.ID, string(body),
		); err != nil {
			return fmt.Errorf("insert %s: %w", ref.Path(), err)
		}
		return nil
	})
	return ref
}

func (b *batch) Update(doc docstore.DocRef, data docstore.Fields) {
	b.paths = append(b.paths, doc.Collection.Path())
	b.ops = append(b.ops, func(ctx context.Context, tx *sql.Tx, now time.Time) error {
		var raw string
		err := tx.QueryRowContext(ctx,
			`SELECT body FROM documents WHERE path = ? AND id = ?`, doc.Collection.Path(), doc.ID,
		).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update %s: %w", doc.Path(), docstore.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("update %s: %w", doc.Path(), err)
		}
		current := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &current); err != nil {
			return fmt.Errorf("decode %s: %w", doc.Path(), err)
		}
		set, unset := docstore.Resolve(data, now)
		for k, v := range set {
			current[k] = v
		}
		for _, k := range unset {
			delete(current, k)
		}
		body, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("encode %s: %w", doc.Path(), err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE documents SET body = ? WHERE path = ? AND id = ?`,
			string(body), doc.Collection.Path(), doc.ID,
		)
		if err != nil {
			return fmt.Errorf("update %s: %w", doc.Path(), err)
		}
		return nil
	})
}

func (b *batch) Delete(doc docstore.DocRef) {
	b.paths = append(b.paths, doc.Collection.Path())
	b.ops = append(b.ops, func(ctx context.Context, tx *sql.Tx, _ time.Time) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM documents WHERE path = ? AND id = ?`, doc.Collection.Path(), doc.ID,
		); err != nil {
			return fmt.Errorf("delete %s: %w", doc.Path(), err)
		}
		return nil
	})
}

func (b *batch) Commit(ctx context.Context) error {
	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := b.store.now().UTC()
	for _, op := range b.ops {
		if err := op(ctx, tx, now); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	for _, p := range b.paths {
		b.store.hub.notify(p)
	}
	return nil
}

func orderKey(body []byte, field string) any {
	if field == "" {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil
	}
	v := doc[field]
	if s, ok := v.(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return v
}

func less(a, b any) bool {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Before(y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return x < y
		}
	case string:
		if y, ok := b.(string); ok {
			return x < y
		}
	case nil:
		return b != nil
	}
	return false
}
