// Package store holds the typed entity stores. Each is a thin veneer over
// one collection of the document gateway; every write round-trips to it.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

// ErrValidation marks input rejected before any remote call.
var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Patch is a typed partial update.
type Patch interface {
	Fields() docstore.Fields
}

// Collection implements list/get/subscribe/add/update/delete for one entity type.
type Collection[T any, PT interface {
	*T
	models.Document
}] struct {
	gw     docstore.Gateway
	name   string
	now    func() time.Time
	logger zerolog.Logger
}

func newCollection[T any, PT interface {
	*T
	models.Document
}](gw docstore.Gateway, name string, o options) *Collection[T, PT] {
	return &Collection[T, PT]{gw: gw, name: name, now: o.now, logger: o.logger}
}

// Ref returns the gateway reference of the user's collection.
func (c *Collection[T, PT]) Ref(userID string) docstore.CollectionRef {
	return docstore.Collection(userID, c.name)
}

func (c *Collection[T, PT]) decode(snap docstore.Snapshot) (T, error) {
	var v T
	if err := snap.DataTo(&v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", c.name, snap.ID(), err)
	}
	PT(&v).SetID(snap.ID())
	PT(&v).DefaultTimestamps(c.now())
	return v, nil
}

func (c *Collection[T, PT]) decodeAll(snaps []docstore.Snapshot) ([]T, error) {
	out := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		v, err := c.decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// List returns the user's documents, newest first.
func (c *Collection[T, PT]) List(ctx context.Context, userID string) ([]T, error) {
	snaps, err := c.gw.List(ctx, c.Ref(userID), docstore.NewestFirst)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}
	return c.decodeAll(snaps)
}

// Get returns one document; a missing one yields docstore.ErrNotFound.
func (c *Collection[T, PT]) Get(ctx context.Context, userID, id string) (T, error) {
	snap, err := c.gw.Get(ctx, c.Ref(userID).Doc(id))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %s: %w", c.name, err)
	}
	return c.decode(snap)
}

// Subscribe calls fn with the full, newest-first list now and after every
// change. The returned stop func must be called to release the listener.
func (c *Collection[T, PT]) Subscribe(ctx context.Context, userID string, fn func([]T)) (func(), error) {
	stop, err := c.gw.Subscribe(ctx, c.Ref(userID), docstore.NewestFirst, func(snaps []docstore.Snapshot) {
		items, err := c.decodeAll(snaps)
		if err != nil {
			c.logger.Error().Err(err).Str("collection", c.name).Str("userID", userID).Msg("drop live update")
			return
		}
		fn(items)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", c.name, err)
	}
	return stop, nil
}

// Add stores v for userID and returns the new id. Timestamps are assigned
// by the gateway.
func (c *Collection[T, PT]) Add(ctx context.Context, userID string, v T) (string, error) {
	f := PT(&v).Fields()
	f["userId"] = userID
	id, err := c.gw.Add(ctx, c.Ref(userID), f)
	if err != nil {
		return "", fmt.Errorf("add %s: %w", c.name, err)
	}
	return id, nil
}

// Update merges the set fields of p and bumps updatedAt.
func (c *Collection[T, PT]) Update(ctx context.Context, userID, id string, p Patch) error {
	if err := c.gw.Update(ctx, c.Ref(userID).Doc(id), p.Fields()); err != nil {
		return fmt.Errorf("update %s: %w", c.name, err)
	}
	return nil
}

func (c *Collection[T, PT]) Delete(ctx context.Context, userID, id string) error {
	if err := c.gw.Delete(ctx, c.Ref(userID).Doc(id)); err != nil {
		return fmt.Errorf("delete %s: %w", c.name, err)
	}
	return nil
}
