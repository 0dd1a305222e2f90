// Package workflow moves work between GTD lists and keeps project tasks in
// step with the next actions spawned from them.
package workflow

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/store"
)

// DefaultIssueContext is the context given to next actions created from issues.
const DefaultIssueContext = "issues"

// Engine runs conversions and the status sync rule on top of the stores.
type Engine struct {
	stores *store.Stores
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for task timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(stores *store.Stores, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{stores: stores, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NextActionOverrides replaces values copied from the source entity. Nil
// fields keep the source value, or are left unset.
type NextActionOverrides struct {
	Title             *string              `json:"title,omitempty"`
	Description       *string              `json:"description,omitempty"`
	Notes             *string              `json:"notes,omitempty"`
	Context           *string              `json:"context,omitempty"`
	EstimatedDuration *int                 `json:"estimatedDuration,omitempty"`
	Status            *models.ActionStatus `json:"status,omitempty"`
	ScheduledDate     *time.Time           `json:"scheduledDate,omitempty"`
}

func (o NextActionOverrides) apply(a models.NextAction) models.NextAction {
	if o.Title != nil {
		a.Title = *o.Title
	}
	if o.Description != nil {
		a.Description = o.Description
	}
	if o.Notes != nil {
		a.Notes = o.Notes
	}
	if o.Context != nil {
		a.Context = o.Context
	}
	if o.EstimatedDuration != nil {
		a.EstimatedDuration = o.EstimatedDuration
	}
	if o.Status != nil {
		a.Status = *o.Status
	}
	if o.ScheduledDate != nil {
		a.ScheduledDate = o.ScheduledDate
	}
	return a
}

// MaybeSomedayOverrides replaces values copied into a new Maybe/Someday item.
type MaybeSomedayOverrides struct {
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Notes       *string             `json:"notes,omitempty"`
	Status      *models.MaybeStatus `json:"status,omitempty"`
	Priority    *models.Priority    `json:"priority,omitempty"`
	ReviewDate  *time.Time          `json:"reviewDate,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
}

func (o MaybeSomedayOverrides) apply(m models.MaybeSomedayItem) models.MaybeSomedayItem {
	if o.Title != nil {
		m.Title = *o.Title
	}
	if o.Description != nil {
		m.Description = o.Description
	}
	if o.Notes != nil {
		m.Notes = o.Notes
	}
	if o.Status != nil {
		m.Status = *o.Status
	}
	if o.Priority != nil {
		m.Priority = o.Priority
	}
	if o.ReviewDate != nil {
		m.ReviewDate = o.ReviewDate
	}
	if o.Tags != nil {
		m.Tags = o.Tags
	}
	return m
}
