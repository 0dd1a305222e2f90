package store

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/blob"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

type options struct {
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures the stores.
type Option func(*options)

// WithClock overrides the clock used for client-side dates such as
// completedDate and task timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Stores bundles the entity stores sharing one gateway.
type Stores struct {
	Gateway       docstore.Gateway
	Inbox         *InboxStore
	NextActions   *NextActionStore
	Projects      *ProjectStore
	MaybeSomeday  *MaybeSomedayStore
	IssueTrackers *IssueTrackerStore
	Issues        *IssueStore
	Reference     *ReferenceStore
}

// New builds every store on gw. bucket may be nil when attachments are not
// configured.
func New(gw docstore.Gateway, bucket blob.Bucket, opts ...Option) *Stores {
	o := options{now: time.Now, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Stores{
		Gateway:       gw,
		Inbox:         &InboxStore{Collection: newCollection[models.InboxItem](gw, models.InboxCollection, o)},
		NextActions:   &NextActionStore{Collection: newCollection[models.NextAction](gw, models.NextActionsCollection, o)},
		Projects:      &ProjectStore{Collection: newCollection[models.Project](gw, models.ProjectsCollection, o)},
		MaybeSomeday:  &MaybeSomedayStore{Collection: newCollection[models.MaybeSomedayItem](gw, models.MaybeSomedayCollection, o)},
		IssueTrackers: &IssueTrackerStore{Collection: newCollection[models.IssueTracker](gw, models.IssueTrackersCollection, o)},
		Issues:        &IssueStore{Collection: newCollection[models.Issue](gw, models.IssuesCollection, o)},
		Reference: &ReferenceStore{
			Collection: newCollection[models.ReferenceItem](gw, models.ReferenceCollection, o),
			bucket:     bucket,
		},
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func blankPtr(s *string) bool {
	return s != nil && blank(*s)
}
