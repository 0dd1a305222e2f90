package ai

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

const (
	DefaultFreshness = 30 * 24 * time.Hour
	DefaultCacheSize = 500
	DefaultCacheTTL  = 24 * time.Hour

	persistTimeout = 10 * time.Second
)

// TaskAnnotationWriter stores a classification on a next action.
type TaskAnnotationWriter interface {
	SaveTaskAnnotation(ctx context.Context, userID, id string, c models.TaskClassification, at time.Time) error
}

// IssueAnnotationWriter stores a classification on an issue.
type IssueAnnotationWriter interface {
	SaveIssueAnnotation(ctx context.Context, userID, id string, c models.IssueClassification, at time.Time) error
}

// Classifier answers from a fresh stored annotation, then from its memo
// cache, then from the model; when the model fails it falls back to keyword
// heuristics. Classify calls never fail.
type Classifier struct {
	completer Completer
	tasks     TaskAnnotationWriter
	issues    IssueAnnotationWriter
	logger    zerolog.Logger

	freshness  time.Duration
	cacheSize  int
	cacheTTL   time.Duration
	now        func() time.Time
	taskCache  *expirable.LRU[uint64, models.TaskClassification]
	issueCache *expirable.LRU[uint64, models.IssueClassification]

	pending sync.WaitGroup
}

// Option configures a Classifier.
type Option func(*Classifier)

func WithFreshness(d time.Duration) Option {
	return func(c *Classifier) { c.freshness = d }
}

// WithCache sets the size and time to live of the memo cache.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Classifier) { c.cacheSize, c.cacheTTL = size, ttl }
}

func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

// WithWriters sets where fresh classifications are persisted. Either may be nil.
func WithWriters(tasks TaskAnnotationWriter, issues IssueAnnotationWriter) Option {
	return func(c *Classifier) { c.tasks, c.issues = tasks, issues }
}

func NewClassifier(completer Completer, logger zerolog.Logger, opts ...Option) *Classifier {
	c := &Classifier{
		completer: completer,
		logger:    logger,
		freshness: DefaultFreshness,
		cacheSize: DefaultCacheSize,
		cacheTTL:  DefaultCacheTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.taskCache = expirable.NewLRU[uint64, models.TaskClassification](c.cacheSize, nil, c.cacheTTL)
	c.issueCache = expirable.NewLRU[uint64, models.IssueClassification](c.cacheSize, nil, c.cacheTTL)
	return c
}

func cacheKey(parts ...string) uint64 {
	d := xxhash.New()
	for i, p := range parts {
		if i > 0 {
			_, _ = d.WriteString("|")
		}
		_, _ = d.WriteString(p)
	}
	return d.Sum64()
}

func (c *Classifier) fresh(at *time.Time) bool {
	return at != nil && c.now().Sub(*at) < c.freshness
}

// ClassifyTask classifies a next action.
func (c *Classifier) ClassifyTask(ctx context.Context, r TaskRequest) models.TaskClassification {
	if r.Existing.Complete() && c.fresh(r.Existing.AnalysisDate) {
		return r.Existing.Classification()
	}
	key := cacheKey(r.Title, deref(r.Description))
	if cached, ok := c.taskCache.Get(key); ok {
		return cached
	}

	reply, err := c.completer.Complete(ctx, r.UserID, SystemPromptClassifyTask, taskPrompt(r))
	if err != nil {
		c.logger.Warn().Err(err).Str("userID", r.UserID).Str("itemId", r.ItemID).Msg("task classification failed, using heuristic")
		return HeuristicTask(r.Title, r.Description)
	}
	result, err := parseTaskClassification(reply)
	if err != nil {
		c.logger.Warn().Err(err).Str("userID", r.UserID).Str("itemId", r.ItemID).Msg("malformed task classification, using heuristic")
		return HeuristicTask(r.Title, r.Description)
	}
	c.taskCache.Add(key, result)

	if c.tasks != nil && r.ItemID != "" {
		at := c.now()
		c.persist(r.UserID, r.ItemID, func(ctx context.Context) error {
			return c.tasks.SaveTaskAnnotation(ctx, r.UserID, r.ItemID, result, at)
		})
	}
	return result
}

// ClassifyIssue estimates an issue.
func (c *Classifier) ClassifyIssue(ctx context.Context, r IssueRequest) models.IssueClassification {
	if r.Existing.Complete() && c.fresh(r.Existing.AnalysisDate) {
		return r.Existing.Classification()
	}
	key := cacheKey(r.Title, deref(r.Description), string(r.Type))
	if cached, ok := c.issueCache.Get(key); ok {
		return cached
	}

	reply, err := c.completer.Complete(ctx, r.UserID, SystemPromptClassifyIssue, issuePrompt(r))
	if err != nil {
		c.logger.Warn().Err(err).Str("userID", r.UserID).Str("itemId", r.ItemID).Msg("issue classification failed, using heuristic")
		return HeuristicIssue(r)
	}
	result, err := parseIssueClassification(reply)
	if err != nil {
		c.logger.Warn().Err(err).Str("userID", r.UserID).Str("itemId", r.ItemID).Msg("malformed issue classification, using heuristic")
		return HeuristicIssue(r)
	}
	c.issueCache.Add(key, result)

	if c.issues != nil && r.ItemID != "" {
		at := c.now()
		c.persist(r.UserID, r.ItemID, func(ctx context.Context) error {
			return c.issues.SaveIssueAnnotation(ctx, r.UserID, r.ItemID, result, at)
		})
	}
	return result
}

// persist runs save in the background, detached from the request context.
func (c *Classifier) persist(userID, itemID string, save func(context.Context) error) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := save(ctx); err != nil {
			c.logger.Error().Err(err).Str("userID", userID).Str("itemId", itemID).Msg("persist classification")
		}
	}()
}

// Wait blocks until pending background writes have finished.
func (c *Classifier) Wait() {
	c.pending.Wait()
}
