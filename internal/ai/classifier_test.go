package ai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/config"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

var now = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

type fakeCompleter struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	reply   string
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, _, _, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

type fakeWriter struct {
	mu     sync.Mutex
	tasks  map[string]models.TaskClassification
	issues map[string]models.IssueClassification
	err    error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{tasks: map[string]models.TaskClassification{}, issues: map[string]models.IssueClassification{}}
}

func (w *fakeWriter) SaveTaskAnnotation(_ context.Context, _, id string, c models.TaskClassification, _ time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.tasks[id] = c
	return nil
}

func (w *fakeWriter) SaveIssueAnnotation(_ context.Context, _, id string, c models.IssueClassification, _ time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.issues[id] = c
	return nil
}

const taskReply = `{"is2MinuteRuleCandidate": true, "isProjectCandidate": false, "confidence": 0.92, "reasoning": "One short email.", "estimatedMinutes": 2}`

func newTestClassifier(c Completer, w *fakeWriter) *Classifier {
	return NewClassifier(c, zerolog.Nop(), WithClock(func() time.Time { return now }), WithWriters(w, w))
}

func TestFreshAnnotationSkipsTheModel(t *testing.T) {
	comp := &fakeCompleter{reply: taskReply}
	c := newTestClassifier(comp, newFakeWriter())

	analysed := now.Add(-29 * 24 * time.Hour)
	stored := models.TaskClassification{IsProjectCandidate: true, Confidence: 0.8, Reasoning: "stored", Source: models.SourceAI}
	got := c.ClassifyTask(context.Background(), TaskRequest{
		UserID: "u1",
		ItemID: "a1",
		Title:  "Email Dana",
		Existing: &models.TaskAnnotation{
			AnalysisDate:           &analysed,
			Is2MinuteRuleCandidate: models.Ptr(false),
			IsProjectCandidate:     models.Ptr(true),
			Data:                   &stored,
		},
	})
	assert.Equal(t, stored, got)
	assert.Equal(t, 0, comp.calls)
}

func TestStaleOrPartialAnnotationCallsTheModel(t *testing.T) {
	analysed := now.Add(-31 * 24 * time.Hour)
	recent := now.Add(-time.Hour)
	cases := map[string]*models.TaskAnnotation{
		"stale":   {AnalysisDate: &analysed, Is2MinuteRuleCandidate: models.Ptr(false), IsProjectCandidate: models.Ptr(false)},
		"partial": {AnalysisDate: &recent, Is2MinuteRuleCandidate: models.Ptr(false)},
		"none":    nil,
	}
	for name, existing := range cases {
		t.Run(name, func(t *testing.T) {
			comp := &fakeCompleter{reply: taskReply}
			c := newTestClassifier(comp, newFakeWriter())
			got := c.ClassifyTask(context.Background(), TaskRequest{UserID: "u1", ItemID: "a1", Title: "Email Dana", Existing: existing})
			c.Wait()
			assert.Equal(t, 1, comp.calls)
			assert.True(t, got.Is2MinuteRuleCandidate)
			assert.Equal(t, models.SourceAI, got.Source)
		})
	}
}

func TestMemoCacheSpansItems(t *testing.T) {
	comp := &fakeCompleter{reply: taskReply}
	c := newTestClassifier(comp, newFakeWriter())
	ctx := context.Background()

	first := c.ClassifyTask(ctx, TaskRequest{UserID: "u1", ItemID: "a1", Title: "Email Dana", Description: models.Ptr("re: invoice")})
	second := c.ClassifyTask(ctx, TaskRequest{UserID: "u1", ItemID: "a2", Title: "Email Dana", Description: models.Ptr("re: invoice")})
	c.ClassifyTask(ctx, TaskRequest{UserID: "u1", ItemID: "a3", Title: "Email Dana"})
	c.Wait()

	assert.Equal(t, first, second)
	assert.Equal(t, 2, comp.calls)
}

func TestIssueCacheKeyIncludesType(t *testing.T) {
	comp := &fakeCompleter{reply: `{"complexity":"LOW","isQuickFix":true,"shouldBeProject":false,"confidence":0.7,"reasoning":"tiny"}`}
	c := newTestClassifier(comp, newFakeWriter())
	ctx := context.Background()

	c.ClassifyIssue(ctx, IssueRequest{Title: "Wrong label", Type: models.IssueBug})
	c.ClassifyIssue(ctx, IssueRequest{Title: "Wrong label", Type: models.IssueBug})
	c.ClassifyIssue(ctx, IssueRequest{Title: "Wrong label", Type: models.IssueImprovement})
	assert.Equal(t, 2, comp.calls)
}

func TestFencedReplyIsParsed(t *testing.T) {
	comp := &fakeCompleter{reply: "Sure!\n```json\n" + taskReply + "\n```"}
	c := newTestClassifier(comp, newFakeWriter())

	got := c.ClassifyTask(context.Background(), TaskRequest{Title: "Email Dana"})
	assert.Equal(t, models.SourceAI, got.Source)
	assert.InDelta(t, 0.92, got.Confidence, 1e-9)
	require.NotNil(t, got.EstimatedMinutes)
	assert.Equal(t, 2, *got.EstimatedMinutes)
}

func TestFailuresFallBackToHeuristic(t *testing.T) {
	cases := map[string]*fakeCompleter{
		"api error":     {err: errors.New("503")},
		"not json":      {reply: "I think this is a quick one."},
		"missing field": {reply: `{"is2MinuteRuleCandidate": true, "confidence": 0.9, "reasoning": "x"}`},
		"wrong type":    {reply: `{"is2MinuteRuleCandidate": "yes", "isProjectCandidate": false, "confidence": 0.9, "reasoning": "x"}`},
	}
	for name, comp := range cases {
		t.Run(name, func(t *testing.T) {
			w := newFakeWriter()
			c := newTestClassifier(comp, w)
			got := c.ClassifyTask(context.Background(), TaskRequest{UserID: "u1", ItemID: "a1", Title: "Call the bank"})
			c.Wait()
			assert.Equal(t, models.SourceHeuristic, got.Source)
			assert.Equal(t, HeuristicConfidence, got.Confidence)
			assert.True(t, got.Is2MinuteRuleCandidate)
			assert.Empty(t, w.tasks, "heuristic results are not persisted")
		})
	}
}

func TestFreshResultIsPersistedInBackground(t *testing.T) {
	w := newFakeWriter()
	c := newTestClassifier(&fakeCompleter{reply: taskReply}, w)

	got := c.ClassifyTask(context.Background(), TaskRequest{UserID: "u1", ItemID: "a1", Title: "Email Dana"})
	c.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Equal(t, got, w.tasks["a1"])
}

func TestPersistFailureIsNotSurfaced(t *testing.T) {
	w := newFakeWriter()
	w.err = errors.New("permission denied")
	c := newTestClassifier(&fakeCompleter{reply: taskReply}, w)

	got := c.ClassifyTask(context.Background(), TaskRequest{UserID: "u1", ItemID: "a1", Title: "Email Dana"})
	c.Wait()
	assert.Equal(t, models.SourceAI, got.Source)
	assert.True(t, got.Is2MinuteRuleCandidate)
}

func TestIssuePromptCarriesDetails(t *testing.T) {
	comp := &fakeCompleter{reply: `{"complexity":"high","isQuickFix":false,"shouldBeProject":true,"estimatedHours":20,"confidence":1.4,"reasoning":"big"}`}
	w := newFakeWriter()
	c := newTestClassifier(comp, w)

	got := c.ClassifyIssue(context.Background(), IssueRequest{
		UserID:             "u1",
		ItemID:             "i1",
		Title:              "Sync drops edits",
		Type:               models.IssueBug,
		ReproductionSteps:  models.Ptr("edit offline, reconnect"),
		AcceptanceCriteria: models.Ptr("no lost edits"),
	})
	c.Wait()

	assert.Equal(t, models.ComplexityHigh, got.Complexity)
	assert.Equal(t, 1.0, got.Confidence)
	require.NotNil(t, got.EstimatedHours)
	assert.Equal(t, 20.0, *got.EstimatedHours)
	require.Len(t, comp.prompts, 1)
	assert.Contains(t, comp.prompts[0], "Type: BUG")
	assert.Contains(t, comp.prompts[0], "edit offline, reconnect")
	assert.Contains(t, comp.prompts[0], "no lost edits")
	assert.Contains(t, w.issues, "i1")
}

func TestHeuristicTask(t *testing.T) {
	quick := HeuristicTask("Cal the bank", nil)
	assert.True(t, quick.Is2MinuteRuleCandidate, "typo still matches call")
	assert.False(t, quick.IsProjectCandidate)

	project := HeuristicTask("Plan the company offsite", nil)
	assert.True(t, project.IsProjectCandidate)
	assert.False(t, project.Is2MinuteRuleCandidate)

	neither := HeuristicTask("Water the ferns", nil)
	assert.False(t, neither.Is2MinuteRuleCandidate)
	assert.False(t, neither.IsProjectCandidate)
	assert.Equal(t, HeuristicConfidence, neither.Confidence)
}

func TestHeuristicIssue(t *testing.T) {
	assert.Equal(t, models.ComplexityLow, HeuristicIssue(IssueRequest{Title: "Typo on login page", Type: models.IssueBug}).Complexity)
	big := HeuristicIssue(IssueRequest{Title: "Refactor storage layer", Type: models.IssueImprovement})
	assert.Equal(t, models.ComplexityHigh, big.Complexity)
	assert.True(t, big.ShouldBeProject)
	assert.Equal(t, models.ComplexityMedium, HeuristicIssue(IssueRequest{Title: "Export button slow to respond"}).Complexity)
}

func TestGroqClientAgainstStub(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"ok\":true}"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	g := NewGroqClient(config.AIConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Model:     "llama-3.1-8b-instant",
		MaxTokens: 300,
	}, zerolog.Nop())

	reply, err := g.Complete(context.Background(), "u1", SystemPromptClassifyTask, "Task: Email Dana")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, reply)
	assert.True(t, strings.Contains(body, "llama-3.1-8b-instant"))
	assert.True(t, strings.Contains(body, "Task: Email Dana"))
}
