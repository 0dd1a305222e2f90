package workflow

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore/sqlitestore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/store"
)

const uid = "user-1"

var base = time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Engine, *store.Stores) {
	t.Helper()
	var mu sync.Mutex
	tick := 0
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	gw, err := sqlitestore.Open(filepath.Join(t.TempDir(), "gtd.db"), sqlitestore.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })
	stores := store.New(gw, nil, store.WithClock(func() time.Time { return base }))
	return New(stores, zerolog.Nop(), WithClock(func() time.Time { return base })), stores
}

func TestConvertInboxToNextAction(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	inboxID, err := s.Inbox.Capture(ctx, uid, models.InboxItem{Title: "Call plumber", Notes: models.Ptr("leaky tap")})
	require.NoError(t, err)

	id, err := e.ConvertInboxToNextAction(ctx, uid, inboxID, NextActionOverrides{
		Context: models.Ptr("phone"),
	})
	require.NoError(t, err)

	a, err := s.NextActions.Get(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, "Call plumber", a.Title)
	assert.Equal(t, "leaky tap", *a.Notes)
	assert.Equal(t, "phone", *a.Context)
	assert.Equal(t, models.ActionQueued, a.Status)
	assert.Nil(t, a.Description)

	item, err := s.Inbox.Get(ctx, uid, inboxID)
	require.NoError(t, err, "inbox item is kept")
	assert.True(t, item.Processed)
}

func TestOverridesWinOverSource(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	inboxID, err := s.Inbox.Capture(ctx, uid, models.InboxItem{Title: "rough idea", Description: models.Ptr("old")})
	require.NoError(t, err)

	id, err := e.ConvertInboxToNextAction(ctx, uid, inboxID, NextActionOverrides{
		Title:       models.Ptr("Polished idea"),
		Description: models.Ptr("new"),
		Status:      models.Ptr(models.ActionDone),
	})
	require.NoError(t, err)

	a, err := s.NextActions.Get(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, "Polished idea", a.Title)
	assert.Equal(t, "new", *a.Description)
	assert.Equal(t, models.ActionDone, a.Status)
	assert.NotNil(t, a.CompletedDate)
}

func TestConvertInboxToMaybeSomeday(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	inboxID, err := s.Inbox.Capture(ctx, uid, models.InboxItem{Title: "Learn Italian"})
	require.NoError(t, err)

	id, err := e.ConvertInboxToMaybeSomeday(ctx, uid, inboxID, MaybeSomedayOverrides{
		Priority: models.Ptr(models.PriorityLow),
	})
	require.NoError(t, err)

	m, err := s.MaybeSomeday.Get(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, "Learn Italian", m.Title)
	assert.Equal(t, models.MaybeMaybe, m.Status)
	assert.Equal(t, models.PriorityLow, *m.Priority)

	item, err := s.Inbox.Get(ctx, uid, inboxID)
	require.NoError(t, err)
	assert.True(t, item.Processed)
}

func TestConvertMaybeSomedayDeletesSource(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	itemID, err := s.MaybeSomeday.Create(ctx, uid, models.MaybeSomedayItem{Title: "Paint fence"})
	require.NoError(t, err)

	id, err := e.ConvertMaybeSomedayToNextAction(ctx, uid, itemID, NextActionOverrides{})
	require.NoError(t, err)

	a, err := s.NextActions.Get(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, "Paint fence", a.Title)

	_, err = s.MaybeSomeday.Get(ctx, uid, itemID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestConvertTaskLinksBothSides(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	pid, err := s.Projects.Create(ctx, uid, models.Project{
		Title: "Move house",
		Tasks: []models.ProjectTask{{Title: "Book movers"}, {Title: "Pack books"}},
	})
	require.NoError(t, err)
	p, err := s.Projects.Get(ctx, uid, pid)
	require.NoError(t, err)
	taskID := p.Tasks[1].ID

	id, err := e.ConvertTaskToNextAction(ctx, uid, pid, taskID, NextActionOverrides{})
	require.NoError(t, err)

	a, err := s.NextActions.Get(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, "Pack books", a.Title)
	require.NotNil(t, a.ProjectID)
	require.NotNil(t, a.ProjectTaskID)
	assert.Equal(t, pid, *a.ProjectID)
	assert.Equal(t, taskID, *a.ProjectTaskID)

	task, err := s.Projects.Task(ctx, uid, pid, taskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskInNextActions, task.Status)
	require.NotNil(t, task.NextActionID)
	assert.Equal(t, id, *task.NextActionID)

	other, err := s.Projects.Task(ctx, uid, pid, p.Tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskNotStarted, other.Status)
}

func TestConvertStaleTaskWritesNothing(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	pid, err := s.Projects.Create(ctx, uid, models.Project{Title: "Garden"})
	require.NoError(t, err)

	_, err = e.ConvertTaskToNextAction(ctx, uid, pid, "gone", NextActionOverrides{})
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	actions, err := s.NextActions.List(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, actions)

	_, err = e.ConvertInboxToNextAction(ctx, uid, "missing", NextActionOverrides{})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	actions, err = s.NextActions.List(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestConvertRejectsInvalidOverrides(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	inboxID, err := s.Inbox.Capture(ctx, uid, models.InboxItem{Title: "x"})
	require.NoError(t, err)

	_, err = e.ConvertInboxToNextAction(ctx, uid, inboxID, NextActionOverrides{Title: models.Ptr("  ")})
	assert.ErrorIs(t, err, store.ErrValidation)

	item, err := s.Inbox.Get(ctx, uid, inboxID)
	require.NoError(t, err)
	assert.False(t, item.Processed)
}

func TestConvertIssue(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	tracker, err := s.IssueTrackers.Create(ctx, uid, models.IssueTracker{Name: "API"})
	require.NoError(t, err)
	issueID, err := s.Issues.Create(ctx, uid, models.Issue{
		Title:          "Timeout on export",
		IssueTrackerID: tracker,
		ProjectID:      models.Ptr("proj-9"),
	})
	require.NoError(t, err)

	id, err := e.ConvertIssueToNextAction(ctx, uid, issueID, NextActionOverrides{})
	require.NoError(t, err)

	a, err := s.NextActions.Get(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, DefaultIssueContext, *a.Context)
	assert.Equal(t, "proj-9", *a.ProjectID)
	assert.Nil(t, a.ProjectTaskID)

	issue, err := s.Issues.Get(ctx, uid, issueID)
	require.NoError(t, err)
	require.NotNil(t, issue.NextActionID)
	assert.Equal(t, id, *issue.NextActionID)
}

func TestStatusSyncMapping(t *testing.T) {
	cases := []struct {
		action models.ActionStatus
		task   models.TaskStatus
	}{
		{models.ActionDone, models.TaskCompleted},
		{models.ActionScheduled, models.TaskScheduled},
		{models.ActionQueued, models.TaskInNextActions},
	}
	for _, tc := range cases {
		t.Run(string(tc.action), func(t *testing.T) {
			e, s := setup(t)
			ctx := context.Background()

			pid, err := s.Projects.Create(ctx, uid, models.Project{
				Title: "Conference",
				Tasks: []models.ProjectTask{{Title: "Submit talk"}},
			})
			require.NoError(t, err)
			p, err := s.Projects.Get(ctx, uid, pid)
			require.NoError(t, err)
			taskID := p.Tasks[0].ID

			id, err := e.ConvertTaskToNextAction(ctx, uid, pid, taskID, NextActionOverrides{})
			require.NoError(t, err)
			if tc.action == models.ActionQueued {
				require.NoError(t, s.Projects.UpdateTask(ctx, uid, pid, taskID, models.TaskPatch{Status: models.Ptr(models.TaskBlocked)}))
			}

			require.NoError(t, e.UpdateNextAction(ctx, uid, id, models.NextActionPatch{Status: models.Ptr(tc.action)}))

			task, err := s.Projects.Task(ctx, uid, pid, taskID)
			require.NoError(t, err)
			assert.Equal(t, tc.task, task.Status)
			if tc.action == models.ActionDone {
				a, err := s.NextActions.Get(ctx, uid, id)
				require.NoError(t, err)
				require.NotNil(t, a.CompletedDate)
				require.NotNil(t, task.CompletedAt)
				assert.True(t, a.CompletedDate.Equal(*task.CompletedAt))
			} else {
				assert.Nil(t, task.CompletedAt)
			}
		})
	}
}

func TestMarkingDoneAgainKeepsCompletionDates(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	pid, err := s.Projects.Create(ctx, uid, models.Project{
		Title: "Move house",
		Tasks: []models.ProjectTask{{Title: "Book van"}},
	})
	require.NoError(t, err)
	p, err := s.Projects.Get(ctx, uid, pid)
	require.NoError(t, err)
	taskID := p.Tasks[0].ID
	id, err := e.ConvertTaskToNextAction(ctx, uid, pid, taskID, NextActionOverrides{})
	require.NoError(t, err)

	finished := base.Add(-72 * time.Hour)
	require.NoError(t, e.UpdateNextAction(ctx, uid, id, models.NextActionPatch{
		Status: models.Ptr(models.ActionDone), CompletedDate: &finished,
	}))
	require.NoError(t, e.UpdateNextAction(ctx, uid, id, models.NextActionPatch{Status: models.Ptr(models.ActionDone)}))

	a, err := s.NextActions.Get(ctx, uid, id)
	require.NoError(t, err)
	require.NotNil(t, a.CompletedDate)
	assert.True(t, a.CompletedDate.Equal(finished))
	task, err := s.Projects.Task(ctx, uid, pid, taskID)
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	assert.True(t, task.CompletedAt.Equal(finished))
}

func TestUpdateRejectsUnbackedTaskLink(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	id, err := s.NextActions.Create(ctx, uid, models.NextAction{Title: "Standalone"})
	require.NoError(t, err)

	err = e.UpdateNextAction(ctx, uid, id, models.NextActionPatch{
		Status: models.Ptr(models.ActionDone), ProjectTaskID: models.Ptr("t1"),
	})
	require.ErrorIs(t, err, store.ErrValidation)

	a, err := s.NextActions.Get(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, models.ActionQueued, a.Status)
	assert.Nil(t, a.ProjectTaskID)
}

func TestStatusSyncIsOneDirectional(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	pid, err := s.Projects.Create(ctx, uid, models.Project{
		Title: "Blog",
		Tasks: []models.ProjectTask{{Title: "Outline post"}},
	})
	require.NoError(t, err)
	p, err := s.Projects.Get(ctx, uid, pid)
	require.NoError(t, err)
	taskID := p.Tasks[0].ID
	id, err := e.ConvertTaskToNextAction(ctx, uid, pid, taskID, NextActionOverrides{})
	require.NoError(t, err)

	require.NoError(t, s.Projects.UpdateTask(ctx, uid, pid, taskID, models.TaskPatch{Status: models.Ptr(models.TaskCompleted)}))

	a, err := s.NextActions.Get(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, models.ActionQueued, a.Status)
	assert.Nil(t, a.CompletedDate)
}

func TestStatusSyncFailureIsNotReturned(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	id, err := s.NextActions.Create(ctx, uid, models.NextAction{
		Title:         "Orphan",
		ProjectID:     models.Ptr("deleted-project"),
		ProjectTaskID: models.Ptr("deleted-task"),
	})
	require.NoError(t, err)

	require.NoError(t, e.UpdateNextAction(ctx, uid, id, models.NextActionPatch{Status: models.Ptr(models.ActionDone)}))

	a, err := s.NextActions.Get(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, models.ActionDone, a.Status)
}

func TestUpdateWithoutStatusSkipsSync(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	pid, err := s.Projects.Create(ctx, uid, models.Project{
		Title: "Car",
		Tasks: []models.ProjectTask{{Title: "Renew insurance"}},
	})
	require.NoError(t, err)
	p, err := s.Projects.Get(ctx, uid, pid)
	require.NoError(t, err)
	taskID := p.Tasks[0].ID
	id, err := e.ConvertTaskToNextAction(ctx, uid, pid, taskID, NextActionOverrides{})
	require.NoError(t, err)
	require.NoError(t, s.Projects.UpdateTask(ctx, uid, pid, taskID, models.TaskPatch{Status: models.Ptr(models.TaskBlocked)}))

	require.NoError(t, e.UpdateNextAction(ctx, uid, id, models.NextActionPatch{Notes: models.Ptr("call broker")}))

	task, err := s.Projects.Task(ctx, uid, pid, taskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskBlocked, task.Status)
}

// End to end: capture, clarify into a project task, act on it and finish.
func TestWeeklyFlow(t *testing.T) {
	e, s := setup(t)
	ctx := context.Background()

	inboxID, err := s.Inbox.Capture(ctx, uid, models.InboxItem{Title: "Plan team offsite"})
	require.NoError(t, err)
	_, err = e.ConvertInboxToMaybeSomeday(ctx, uid, inboxID, MaybeSomedayOverrides{})
	require.NoError(t, err)

	pid, err := s.Projects.Create(ctx, uid, models.Project{Title: "Team offsite"})
	require.NoError(t, err)
	taskID, err := s.Projects.AddTask(ctx, uid, pid, models.ProjectTask{Title: "Pick venue"}, "")
	require.NoError(t, err)

	actionID, err := e.ConvertTaskToNextAction(ctx, uid, pid, taskID, NextActionOverrides{Context: models.Ptr("computer")})
	require.NoError(t, err)

	when := base.Add(48 * time.Hour)
	require.NoError(t, e.ScheduleNextAction(ctx, uid, actionID, when))
	task, err := s.Projects.Task(ctx, uid, pid, taskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskScheduled, task.Status)

	require.NoError(t, e.UpdateNextAction(ctx, uid, actionID, models.NextActionPatch{Status: models.Ptr(models.ActionDone)}))
	task, err = s.Projects.Task(ctx, uid, pid, taskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)
	require.NotNil(t, task.CompletedAt)

	unprocessed, err := s.Inbox.ListUnprocessed(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, unprocessed)
	someday, err := s.MaybeSomeday.List(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, someday, 1)

	a, err := s.NextActions.Get(ctx, uid, actionID)
	require.NoError(t, err)
	require.NotNil(t, a.ScheduledDate)
	assert.True(t, a.ScheduledDate.Equal(when))
}
