package workflow

import (
	"context"
	"fmt"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/logging"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/store"
)

// Every conversion reads its source first and then commits all of its
// writes in one batch. A missing source fails with docstore.ErrNotFound
// before anything is written.

// newAction validates a next action and queues its creation on b.
func (e *Engine) newAction(b docstore.Batch, userID string, a models.NextAction) (docstore.DocRef, error) {
	a.UserID = userID
	if err := e.stores.NextActions.Validate(a); err != nil {
		return docstore.DocRef{}, err
	}
	a = e.stores.NextActions.Prepare(a)
	return b.Create(e.stores.NextActions.Ref(userID), a.Fields()), nil
}

func commit(ctx context.Context, b docstore.Batch, op string) error {
	if err := b.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConvertInboxToNextAction creates a next action from an inbox item and
// marks the item processed. The item is kept.
func (e *Engine) ConvertInboxToNextAction(ctx context.Context, userID, inboxID string, o NextActionOverrides) (string, error) {
	item, err := e.stores.Inbox.Get(ctx, userID, inboxID)
	if err != nil {
		return "", err
	}
	b := e.stores.Gateway.Batch()
	ref, err := e.newAction(b, userID, o.apply(models.NextAction{
		Title:       item.Title,
		Description: item.Description,
		Notes:       item.Notes,
	}))
	if err != nil {
		return "", err
	}
	b.Update(e.stores.Inbox.Ref(userID).Doc(inboxID), models.InboxPatch{Processed: models.Ptr(true)}.Fields())
	if err := commit(ctx, b, "convert inbox item"); err != nil {
		return "", err
	}
	logging.LogEvent(e.logger, "inbox_to_next_action", userID, map[string]interface{}{
		"inboxId":      inboxID,
		"nextActionId": ref.ID,
	})
	return ref.ID, nil
}

// ConvertInboxToMaybeSomeday files an inbox item under Maybe/Someday and
// marks it processed. The item is kept.
func (e *Engine) ConvertInboxToMaybeSomeday(ctx context.Context, userID, inboxID string, o MaybeSomedayOverrides) (string, error) {
	item, err := e.stores.Inbox.Get(ctx, userID, inboxID)
	if err != nil {
		return "", err
	}
	m := o.apply(models.MaybeSomedayItem{
		UserID:      userID,
		Title:       item.Title,
		Description: item.Description,
		Notes:       item.Notes,
	})
	if err := e.stores.MaybeSomeday.Validate(m); err != nil {
		return "", err
	}
	b := e.stores.Gateway.Batch()
	ref := b.Create(e.stores.MaybeSomeday.Ref(userID), m.Fields())
	b.Update(e.stores.Inbox.Ref(userID).Doc(inboxID), models.InboxPatch{Processed: models.Ptr(true)}.Fields())
	if err := commit(ctx, b, "convert inbox item"); err != nil {
		return "", err
	}
	logging.LogEvent(e.logger, "inbox_to_maybe_someday", userID, map[string]interface{}{
		"inboxId":        inboxID,
		"maybeSomedayId": ref.ID,
	})
	return ref.ID, nil
}

// ConvertMaybeSomedayToNextAction activates a Maybe/Someday item. Unlike
// inbox conversions the source item is deleted.
func (e *Engine) ConvertMaybeSomedayToNextAction(ctx context.Context, userID, itemID string, o NextActionOverrides) (string, error) {
	item, err := e.stores.MaybeSomeday.Get(ctx, userID, itemID)
	if err != nil {
		return "", err
	}
	b := e.stores.Gateway.Batch()
	ref, err := e.newAction(b, userID, o.apply(models.NextAction{
		Title:       item.Title,
		Description: item.Description,
		Notes:       item.Notes,
	}))
	if err != nil {
		return "", err
	}
	b.Delete(e.stores.MaybeSomeday.Ref(userID).Doc(itemID))
	if err := commit(ctx, b, "convert maybe/someday item"); err != nil {
		return "", err
	}
	logging.LogEvent(e.logger, "maybe_someday_to_next_action", userID, map[string]interface{}{
		"maybeSomedayId": itemID,
		"nextActionId":   ref.ID,
	})
	return ref.ID, nil
}

// ConvertTaskToNextAction spawns a next action from a project task. The
// action points back at the project and task; the task moves to
// IN_NEXT_ACTIONS and records the action id.
func (e *Engine) ConvertTaskToNextAction(ctx context.Context, userID, projectID, taskID string, o NextActionOverrides) (string, error) {
	project, err := e.stores.Projects.Get(ctx, userID, projectID)
	if err != nil {
		return "", err
	}
	tasks := project.Tasks
	task := models.FindTask(tasks, taskID)
	if task == nil {
		return "", fmt.Errorf("task %s: %w", taskID, store.ErrTaskNotFound)
	}

	b := e.stores.Gateway.Batch()
	ref, err := e.newAction(b, userID, o.apply(models.NextAction{
		Title:         task.Title,
		Description:   task.Description,
		ProjectID:     models.Ptr(projectID),
		ProjectTaskID: models.Ptr(taskID),
	}))
	if err != nil {
		return "", err
	}
	models.TaskPatch{
		Status:       models.Ptr(models.TaskInNextActions),
		NextActionID: models.Ptr(ref.ID),
	}.Apply(task, e.now())
	b.Update(e.stores.Projects.Ref(userID).Doc(projectID), models.ProjectPatch{Tasks: tasks}.Fields())
	if err := commit(ctx, b, "convert project task"); err != nil {
		return "", err
	}
	logging.LogEvent(e.logger, "task_to_next_action", userID, map[string]interface{}{
		"projectId":    projectID,
		"taskId":       taskID,
		"nextActionId": ref.ID,
	})
	return ref.ID, nil
}

// ConvertIssueToNextAction creates a next action for an issue, in the issue's
// project when it has one, and links the issue to it.
func (e *Engine) ConvertIssueToNextAction(ctx context.Context, userID, issueID string, o NextActionOverrides) (string, error) {
	issue, err := e.stores.Issues.Get(ctx, userID, issueID)
	if err != nil {
		return "", err
	}
	b := e.stores.Gateway.Batch()
	ref, err := e.newAction(b, userID, o.apply(models.NextAction{
		Title:       issue.Title,
		Description: issue.Description,
		Context:     models.Ptr(DefaultIssueContext),
		ProjectID:   issue.ProjectID,
	}))
	if err != nil {
		return "", err
	}
	b.Update(e.stores.Issues.Ref(userID).Doc(issueID), models.IssuePatch{NextActionID: models.Ptr(ref.ID)}.Fields())
	if err := commit(ctx, b, "convert issue"); err != nil {
		return "", err
	}
	logging.LogEvent(e.logger, "issue_to_next_action", userID, map[string]interface{}{
		"issueId":      issueID,
		"nextActionId": ref.ID,
	})
	return ref.ID, nil
}
