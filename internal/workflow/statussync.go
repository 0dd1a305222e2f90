package workflow

import (
	"context"
	"time"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/logging"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

// TaskStatusFor maps a next action status onto the status of the project
// task it came from.
func TaskStatusFor(s models.ActionStatus) (models.TaskStatus, bool) {
	switch s {
	case models.ActionDone:
		return models.TaskCompleted, true
	case models.ActionScheduled:
		return models.TaskScheduled, true
	case models.ActionQueued:
		return models.TaskInNextActions, true
	}
	return "", false
}

// UpdateNextAction writes p to the next action. When p sets a status and the
// action was spawned from a project task, the task status follows in a
// second, separate write. A failed task write is logged and not returned:
// the action update has already been committed.
//
// The rule only runs this way round. Editing a task never touches its next
// action.
func (e *Engine) UpdateNextAction(ctx context.Context, userID, id string, p models.NextActionPatch) error {
	if p.Status == nil {
		return e.stores.NextActions.Update(ctx, userID, id, &p)
	}
	current, err := e.stores.NextActions.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := e.stores.NextActions.Update(ctx, userID, id, &p); err != nil {
		return err
	}

	projectID, taskID := current.ProjectID, current.ProjectTaskID
	if p.ProjectID != nil {
		projectID = p.ProjectID
	}
	if p.ProjectTaskID != nil {
		taskID = p.ProjectTaskID
	}
	if projectID == nil || taskID == nil || *projectID == "" || *taskID == "" {
		return nil
	}
	e.syncTask(ctx, userID, id, *projectID, *taskID, p)
	return nil
}

func (e *Engine) syncTask(ctx context.Context, userID, actionID, projectID, taskID string, p models.NextActionPatch) {
	status, ok := TaskStatusFor(*p.Status)
	if !ok {
		return
	}
	tp := models.TaskPatch{Status: &status}
	if status == models.TaskCompleted {
		tp.CompletedAt = p.CompletedDate
	}
	if err := e.stores.Projects.UpdateTask(ctx, userID, projectID, taskID, tp); err != nil {
		e.logger.Error().Err(err).
			Str("userID", userID).
			Str("nextActionId", actionID).
			Str("projectId", projectID).
			Str("taskId", taskID).
			Msg("sync project task status")
		return
	}
	logging.LogEvent(e.logger, "task_status_synced", userID, map[string]interface{}{
		"nextActionId": actionID,
		"projectId":    projectID,
		"taskId":       taskID,
		"status":       string(status),
	})
}

// ScheduleNextAction marks the action SCHEDULED for when.
func (e *Engine) ScheduleNextAction(ctx context.Context, userID, id string, when time.Time) error {
	return e.UpdateNextAction(ctx, userID, id, models.NextActionPatch{
		Status:        models.Ptr(models.ActionScheduled),
		ScheduledDate: &when,
	})
}
