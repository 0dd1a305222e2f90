package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

// ErrTaskNotFound is returned when a task id is absent from its project.
var ErrTaskNotFound = fmt.Errorf("project task: %w", docstore.ErrNotFound)

// ProjectStore persists projects and their embedded tasks. Task edits read
// the project, change the task list in memory and write the whole list back;
// there is no version check, so concurrent edits of one project can lose
// updates.
type ProjectStore struct {
	*Collection[models.Project, *models.Project]
}

func (s *ProjectStore) Create(ctx context.Context, userID string, p models.Project) (string, error) {
	if blank(p.Title) {
		return "", invalid("title is required")
	}
	if p.Status != "" && !p.Status.Valid() {
		return "", invalid("unknown status %q", p.Status)
	}
	now := s.now()
	if p.Status == models.ProjectDone && p.CompletedAt == nil {
		p.CompletedAt = &now
	}
	for i := range p.Tasks {
		if err := s.prepareTask(&p.Tasks[i], i); err != nil {
			return "", err
		}
	}
	return s.Add(ctx, userID, p)
}

func (s *ProjectStore) Update(ctx context.Context, userID, id string, p models.ProjectPatch) error {
	if blankPtr(p.Title) {
		return invalid("title must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("unknown status %q", *p.Status)
	}
	p.Normalize(s.now())
	return s.Collection.Update(ctx, userID, id, p)
}

// prepareTask assigns an id, order and timestamps to a new task and its
// subtasks.
func (s *ProjectStore) prepareTask(t *models.ProjectTask, order int) error {
	if blank(t.Title) {
		return invalid("task title is required")
	}
	if t.Status == "" {
		t.Status = models.TaskNotStarted
	}
	if !t.Status.Valid() {
		return invalid("unknown task status %q", t.Status)
	}
	now := s.now()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Order = order
	t.CreatedAt, t.UpdatedAt = now, now
	if t.Status == models.TaskCompleted {
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
	for i := range t.Subtasks {
		if err := s.prepareTask(&t.Subtasks[i], i); err != nil {
			return err
		}
	}
	return nil
}

// Task returns one task of a project, searching subtasks too.
func (s *ProjectStore) Task(ctx context.Context, userID, projectID, taskID string) (models.ProjectTask, error) {
	p, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return models.ProjectTask{}, err
	}
	t := models.FindTask(p.Tasks, taskID)
	if t == nil {
		return models.ProjectTask{}, fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
	}
	return *t, nil
}

// MutateTasks runs fn on the project's task list and writes the result back.
func (s *ProjectStore) MutateTasks(ctx context.Context, userID, projectID string, fn func([]models.ProjectTask) ([]models.ProjectTask, error)) error {
	p, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return err
	}
	tasks, err := fn(p.Tasks)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []models.ProjectTask{}
	}
	return s.Collection.Update(ctx, userID, projectID, models.ProjectPatch{Tasks: tasks})
}

// AddTask appends a task to the project, or to the subtasks of parentID
// when it is not empty. It returns the new task id.
func (s *ProjectStore) AddTask(ctx context.Context, userID, projectID string, t models.ProjectTask, parentID string) (string, error) {
	t.ID = ""
	err := s.MutateTasks(ctx, userID, projectID, func(tasks []models.ProjectTask) ([]models.ProjectTask, error) {
		if parentID == "" {
			if err := s.prepareTask(&t, models.NextOrder(tasks)); err != nil {
				return nil, err
			}
			return append(tasks, t), nil
		}
		parent := models.FindTask(tasks, parentID)
		if parent == nil {
			return nil, fmt.Errorf("parent task %s: %w", parentID, ErrTaskNotFound)
		}
		if err := s.prepareTask(&t, models.NextOrder(parent.Subtasks)); err != nil {
			return nil, err
		}
		parent.Subtasks = append(parent.Subtasks, t)
		return tasks, nil
	})
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// UpdateTask applies p to one task. Task status changes stay inside the
// project; linked next actions are not touched.
func (s *ProjectStore) UpdateTask(ctx context.Context, userID, projectID, taskID string, p models.TaskPatch) error {
	if blankPtr(p.Title) {
		return invalid("task title must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("unknown task status %q", *p.Status)
	}
	return s.MutateTasks(ctx, userID, projectID, func(tasks []models.ProjectTask) ([]models.ProjectTask, error) {
		t := models.FindTask(tasks, taskID)
		if t == nil {
			return nil, fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
		}
		p.Apply(t, s.now())
		return tasks, nil
	})
}

func (s *ProjectStore) DeleteTask(ctx context.Context, userID, projectID, taskID string) error {
	return s.MutateTasks(ctx, userID, projectID, func(tasks []models.ProjectTask) ([]models.ProjectTask, error) {
		out, ok := models.RemoveTask(tasks, taskID)
		if !ok {
			return nil, fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
		}
		return out, nil
	})
}

// ReorderTasks sets the order of the top-level tasks to the order of ids.
func (s *ProjectStore) ReorderTasks(ctx context.Context, userID, projectID string, ids []string) error {
	return s.MutateTasks(ctx, userID, projectID, func(tasks []models.ProjectTask) ([]models.ProjectTask, error) {
		return models.Reorder(tasks, ids), nil
	})
}
