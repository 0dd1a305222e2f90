package models

import "sort"

// FindTask returns the task with id anywhere in the tree, or nil. The
// pointer aliases the slice so callers can edit in place.
func FindTask(tasks []ProjectTask, id string) *ProjectTask {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
		if t := FindTask(tasks[i].Subtasks, id); t != nil {
			return t
		}
	}
	return nil
}

// RemoveTask drops the task with id (and its subtasks) from the tree.
func RemoveTask(tasks []ProjectTask, id string) ([]ProjectTask, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			return append(tasks[:i:i], tasks[i+1:]...), true
		}
		if sub, ok := RemoveTask(tasks[i].Subtasks, id); ok {
			tasks[i].Subtasks = sub
			return tasks, true
		}
	}
	return tasks, false
}

// NextOrder returns the order value for a task appended to tasks.
func NextOrder(tasks []ProjectTask) int {
	next := 0
	for _, t := range tasks {
		if t.Order >= next {
			next = t.Order + 1
		}
	}
	return next
}

// Reorder assigns order by position in ids to the top-level tasks and sorts
// them. Tasks missing from ids keep their relative order after the listed ones.
func Reorder(tasks []ProjectTask, ids []string) []ProjectTask {
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	sort.SliceStable(tasks, func(a, b int) bool {
		ra, okA := rank[tasks[a].ID]
		rb, okB := rank[tasks[b].ID]
		switch {
		case okA && okB:
			return ra < rb
		case okA != okB:
			return okA
		}
		return tasks[a].Order < tasks[b].Order
	})
	for i := range tasks {
		tasks[i].Order = i
	}
	return tasks
}
