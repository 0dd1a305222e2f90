package models

// ActionStatus is the lifecycle state of a NextAction.
type ActionStatus string

const (
	ActionQueued    ActionStatus = "QUEUED"
	ActionScheduled ActionStatus = "SCHEDULED"
	ActionDone      ActionStatus = "DONE"
)

func (s ActionStatus) Valid() bool {
	switch s {
	case ActionQueued, ActionScheduled, ActionDone:
		return true
	}
	return false
}

// ProjectStatus is the lifecycle state of a Project.
type ProjectStatus string

const (
	ProjectQueued     ProjectStatus = "QUEUED"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectDone       ProjectStatus = "DONE"
	ProjectBlocked    ProjectStatus = "BLOCKED"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectQueued, ProjectInProgress, ProjectDone, ProjectBlocked:
		return true
	}
	return false
}

// TaskStatus is the state of a task embedded in a Project.
type TaskStatus string

const (
	TaskNotStarted    TaskStatus = "NOT_STARTED"
	TaskInProgress    TaskStatus = "IN_PROGRESS"
	TaskCompleted     TaskStatus = "COMPLETED"
	TaskDelegated     TaskStatus = "DELEGATED"
	TaskInNextActions TaskStatus = "IN_NEXT_ACTIONS"
	TaskScheduled     TaskStatus = "SCHEDULED"
	TaskBlocked       TaskStatus = "BLOCKED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskCompleted, TaskDelegated,
		TaskInNextActions, TaskScheduled, TaskBlocked:
		return true
	}
	return false
}

// MaybeStatus is the state of a Maybe/Someday item.
type MaybeStatus string

const (
	MaybeMaybe    MaybeStatus = "MAYBE"
	MaybeSomeday  MaybeStatus = "SOMEDAY"
	MaybeArchived MaybeStatus = "ARCHIVED"
)

func (s MaybeStatus) Valid() bool {
	switch s {
	case MaybeMaybe, MaybeSomeday, MaybeArchived:
		return true
	}
	return false
}

// Priority ranks Maybe/Someday items.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// IssueStatus is the state of an Issue. Any status may follow any other.
type IssueStatus string

const (
	IssueOpen       IssueStatus = "OPEN"
	IssueInProgress IssueStatus = "IN_PROGRESS"
	IssueResolved   IssueStatus = "RESOLVED"
	IssueClosed     IssueStatus = "CLOSED"
	IssueDuplicate  IssueStatus = "DUPLICATE"
	IssueWontFix    IssueStatus = "WONT_FIX"
)

func (s IssueStatus) Valid() bool {
	switch s {
	case IssueOpen, IssueInProgress, IssueResolved, IssueClosed, IssueDuplicate, IssueWontFix:
		return true
	}
	return false
}

type IssueType string

const (
	IssueBug         IssueType = "BUG"
	IssueFeature     IssueType = "FEATURE"
	IssueImprovement IssueType = "IMPROVEMENT"
	IssueTask        IssueType = "TASK"
)

func (t IssueType) Valid() bool {
	switch t {
	case IssueBug, IssueFeature, IssueImprovement, IssueTask:
		return true
	}
	return false
}

type IssuePriority string

const (
	IssuePriorityLow      IssuePriority = "LOW"
	IssuePriorityMedium   IssuePriority = "MEDIUM"
	IssuePriorityHigh     IssuePriority = "HIGH"
	IssuePriorityCritical IssuePriority = "CRITICAL"
)

func (p IssuePriority) Valid() bool {
	switch p {
	case IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh, IssuePriorityCritical:
		return true
	}
	return false
}

// Complexity is the AI-assigned size of an issue.
type Complexity string

const (
	ComplexityLow    Complexity = "LOW"
	ComplexityMedium Complexity = "MEDIUM"
	ComplexityHigh   Complexity = "HIGH"
)

func (c Complexity) Valid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}
