package ai

import (
	"fmt"
	"strings"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

const (
	SystemPromptClassifyTask = `You are a GTD (Getting Things Done) coach inside a task management app.

Your job is to classify ONE next action:
- "is2MinuteRuleCandidate": true if it can be finished in about two minutes or less
- "isProjectCandidate": true if it really needs several steps and should become a project
- Both can be false. They can never both be true.

Use this exact JSON format:
{
  "is2MinuteRuleCandidate": true,
  "isProjectCandidate": false,
  "confidence": 0.0,
  "reasoning": "...",
  "estimatedMinutes": 0
}
"confidence" is a number between 0 and 1.
"estimatedMinutes" is optional.
Reply ONLY with the JSON object. No extra text.
`

	SystemPromptClassifyIssue = `You are a senior software engineer triaging issues for a GTD (Getting Things Done) app.

Your job is to estimate ONE issue:
- "complexity": "LOW", "MEDIUM" or "HIGH"
- "isQuickFix": true if it can be fixed in under an hour
- "shouldBeProject": true if it needs several separate pieces of work

Use this exact JSON format:
{
  "complexity": "LOW",
  "isQuickFix": true,
  "shouldBeProject": false,
  "estimatedHours": 0.5,
  "confidence": 0.0,
  "reasoning": "..."
}
"confidence" is a number between 0 and 1.
"estimatedHours" is optional.
Reply ONLY with the JSON object. No extra text.
`
)

// TaskRequest is a next action to classify. Existing is the annotation the
// action already carries, if any.
type TaskRequest struct {
	UserID      string
	ItemID      string
	Title       string
	Description *string
	Existing    *models.TaskAnnotation
}

// IssueRequest is an issue to classify.
type IssueRequest struct {
	UserID             string
	ItemID             string
	Title              string
	Description        *string
	Type               models.IssueType
	ReproductionSteps  *string
	AcceptanceCriteria *string
	Existing           *models.IssueAnnotation
}

// TaskRequestFor builds a request from a stored next action.
func TaskRequestFor(userID string, a models.NextAction) TaskRequest {
	return TaskRequest{
		UserID:      userID,
		ItemID:      a.ID,
		Title:       a.Title,
		Description: a.Description,
		Existing:    a.Annotation(),
	}
}

// IssueRequestFor builds a request from a stored issue.
func IssueRequestFor(userID string, i models.Issue) IssueRequest {
	return IssueRequest{
		UserID:             userID,
		ItemID:             i.ID,
		Title:              i.Title,
		Description:        i.Description,
		Type:               i.Type,
		ReproductionSteps:  i.ReproductionSteps,
		AcceptanceCriteria: i.AcceptanceCriteria,
		Existing:           i.Annotation(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func taskPrompt(r TaskRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", r.Title)
	if d := deref(r.Description); d != "" {
		fmt.Fprintf(&b, "Description: %s\n", d)
	}
	return b.String()
}

func issuePrompt(r IssueRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Issue: %s\n", r.Title)
	fmt.Fprintf(&b, "Type: %s\n", r.Type)
	if d := deref(r.Description); d != "" {
		fmt.Fprintf(&b, "Description: %s\n", d)
	}
	if s := deref(r.ReproductionSteps); s != "" {
		fmt.Fprintf(&b, "Steps to reproduce: %s\n", s)
	}
	if s := deref(r.AcceptanceCriteria); s != "" {
		fmt.Fprintf(&b, "Acceptance criteria: %s\n", s)
	}
	return b.String()
}
