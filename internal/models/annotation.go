package models

import "time"

// ClassificationSource records where a classification came from.
type ClassificationSource string

const (
	SourceAI        ClassificationSource = "ai"
	SourceHeuristic ClassificationSource = "heuristic"
)

// TaskClassification is the AI verdict on a next action.
type TaskClassification struct {
	Is2MinuteRuleCandidate bool                 `json:"is2MinuteRuleCandidate" bson:"is2MinuteRuleCandidate" firestore:"is2MinuteRuleCandidate"`
	IsProjectCandidate     bool                 `json:"isProjectCandidate" bson:"isProjectCandidate" firestore:"isProjectCandidate"`
	Confidence             float64              `json:"confidence" bson:"confidence" firestore:"confidence"`
	Reasoning              string               `json:"reasoning" bson:"reasoning" firestore:"reasoning"`
	EstimatedMinutes       *int                 `json:"estimatedMinutes,omitempty" bson:"estimatedMinutes,omitempty" firestore:"estimatedMinutes,omitempty"`
	Source                 ClassificationSource `json:"source" bson:"source" firestore:"source"`
}

// IssueClassification is the AI verdict on an issue.
type IssueClassification struct {
	Complexity      Complexity           `json:"complexity" bson:"complexity" firestore:"complexity"`
	IsQuickFix      bool                 `json:"isQuickFix" bson:"isQuickFix" firestore:"isQuickFix"`
	ShouldBeProject bool                 `json:"shouldBeProject" bson:"shouldBeProject" firestore:"shouldBeProject"`
	EstimatedHours  *float64             `json:"estimatedHours,omitempty" bson:"estimatedHours,omitempty" firestore:"estimatedHours,omitempty"`
	Confidence      float64              `json:"confidence" bson:"confidence" firestore:"confidence"`
	Reasoning       string               `json:"reasoning" bson:"reasoning" firestore:"reasoning"`
	Source          ClassificationSource `json:"source" bson:"source" firestore:"source"`
}

// TaskAnnotation is what a next action carries from a previous classification.
type TaskAnnotation struct {
	AnalysisDate           *time.Time
	Is2MinuteRuleCandidate *bool
	IsProjectCandidate     *bool
	Data                   *TaskClassification
}

// Complete reports whether both verdict booleans are present.
func (a *TaskAnnotation) Complete() bool {
	return a != nil && a.AnalysisDate != nil && a.Is2MinuteRuleCandidate != nil && a.IsProjectCandidate != nil
}

// Classification returns the stored classification, rebuilding it from the
// denormalized booleans when the full payload is missing.
func (a *TaskAnnotation) Classification() TaskClassification {
	if a.Data != nil {
		return *a.Data
	}
	return TaskClassification{
		Is2MinuteRuleCandidate: *a.Is2MinuteRuleCandidate,
		IsProjectCandidate:     *a.IsProjectCandidate,
		Source:                 SourceAI,
	}
}

// IssueAnnotation is what an issue carries from a previous classification.
type IssueAnnotation struct {
	AnalysisDate    *time.Time
	IsQuickFix      *bool
	ShouldBeProject *bool
	Data            *IssueClassification
}

func (a *IssueAnnotation) Complete() bool {
	return a != nil && a.AnalysisDate != nil && a.IsQuickFix != nil && a.ShouldBeProject != nil
}

func (a *IssueAnnotation) Classification() IssueClassification {
	if a.Data != nil {
		return *a.Data
	}
	return IssueClassification{
		Complexity:      ComplexityMedium,
		IsQuickFix:      *a.IsQuickFix,
		ShouldBeProject: *a.ShouldBeProject,
		Source:          SourceAI,
	}
}
