package ai

import (
	"strings"
	"unicode"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

// HeuristicConfidence is the confidence of every keyword classification.
const HeuristicConfidence = 0.3

// Minimum fuzzy.Ratio for a word to count as a keyword; tolerates typos
// such as "cal" for "call".
const matchThreshold = 80

var (
	quickWords = []string{
		"call", "email", "reply", "text", "send", "pay", "buy", "book",
		"check", "confirm", "sign", "print", "forward", "remind", "order",
	}
	projectWords = []string{
		"plan", "organize", "build", "develop", "design", "launch", "research",
		"implement", "migrate", "prepare", "renovate", "redesign", "write",
	}
	quickFixWords = []string{
		"typo", "label", "color", "copy", "wording", "link", "spelling",
		"tooltip", "icon", "padding", "alignment",
	}
	bigIssueWords = []string{
		"refactor", "redesign", "migrate", "architecture", "integration",
		"overhaul", "rewrite", "performance", "security", "sync",
	}
)

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matches reports whether any word is close enough to any keyword.
func matches(ws []string, keywords []string) bool {
	for _, w := range ws {
		if len(w) < 3 {
			continue
		}
		for _, k := range keywords {
			if w == k || fuzzy.Ratio(w, k) >= matchThreshold {
				return true
			}
		}
	}
	return false
}

// HeuristicTask classifies a next action from its words alone.
func HeuristicTask(title string, description *string) models.TaskClassification {
	titleWords := words(title)
	all := append(titleWords, words(deref(description))...)

	c := models.TaskClassification{Confidence: HeuristicConfidence, Source: models.SourceHeuristic}
	switch {
	case matches(all, projectWords) || len(all) > 25:
		c.IsProjectCandidate = true
		c.Reasoning = "Keywords suggest several steps."
	case matches(titleWords, quickWords) && len(titleWords) <= 6:
		c.Is2MinuteRuleCandidate = true
		c.EstimatedMinutes = models.Ptr(2)
		c.Reasoning = "Short, single-step action."
	default:
		c.Reasoning = "No strong signal; treat as a regular next action."
	}
	return c
}

// HeuristicIssue estimates an issue from its type and words.
func HeuristicIssue(r IssueRequest) models.IssueClassification {
	ws := words(r.Title + " " + deref(r.Description))
	c := models.IssueClassification{Confidence: HeuristicConfidence, Source: models.SourceHeuristic}
	switch {
	case matches(ws, bigIssueWords) || (r.Type == models.IssueFeature && len(ws) > 40):
		c.Complexity = models.ComplexityHigh
		c.ShouldBeProject = true
		c.EstimatedHours = models.Ptr(16.0)
		c.Reasoning = "Wide-reaching change."
	case matches(ws, quickFixWords):
		c.Complexity = models.ComplexityLow
		c.IsQuickFix = true
		c.EstimatedHours = models.Ptr(1.0)
		c.Reasoning = "Small, local fix."
	default:
		c.Complexity = models.ComplexityMedium
		c.EstimatedHours = models.Ptr(4.0)
		c.Reasoning = "No strong signal; assume moderate effort."
	}
	return c
}
