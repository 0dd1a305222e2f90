package ai

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
)

var errNoJSON = errors.New("reply holds no JSON object")

// extractJSON strips markdown code fences and any prose around the object.
func extractJSON(reply string) ([]byte, error) {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	b := []byte(s)
	start, end := bytes.IndexByte(b, '{'), bytes.LastIndexByte(b, '}')
	if start < 0 || end < start {
		return nil, errNoJSON
	}
	return b[start : end+1], nil
}

func requireBool(data []byte, key string) (bool, error) {
	v, err := jsonparser.GetBoolean(data, key)
	if err != nil {
		return false, fmt.Errorf("field %s: %w", key, err)
	}
	return v, nil
}

func requireNumber(data []byte, key string) (float64, error) {
	v, err := jsonparser.GetFloat(data, key)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", key, err)
	}
	return v, nil
}

func requireString(data []byte, key string) (string, error) {
	v, err := jsonparser.GetString(data, key)
	if err != nil {
		return "", fmt.Errorf("field %s: %w", key, err)
	}
	return v, nil
}

// optionalNumber returns nil when key is absent or null, and an error when
// it is present with another type.
func optionalNumber(data []byte, key string) (*float64, error) {
	raw, typ, _, err := jsonparser.Get(data, key)
	if errors.Is(err, jsonparser.KeyPathNotFoundError) || typ == jsonparser.Null {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	if typ != jsonparser.Number {
		return nil, fmt.Errorf("field %s: want number, got %s", key, typ)
	}
	v, err := jsonparser.ParseFloat(raw)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return &v, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func parseTaskClassification(reply string) (models.TaskClassification, error) {
	var c models.TaskClassification
	data, err := extractJSON(reply)
	if err != nil {
		return c, err
	}
	if c.Is2MinuteRuleCandidate, err = requireBool(data, "is2MinuteRuleCandidate"); err != nil {
		return c, err
	}
	if c.IsProjectCandidate, err = requireBool(data, "isProjectCandidate"); err != nil {
		return c, err
	}
	if c.Confidence, err = requireNumber(data, "confidence"); err != nil {
		return c, err
	}
	if c.Reasoning, err = requireString(data, "reasoning"); err != nil {
		return c, err
	}
	minutes, err := optionalNumber(data, "estimatedMinutes")
	if err != nil {
		return c, err
	}
	if minutes != nil {
		c.EstimatedMinutes = models.Ptr(int(math.Round(*minutes)))
	}
	c.Confidence = clamp01(c.Confidence)
	c.Source = models.SourceAI
	return c, nil
}

func parseIssueClassification(reply string) (models.IssueClassification, error) {
	var c models.IssueClassification
	data, err := extractJSON(reply)
	if err != nil {
		return c, err
	}
	complexity, err := requireString(data, "complexity")
	if err != nil {
		return c, err
	}
	c.Complexity = models.Complexity(strings.ToUpper(complexity))
	if !c.Complexity.Valid() {
		return c, fmt.Errorf("field complexity: unknown value %q", complexity)
	}
	if c.IsQuickFix, err = requireBool(data, "isQuickFix"); err != nil {
		return c, err
	}
	if c.ShouldBeProject, err = requireBool(data, "shouldBeProject"); err != nil {
		return c, err
	}
	if c.Confidence, err = requireNumber(data, "confidence"); err != nil {
		return c, err
	}
	if c.Reasoning, err = requireString(data, "reasoning"); err != nil {
		return c, err
	}
	if c.EstimatedHours, err = optionalNumber(data, "estimatedHours"); err != nil {
		return c, err
	}
	c.Confidence = clamp01(c.Confidence)
	c.Source = models.SourceAI
	return c, nil
}
