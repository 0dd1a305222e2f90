// Package ai classifies next actions and issues with a chat completion
// model, falling back to keyword heuristics when the model is unavailable.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/config"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/logging"
)

// Completer sends one system instruction and one user message and returns
// the model's reply.
type Completer interface {
	Complete(ctx context.Context, userID, system, prompt string) (string, error)
}

// GroqClient talks to Groq through its OpenAI compatible endpoint.
type GroqClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      zerolog.Logger
	now         func() time.Time
}

func NewGroqClient(cfg config.AIConfig, logger zerolog.Logger) *GroqClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &GroqClient{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
		now:         time.Now,
	}
}

func (g *GroqClient) Complete(ctx context.Context, userID, system, prompt string) (string, error) {
	date := g.now()
	system = fmt.Sprintf("Today is %s, %s. %s", date.Weekday(), date.Format("2006-01-02"), system)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("groq chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from Groq")
	}
	reply := resp.Choices[0].Message.Content

	logging.LogEvent(g.logger, "user_prompt", userID, map[string]interface{}{
		"prompt": prompt,
	})
	logging.LogEvent(g.logger, "ai_reply", userID, map[string]interface{}{
		"reply": reply,
	})
	return reply, nil
}
