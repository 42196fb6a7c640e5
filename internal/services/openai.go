// Package services wraps the outbound model-serving providers. Each call
// reads the live runtime settings so key or model changes take effect
// without a restart.
package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/thelocal/backend/internal/audit"
	"github.com/thelocal/backend/internal/settings"
	"github.com/thelocal/backend/pkg/logger"
	"github.com/thelocal/backend/pkg/response"
)

// fallbackOpenAIModels is returned when the live model listing cannot be
// completed, so the UI always has something to offer.
var fallbackOpenAIModels = []string{
	"gpt-4o-mini",
	"gpt-4o",
	"gpt-4.1-mini",
	"gpt-4.1",
	"gpt-3.5-turbo",
	"o3-mini",
}

// ModelEntry is one selectable model id.
type ModelEntry struct {
	ID string `json:"id"`
}

// ModelList is the response shape for model listing endpoints.
type ModelList struct {
	Data    []ModelEntry `json:"data"`
	Source  string       `json:"source"`
	Warning string       `json:"warning,omitempty"`
}

type OpenAIService struct {
	settings *settings.Store
}

func NewOpenAIService(st *settings.Store) *OpenAIService {
	return &OpenAIService{settings: st}
}

func (s *OpenAIService) client() *openai.Client {
	cfg := openai.DefaultConfig(s.settings.Value(settings.KeyOpenAIKey))
	cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	return openai.NewClientWithConfig(cfg)
}

// Chat forwards a single user message to the chat completion endpoint,
// prepending the configured system instructions when present.
func (s *OpenAIService) Chat(ctx context.Context, message string) (string, error) {
	model := s.settings.Value(settings.KeyOpenAIModel)
	instructions := s.settings.Value(settings.KeySystemInstructions)

	var messages []openai.ChatCompletionMessage
	if instructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: instructions,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := s.client().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		audit.Errorf("OpenAI request error: %v", err)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode >= 400 {
			return "", response.Upstream(apiErr.HTTPStatusCode, "OpenAI API error")
		}
		return "", response.Upstream(http.StatusBadGateway, "Error communicating with OpenAI")
	}
	if len(resp.Choices) == 0 {
		audit.Errorf("OpenAI returned no choices")
		return "", response.Upstream(http.StatusBadGateway, "Error parsing OpenAI response")
	}

	reply := resp.Choices[0].Message.Content
	audit.Eventf("OpenAI reply: %s", truncate(reply, 60))
	return reply, nil
}

// ListModels fetches the live model list, falling back to the canned set
// tagged source "local-cache" when no key is configured or the call
// fails. Never returns an error.
func (s *OpenAIService) ListModels(ctx context.Context) *ModelList {
	if s.settings.Value(settings.KeyOpenAIKey) == "" {
		warning := "OpenAI API key is not configured; showing cached models"
		audit.Eventf("%s", warning)
		return fallbackModelList(warning)
	}

	resp, err := s.client().ListModels(ctx)
	if err != nil {
		reason := "OpenAI API error: " + err.Error()
		logger.Warnf("Failed to fetch OpenAI models: %v", err)
		audit.Errorf("%s", reason)
		return fallbackModelList(reason)
	}

	list := &ModelList{Source: "openai", Data: make([]ModelEntry, 0, len(resp.Models))}
	for _, m := range resp.Models {
		list.Data = append(list.Data, ModelEntry{ID: m.ID})
	}
	return list
}

func fallbackModelList(warning string) *ModelList {
	list := &ModelList{Source: "local-cache", Warning: warning}
	for _, id := range fallbackOpenAIModels {
		list.Data = append(list.Data, ModelEntry{ID: id})
	}
	return list
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
