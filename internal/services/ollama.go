package services

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/thelocal/backend/internal/audit"
	"github.com/thelocal/backend/internal/settings"
	"github.com/thelocal/backend/pkg/response"
)

type OllamaService struct {
	settings *settings.Store
}

func NewOllamaService(st *settings.Store) *OllamaService {
	return &OllamaService{settings: st}
}

func (s *OllamaService) client() (*api.Client, error) {
	base := s.settings.Value(settings.KeyOllamaURL)
	if base == "" {
		base = "http://localhost:11434"
	}
	base = strings.TrimRight(settings.NormalizeURL(base, "http"), "/")

	u, err := url.Parse(base)
	if err != nil {
		return nil, response.BadRequest("Invalid Ollama base URL")
	}
	return api.NewClient(u, &http.Client{Timeout: 30 * time.Second}), nil
}

// Chat forwards a single message to the local model, prepending the
// configured system instructions to the prompt.
func (s *OllamaService) Chat(ctx context.Context, message string) (string, error) {
	client, err := s.client()
	if err != nil {
		return "", err
	}

	model := s.settings.Value(settings.KeyOllamaModel)
	if model == "" {
		model = "llama3.1"
	}
	prompt := message
	if instructions := s.settings.Value(settings.KeySystemInstructions); instructions != "" {
		prompt = instructions + "\n\n" + message
	}

	stream := false
	var reply strings.Builder
	err = client.Generate(ctx, &api.GenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: &stream,
	}, func(resp api.GenerateResponse) error {
		reply.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		audit.Errorf("Ollama request error: %v", err)
		return "", response.Upstream(http.StatusBadGateway, "Error communicating with Ollama")
	}

	out := reply.String()
	if out == "" {
		audit.Errorf("Ollama returned an empty response")
		return "", response.Upstream(http.StatusBadGateway, "Ollama returned an empty response")
	}
	audit.Eventf("Ollama reply: %s", truncate(out, 60))
	return out, nil
}

// ListModels returns the models installed on the Ollama host.
func (s *OllamaService) ListModels(ctx context.Context) (*api.ListResponse, error) {
	if s.settings.Value(settings.KeyOllamaURL) == "" {
		return nil, response.NotConfigured("OLLAMA_URL is not set")
	}

	client, err := s.client()
	if err != nil {
		return nil, err
	}
	resp, err := client.List(ctx)
	if err != nil {
		audit.Errorf("Failed to reach Ollama host: %v", err)
		return nil, response.Upstream(http.StatusBadGateway, err.Error())
	}
	return resp, nil
}
