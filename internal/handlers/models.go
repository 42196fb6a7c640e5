package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thelocal/backend/internal/services"
	"github.com/thelocal/backend/pkg/response"
)

type ModelsHandler struct {
	openai *services.OpenAIService
	ollama *services.OllamaService
}

func NewModelsHandler(openai *services.OpenAIService, ollama *services.OllamaService) *ModelsHandler {
	return &ModelsHandler{openai: openai, ollama: ollama}
}

// OpenAI lists the available OpenAI models, falling back to the cached
// set when the live call cannot be completed.
func (h *ModelsHandler) OpenAI(c *gin.Context) {
	c.JSON(http.StatusOK, h.openai.ListModels(c.Request.Context()))
}

// Ollama lists the models installed on the Ollama host.
func (h *ModelsHandler) Ollama(c *gin.Context) {
	models, err := h.ollama.ListModels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, models)
}
