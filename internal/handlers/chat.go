package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thelocal/backend/internal/services"
	"github.com/thelocal/backend/pkg/response"
)

type ChatHandler struct {
	openai *services.OpenAIService
	ollama *services.OllamaService
}

func NewChatHandler(openai *services.OpenAIService, ollama *services.OllamaService) *ChatHandler {
	return &ChatHandler{openai: openai, ollama: ollama}
}

type chatRequest struct {
	Message string `json:"message"`
}

// OpenAI proxies a chat message to the cloud provider.
func (h *ChatHandler) OpenAI(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	reply, err := h.openai.Chat(c.Request.Context(), req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// Ollama proxies a chat message to the local model daemon.
func (h *ChatHandler) Ollama(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	reply, err := h.ollama.Chat(c.Request.Context(), req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
