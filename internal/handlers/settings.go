package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thelocal/backend/internal/audit"
	"github.com/thelocal/backend/internal/settings"
)

type SettingsHandler struct {
	settings *settings.Store
}

func NewSettingsHandler(st *settings.Store) *SettingsHandler {
	return &SettingsHandler{settings: st}
}

// Get returns the full runtime settings map.
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Get())
}

// Update applies a partial settings update. Unknown and non-string keys
// are silently dropped.
func (h *SettingsHandler) Update(c *gin.Context) {
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		audit.Errorf("Invalid JSON in settings update: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	updated := h.settings.Update(data)
	for key, value := range updated {
		audit.Eventf("Setting %s updated to: %s", key, value)
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated", "updated": updated})
}
