package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thelocal/backend/internal/audit"
	"github.com/thelocal/backend/internal/dashboard"
)

type DashboardHandler struct {
	store *dashboard.Store
}

func NewDashboardHandler(store *dashboard.Store) *DashboardHandler {
	return &DashboardHandler{store: store}
}

// Get returns the full dashboard document.
func (h *DashboardHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// UpdateSystemSettings merges the supplied keys into the system settings
// sub-map. An empty payload is rejected.
func (h *DashboardHandler) UpdateSystemSettings(c *gin.Context) {
	var partial map[string]interface{}
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if len(partial) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No settings provided"})
		return
	}

	merged := h.store.UpdateSystemSettings(partial)
	audit.Eventf("System settings updated via API")
	c.JSON(http.StatusOK, gin.H{"systemSettings": merged})
}
