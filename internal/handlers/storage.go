package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thelocal/backend/internal/diagnostics"
	"github.com/thelocal/backend/internal/settings"
)

type StorageHandler struct {
	settings *settings.Store
	monitor  *diagnostics.StorageMonitor
}

func NewStorageHandler(st *settings.Store, monitor *diagnostics.StorageMonitor) *StorageHandler {
	return &StorageHandler{settings: st, monitor: monitor}
}

// Get recomputes and returns the cloud storage status for the configured
// path.
func (h *StorageHandler) Get(c *gin.Context) {
	path := settings.NormalizePath(
		h.settings.Value(settings.KeyCloudStoragePath),
		h.settings.DefaultCloudStoragePath(),
	)
	c.JSON(http.StatusOK, h.monitor.Update(path))
}
