package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/thelocal/backend/internal/audit"
	"github.com/thelocal/backend/internal/diagnostics"
	"github.com/thelocal/backend/pkg/response"
)

type ToolsHandler struct{}

func NewToolsHandler() *ToolsHandler {
	return &ToolsHandler{}
}

// Ping performs a lightweight HTTP(S) request to verify connectivity to
// an arbitrary endpoint.
func (h *ToolsHandler) Ping(c *gin.Context) {
	var req diagnostics.PingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	result, err := diagnostics.Ping(req)
	if err != nil {
		audit.Errorf("API ping failed for %s: %v", req.URL, err)
		response.Error(c, err)
		return
	}

	audit.Eventf("API ping %s %s -> %d (%d ms)", result.Method, result.URL, result.StatusCode, result.LatencyMS)
	c.JSON(http.StatusOK, result)
}

// QR renders the given data as a QR code PNG.
func (h *ToolsHandler) QR(c *gin.Context) {
	data := c.Query("data")
	if data == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "QR data is required"})
		return
	}

	png, err := qrcode.Encode(data, qrcode.Medium, 256)
	if err != nil {
		response.Error(c, response.ServerError(err.Error()))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
