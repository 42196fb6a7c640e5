package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thelocal/backend/internal/audit"
	"github.com/thelocal/backend/internal/diagnostics"
	"github.com/thelocal/backend/internal/settings"
)

type TailscaleHandler struct {
	settings *settings.Store
	prober   *diagnostics.TailscaleProber
}

func NewTailscaleHandler(st *settings.Store, prober *diagnostics.TailscaleProber) *TailscaleHandler {
	return &TailscaleHandler{settings: st, prober: prober}
}

// Get returns the configured peer address and the cached probe status.
func (h *TailscaleHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tailscale_ip": h.settings.Value(settings.KeyTailscaleIP),
		"status":       h.prober.Current(),
	})
}

// Update stores a new peer address and immediately re-probes it.
func (h *TailscaleHandler) Update(c *gin.Context) {
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		audit.Errorf("Invalid JSON in tailscale update: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	updated := map[string]string{}
	if ip, ok := data[settings.KeyTailscaleIP].(string); ok {
		updated = h.settings.Update(map[string]interface{}{settings.KeyTailscaleIP: ip})
		audit.Eventf("Tailscale IP updated to: %s", ip)
	}

	status := h.prober.Current()
	if len(updated) > 0 {
		status = h.prober.Update(h.settings.Value(settings.KeyTailscaleIP))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "updated",
		"updated":          updated,
		"tailscale_status": status,
	})
}

// Verify probes the configured address, or an override supplied in the
// optional request body as {"ip": "..."}.
func (h *TailscaleHandler) Verify(c *gin.Context) {
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil && !errors.Is(err, io.EOF) {
		data = nil
	}

	address, _ := data["ip"].(string)
	if address == "" {
		address = h.settings.Value(settings.KeyTailscaleIP)
	}

	c.JSON(http.StatusOK, h.prober.Update(address))
}

// Peers returns the overlay peer list. Placeholder until the panel talks
// to the Tailscale local API.
func (h *TailscaleHandler) Peers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"peers": []string{}})
}
