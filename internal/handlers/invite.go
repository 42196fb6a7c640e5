package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thelocal/backend/internal/audit"
	"github.com/thelocal/backend/internal/dashboard"
)

type InviteHandler struct {
	store *dashboard.Store
}

func NewInviteHandler(store *dashboard.Store) *InviteHandler {
	return &InviteHandler{store: store}
}

// Create generates a new invite code. maxUses defaults to 5 and
// expiresDays to 45.
func (h *InviteHandler) Create(c *gin.Context) {
	// An absent body means "use the defaults".
	var req dashboard.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	maxUses := 5
	if req.MaxUses != nil {
		maxUses = *req.MaxUses
	}
	expiresDays := 45
	if req.ExpiresDays != nil {
		expiresDays = *req.ExpiresDays
	}

	invite := h.store.CreateInvite(maxUses, expiresDays)
	audit.Eventf("Invite created: %s", invite.Code)
	c.JSON(http.StatusOK, invite)
}

// Delete removes an invite and echoes the removed record.
func (h *InviteHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invite id"})
		return
	}

	invite, err := h.store.DeleteInvite(id)
	if errors.Is(err, dashboard.ErrInviteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invite not found"})
		return
	}
	audit.Eventf("Invite deleted: %s", invite.Code)
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "invite": invite})
}
