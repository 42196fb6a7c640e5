package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thelocal/backend/internal/audit"
	"github.com/thelocal/backend/internal/dashboard"
)

type UserHandler struct {
	store *dashboard.Store
}

func NewUserHandler(store *dashboard.Store) *UserHandler {
	return &UserHandler{store: store}
}

// Create adds a new user entry and persists the dashboard document.
func (h *UserHandler) Create(c *gin.Context) {
	var req dashboard.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := h.store.CreateUser(req)
	audit.Eventf("User created via API: %s", user.Handle)
	c.JSON(http.StatusOK, user)
}

// Update patches an existing user. Empty payloads are rejected.
func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req dashboard.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if req.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No changes provided"})
		return
	}

	user, err := h.store.UpdateUser(id, req)
	if errors.Is(err, dashboard.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	audit.Eventf("User %d updated", id)
	c.JSON(http.StatusOK, user)
}

// Delete removes a user and echoes the removed record.
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.store.DeleteUser(id)
	if errors.Is(err, dashboard.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	audit.Eventf("User deleted: %s", user.Handle)
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "user": user})
}
