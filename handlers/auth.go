package handlers

import (
	"net/http"

	"food-delivery-relay/middleware"
	"food-delivery-relay/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LoginRequest struct {
	ID       string          `json:"id"`
	Email    string          `json:"email" binding:"required,email"`
	Name     string          `json:"name"`
	Role     models.UserRole `json:"role"`
	Password string          `json:"password"`
}

// Login is a stub: any credentials are accepted and echoed back together
// with a signed token. Nothing checks the token later except to label the
// status history.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleCustomer
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be: customer, restaurant, or delivery"})
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	token, err := middleware.GenerateToken(h.cfg.JWTSecret, req.ID, req.Email, req.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Login successful",
		"authenticated": true,
		"token":         token,
		"user": gin.H{
			"id":    req.ID,
			"name":  req.Name,
			"email": req.Email,
			"role":  req.Role,
		},
	})
}
