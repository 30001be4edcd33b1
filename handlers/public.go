package handlers

import (
	"net/http"

	"food-delivery-relay/events"
	"food-delivery-relay/statemachine"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.ServiceName,
		"version": "1.0.0",
		"clients": h.hub.ClientCount(),
	})
}

func (h *Handler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Food Delivery Realtime Relay",
		"docs":      "/api/state-machine",
		"health":    "/health",
		"websocket": "/ws",
		"rooms":     []string{"customer:<id>", "restaurant:<id>", "delivery:<id>"},
	})
}

// GetStateMachineInfo documents the status ladder and the global notices
// each status produces. The ladder is informational: any status is accepted.
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []string{"delivered"},
		"enforced":        false,
		"milestones": []gin.H{
			{"status": "ready", "event": events.OrderReadyForPickup.String(), "when": "no delivery partner assigned"},
			{"status": "picked_up", "event": events.OrderPickedUp.String()},
			{"status": "delivered", "event": events.OrderDelivered.String()},
		},
		"acceptance":  "assigning a delivery partner always moves the order to picked_up",
		"description": "Food Delivery Order Lifecycle",
	})
}
