package handlers

import (
	"net/http"

	"food-delivery-relay/lifecycle"
	"food-delivery-relay/middleware"
	"food-delivery-relay/models"

	"github.com/gin-gonic/gin"
)

// ListOrders returns every order, detached ledger records included.
// Supports customerId, restaurantId, deliveryPartnerId and status filters.
func (h *Handler) ListOrders(c *gin.Context) {
	customerID := c.Query("customerId")
	restaurantID := c.Query("restaurantId")
	partnerID := c.Query("deliveryPartnerId")
	status := models.OrderStatus(c.Query("status"))

	orders := h.store.FilterOrders(func(o models.Order) bool {
		if customerID != "" && o.CustomerID != customerID {
			return false
		}
		if restaurantID != "" && o.RestaurantID != restaurantID {
			return false
		}
		if partnerID != "" && o.PartnerID() != partnerID {
			return false
		}
		return status == "" || o.Status == status
	})
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetAvailableOrders shows ready orders that no delivery partner holds yet
func (h *Handler) GetAvailableOrders(c *gin.Context) {
	orders := h.store.FilterOrders(func(o models.Order) bool {
		return o.Status == models.StatusReady && !o.HasPartner()
	})
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.store.GetOrder(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o})
}

// CreateOrder places an order and returns the stored record
func (h *Handler) CreateOrder(c *gin.Context) {
	p, ok := bindPayload(c)
	if !ok {
		return
	}
	o, err := h.engine.CreateOrder(p, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": o})
}

// UpdateOrderStatus merges a partial update into a known order
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	p, ok := bindPayload(c)
	if !ok {
		return
	}
	o, err := h.engine.UpdateStatus(withPathID(p, "orderId", c.Param("id")), lifecycle.RejectMissing, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated", "order": o})
}

// AcceptOrder assigns a delivery partner; the order moves to picked_up
func (h *Handler) AcceptOrder(c *gin.Context) {
	p, ok := bindPayload(c)
	if !ok {
		return
	}
	o, err := h.engine.AcceptPayload(withPathID(p, "orderId", c.Param("id")), lifecycle.RejectMissing, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order accepted", "order": o})
}

// PingLocation relays a delivery partner position. Nothing is stored.
func (h *Handler) PingLocation(c *gin.Context) {
	p, ok := bindPayload(c)
	if !ok {
		return
	}
	ping, err := h.engine.PingLocation(withPathID(p, "orderId", c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"location": ping})
}

// GetOrderHistory returns the recorded status changes, oldest first
func (h *Handler) GetOrderHistory(c *gin.Context) {
	orderID := c.Param("id")
	history := make([]models.OrderStatusHistory, 0)
	if h.history != nil {
		entries, err := h.history.ForOrder(orderID)
		if err != nil {
			respondError(c, err)
			return
		}
		history = append(history, entries...)
	}
	if len(history) == 0 {
		if _, err := h.store.GetOrder(orderID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"orderId": orderID,
		"count":   len(history),
		"history": history,
	})
}
