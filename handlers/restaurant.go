package handlers

import (
	"net/http"
	"strings"

	"food-delivery-relay/models"

	"github.com/gin-gonic/gin"
)

// ListRestaurants returns every restaurant, optionally filtered
func (h *Handler) ListRestaurants(c *gin.Context) {
	cuisine := strings.ToLower(c.Query("cuisine"))
	search := strings.ToLower(c.Query("search"))
	openOnly := c.Query("open") == "true"

	restaurants := make([]models.Restaurant, 0)
	for _, r := range h.store.ListRestaurants() {
		if cuisine != "" && !strings.Contains(strings.ToLower(r.Cuisine), cuisine) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Name), search) {
			continue
		}
		if openOnly && !r.IsOpen {
			continue
		}
		restaurants = append(restaurants, r)
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(restaurants),
		"restaurants": restaurants,
	})
}

func (h *Handler) GetRestaurant(c *gin.Context) {
	r, err := h.store.GetRestaurant(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": r})
}

// UpsertRestaurant creates or merges a restaurant. On PUT the path id wins
// over any id in the body.
func (h *Handler) UpsertRestaurant(c *gin.Context) {
	p, ok := bindPayload(c)
	if !ok {
		return
	}
	r, err := h.engine.UpsertRestaurant(withPathID(p, "id", c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant saved", "restaurant": r})
}

// GetMenu returns a restaurant's menu in display order
func (h *Handler) GetMenu(c *gin.Context) {
	r, err := h.store.GetRestaurant(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	category := c.Query("category")
	isVeg := c.Query("isVeg")
	if isVeg == "" {
		isVeg = c.Query("is_veg")
	}
	items := make([]models.MenuItem, 0, len(r.Menu))
	for _, item := range r.Menu {
		if category != "" && !strings.EqualFold(item.Category, category) {
			continue
		}
		if isVeg == "true" && !item.IsVeg {
			continue
		}
		if isVeg == "false" && item.IsVeg {
			continue
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, gin.H{
		"restaurant": r.Name,
		"count":      len(items),
		"menu":       items,
	})
}

// AddMenuItem appends one item to the menu
func (h *Handler) AddMenuItem(c *gin.Context) {
	p, ok := bindPayload(c)
	if !ok {
		return
	}
	r, err := h.engine.AddMenuItem(c.Param("id"), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "restaurant": r})
}
