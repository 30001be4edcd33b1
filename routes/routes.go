package routes

import (
	"food-delivery-relay/config"
	"food-delivery-relay/handlers"
	"food-delivery-relay/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with logging, recovery and CORS in front
// of every route
func NewRouter(cfg config.Config, h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.CORS(cfg.CORSOrigin))
	SetupRoutes(r, h, cfg.JWTSecret)
	return r
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, jwtSecret []byte) {
	r.GET("/health", h.Health)
	r.GET("/", h.Welcome)

	// ── Realtime channel ───────────────────────────────────────────
	r.GET("/ws", h.ServeWS)

	api := r.Group("/api")
	api.Use(middleware.Identify(jwtSecret))
	{
		// Auth (stub, never enforced)
		api.POST("/auth/login", h.Login)

		// State machine info
		api.GET("/state-machine", h.GetStateMachineInfo)

		// Restaurants & menus
		api.GET("/restaurants", h.ListRestaurants)
		api.POST("/restaurants", h.UpsertRestaurant)
		api.GET("/restaurants/:id", h.GetRestaurant)
		api.PUT("/restaurants/:id", h.UpsertRestaurant)
		api.GET("/restaurants/:id/menu", h.GetMenu)
		api.POST("/restaurants/:id/menu", h.AddMenuItem)

		// Orders
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/available", h.GetAvailableOrders)
		api.POST("/orders", h.CreateOrder)
		api.GET("/orders/:id", h.GetOrder)
		api.PUT("/orders/:id/status", h.UpdateOrderStatus)
		api.PUT("/orders/:id/accept", h.AcceptOrder)
		api.POST("/orders/:id/location", h.PingLocation)
		api.GET("/orders/:id/history", h.GetOrderHistory)
	}
}
