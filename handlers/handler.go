package handlers

import (
	"errors"
	"log"
	"net/http"

	"food-delivery-relay/config"
	"food-delivery-relay/lifecycle"
	"food-delivery-relay/models"
	"food-delivery-relay/normalize"
	"food-delivery-relay/realtime"
	"food-delivery-relay/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HistoryReader lists the recorded status changes of an order
type HistoryReader interface {
	ForOrder(orderID string) ([]models.OrderStatusHistory, error)
}

// Handler serves both entry paths. Every mutation goes through the same
// lifecycle engine whichever path it came in on.
type Handler struct {
	engine   *lifecycle.Engine
	store    *store.Store
	hub      *realtime.Hub
	history  HistoryReader
	upgrader *websocket.Upgrader
	cfg      config.Config
}

// New builds the handler set. history may be nil.
func New(cfg config.Config, engine *lifecycle.Engine, hub *realtime.Hub, history HistoryReader) *Handler {
	return &Handler{
		engine:   engine,
		store:    engine.Store(),
		hub:      hub,
		history:  history,
		upgrader: realtime.NewUpgrader(cfg.CORSOrigin),
		cfg:      cfg,
	}
}

// bindPayload reads the raw JSON body. It writes a 400 and returns false
// when the body is not an object.
func bindPayload(c *gin.Context) (normalize.Payload, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	p, err := normalize.Decode(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return p, true
}

// withPathID copies the path id into p under key. A nil payload stays nil
// so the engine still reports it as missing.
func withPathID(p normalize.Payload, key, id string) normalize.Payload {
	if p != nil && id != "" {
		p[key] = id
	}
	return p
}

// respondError maps engine errors onto status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, normalize.ErrMissingPayload), errors.Is(err, normalize.ErrMalformed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
