package handlers

import (
	"fmt"
	"log"

	"food-delivery-relay/events"
	"food-delivery-relay/lifecycle"
	"food-delivery-relay/normalize"
	"food-delivery-relay/realtime"

	"github.com/gin-gonic/gin"
)

type socketOp int

const (
	opUpsertRestaurant socketOp = iota + 1
	opAddMenuItem
	opCreateOrder
	opUpdateStatus
	opAcceptOrder
	opLocation
)

// socketEvents maps every accepted inbound spelling to its operation
var socketEvents = map[string]socketOp{
	"restaurant_update":    opUpsertRestaurant,
	"upsert_restaurant":    opUpsertRestaurant,
	"menu_item_added":      opAddMenuItem,
	"add_menu_item":        opAddMenuItem,
	"create_order":         opCreateOrder,
	"place_order":          opCreateOrder,
	"order_status_updated": opUpdateStatus,
	"update_order_status":  opUpdateStatus,
	"accept_order":         opAcceptOrder,
	"order_accepted":       opAcceptOrder,
	"location_update":      opLocation,
	"delivery_location":    opLocation,
}

// ServeWS upgrades the request and keeps the connection until it closes
func (h *Handler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	h.hub.Serve(conn, h)
}

// Dispatch runs one inbound message. Updates that name an unknown order
// are recorded as new entries instead of failing; creation is acknowledged
// to the sender only.
func (h *Handler) Dispatch(client *realtime.Client, f realtime.Frame) error {
	op, ok := socketEvents[f.Event]
	if !ok {
		return fmt.Errorf("unknown event %q", f.Event)
	}
	p, err := normalize.Decode(f.Data)
	if err != nil {
		return err
	}
	actor := "socket:" + client.ID

	switch op {
	case opUpsertRestaurant:
		_, err = h.engine.UpsertRestaurant(p)
	case opAddMenuItem:
		restaurantID, item, splitErr := normalize.MenuAppend(p)
		if splitErr != nil {
			return splitErr
		}
		_, err = h.engine.AddMenuItem(restaurantID, item)
	case opCreateOrder:
		o, createErr := h.engine.CreateOrder(p, actor)
		if createErr != nil {
			return createErr
		}
		ack := lifecycle.CreationAck{Success: true, OrderID: o.ID}
		for _, name := range events.WireNames(events.OrderCreatedAck) {
			client.Emit(name, ack)
		}
	case opUpdateStatus:
		_, err = h.engine.UpdateStatus(p, lifecycle.InsertMissing, actor)
	case opAcceptOrder:
		_, err = h.engine.AcceptPayload(p, lifecycle.InsertMissing, actor)
	case opLocation:
		_, err = h.engine.PingLocation(p)
	}
	return err
}
