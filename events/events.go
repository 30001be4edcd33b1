// Package events names everything that travels over the realtime channel.
//
// Business code speaks in semantic Events; the wire table below decides
// which event names actually go out, and in which order. Several semantics
// fan out to two spellings for listeners written against older clients.
package events

import (
	"fmt"
	"strings"

	"food-delivery-relay/models"
)

type Event int

const (
	OrderNew Event = iota + 1
	OrderCreated
	OrderNewGlobal
	OrderCreatedAck
	OrderUpdate
	OrderStatusGlobal
	OrderReadyForPickup
	OrderPickedUp
	OrderDelivered
	LocationCustomer
	LocationGlobal
	RestaurantUpdate
	RestaurantGlobal
	MenuUpdate
	MenuGlobal
)

var wireNames = map[Event][]string{
	OrderNew:            {"order:new"},
	OrderCreated:        {"order:created"},
	OrderNewGlobal:      {"order:new", "new_order"},
	OrderCreatedAck:     {"order_created"},
	OrderUpdate:         {"order:update"},
	OrderStatusGlobal:   {"order:status", "order_status_updated"},
	OrderReadyForPickup: {"order:ready"},
	OrderPickedUp:       {"order:picked_up"},
	OrderDelivered:      {"order:delivered"},
	LocationCustomer:    {"delivery:location"},
	LocationGlobal:      {"location_update"},
	RestaurantUpdate:    {"restaurant:update"},
	RestaurantGlobal:    {"restaurant:updated", "restaurant_updated"},
	MenuUpdate:          {"menu:update"},
	MenuGlobal:          {"menu:updated", "menu_updated"},
}

// WireNames returns the names to emit for e, in emission order
func WireNames(e Event) []string {
	return wireNames[e]
}

func (e Event) String() string {
	if names, ok := wireNames[e]; ok {
		return names[0]
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Notice is one thing to publish. An empty Room means every connection.
type Notice struct {
	Room    string
	Event   Event
	Payload any
}

// Global reports whether n goes to every connection
func (n Notice) Global() bool { return n.Room == "" }

// Publisher fans notices out to connections. Implementations must not block.
type Publisher interface {
	Publish(notices ...Notice)
}

// Room kinds accepted by join
const (
	KindCustomer   = "customer"
	KindRestaurant = "restaurant"
	KindDelivery   = "delivery"
)

// Room builds "<kind>:<id>"
func Room(kind, id string) string {
	return kind + ":" + id
}

func CustomerRoom(id string) string   { return Room(KindCustomer, id) }
func RestaurantRoom(id string) string { return Room(KindRestaurant, id) }
func DeliveryRoom(id string) string   { return Room(KindDelivery, id) }

// ParseRoom validates a join request and returns the room name
func ParseRoom(kind, id string) (string, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	id = strings.TrimSpace(id)
	switch models.UserRole(kind) {
	case models.RoleCustomer, models.RoleRestaurant, models.RoleDelivery:
	default:
		return "", fmt.Errorf("unknown room type %q", kind)
	}
	if id == "" {
		return "", fmt.Errorf("room id is required")
	}
	return Room(kind, id), nil
}
