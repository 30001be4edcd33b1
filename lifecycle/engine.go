// Package lifecycle applies every mutation of restaurants and orders and
// derives the notices each one must publish.
//
// The engine does not enforce the status ladder. A status update is taken
// as authoritative, merged into the stored order, and the notices are
// computed from the new value. Acceptance by a delivery partner is the one
// transition where the engine decides the status itself.
//
// All mutations are serialised behind one mutex so that the merge and the
// notices it produces are observed in the same order by every listener.
package lifecycle

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"food-delivery-relay/events"
	"food-delivery-relay/models"
	"food-delivery-relay/normalize"
	"food-delivery-relay/statemachine"
	"food-delivery-relay/store"

	"github.com/google/uuid"
)

// Recorder keeps the status audit trail
type Recorder interface {
	Record(entry models.OrderStatusHistory) error
}

// MissingPolicy decides what an update does with an id the store does not know
type MissingPolicy int

const (
	// RejectMissing returns store.ErrNotFound (request/response path)
	RejectMissing MissingPolicy = iota
	// InsertMissing appends the update as a new detached record (message path)
	InsertMissing
)

type Engine struct {
	mu      sync.Mutex
	store   *store.Store
	pub     events.Publisher
	history Recorder

	now   func() time.Time
	newID normalize.IDFunc
}

type Option func(*Engine)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs replaces uuid generation
func WithIDs(newID normalize.IDFunc) Option {
	return func(e *Engine) { e.newID = newID }
}

// New builds an engine. history may be nil.
func New(s *store.Store, pub events.Publisher, history Recorder, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		pub:     pub,
		history: history,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the read side to the gateways
func (e *Engine) Store() *store.Store { return e.store }

// MenuItemAdded is the payload of menu notices
type MenuItemAdded struct {
	RestaurantID string            `json:"restaurantId"`
	Item         models.MenuItem   `json:"item"`
	Menu         []models.MenuItem `json:"menu"`
}

// CreationAck is returned to the asynchronous caller of order creation only
type CreationAck struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

func (e *Engine) UpsertRestaurant(p normalize.Payload) (models.Restaurant, error) {
	patch, err := normalize.Restaurant(p, e.newID)
	if err != nil {
		return models.Restaurant{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	r, created := e.store.UpsertRestaurant(patch)
	if created {
		log.Printf("restaurant %s created", r.ID)
	}
	e.pub.Publish(
		events.Notice{Room: events.RestaurantRoom(r.ID), Event: events.RestaurantUpdate, Payload: r},
		events.Notice{Event: events.RestaurantGlobal, Payload: r},
	)
	return r, nil
}

// AddMenuItem appends a single item to the restaurant's existing menu
func (e *Engine) AddMenuItem(restaurantID string, p normalize.Payload) (models.Restaurant, error) {
	item, err := normalize.MenuItem(p, restaurantID, e.newID)
	if err != nil {
		return models.Restaurant{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.store.AppendMenuItem(restaurantID, item)
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("restaurant %s: %w", restaurantID, err)
	}
	added := MenuItemAdded{RestaurantID: r.ID, Item: item, Menu: r.Menu}
	e.pub.Publish(
		events.Notice{Room: events.RestaurantRoom(r.ID), Event: events.MenuUpdate, Payload: added},
		events.Notice{Event: events.MenuGlobal, Payload: added},
	)
	return r, nil
}

// CreateOrder stores a new order and announces it to the restaurant, the
// customer and every global listener. Creating an id that already exists
// merges the fields the payload carries into the stored order.
func (e *Engine) CreateOrder(p normalize.Payload, actor string) (models.Order, error) {
	o, err := normalize.NewOrder(p, e.now())
	if err != nil {
		return models.Order{}, err
	}
	merge, err := normalize.OrderMerge(p, o.ID)
	if err != nil {
		return models.Order{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	before, stored, created := e.store.UpsertOrder(o, merge)
	switch {
	case created:
		e.record(stored.ID, "", stored.Status, actor, "order placed")
	case before.Status != stored.Status:
		e.record(stored.ID, before.Status, stored.Status, actor, "order placed again")
	}
	e.pub.Publish(
		events.Notice{Room: events.RestaurantRoom(stored.RestaurantID), Event: events.OrderNew, Payload: stored},
		events.Notice{Room: events.CustomerRoom(stored.CustomerID), Event: events.OrderCreated, Payload: stored},
		events.Notice{Event: events.OrderNewGlobal, Payload: stored},
	)
	return stored, nil
}

// UpdateStatus merges a partial order update. With InsertMissing an unknown
// id is appended as a fresh detached record instead of failing. An update
// that assigns the first delivery partner is an acceptance and forces
// picked_up like AcceptOrder does. Once a partner is assigned only
// AcceptOrder can replace it; the field is ignored here.
func (e *Engine) UpdateStatus(p normalize.Payload, policy MissingPolicy, actor string) (models.Order, error) {
	patch, err := normalize.OrderUpdate(p)
	if err != nil {
		return models.Order{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	assigned := false
	before, after, err := e.mutate(patch.ID, policy, func(o *models.Order) {
		if patch.DeliveryPartnerID != nil && o.HasPartner() {
			if *patch.DeliveryPartnerID != o.PartnerID() {
				log.Printf("order %s: ignoring delivery partner %s, already assigned to %s", o.ID, *patch.DeliveryPartnerID, o.PartnerID())
			}
			patch.DeliveryPartnerID = nil
		}
		assigned = patch.DeliveryPartnerID != nil && *patch.DeliveryPartnerID != ""
		o.Apply(patch)
		if assigned {
			o.Status = models.StatusPickedUp
		}
	})
	if err != nil {
		return models.Order{}, err
	}

	statusChanged := patch.Status != nil || assigned
	if statusChanged {
		if dev := statemachine.CheckTransition(before.Status, after.Status); dev != nil && before.Status != "" && !assigned {
			log.Printf("order %s: accepting %v", after.ID, dev)
		}
		note := "status update"
		if assigned {
			note = "accepted by delivery partner " + after.PartnerID()
		}
		e.record(after.ID, before.Status, after.Status, actor, note)
	}
	e.pub.Publish(e.updateNotices(after, statusChanged)...)
	return after, nil
}

// AcceptOrder assigns a delivery partner and forces the status to
// picked_up whatever it was before.
func (e *Engine) AcceptOrder(orderID, partnerID string, policy MissingPolicy, actor string) (models.Order, error) {
	if orderID == "" || partnerID == "" {
		return models.Order{}, &normalize.FieldError{Field: "deliveryPartnerId", Reason: "is required"}
	}
	picked := models.StatusPickedUp
	patch := models.OrderPatch{ID: orderID, Status: &picked, DeliveryPartnerID: &partnerID}

	e.mu.Lock()
	defer e.mu.Unlock()
	before, after, err := e.mutate(orderID, policy, func(o *models.Order) { o.Apply(patch) })
	if err != nil {
		return models.Order{}, err
	}

	if before.HasPartner() && before.PartnerID() != partnerID {
		log.Printf("order %s: delivery partner %s replaced by %s", orderID, before.PartnerID(), partnerID)
	}
	if actor == "" {
		actor = partnerID
	}
	e.record(after.ID, before.Status, after.Status, actor, "accepted by delivery partner "+partnerID)
	e.pub.Publish(e.updateNotices(after, true)...)
	return after, nil
}

// AcceptPayload is AcceptOrder for a raw accept request
func (e *Engine) AcceptPayload(p normalize.Payload, policy MissingPolicy, actor string) (models.Order, error) {
	orderID, partnerID, err := normalize.Acceptance(p)
	if err != nil {
		return models.Order{}, err
	}
	return e.AcceptOrder(orderID, partnerID, policy, actor)
}

// PingLocation relays a partner position to the order's customer and to
// global listeners. Nothing is stored. The customer comes from the ping
// itself or, failing that, from the stored order.
func (e *Engine) PingLocation(p normalize.Payload) (models.LocationPing, error) {
	ping, err := normalize.Location(p, e.now())
	if err != nil {
		return models.LocationPing{}, err
	}
	if ping.CustomerID == "" {
		if o, err := e.store.GetOrder(ping.OrderID); err == nil {
			ping.CustomerID = o.CustomerID
		}
	}

	notices := make([]events.Notice, 0, 2)
	if ping.CustomerID != "" {
		notices = append(notices, events.Notice{Room: events.CustomerRoom(ping.CustomerID), Event: events.LocationCustomer, Payload: ping})
	}
	notices = append(notices, events.Notice{Event: events.LocationGlobal, Payload: ping})
	e.pub.Publish(notices...)
	return ping, nil
}

// mutate applies fn to the stored order. When the id is unknown and the
// policy allows it, fn is applied to an empty record that is then appended
// detached; before is the zero Order in that case.
func (e *Engine) mutate(id string, policy MissingPolicy, fn func(o *models.Order)) (before, after models.Order, err error) {
	before, after, err = e.store.MutateOrder(id, fn)
	if errors.Is(err, store.ErrNotFound) && policy == InsertMissing {
		o := models.Order{ID: id, Items: []models.LineItem{}, CreatedAt: e.now()}
		fn(&o)
		o.ID = id
		return models.Order{}, e.store.InsertDetached(o), nil
	}
	if err != nil {
		return models.Order{}, models.Order{}, fmt.Errorf("order %s: %w", id, err)
	}
	return before, after, nil
}

// updateNotices lists what an order update publishes: order:update to each
// party's room, the global status pair, then the milestone implied by the
// new status when the update carried one.
func (e *Engine) updateNotices(o models.Order, statusChanged bool) []events.Notice {
	notices := make([]events.Notice, 0, 5)
	if o.CustomerID != "" {
		notices = append(notices, events.Notice{Room: events.CustomerRoom(o.CustomerID), Event: events.OrderUpdate, Payload: o})
	}
	if o.RestaurantID != "" {
		notices = append(notices, events.Notice{Room: events.RestaurantRoom(o.RestaurantID), Event: events.OrderUpdate, Payload: o})
	}
	if o.HasPartner() {
		notices = append(notices, events.Notice{Room: events.DeliveryRoom(o.PartnerID()), Event: events.OrderUpdate, Payload: o})
	}
	notices = append(notices, events.Notice{Event: events.OrderStatusGlobal, Payload: o})

	if !statusChanged {
		return notices
	}
	if m, ok := statemachine.MilestoneFor(o); ok {
		notices = append(notices, events.Notice{Event: milestoneEvents[m], Payload: o})
	}
	return notices
}

var milestoneEvents = map[statemachine.Milestone]events.Event{
	statemachine.MilestoneReadyForPickup: events.OrderReadyForPickup,
	statemachine.MilestonePickedUp:       events.OrderPickedUp,
	statemachine.MilestoneDelivered:      events.OrderDelivered,
}

func (e *Engine) record(orderID string, from, to models.OrderStatus, actor, note string) {
	if e.history == nil {
		return
	}
	err := e.history.Record(models.OrderStatusHistory{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  actor,
		Note:       note,
		CreatedAt:  e.now(),
	})
	if err != nil {
		log.Printf("order %s: history not recorded: %v", orderID, err)
	}
}
