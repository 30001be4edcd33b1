package models

import (
	"encoding/json"
	"time"
)

// OrderStatus is the delivery ladder value. Values outside the ladder are
// stored as sent; nothing rejects them.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusReady     OrderStatus = "ready"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusDelivered OrderStatus = "delivered"
)

// LineItem is opaque to the relay beyond being an element of Order.Items
type LineItem = json.RawMessage

type Order struct {
	ID                string      `json:"id"`
	RestaurantID      string      `json:"restaurantId"`
	CustomerID        string      `json:"customerId"`
	Items             []LineItem  `json:"items"`
	Total             float64     `json:"total"`
	Status            OrderStatus `json:"status"`
	CreatedAt         time.Time   `json:"createdAt"`
	DeliveryAddress   string      `json:"deliveryAddress"`
	CustomerName      string      `json:"customerName"`
	RestaurantName    string      `json:"restaurantName"`
	DeliveryPartnerID *string     `json:"deliveryPartnerId"`

	// Detached marks a record inserted by a status or accept update that
	// referenced an unknown id. It is listed but never targeted by id.
	Detached bool `json:"-"`
}

// HasPartner reports whether a delivery partner is assigned
func (o Order) HasPartner() bool {
	return o.DeliveryPartnerID != nil && *o.DeliveryPartnerID != ""
}

// PartnerID returns the assigned partner or ""
func (o Order) PartnerID() string {
	if o.DeliveryPartnerID == nil {
		return ""
	}
	return *o.DeliveryPartnerID
}

// OrderPatch carries only the fields present in an inbound payload.
// CreatedAt is deliberately absent: it is set once at creation.
type OrderPatch struct {
	ID                string
	RestaurantID      *string
	CustomerID        *string
	Items             []LineItem // nil leaves items alone
	Total             *float64
	Status            *OrderStatus
	DeliveryAddress   *string
	CustomerName      *string
	RestaurantName    *string
	DeliveryPartnerID *string
}

// Apply merges the supplied fields into o. The id and createdAt are never touched.
func (o *Order) Apply(p OrderPatch) {
	if p.RestaurantID != nil {
		o.RestaurantID = *p.RestaurantID
	}
	if p.CustomerID != nil {
		o.CustomerID = *p.CustomerID
	}
	if p.Items != nil {
		o.Items = make([]LineItem, len(p.Items))
		copy(o.Items, p.Items)
	}
	if p.Total != nil {
		o.Total = *p.Total
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.DeliveryAddress != nil {
		o.DeliveryAddress = *p.DeliveryAddress
	}
	if p.CustomerName != nil {
		o.CustomerName = *p.CustomerName
	}
	if p.RestaurantName != nil {
		o.RestaurantName = *p.RestaurantName
	}
	if p.DeliveryPartnerID != nil {
		id := *p.DeliveryPartnerID
		o.DeliveryPartnerID = &id
	}
}

// Clone returns a copy that shares no slices or pointers with o
func (o Order) Clone() Order {
	out := o
	if o.Items != nil {
		out.Items = make([]LineItem, len(o.Items))
		copy(out.Items, o.Items)
	}
	if o.DeliveryPartnerID != nil {
		id := *o.DeliveryPartnerID
		out.DeliveryPartnerID = &id
	}
	return out
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"orderId" gorm:"index;not null"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  string      `json:"changedBy"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// LocationPing is a transient delivery-partner position. It is broadcast, never stored.
type LocationPing struct {
	OrderID           string    `json:"orderId"`
	DeliveryPartnerID string    `json:"deliveryPartnerId,omitempty"`
	CustomerID        string    `json:"customerId,omitempty"`
	Lat               float64   `json:"lat"`
	Lng               float64   `json:"lng"`
	Timestamp         time.Time `json:"timestamp"`
}
