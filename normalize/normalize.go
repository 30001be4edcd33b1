// Package normalize coerces loosely shaped inbound payloads into the
// canonical Restaurant and Order records. It resolves field-name aliases,
// fills documented defaults and reports missing correlation fields.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"food-delivery-relay/models"
)

var (
	// ErrMissingPayload is returned when a mutation arrives with no body at all
	ErrMissingPayload = errors.New("payload is required")
	// ErrMalformed is the class of every FieldError
	ErrMalformed = errors.New("malformed payload")
)

// FieldError names the field that made a payload unusable
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("malformed payload: %s %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrMalformed }

func missing(field string) error {
	return &FieldError{Field: field, Reason: "is required"}
}

// Payload is a decoded JSON object
type Payload map[string]any

// Decode parses raw JSON. An empty body or a literal null yields a nil
// payload so the callers can report ErrMissingPayload.
func Decode(raw []byte) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &FieldError{Field: "body", Reason: "must be a JSON object"}
	}
	return p, nil
}

// IDFunc produces a fresh identifier
type IDFunc func() string

// Restaurant turns p into a merge patch. A missing id is generated; the
// remaining fields are only set when present so that a re-upsert never
// clobbers what it does not mention.
func Restaurant(p Payload, newID IDFunc) (models.RestaurantPatch, error) {
	if p == nil {
		return models.RestaurantPatch{}, ErrMissingPayload
	}
	patch := models.RestaurantPatch{ID: p.id("id")}
	if patch.ID == "" {
		patch.ID = newID()
	}
	patch.Name = p.str("name")
	patch.Cuisine = p.str("cuisine", "type")
	patch.Rating = p.num("rating")
	patch.DeliveryTime = p.str("deliveryTime", "delivery_time")
	patch.Image = p.str("image")
	if v, ok := p.lookup("isOpen", "is_open"); ok {
		open := true
		if b, isBool := v.(bool); isBool {
			open = b
		}
		patch.IsOpen = &open
	}
	if v, ok := p.lookup("menu", "menuItems", "menu_items"); ok {
		list, isList := v.([]any)
		if !isList {
			return models.RestaurantPatch{}, &FieldError{Field: "menu", Reason: "must be a list"}
		}
		patch.Menu = make([]models.MenuItem, 0, len(list))
		for i, raw := range list {
			obj, isObj := raw.(map[string]any)
			if !isObj {
				return models.RestaurantPatch{}, &FieldError{Field: fmt.Sprintf("menu[%d]", i), Reason: "must be an object"}
			}
			item, err := MenuItem(Payload(obj), patch.ID, newID)
			if err != nil {
				return models.RestaurantPatch{}, err
			}
			patch.Menu = append(patch.Menu, item)
		}
	}
	return patch, nil
}

// MenuItem validates a single item for appending to restaurantID's menu.
// Missing price becomes 0 and missing isVeg becomes true.
func MenuItem(p Payload, restaurantID string, newID IDFunc) (models.MenuItem, error) {
	if p == nil {
		return models.MenuItem{}, ErrMissingPayload
	}
	item := models.MenuItem{
		ID:           p.id("id"),
		Name:         deref(p.str("name")),
		Description:  deref(p.str("description")),
		Image:        deref(p.str("image")),
		Category:     deref(p.str("category")),
		IsVeg:        true,
		RestaurantID: restaurantID,
	}
	if item.ID == "" {
		item.ID = newID()
	}
	if item.Name == "" {
		return models.MenuItem{}, missing("name")
	}
	if price := p.num("price"); price != nil {
		if *price < 0 {
			return models.MenuItem{}, &FieldError{Field: "price", Reason: "must not be negative"}
		}
		item.Price = *price
	}
	if v, ok := p.lookup("isVeg", "is_veg"); ok {
		if b, isBool := v.(bool); isBool {
			item.IsVeg = b
		}
	}
	return item, nil
}

// MenuAppend splits an asynchronous append request into the target
// restaurant and the item payload. The item may be nested under "item" or
// sent inline next to restaurantId.
func MenuAppend(p Payload) (restaurantID string, item Payload, err error) {
	if p == nil {
		return "", nil, ErrMissingPayload
	}
	restaurantID = p.id("restaurantId", "restaurant_id")
	if restaurantID == "" {
		return "", nil, missing("restaurantId")
	}
	if v, ok := p.lookup("item", "menuItem"); ok {
		obj, isObj := v.(map[string]any)
		if !isObj {
			return "", nil, &FieldError{Field: "item", Reason: "must be an object"}
		}
		return restaurantID, Payload(obj), nil
	}
	inline := make(Payload, len(p))
	for k, v := range p {
		if k != "restaurantId" && k != "restaurant_id" {
			inline[k] = v
		}
	}
	return restaurantID, inline, nil
}

// NewOrder builds a full order for first insertion. customerId, restaurantId
// and a list-typed items field are required; an absent id falls back to the
// creation time in milliseconds.
func NewOrder(p Payload, now time.Time) (models.Order, error) {
	if p == nil {
		return models.Order{}, ErrMissingPayload
	}
	customerID := p.id("customerId", "customer_id")
	if customerID == "" {
		return models.Order{}, missing("customerId")
	}
	restaurantID := p.id("restaurantId", "restaurant_id")
	if restaurantID == "" {
		return models.Order{}, missing("restaurantId")
	}
	rawItems, ok := p.lookup("items")
	if !ok {
		return models.Order{}, missing("items")
	}
	items, err := lineItems(rawItems)
	if err != nil {
		return models.Order{}, err
	}

	o := models.Order{
		ID:              p.id("id", "orderId"),
		RestaurantID:    restaurantID,
		CustomerID:      customerID,
		Items:           items,
		Status:          models.StatusPending,
		CreatedAt:       now,
		DeliveryAddress: deref(p.str("deliveryAddress", "address")),
		CustomerName:    deref(p.str("customerName")),
		RestaurantName:  deref(p.str("restaurantName")),
	}
	if o.ID == "" {
		o.ID = strconv.FormatInt(now.UnixMilli(), 10)
	}
	if total := p.num("total", "totalAmount"); total != nil {
		o.Total = *total
	}
	if s := p.str("status"); s != nil && *s != "" {
		o.Status = models.OrderStatus(*s)
	}
	if partner := p.id("deliveryPartnerId"); partner != "" {
		o.DeliveryPartnerID = &partner
	}
	return o, nil
}

// OrderUpdate turns a partial order update into a merge patch. The target
// id is read from orderId or id.
func OrderUpdate(p Payload) (models.OrderPatch, error) {
	if p == nil {
		return models.OrderPatch{}, ErrMissingPayload
	}
	patch := models.OrderPatch{ID: p.id("orderId", "id")}
	if patch.ID == "" {
		return models.OrderPatch{}, missing("orderId")
	}
	if err := orderFields(p, &patch); err != nil {
		return models.OrderPatch{}, err
	}
	return patch, nil
}

// OrderMerge is what a repeated creation for an existing id applies: only
// the fields present in p, none of NewOrder's defaults. An empty status is
// ignored as it is on first insert.
func OrderMerge(p Payload, id string) (models.OrderPatch, error) {
	if p == nil {
		return models.OrderPatch{}, ErrMissingPayload
	}
	patch := models.OrderPatch{ID: id}
	if err := orderFields(p, &patch); err != nil {
		return models.OrderPatch{}, err
	}
	if patch.Status != nil && *patch.Status == "" {
		patch.Status = nil
	}
	return patch, nil
}

func orderFields(p Payload, patch *models.OrderPatch) error {
	if s := p.str("status"); s != nil {
		st := models.OrderStatus(*s)
		patch.Status = &st
	}
	if v := p.id("restaurantId", "restaurant_id"); v != "" {
		patch.RestaurantID = &v
	}
	if v := p.id("customerId", "customer_id"); v != "" {
		patch.CustomerID = &v
	}
	if raw, ok := p.lookup("items"); ok {
		items, err := lineItems(raw)
		if err != nil {
			return err
		}
		patch.Items = items
	}
	patch.Total = p.num("total", "totalAmount")
	patch.DeliveryAddress = p.str("deliveryAddress", "address")
	patch.CustomerName = p.str("customerName")
	patch.RestaurantName = p.str("restaurantName")
	if v := p.id("deliveryPartnerId"); v != "" {
		patch.DeliveryPartnerID = &v
	}
	return nil
}

// Acceptance extracts the order and partner of an accept request
func Acceptance(p Payload) (orderID, partnerID string, err error) {
	if p == nil {
		return "", "", ErrMissingPayload
	}
	orderID = p.id("orderId", "id")
	if orderID == "" {
		return "", "", missing("orderId")
	}
	partnerID = p.id("deliveryPartnerId", "partnerId", "driverId")
	if partnerID == "" {
		return "", "", missing("deliveryPartnerId")
	}
	return orderID, partnerID, nil
}

// Location extracts a transient position ping
func Location(p Payload, now time.Time) (models.LocationPing, error) {
	if p == nil {
		return models.LocationPing{}, ErrMissingPayload
	}
	ping := models.LocationPing{
		OrderID:           p.id("orderId", "id"),
		DeliveryPartnerID: p.id("deliveryPartnerId", "partnerId"),
		CustomerID:        p.id("customerId"),
		Timestamp:         now,
	}
	if ping.OrderID == "" {
		return models.LocationPing{}, missing("orderId")
	}
	lat, lng := p.num("lat", "latitude"), p.num("lng", "longitude")
	if lat == nil || lng == nil {
		if loc, ok := p.lookup("location"); ok {
			if obj, isObj := loc.(map[string]any); isObj {
				inner := Payload(obj)
				lat, lng = inner.num("lat", "latitude"), inner.num("lng", "longitude")
			}
		}
	}
	if lat == nil || lng == nil {
		return models.LocationPing{}, missing("lat/lng")
	}
	ping.Lat, ping.Lng = *lat, *lng
	return ping, nil
}

func lineItems(v any) ([]models.LineItem, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, &FieldError{Field: "items", Reason: "must be a list"}
	}
	out := make([]models.LineItem, 0, len(list))
	for _, el := range list {
		b, err := json.Marshal(el)
		if err != nil {
			return nil, &FieldError{Field: "items", Reason: err.Error()}
		}
		out = append(out, models.LineItem(b))
	}
	return out, nil
}

func (p Payload) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := p[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (p Payload) str(keys ...string) *string {
	v, ok := p.lookup(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return &t
	case float64, bool, json.Number:
		s := fmt.Sprint(t)
		return &s
	}
	return nil
}

// id reads an identifier that may have been sent as a string or a number
func (p Payload) id(keys ...string) string {
	v, ok := p.lookup(keys...)
	if !ok {
		return ""
	}
	return ID(v)
}

// ID renders a decoded JSON identifier. Numbers are written without an
// exponent so 12345678 stays "12345678".
func ID(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return ""
}

func (p Payload) num(keys ...string) *float64 {
	v, ok := p.lookup(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case float64:
		return &t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return &f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return &f
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
