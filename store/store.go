// Package store holds the process-lifetime Restaurant and Order records.
// Nothing is persisted; every read returns a deep copy so callers can
// never observe a record half way through a merge.
package store

import (
	"errors"
	"sync"

	"food-delivery-relay/models"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	mu sync.RWMutex

	restaurants   []*models.Restaurant
	restaurantIdx map[string]int

	// orders keeps insertion order; orderIdx only covers attached records
	orders   []*models.Order
	orderIdx map[string]int
}

func New() *Store {
	return &Store{
		restaurantIdx: make(map[string]int),
		orderIdx:      make(map[string]int),
	}
}

func (s *Store) GetRestaurant(id string) (models.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.restaurantIdx[id]
	if !ok {
		return models.Restaurant{}, ErrNotFound
	}
	return s.restaurants[i].Clone(), nil
}

func (s *Store) ListRestaurants() []models.Restaurant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Restaurant, 0, len(s.restaurants))
	for _, r := range s.restaurants {
		out = append(out, r.Clone())
	}
	return out
}

// UpsertRestaurant inserts a defaulted record for an unseen id, otherwise
// merges the patch into the existing one. created reports which happened.
func (s *Store) UpsertRestaurant(p models.RestaurantPatch) (r models.Restaurant, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.restaurantIdx[p.ID]; ok {
		s.restaurants[i].Apply(p)
		return s.restaurants[i].Clone(), false
	}
	fresh := models.NewRestaurant(p.ID)
	fresh.Apply(p)
	s.restaurantIdx[p.ID] = len(s.restaurants)
	s.restaurants = append(s.restaurants, &fresh)
	return fresh.Clone(), true
}

// AppendMenuItem adds item at the end of the restaurant's menu
func (s *Store) AppendMenuItem(restaurantID string, item models.MenuItem) (models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.restaurantIdx[restaurantID]
	if !ok {
		return models.Restaurant{}, ErrNotFound
	}
	item.RestaurantID = restaurantID
	r := s.restaurants[i]
	r.Menu = append(r.Menu, item)
	return r.Clone(), nil
}

func (s *Store) ListOrders() []models.Order {
	return s.FilterOrders(nil)
}

// FilterOrders returns copies of every order, detached ones included, for
// which keep returns true. A nil predicate keeps everything.
func (s *Store) FilterOrders(keep func(models.Order) bool) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if keep == nil || keep(*o) {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (s *Store) GetOrder(id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.orderIdx[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return s.orders[i].Clone(), nil
}

// UpsertOrder inserts o when its id is unseen. For a known id only the
// fields present in patch are merged and o is ignored, so the defaults of a
// fresh order never overwrite stored values. before is the zero Order on insert.
func (s *Store) UpsertOrder(o models.Order, patch models.OrderPatch) (before, stored models.Order, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.orderIdx[o.ID]; ok {
		before = s.orders[i].Clone()
		s.orders[i].Apply(patch)
		return before, s.orders[i].Clone(), false
	}
	fresh := o.Clone()
	fresh.Detached = false
	s.orderIdx[fresh.ID] = len(s.orders)
	s.orders = append(s.orders, &fresh)
	return models.Order{}, fresh.Clone(), true
}

// MutateOrder applies fn to the attached order with the given id under the
// write lock and returns the record before and after the change.
func (s *Store) MutateOrder(id string, fn func(o *models.Order)) (before, after models.Order, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.orderIdx[id]
	if !ok {
		return models.Order{}, models.Order{}, ErrNotFound
	}
	before = s.orders[i].Clone()
	fn(s.orders[i])
	s.orders[i].ID = before.ID
	s.orders[i].CreatedAt = before.CreatedAt
	return before, s.orders[i].Clone(), nil
}

// InsertDetached appends o without indexing it. Repeated inserts for the
// same id each produce a new record.
func (s *Store) InsertDetached(o models.Order) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := o.Clone()
	fresh.Detached = true
	s.orders = append(s.orders, &fresh)
	return fresh.Clone()
}
