package models

const (
	DefaultRating       = 4.5
	DefaultDeliveryTime = "30-45 min"
)

type Restaurant struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Cuisine      string     `json:"cuisine"`
	Rating       float64    `json:"rating"`
	DeliveryTime string     `json:"deliveryTime"`
	IsOpen       bool       `json:"isOpen"`
	Image        string     `json:"image,omitempty"`
	Menu         []MenuItem `json:"menu"`
}

type MenuItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Image        string  `json:"image,omitempty"`
	Category     string  `json:"category"`
	IsVeg        bool    `json:"isVeg"`
	RestaurantID string  `json:"restaurantId"`
}

// NewRestaurant returns a record carrying every documented default
func NewRestaurant(id string) Restaurant {
	return Restaurant{
		ID:           id,
		Rating:       DefaultRating,
		DeliveryTime: DefaultDeliveryTime,
		IsOpen:       true,
		Menu:         []MenuItem{},
	}
}

// RestaurantPatch carries only the fields present in an inbound payload.
// A nil pointer means "not supplied" and leaves the stored value untouched.
type RestaurantPatch struct {
	ID           string
	Name         *string
	Cuisine      *string
	Rating       *float64
	DeliveryTime *string
	IsOpen       *bool
	Image        *string
	Menu         []MenuItem // nil leaves the menu alone, non-nil replaces it
}

// Apply merges the supplied fields into r. The id is never touched.
func (r *Restaurant) Apply(p RestaurantPatch) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Cuisine != nil {
		r.Cuisine = *p.Cuisine
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.DeliveryTime != nil {
		r.DeliveryTime = *p.DeliveryTime
	}
	if p.IsOpen != nil {
		r.IsOpen = *p.IsOpen
	}
	if p.Image != nil {
		r.Image = *p.Image
	}
	if p.Menu != nil {
		r.Menu = make([]MenuItem, len(p.Menu))
		copy(r.Menu, p.Menu)
		for i := range r.Menu {
			r.Menu[i].RestaurantID = r.ID
		}
	}
}

// Clone returns a copy that shares no slices with r
func (r Restaurant) Clone() Restaurant {
	out := r
	out.Menu = make([]MenuItem, len(r.Menu))
	copy(out.Menu, r.Menu)
	return out
}
