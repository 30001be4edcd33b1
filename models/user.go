package models

// UserRole defines the actor classes that talk to the relay
type UserRole string

const (
	RoleCustomer   UserRole = "customer"
	RoleRestaurant UserRole = "restaurant"
	RoleDelivery   UserRole = "delivery"
)

// Valid reports whether the role is one of the three actor classes
func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurant, RoleDelivery:
		return true
	}
	return false
}
