package statemachine

import (
	"fmt"
	"strings"

	"food-delivery-relay/models"
)

// Transition describes one rung of the delivery ladder and who normally climbs it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor models.UserRole    `json:"actor"`
}

// ladder is the linear lifecycle. It documents the expected order of
// statuses; the lifecycle engine records whatever status it is sent.
var ladder = []Transition{
	{From: models.StatusPending, To: models.StatusReady, Actor: models.RoleRestaurant},
	{From: models.StatusReady, To: models.StatusPickedUp, Actor: models.RoleDelivery},
	{From: models.StatusPickedUp, To: models.StatusDelivered, Actor: models.RoleDelivery},
}

type transitionKey struct {
	From models.OrderStatus
	To   models.OrderStatus
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range ladder {
		m[transitionKey{t.From, t.To}] = true
	}
	return m
}()

// Known reports whether s is a rung of the ladder
func Known(s models.OrderStatus) bool {
	switch s {
	case models.StatusPending, models.StatusReady, models.StatusPickedUp, models.StatusDelivered:
		return true
	}
	return false
}

// ValidTransitionsFrom returns the next rung(s) from status
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range ladder {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CheckTransition returns a descriptive error when from -> to skips or
// reverses the ladder. Setting the same status again is not a deviation.
// Callers use it for diagnostics only.
func CheckTransition(from, to models.OrderStatus) error {
	if from == to || transitionMap[transitionKey{from, to}] {
		return nil
	}
	return fmt.Errorf("out-of-ladder transition %s -> %s (expected next: %s)", from, to, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// GetAllTransitions returns the ladder for documentation
func GetAllTransitions() []Transition {
	out := make([]Transition, len(ladder))
	copy(out, ladder)
	return out
}

// Milestone is a global notification derived from an order's new state
type Milestone string

const (
	MilestoneReadyForPickup Milestone = "ready_for_pickup"
	MilestonePickedUp       Milestone = "picked_up"
	MilestoneDelivered      Milestone = "delivered"
)

// MilestoneFor derives the milestone implied by the order's current state.
// A ready order only announces itself when no delivery partner holds it.
func MilestoneFor(o models.Order) (Milestone, bool) {
	switch o.Status {
	case models.StatusReady:
		if !o.HasPartner() {
			return MilestoneReadyForPickup, true
		}
	case models.StatusPickedUp:
		return MilestonePickedUp, true
	case models.StatusDelivered:
		return MilestoneDelivered, true
	}
	return "", false
}
