package models

import (
	"fmt"
	"strings"
)

// OrderStatus is a state of the order lifecycle.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out-for-delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusRefunded       OrderStatus = "refunded"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
	StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusRefunded,
}

// transitions is the lifecycle table. Refunded is reachable from every state
// and is handled in CanTransition rather than listed here.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReady},
	StatusReady:          {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no lifecycle transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRefunded
}

// Cancellable reports whether a customer may still cancel an order in s.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// NextStatuses returns the states reachable from s in one step.
func NextStatuses(s OrderStatus) []OrderStatus {
	if s.Terminal() {
		return nil
	}
	next := append([]OrderStatus(nil), transitions[s]...)
	return append(next, StatusRefunded)
}

// CanTransition checks a move against the lifecycle table.
func CanTransition(from, to OrderStatus) error {
	for _, next := range NextStatuses(from) {
		if next == to {
			return nil
		}
	}
	allowed := NextStatuses(from)
	if len(allowed) == 0 {
		return fmt.Errorf("invalid transition %s -> %s: %s is a terminal state", from, to, from)
	}
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}
	return fmt.Errorf("invalid transition %s -> %s: valid next states are %s", from, to, strings.Join(names, ", "))
}
