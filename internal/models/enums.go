package models

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
	RoleRider    Role = "RIDER"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleAdmin, RoleRider:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type OrderStatus string

const (
	StatusPaid         OrderStatus = "PAID"
	StatusShipped      OrderStatus = "SHIPPED"
	StatusInTransit    OrderStatus = "IN_TRANSIT"
	StatusDelivered    OrderStatus = "DELIVERED"
	StatusNotDelivered OrderStatus = "NOT_DELIVERED"
	StatusCancelled    OrderStatus = "CANCELLED"
)

var orderStatuses = []OrderStatus{
	StatusPaid, StatusShipped, StatusInTransit, StatusDelivered, StatusNotDelivered, StatusCancelled,
}

// ParseOrderStatus accepts only canonical names, case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range orderStatuses {
		if st == known {
			return st, nil
		}
	}
	names := make([]string, len(orderStatuses))
	for i, st := range orderStatuses {
		names[i] = string(st)
	}
	return "", fmt.Errorf("unknown order status %q, want one of %s", s, strings.Join(names, ", "))
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusNotDelivered || s == StatusCancelled
}

var transitions = map[OrderStatus][]OrderStatus{
	StatusPaid:      {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusInTransit, StatusDelivered, StatusNotDelivered, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusNotDelivered, StatusCancelled},
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// Staying in the same status is always allowed.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "CARD"
	PaymentCOD    PaymentMethod = "COD"
	PaymentWallet PaymentMethod = "WALLET"
)

// ParsePaymentMethod normalizes case; empty input means CARD.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PaymentCard, nil
	}
	switch p := PaymentMethod(strings.ToUpper(s)); p {
	case PaymentCard, PaymentCOD, PaymentWallet:
		return p, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}
