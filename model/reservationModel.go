// model/reservation.go
package model

import (
	"math"
	"time"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationActive    ReservationStatus = "active"
	ReservationReturned  ReservationStatus = "returned"
	ReservationCancelled ReservationStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// legalTransitions is the closed transition table for reservation status.
// returned and cancelled are terminal. "overdue" is never stored; it is a
// read-time view over active reservations past their end date.
var legalTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending: {ReservationActive, ReservationCancelled},
	ReservationActive:  {ReservationReturned, ReservationCancelled},
}

func CanTransition(from, to ReservationStatus) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Reservation struct {
	ID              int64             `json:"id"`
	RenterID        int64             `json:"renter_id"`
	ItemID          int64             `json:"item_id"`
	StartDate       time.Time         `json:"start_date"`
	EndDate         time.Time         `json:"end_date"`
	RentalDays      int               `json:"rental_days"`
	Quantity        int               `json:"quantity"`
	PricePerDay     int64             `json:"price_per_day_cents"`
	DeliveryFee     int64             `json:"delivery_fee_cents"`
	ReturnFee       int64             `json:"return_fee_cents"`
	TotalAmount     int64             `json:"total_cents"`
	PurchaseOrderID string            `json:"purchase_order_id"`
	GatewayTxnRef   string            `json:"gateway_txn_ref,omitempty"`
	Status          ReservationStatus `json:"status"`
	PaymentStatus   PaymentStatus     `json:"payment_status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	ReturnedAt      *time.Time        `json:"returned_at,omitempty"`
}

// Derived holds read-time state that is never persisted.
type Derived struct {
	IsOverdue     bool `json:"is_overdue"`
	DaysRemaining int  `json:"days_remaining"`
}

// ComputeDerived reports overdue state relative to now. Only active
// reservations can be overdue.
func (r *Reservation) ComputeDerived(now time.Time) Derived {
	days := int(math.Ceil(r.EndDate.Sub(now).Hours() / 24))
	return Derived{
		IsOverdue:     r.Status == ReservationActive && now.After(r.EndDate),
		DaysRemaining: days,
	}
}

// RentalDaysBetween counts whole days in [start, end), rounding partial
// days up. Dates are expected at UTC midnight.
func RentalDaysBetween(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// DateOnly truncates t to UTC midnight. All reservation ranges are
// date-granularity.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
