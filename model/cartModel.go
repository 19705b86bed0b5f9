// model/cart.go
package model

import "time"

// CartItem is a prospective reservation staged by a renter. Staging is
// advisory: no availability is held until payment reconciles.
type CartItem struct {
	ID          int64     `json:"id"`
	RenterID    int64     `json:"renter_id"`
	ItemID      int64     `json:"item_id"`
	Quantity    int       `json:"quantity"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	RentalDays  int       `json:"rental_days"`
	PricePerDay int64     `json:"price_per_day_cents"`
	DeliveryFee int64     `json:"delivery_fee_cents"`
	ReturnFee   int64     `json:"return_fee_cents"`
	Total       int64     `json:"total_cents"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Cart struct {
	RenterID int64      `json:"renter_id"`
	Items    []CartItem `json:"items"`
	Total    int64      `json:"total_cents"`
}

func NewCart(renterID int64, items []CartItem) *Cart {
	c := &Cart{RenterID: renterID, Items: items}
	for _, it := range items {
		c.Total += it.Total
	}
	return c
}
