// model/item.go
package model

// Item is the slice of the catalog this core reads: pricing and
// existence. Catalog management lives in another service.
type Item struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"owner_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	PricePerDay int64  `json:"price_per_day_cents"`
	DeliveryFee int64  `json:"delivery_fee_cents"`
	ReturnFee   int64  `json:"return_fee_cents"`
	Active      bool   `json:"active"`
}
