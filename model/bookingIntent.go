// model/bookingIntent.go
package model

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// IntentLine is one item+range inside a booking intent.
type IntentLine struct {
	ItemID      int64     `json:"item_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Quantity    int       `json:"quantity"`
	PricePerDay int64     `json:"price_per_day_cents"`
	DeliveryFee int64     `json:"delivery_fee_cents"`
	ReturnFee   int64     `json:"return_fee_cents"`
	Total       int64     `json:"total_cents"`
}

// BookingIntent travels through the payment round-trip as an opaque
// payload, so reconciliation can rebuild reservations without another
// stateful store. A direct booking is an intent with a single line.
type BookingIntent struct {
	RenterID int64        `json:"renter_id"`
	Lines    []IntentLine `json:"lines"`
	Total    int64        `json:"total_cents"`
}

// LineTotal computes price_per_day * rental_days * quantity plus
// delivery and return fees, in minor units.
func LineTotal(pricePerDay int64, days, quantity int, deliveryFee, returnFee int64) int64 {
	return pricePerDay*int64(days)*int64(quantity) + deliveryFee + returnFee
}

// EncodePayload serializes the intent for the gateway's opaque field.
func (b *BookingIntent) EncodePayload() (string, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeIntentPayload(payload string) (*BookingIntent, error) {
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	var b BookingIntent
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	if b.RenterID == 0 || len(b.Lines) == 0 {
		return nil, errors.New("intent payload missing renter or lines")
	}
	return &b, nil
}
