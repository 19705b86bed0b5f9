package checkout

// CheckoutReq either references the renter's cart (from_cart) or
// carries a single direct booking.
type CheckoutReq struct {
	FromCart  bool   `json:"from_cart"`
	ItemID    int64  `json:"item_id" validate:"required_without=FromCart,omitempty,gt=0"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	ReturnURL string `json:"return_url" validate:"omitempty,url"`
}
