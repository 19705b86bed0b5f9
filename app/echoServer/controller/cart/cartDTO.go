package cart

type AddItemReq struct {
	ItemID    int64  `json:"item_id" validate:"required,gt=0"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type UpdateItemReq struct {
	Quantity  *int    `json:"quantity" validate:"omitempty,gte=1"`
	StartDate *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}
