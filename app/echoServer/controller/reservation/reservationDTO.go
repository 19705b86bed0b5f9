package reservation

type UpdateStatusReq struct {
	Status string `json:"status" validate:"required,oneof=active returned cancelled"`
}
