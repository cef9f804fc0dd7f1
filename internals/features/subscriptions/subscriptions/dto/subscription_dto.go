package dto

type CheckoutRequest struct {
	Tier string `json:"tier" validate:"required,oneof=standard premium"`
}
