package dto

import (
	"github.com/shopspring/decimal"

	"github.com/avelia/catalog-service/internal/model"
)

type CreateItemInput struct {
	ProductID string  `json:"product_id" validate:"required,uuid4"`
	VariantID *string `json:"variant_id" validate:"omitempty,uuid4"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderInput struct {
	UserID   string            `json:"user_id" validate:"required"`
	Items    []CreateItemInput `json:"items" validate:"required,min=1,dive"`
	Shipping decimal.Decimal   `json:"shipping"`
	Tax      decimal.Decimal   `json:"tax"`
	Discount decimal.Decimal   `json:"discount"`
}

type ListCriteria struct {
	UserID string
	Status *model.OrderStatus
	Limit  int
	Page   int
}

type UpdateStatusInput struct {
	Status model.OrderStatus `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}
