package order

import (
	"context"

	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/internal/order/dto"
)

type UseCase interface {
	Create(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, criteria *dto.ListCriteria) ([]model.Order, error)
	// UpdateStatus enforces the order status state machine.
	UpdateStatus(ctx context.Context, id string, input *dto.UpdateStatusInput) (*model.Order, error)
}
