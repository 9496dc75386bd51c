package order

import (
	"context"

	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/internal/order/dto"
)

type Repository interface {
	// Create inserts the order and its items in one transaction.
	Create(ctx context.Context, o *model.Order) error
	Find(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, criteria *dto.ListCriteria) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error
}
