package product

import (
	"context"

	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/internal/product/dto"
)

type UseCase interface {
	Count(ctx context.Context, f *dto.Filters) (int, error)
	Paginate(ctx context.Context, c *dto.PaginateCriteria) (*dto.Page, error)
	Get(ctx context.Context, lookup *dto.Lookup) (*model.Product, error)
	Batch(ctx context.Context, inputs []dto.CreateProductInput) ([]model.Product, error)
	Update(ctx context.Context, id string, input *dto.UpdateProductInput) (*model.Product, error)
	UpdateMarketingStatus(ctx context.Context, id string, isMarketed bool) (*model.Product, error)
	GetMarketedCount(ctx context.Context) (int, error)
	UpdateStock(ctx context.Context, updates []dto.StockUpdate) error
	GetNewArrivals(ctx context.Context, limit int) ([]model.Product, error)
	GetMarketedProducts(ctx context.Context, limit int) ([]model.Product, error)
	Delete(ctx context.Context, id string) (*dto.DeleteResult, error)
}
