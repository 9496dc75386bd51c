package category

import (
	"context"

	"github.com/avelia/catalog-service/internal/category/dto"
	"github.com/avelia/catalog-service/internal/model"
)

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error)
	UpdateCategory(ctx context.Context, id string, input *dto.UpdateLevelInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateSubcategory(ctx context.Context, input *dto.CreateSubcategoryInput) (*model.Subcategory, error)
	ListSubcategories(ctx context.Context, categoryID string) ([]model.Subcategory, error)
	UpdateSubcategory(ctx context.Context, id string, input *dto.UpdateLevelInput) (*model.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id string) error

	CreateProductType(ctx context.Context, input *dto.CreateProductTypeInput) (*model.ProductType, error)
	ListProductTypes(ctx context.Context, subcategoryID string) ([]model.ProductType, error)
	UpdateProductType(ctx context.Context, id string, input *dto.UpdateLevelInput) (*model.ProductType, error)
	DeleteProductType(ctx context.Context, id string) error

	SubmitRequest(ctx context.Context, input *dto.SubmitRequestInput) (*model.CategoryRequest, error)
	ListRequests(ctx context.Context, status *model.RequestStatus) ([]model.CategoryRequest, error)
	ReviewRequest(ctx context.Context, id string, input *dto.ReviewRequestInput) (*model.CategoryRequest, error)
}
