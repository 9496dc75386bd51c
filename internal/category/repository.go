package category

import (
	"context"

	"github.com/avelia/catalog-service/internal/category/dto"
	"github.com/avelia/catalog-service/internal/model"
)

type Repository interface {
	CreateCategory(ctx context.Context, c *model.Category) error
	FindCategoryByID(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	// DeleteCategory refuses to remove a category that still owns
	// subcategories.
	DeleteCategory(ctx context.Context, id string) error

	CreateSubcategory(ctx context.Context, s *model.Subcategory) error
	FindSubcategoryByID(ctx context.Context, id string) (*model.Subcategory, error)
	ListSubcategories(ctx context.Context, categoryID string) ([]model.Subcategory, error)
	UpdateSubcategory(ctx context.Context, s *model.Subcategory) error
	DeleteSubcategory(ctx context.Context, id string) error

	CreateProductType(ctx context.Context, t *model.ProductType) error
	FindProductTypeByID(ctx context.Context, id string) (*model.ProductType, error)
	ListProductTypes(ctx context.Context, subcategoryID string) ([]model.ProductType, error)
	UpdateProductType(ctx context.Context, t *model.ProductType) error
	DeleteProductType(ctx context.Context, id string) error

	CreateRequest(ctx context.Context, r *model.CategoryRequest) error
	FindRequestByID(ctx context.Context, id string) (*model.CategoryRequest, error)
	ListRequests(ctx context.Context, status *model.RequestStatus) ([]model.CategoryRequest, error)
	// ReviewRequest stamps the reviewer and reviewed_at and, on approval,
	// materializes the requested level inside the same transaction.
	ReviewRequest(ctx context.Context, r *model.CategoryRequest, input *dto.ReviewRequestInput) (*model.CategoryRequest, error)
}
