package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avelia/catalog-service/internal/category"
	"github.com/avelia/catalog-service/internal/category/dto"
	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/pkg/apperrors"
	"github.com/avelia/catalog-service/pkg/httpx"
	"github.com/avelia/catalog-service/pkg/logger"
	"github.com/avelia/catalog-service/pkg/validate"
)

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, logger logger.ZapLogger) category.UseCase {
	return &categoryUseCase{repo: repo, logger: logger}
}

// checkImage verifies that a supplied image url resolves to an actual image
// before it is persisted on a hierarchy level.
func (uc *categoryUseCase) checkImage(ctx context.Context, url *string) error {
	if url == nil {
		return nil
	}
	if err := httpx.CheckImageURL(ctx, *url); err != nil {
		return apperrors.Precondition("image_url is not a reachable image: %v", err)
	}
	return nil
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if err := uc.checkImage(ctx, input.ImageURL); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &model.Category{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}
	if err := uc.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	c, err := uc.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.ErrNotFound
	}

	subs, err := uc.repo.ListSubcategories(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Subcategories = subs
	return c, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	return uc.repo.ListCategories(ctx, activeOnly)
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, id string, input *dto.UpdateLevelInput) (*model.Category, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	c, err := uc.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.ErrNotFound
	}

	if err := uc.checkImage(ctx, input.ImageURL); err != nil {
		return nil, err
	}
	applyLevelUpdate(input, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.IsActive)
	c.UpdatedAt = time.Now()
	if err := uc.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	return uc.repo.DeleteCategory(ctx, id)
}

func (uc *categoryUseCase) CreateSubcategory(ctx context.Context, input *dto.CreateSubcategoryInput) (*model.Subcategory, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	parent, err := uc.repo.FindCategoryByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, apperrors.Precondition("category %s does not exist", input.CategoryID)
	}
	if err := uc.checkImage(ctx, input.ImageURL); err != nil {
		return nil, err
	}

	now := time.Now()
	s := &model.Subcategory{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}
	if err := uc.repo.CreateSubcategory(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *categoryUseCase) ListSubcategories(ctx context.Context, categoryID string) ([]model.Subcategory, error) {
	return uc.repo.ListSubcategories(ctx, categoryID)
}

func (uc *categoryUseCase) UpdateSubcategory(ctx context.Context, id string, input *dto.UpdateLevelInput) (*model.Subcategory, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	s, err := uc.repo.FindSubcategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperrors.ErrNotFound
	}

	if err := uc.checkImage(ctx, input.ImageURL); err != nil {
		return nil, err
	}
	applyLevelUpdate(input, &s.Name, &s.Slug, &s.Description, &s.ImageURL, &s.IsActive)
	s.UpdatedAt = time.Now()
	if err := uc.repo.UpdateSubcategory(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *categoryUseCase) DeleteSubcategory(ctx context.Context, id string) error {
	return uc.repo.DeleteSubcategory(ctx, id)
}

func (uc *categoryUseCase) CreateProductType(ctx context.Context, input *dto.CreateProductTypeInput) (*model.ProductType, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	sub, err := uc.repo.FindSubcategoryByID(ctx, input.SubcategoryID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.Precondition("subcategory %s does not exist", input.SubcategoryID)
	}
	if sub.CategoryID != input.CategoryID {
		return nil, apperrors.Precondition("subcategory %s does not belong to category %s", input.SubcategoryID, input.CategoryID)
	}
	if err := uc.checkImage(ctx, input.ImageURL); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &model.ProductType{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		Name:          input.Name,
		Slug:          input.Slug,
		Description:   input.Description,
		ImageURL:      input.ImageURL,
		IsActive:      true,
	}
	if err := uc.repo.CreateProductType(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *categoryUseCase) ListProductTypes(ctx context.Context, subcategoryID string) ([]model.ProductType, error) {
	return uc.repo.ListProductTypes(ctx, subcategoryID)
}

func (uc *categoryUseCase) UpdateProductType(ctx context.Context, id string, input *dto.UpdateLevelInput) (*model.ProductType, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	t, err := uc.repo.FindProductTypeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperrors.ErrNotFound
	}

	if err := uc.checkImage(ctx, input.ImageURL); err != nil {
		return nil, err
	}
	applyLevelUpdate(input, &t.Name, &t.Slug, &t.Description, &t.ImageURL, &t.IsActive)
	t.UpdatedAt = time.Now()
	if err := uc.repo.UpdateProductType(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *categoryUseCase) DeleteProductType(ctx context.Context, id string) error {
	return uc.repo.DeleteProductType(ctx, id)
}

func (uc *categoryUseCase) SubmitRequest(ctx context.Context, input *dto.SubmitRequestInput) (*model.CategoryRequest, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if err := uc.checkRequestParents(ctx, input); err != nil {
		return nil, err
	}

	now := time.Now()
	req := &model.CategoryRequest{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Kind:          input.Kind,
		Name:          input.Name,
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		Status:        model.RequestPending,
		RequesterID:   input.RequesterID,
	}
	if err := uc.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// checkRequestParents enforces the anchors each request kind needs: a
// subcategory proposal names its category, a product type proposal names
// both ancestors and they must agree.
func (uc *categoryUseCase) checkRequestParents(ctx context.Context, input *dto.SubmitRequestInput) error {
	switch input.Kind {
	case model.RequestKindCategory:
		return nil
	case model.RequestKindSubcategory:
		if input.CategoryID == nil {
			return apperrors.Precondition("subcategory request requires category_id")
		}
		parent, err := uc.repo.FindCategoryByID(ctx, *input.CategoryID)
		if err != nil {
			return err
		}
		if parent == nil {
			return apperrors.Precondition("category %s does not exist", *input.CategoryID)
		}
	case model.RequestKindProductType:
		if input.CategoryID == nil || input.SubcategoryID == nil {
			return apperrors.Precondition("product type request requires category_id and subcategory_id")
		}
		sub, err := uc.repo.FindSubcategoryByID(ctx, *input.SubcategoryID)
		if err != nil {
			return err
		}
		if sub == nil {
			return apperrors.Precondition("subcategory %s does not exist", *input.SubcategoryID)
		}
		if sub.CategoryID != *input.CategoryID {
			return apperrors.Precondition("subcategory %s does not belong to category %s", *input.SubcategoryID, *input.CategoryID)
		}
	}
	return nil
}

func (uc *categoryUseCase) ListRequests(ctx context.Context, status *model.RequestStatus) ([]model.CategoryRequest, error) {
	return uc.repo.ListRequests(ctx, status)
}

func (uc *categoryUseCase) ReviewRequest(ctx context.Context, id string, input *dto.ReviewRequestInput) (*model.CategoryRequest, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	req, err := uc.repo.FindRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.ErrNotFound
	}
	if req.Status != model.RequestPending {
		return nil, apperrors.Precondition("request %s has already been reviewed", id)
	}

	reviewed, err := uc.repo.ReviewRequest(ctx, req, input)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("category request reviewed", zap.String("request_id", id), zap.Bool("approved", input.Approve))
	return reviewed, nil
}

func applyLevelUpdate(input *dto.UpdateLevelInput, name, slug *string, description, imageURL **string, isActive *bool) {
	if input.Name != nil {
		*name = *input.Name
	}
	if input.Slug != nil {
		*slug = *input.Slug
	}
	if input.Description != nil {
		*description = input.Description
	}
	if input.ImageURL != nil {
		*imageURL = input.ImageURL
	}
	if input.IsActive != nil {
		*isActive = *input.IsActive
	}
}
