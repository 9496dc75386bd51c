package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelia/catalog-service/internal/category"
	"github.com/avelia/catalog-service/internal/category/dto"
	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/pkg/apperrors"
	"github.com/avelia/catalog-service/pkg/logger"
)

type fakeRepo struct {
	category.Repository

	categories    map[string]*model.Category
	subcategories map[string]*model.Subcategory
	created       []string
	reviewed      *model.CategoryRequest
	request       *model.CategoryRequest
}

func (f *fakeRepo) FindCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	return f.categories[id], nil
}

func (f *fakeRepo) FindSubcategoryByID(ctx context.Context, id string) (*model.Subcategory, error) {
	return f.subcategories[id], nil
}

func (f *fakeRepo) CreateProductType(ctx context.Context, t *model.ProductType) error {
	f.created = append(f.created, t.ID)
	return nil
}

func (f *fakeRepo) CreateRequest(ctx context.Context, r *model.CategoryRequest) error {
	f.created = append(f.created, r.ID)
	return nil
}

func (f *fakeRepo) FindRequestByID(ctx context.Context, id string) (*model.CategoryRequest, error) {
	return f.request, nil
}

func (f *fakeRepo) ReviewRequest(ctx context.Context, r *model.CategoryRequest, input *dto.ReviewRequestInput) (*model.CategoryRequest, error) {
	f.reviewed = r
	out := *r
	out.Status = model.RequestRejected
	if input.Approve {
		out.Status = model.RequestApproved
	}
	return &out, nil
}

const (
	catID = "11111111-1111-4111-8111-111111111111"
	subID = "22222222-2222-4222-8222-222222222222"
)

func TestCreateProductTypeParentConsistency(t *testing.T) {
	repo := &fakeRepo{
		categories: map[string]*model.Category{
			catID: {BaseModel: model.BaseModel{ID: catID}},
		},
		subcategories: map[string]*model.Subcategory{
			subID: {BaseModel: model.BaseModel{ID: subID}, CategoryID: catID},
		},
	}
	uc := NewCategoryUseCase(repo, logger.NewNop())

	t.Run("consistent ancestry passes", func(t *testing.T) {
		pt, err := uc.CreateProductType(context.Background(), &dto.CreateProductTypeInput{
			CategoryID:    catID,
			SubcategoryID: subID,
			Name:          "Coats",
			Slug:          "coats",
		})
		require.NoError(t, err)
		assert.Equal(t, catID, pt.CategoryID)
		assert.True(t, pt.IsActive)
	})

	t.Run("mismatched category is rejected", func(t *testing.T) {
		other := "33333333-3333-4333-8333-333333333333"
		repo.categories[other] = &model.Category{BaseModel: model.BaseModel{ID: other}}

		_, err := uc.CreateProductType(context.Background(), &dto.CreateProductTypeInput{
			CategoryID:    other,
			SubcategoryID: subID,
			Name:          "Coats",
			Slug:          "coats",
		})
		assert.True(t, apperrors.IsPrecondition(err))
	})

	t.Run("missing subcategory is rejected", func(t *testing.T) {
		_, err := uc.CreateProductType(context.Background(), &dto.CreateProductTypeInput{
			CategoryID:    catID,
			SubcategoryID: "44444444-4444-4444-8444-444444444444",
			Name:          "Coats",
			Slug:          "coats",
		})
		assert.True(t, apperrors.IsPrecondition(err))
	})
}

func TestSubmitRequestAnchors(t *testing.T) {
	repo := &fakeRepo{
		categories: map[string]*model.Category{
			catID: {BaseModel: model.BaseModel{ID: catID}},
		},
		subcategories: map[string]*model.Subcategory{},
	}
	uc := NewCategoryUseCase(repo, logger.NewNop())

	t.Run("category request needs no parent", func(t *testing.T) {
		req, err := uc.SubmitRequest(context.Background(), &dto.SubmitRequestInput{
			Kind:        model.RequestKindCategory,
			Name:        "Outdoor",
			RequesterID: "user-1",
		})
		require.NoError(t, err)
		assert.Equal(t, model.RequestPending, req.Status)
	})

	t.Run("subcategory request without category_id is rejected", func(t *testing.T) {
		_, err := uc.SubmitRequest(context.Background(), &dto.SubmitRequestInput{
			Kind:        model.RequestKindSubcategory,
			Name:        "Tents",
			RequesterID: "user-1",
		})
		assert.True(t, apperrors.IsPrecondition(err))
	})

	t.Run("product type request needs both ancestors", func(t *testing.T) {
		cid := catID
		_, err := uc.SubmitRequest(context.Background(), &dto.SubmitRequestInput{
			Kind:        model.RequestKindProductType,
			Name:        "Dome Tents",
			CategoryID:  &cid,
			RequesterID: "user-1",
		})
		assert.True(t, apperrors.IsPrecondition(err))
	})
}

func TestReviewRequest(t *testing.T) {
	t.Run("pending request is reviewed", func(t *testing.T) {
		repo := &fakeRepo{request: &model.CategoryRequest{
			BaseModel: model.BaseModel{ID: "r1"},
			Kind:      model.RequestKindCategory,
			Status:    model.RequestPending,
		}}
		uc := NewCategoryUseCase(repo, logger.NewNop())

		out, err := uc.ReviewRequest(context.Background(), "r1", &dto.ReviewRequestInput{
			Approve:    true,
			ReviewerID: "admin-1",
		})
		require.NoError(t, err)
		assert.Equal(t, model.RequestApproved, out.Status)
		assert.NotNil(t, repo.reviewed)
	})

	t.Run("already-reviewed request is rejected", func(t *testing.T) {
		repo := &fakeRepo{request: &model.CategoryRequest{
			BaseModel: model.BaseModel{ID: "r1"},
			Status:    model.RequestApproved,
		}}
		uc := NewCategoryUseCase(repo, logger.NewNop())

		_, err := uc.ReviewRequest(context.Background(), "r1", &dto.ReviewRequestInput{
			Approve:    false,
			ReviewerID: "admin-1",
		})
		assert.True(t, apperrors.IsPrecondition(err))
	})

	t.Run("missing request is not found", func(t *testing.T) {
		uc := NewCategoryUseCase(&fakeRepo{}, logger.NewNop())
		_, err := uc.ReviewRequest(context.Background(), "nope", &dto.ReviewRequestInput{
			ReviewerID: "admin-1",
		})
		assert.True(t, apperrors.IsNotFound(err))
	})
}
