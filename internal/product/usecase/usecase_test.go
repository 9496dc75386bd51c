package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelia/catalog-service/internal/media"
	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/internal/product"
	"github.com/avelia/catalog-service/internal/product/dto"
	"github.com/avelia/catalog-service/pkg/apperrors"
	"github.com/avelia/catalog-service/pkg/logger"
	"github.com/avelia/catalog-service/pkg/optional"
	"github.com/avelia/catalog-service/pkg/search"
)

type fakeRepo struct {
	product.Repository

	marketedCount   int
	marketingCalled bool
	paginateCalled  bool
	found           *model.Product
	updated         *model.Product
}

func (f *fakeRepo) Paginate(ctx context.Context, c *dto.PaginateCriteria) (*dto.Page, error) {
	f.paginateCalled = true
	return &dto.Page{Data: []model.Product{}}, nil
}

func (f *fakeRepo) Find(ctx context.Context, lookup *dto.Lookup) (*model.Product, error) {
	return f.found, nil
}

func (f *fakeRepo) MarketedCount(ctx context.Context) (int, error) {
	return f.marketedCount, nil
}

func (f *fakeRepo) UpdateMarketingStatus(ctx context.Context, id string, isMarketed bool) (*model.Product, error) {
	f.marketingCalled = true
	p := &model.Product{BaseModel: model.BaseModel{ID: id}, IsMarketed: isMarketed, IsPublished: true}
	return p, nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, input *dto.UpdateProductInput) (*model.Product, error) {
	return f.updated, nil
}

type fakeMediaRepo struct{}

func (fakeMediaRepo) FindByIDs(ctx context.Context, ids []string) ([]model.MediaItem, error) {
	return nil, nil
}

func newTestUseCase(repo product.Repository) product.UseCase {
	resolver := media.NewResolver(fakeMediaRepo{}, nil, logger.NewNop())
	return NewProductUseCase(repo, resolver, nil, nil, logger.NewNop(), 10)
}

func TestGetRequiresALookupKey(t *testing.T) {
	uc := newTestUseCase(&fakeRepo{})

	_, err := uc.Get(context.Background(), &dto.Lookup{})
	require.Error(t, err)
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestGetMissingReturnsNilNotError(t *testing.T) {
	uc := newTestUseCase(&fakeRepo{found: nil})

	p, err := uc.Get(context.Background(), &dto.Lookup{SKU: "SKU-404"})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestUpdateMarketingStatusSlotCap(t *testing.T) {
	t.Run("cap reached rejects", func(t *testing.T) {
		repo := &fakeRepo{marketedCount: 10}
		uc := newTestUseCase(repo)

		_, err := uc.UpdateMarketingStatus(context.Background(), "p1", true)
		require.Error(t, err)
		assert.True(t, apperrors.IsPrecondition(err))
		assert.False(t, repo.marketingCalled)
	})

	t.Run("below cap proceeds", func(t *testing.T) {
		repo := &fakeRepo{marketedCount: 9}
		uc := newTestUseCase(repo)

		p, err := uc.UpdateMarketingStatus(context.Background(), "p1", true)
		require.NoError(t, err)
		assert.True(t, repo.marketingCalled)
		assert.True(t, p.IsMarketed)
		assert.True(t, p.IsPublished, "marketed implies published")
	})

	t.Run("unmarketing skips the cap check", func(t *testing.T) {
		repo := &fakeRepo{marketedCount: 10}
		uc := newTestUseCase(repo)

		_, err := uc.UpdateMarketingStatus(context.Background(), "p1", false)
		require.NoError(t, err)
		assert.True(t, repo.marketingCalled)
	})
}

func TestBatchRejectsEmptyAndInvalid(t *testing.T) {
	uc := newTestUseCase(&fakeRepo{})

	_, err := uc.Batch(context.Background(), nil)
	assert.True(t, apperrors.IsPrecondition(err))

	_, err = uc.Batch(context.Background(), []dto.CreateProductInput{{Title: ""}})
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateRejectsNullsOnProtectedFields(t *testing.T) {
	uc := newTestUseCase(&fakeRepo{updated: &model.Product{}})

	input := &dto.UpdateProductInput{
		Title: optional.Clear[string](),
		Price: optional.Clear[decimal.Decimal](),
	}
	_, err := uc.Update(context.Background(), "p1", input)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	fields := map[string]bool{}
	for _, f := range ve.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["price"])
}

func TestUpdateRejectsUnknownVerificationStatus(t *testing.T) {
	uc := newTestUseCase(&fakeRepo{updated: &model.Product{}})

	input := &dto.UpdateProductInput{
		VerificationStatus: optional.Set("bogus"),
	}
	_, err := uc.Update(context.Background(), "p1", input)
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateStockRejectsEmptyBatch(t *testing.T) {
	uc := newTestUseCase(&fakeRepo{})
	err := uc.UpdateStock(context.Background(), nil)
	assert.True(t, apperrors.IsPrecondition(err))
}

// stubElastic serves just enough of the ES wire protocol for the client's
// product check, counting _search requests.
func stubElastic(t *testing.T, searches *atomic.Int32) *search.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "_search") {
			searches.Add(1)
			w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_id":"p1","_score":1.0}]}}`))
			return
		}
		w.Write([]byte(`{"version":{"number":"8.6.0"}}`))
	}))
	t.Cleanup(srv.Close)

	es, err := search.NewClient(&search.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func TestPaginateFilteredSearchStaysOnDatabase(t *testing.T) {
	var searches atomic.Int32
	repo := &fakeRepo{found: &model.Product{BaseModel: model.BaseModel{ID: "p1"}}}
	resolver := media.NewResolver(fakeMediaRepo{}, nil, logger.NewNop())
	uc := NewProductUseCase(repo, resolver, nil, stubElastic(t, &searches), logger.NewNop(), 10)

	min := decimal.NewFromInt(10)
	page, err := uc.Paginate(context.Background(), &dto.PaginateCriteria{
		Search:   "coat",
		MinPrice: &min,
		Limit:    10,
		Page:     1,
	})
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.True(t, repo.paginateCalled, "price-filtered search must take the database path")
	assert.Zero(t, searches.Load())
}

func TestPaginateBareSearchUsesIndex(t *testing.T) {
	var searches atomic.Int32
	repo := &fakeRepo{found: &model.Product{BaseModel: model.BaseModel{ID: "p1"}}}
	resolver := media.NewResolver(fakeMediaRepo{}, nil, logger.NewNop())
	uc := NewProductUseCase(repo, resolver, nil, stubElastic(t, &searches), logger.NewNop(), 10)

	page, err := uc.Paginate(context.Background(), &dto.PaginateCriteria{
		Search: "coat",
		Limit:  10,
		Page:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), searches.Load())
	assert.False(t, repo.paginateCalled)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "p1", page.Data[0].ID)
	assert.Equal(t, 1, page.Items)
}
