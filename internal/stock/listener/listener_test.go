package listener

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/internal/product"
	"github.com/avelia/catalog-service/internal/product/dto"
	"github.com/avelia/catalog-service/pkg/logger"
)

const (
	prodID    = "11111111-1111-4111-8111-111111111111"
	variantID = "22222222-2222-4222-8222-222222222222"
)

type fakeProductRepo struct {
	product.Repository

	products map[string]*model.Product
}

func (f *fakeProductRepo) Find(ctx context.Context, lookup *dto.Lookup) (*model.Product, error) {
	return f.products[lookup.ID], nil
}

func (f *fakeProductRepo) FindVariants(ctx context.Context, productID string, includeDeleted bool) ([]model.ProductVariant, error) {
	p := f.products[productID]
	if p == nil {
		return nil, nil
	}
	return p.Variants, nil
}

type fakeUseCase struct {
	product.UseCase

	applied []dto.StockUpdate
}

func (f *fakeUseCase) UpdateStock(ctx context.Context, updates []dto.StockUpdate) error {
	f.applied = append(f.applied, updates...)
	return nil
}

func TestProcessMessageDecrementsStock(t *testing.T) {
	repo := &fakeProductRepo{products: map[string]*model.Product{
		prodID: {
			BaseModel: model.BaseModel{ID: prodID},
			Quantity:  10,
			Variants: []model.ProductVariant{
				{BaseModel: model.BaseModel{ID: variantID}, ProductID: prodID, Quantity: 3},
			},
		},
	}}
	uc := &fakeUseCase{}
	l := NewStockListener(nil, uc, repo, logger.NewNop())

	vid := variantID
	payload, err := json.Marshal(OrderCreatedEvent{
		OrderID: "o1",
		Items: []OrderCreatedEventItem{
			{ProductID: prodID, Quantity: 4},
			{ProductID: prodID, VariantID: &vid, Quantity: 5},
		},
	})
	require.NoError(t, err)

	l.processMessage(context.Background(), payload)

	require.Len(t, uc.applied, 2)
	assert.Equal(t, 6, uc.applied[0].Stock)
	assert.Nil(t, uc.applied[0].VariantID)
	assert.Equal(t, 0, uc.applied[1].Stock, "oversell clamps at zero")
	require.NotNil(t, uc.applied[1].VariantID)
	assert.Equal(t, variantID, *uc.applied[1].VariantID)
}

func TestProcessMessageIgnoresMalformedAndEmpty(t *testing.T) {
	uc := &fakeUseCase{}
	l := NewStockListener(nil, uc, &fakeProductRepo{}, logger.NewNop())

	l.processMessage(context.Background(), []byte("not json"))
	l.processMessage(context.Background(), []byte(`{"order_id":"","items":[]}`))
	l.processMessage(context.Background(), []byte(`{"order_id":"o1","items":[{"product_id":"missing","quantity":1}]}`))

	assert.Empty(t, uc.applied)
}
