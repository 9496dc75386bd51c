package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/avelia/catalog-service/internal/media"
	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/internal/order"
	"github.com/avelia/catalog-service/internal/order/dto"
	"github.com/avelia/catalog-service/internal/product"
	productdto "github.com/avelia/catalog-service/internal/product/dto"
	"github.com/avelia/catalog-service/pkg/apperrors"
	"github.com/avelia/catalog-service/pkg/broker"
	"github.com/avelia/catalog-service/pkg/logger"
	"github.com/avelia/catalog-service/pkg/validate"
)

// OrderCreatedEvent is published after a successful order insert so the stock
// listener can decrement inventory asynchronously.
type OrderCreatedEvent struct {
	OrderID string                  `json:"order_id"`
	Items   []OrderCreatedEventItem `json:"items"`
}

type OrderCreatedEventItem struct {
	ProductID string  `json:"product_id"`
	VariantID *string `json:"variant_id"`
	Quantity  int     `json:"quantity"`
}

type orderUseCase struct {
	repo        order.Repository
	productRepo product.Repository
	resolver    *media.Resolver
	producer    *broker.KafkaProducer
	logger      logger.ZapLogger
}

func NewOrderUseCase(
	repo order.Repository,
	productRepo product.Repository,
	resolver *media.Resolver,
	producer *broker.KafkaProducer,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		repo:        repo,
		productRepo: productRepo,
		resolver:    resolver,
		producer:    producer,
		logger:      log,
	}
}

// Create snapshots product title/sku/image into each line item and computes
// the totals from decimal line prices, so later product edits never change
// what this order records.
func (uc *orderUseCase) Create(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	now := time.Now()
	o := &model.Order{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		UserID:    input.UserID,
		Status:    model.OrderPending,
		Items:     make([]model.OrderItem, 0, len(input.Items)),
	}

	subtotal := decimal.Zero
	for _, item := range input.Items {
		snapshot, price, err := uc.snapshot(ctx, &item)
		if err != nil {
			return nil, err
		}
		snapshot.BaseModel = model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
		snapshot.OrderID = o.ID
		o.Items = append(o.Items, *snapshot)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	total := subtotal.Add(input.Shipping).Add(input.Tax).Sub(input.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.Subtotal = subtotal.StringFixed(2)
	o.Shipping = input.Shipping.StringFixed(2)
	o.Tax = input.Tax.StringFixed(2)
	o.Discount = input.Discount.StringFixed(2)
	o.Total = total.StringFixed(2)

	if err := uc.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	uc.publishCreated(o)
	return o, nil
}

// snapshot resolves the ordered product (and variant, when given) into a
// denormalized line item carrying title, sku, image url and unit price.
func (uc *orderUseCase) snapshot(ctx context.Context, item *dto.CreateItemInput) (*model.OrderItem, decimal.Decimal, error) {
	p, err := uc.productRepo.Find(ctx, &productdto.Lookup{ID: item.ProductID})
	if err != nil {
		return nil, decimal.Zero, err
	}
	if p == nil {
		return nil, decimal.Zero, apperrors.Precondition("product %s does not exist", item.ProductID)
	}

	snap := &model.OrderItem{
		ProductID: p.ID,
		VariantID: item.VariantID,
		Title:     p.Title,
		SKU:       p.SKU,
		Quantity:  item.Quantity,
	}
	price := p.Price
	imageID := firstMediaID(p)

	if item.VariantID != nil {
		variant := findVariant(p.Variants, *item.VariantID)
		if variant == nil {
			variants, err := uc.productRepo.FindVariants(ctx, p.ID, false)
			if err != nil {
				return nil, decimal.Zero, err
			}
			variant = findVariant(variants, *item.VariantID)
		}
		if variant == nil {
			return nil, decimal.Zero, apperrors.Precondition("variant %s does not belong to product %s", *item.VariantID, p.ID)
		}
		snap.Title = p.Title + " / " + variant.Title
		if variant.SKU != nil {
			snap.SKU = *variant.SKU
		}
		price = variant.Price
		if variant.ImageID != nil {
			imageID = *variant.ImageID
		}
	}

	unit, err := decimal.NewFromString(price)
	if err != nil {
		return nil, decimal.Zero, apperrors.Precondition("product %s carries a malformed price", p.ID)
	}
	snap.Price = unit.StringFixed(2)

	if imageID != "" {
		resolved, err := uc.resolver.Resolve(ctx, []string{imageID})
		if err == nil {
			if m := resolved[imageID]; m != nil {
				snap.ImageURL = &m.URL
			}
		}
	}
	return snap, unit, nil
}

func (uc *orderUseCase) Get(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperrors.ErrNotFound
	}
	return o, nil
}

func (uc *orderUseCase) List(ctx context.Context, criteria *dto.ListCriteria) ([]model.Order, error) {
	if criteria.Limit <= 0 {
		criteria.Limit = 20
	}
	if criteria.Page <= 0 {
		criteria.Page = 1
	}
	return uc.repo.List(ctx, criteria)
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, id string, input *dto.UpdateStatusInput) (*model.Order, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	o, err := uc.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperrors.ErrNotFound
	}
	if !o.Status.CanTransition(input.Status) {
		return nil, apperrors.Precondition("order cannot move from %s to %s", o.Status, input.Status)
	}

	if err := uc.repo.UpdateStatus(ctx, id, input.Status); err != nil {
		return nil, err
	}
	o.Status = input.Status
	return o, nil
}

func (uc *orderUseCase) publishCreated(o *model.Order) {
	if uc.producer == nil {
		return
	}
	event := OrderCreatedEvent{OrderID: o.ID}
	for _, item := range o.Items {
		event.Items = append(event.Items, OrderCreatedEventItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, err := json.Marshal(event)
		if err != nil {
			return
		}
		if err := uc.producer.Publish(ctx, []byte(o.ID), payload); err != nil {
			uc.logger.Warn("order created event publish failed", zap.String("order_id", o.ID), zap.Error(err))
		}
	}()
}

func findVariant(variants []model.ProductVariant, id string) *model.ProductVariant {
	for i := range variants {
		if variants[i].ID == id {
			return &variants[i]
		}
	}
	return nil
}

func firstMediaID(p *model.Product) string {
	if len(p.Media) > 0 {
		return p.Media[0].MediaID
	}
	return ""
}
