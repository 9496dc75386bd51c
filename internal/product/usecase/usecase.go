package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/avelia/catalog-service/internal/media"
	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/internal/product"
	"github.com/avelia/catalog-service/internal/product/dto"
	"github.com/avelia/catalog-service/pkg/apperrors"
	"github.com/avelia/catalog-service/pkg/cache"
	"github.com/avelia/catalog-service/pkg/logger"
	"github.com/avelia/catalog-service/pkg/search"
	"github.com/avelia/catalog-service/pkg/validate"
)

const (
	listCacheTTL    = 5 * time.Minute
	productsIndex   = "products"
	defaultSlotsCap = 10
)

type productUseCase struct {
	repo     product.Repository
	resolver *media.Resolver
	cache    *cache.RedisClient
	es       *search.Client
	logger   logger.ZapLogger
	slotCap  int
}

func NewProductUseCase(repo product.Repository, resolver *media.Resolver, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger, slotCap int) product.UseCase {
	if slotCap <= 0 {
		slotCap = defaultSlotsCap
	}
	return &productUseCase{
		repo:     repo,
		resolver: resolver,
		cache:    cache,
		es:       es,
		logger:   log,
		slotCap:  slotCap,
	}
}

func (uc *productUseCase) Count(ctx context.Context, f *dto.Filters) (int, error) {
	return uc.repo.Count(ctx, f)
}

func (uc *productUseCase) Paginate(ctx context.Context, c *dto.PaginateCriteria) (*dto.Page, error) {
	if err := validate.Struct(c); err != nil {
		return nil, err
	}

	cacheKey, err := uc.listCacheKey(c)
	if err == nil && uc.cache != nil {
		if val, err := uc.cache.Client.Get(ctx, cacheKey).Result(); err == nil {
			var page dto.Page
			if err := json.Unmarshal([]byte(val), &page); err == nil {
				return &page, nil
			}
		}
	}

	if c.Search != "" && uc.es != nil && c.SearchOnly() {
		if page, err := uc.searchElastic(ctx, c); err == nil {
			return page, nil
		} else {
			uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
		}
	}

	page, err := uc.repo.Paginate(ctx, c)
	if err != nil {
		return nil, err
	}

	if err := uc.resolver.Attach(ctx, page.Data); err != nil {
		return nil, err
	}

	if cacheKey != "" && uc.cache != nil {
		if data, err := json.Marshal(page); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, listCacheTTL)
		}
	}

	return page, nil
}

// searchElastic queries the search index with title boosted over description.
// Only SearchOnly criteria reach here: anything with price, taxonomy or flag
// predicates takes the database full-text path so filter semantics stay
// identical. The matched ids are re-read through the repository.
func (uc *productUseCase) searchElastic(ctx context.Context, c *dto.PaginateCriteria) (*dto.Page, error) {
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  c.Search,
				"fields": []string{"title^3", "description"},
			},
		},
		"from": (c.Page - 1) * c.Limit,
		"size": c.Limit,
	}

	res, err := uc.es.Search(ctx, productsIndex, q)
	if err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		lookup := &dto.Lookup{ID: hit.ID, Filters: c.Filters}
		p, err := uc.repo.Find(ctx, lookup)
		if err != nil {
			return nil, err
		}
		if p != nil {
			products = append(products, *p)
		}
	}

	if err := uc.resolver.Attach(ctx, products); err != nil {
		return nil, err
	}

	items := res.Hits.Total.Value
	pages := 0
	if c.Limit > 0 {
		pages = (items + c.Limit - 1) / c.Limit
	}
	return &dto.Page{Data: products, Items: items, Pages: pages}, nil
}

func (uc *productUseCase) Get(ctx context.Context, lookup *dto.Lookup) (*model.Product, error) {
	if lookup.Empty() {
		return nil, apperrors.Precondition("one of id, sku or slug must be supplied")
	}

	p, err := uc.repo.Find(ctx, lookup)
	if err != nil || p == nil {
		return nil, err
	}

	page := []model.Product{*p}
	if err := uc.resolver.Attach(ctx, page); err != nil {
		return nil, err
	}
	return &page[0], nil
}

func (uc *productUseCase) Batch(ctx context.Context, inputs []dto.CreateProductInput) ([]model.Product, error) {
	if len(inputs) == 0 {
		return nil, apperrors.Precondition("batch requires at least one product")
	}
	if err := validate.All(inputs); err != nil {
		return nil, err
	}

	products, err := uc.repo.Batch(ctx, inputs)
	if err != nil {
		return nil, err
	}

	go uc.invalidateListCache(context.Background())
	for i := range products {
		go uc.syncToElastic(context.Background(), &products[i])
	}

	return products, nil
}

func (uc *productUseCase) Update(ctx context.Context, id string, input *dto.UpdateProductInput) (*model.Product, error) {
	if id == "" {
		return nil, apperrors.Precondition("product id is required")
	}
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	p, err := uc.repo.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

// validateUpdate rejects explicit nulls on columns that may never be cleared
// and runs the per-element rules on incoming children.
func validateUpdate(input *dto.UpdateProductInput) error {
	var fields []apperrors.FieldError
	for _, check := range []struct {
		name string
		null bool
	}{
		{"title", input.Title.IsNull()},
		{"slug", input.Slug.IsNull()},
		{"sku", input.SKU.IsNull()},
		{"price", input.Price.IsNull()},
		{"quantity", input.Quantity.IsNull()},
	} {
		if check.null {
			fields = append(fields, apperrors.FieldError{Field: check.name, Message: "cannot be null"})
		}
	}
	if v, ok := input.VerificationStatus.Value(); ok {
		switch model.VerificationStatus(v) {
		case model.VerificationPending, model.VerificationApproved, model.VerificationRejected:
		default:
			fields = append(fields, apperrors.FieldError{Field: "verification_status", Message: "must be one of [pending approved rejected]"})
		}
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}

	if input.Options != nil {
		if err := validate.All(*input.Options); err != nil {
			return err
		}
	}
	if input.Variants != nil {
		if err := validate.All(*input.Variants); err != nil {
			return err
		}
	}
	return nil
}

func (uc *productUseCase) UpdateMarketingStatus(ctx context.Context, id string, isMarketed bool) (*model.Product, error) {
	if id == "" {
		return nil, apperrors.Precondition("product id is required")
	}

	// The display-slot cap is a storefront rule, so it lives here rather
	// than in the SQL path.
	if isMarketed {
		count, err := uc.repo.MarketedCount(ctx)
		if err != nil {
			return nil, err
		}
		if count >= uc.slotCap {
			return nil, apperrors.Precondition("marketed slot cap of %d reached", uc.slotCap)
		}
	}

	p, err := uc.repo.UpdateMarketingStatus(ctx, id, isMarketed)
	if err != nil {
		return nil, err
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) GetMarketedCount(ctx context.Context) (int, error) {
	return uc.repo.MarketedCount(ctx)
}

func (uc *productUseCase) UpdateStock(ctx context.Context, updates []dto.StockUpdate) error {
	if len(updates) == 0 {
		return apperrors.Precondition("stock update requires at least one item")
	}
	if err := validate.All(updates); err != nil {
		return err
	}

	if err := uc.repo.UpdateStock(ctx, updates); err != nil {
		return err
	}

	go uc.invalidateListCache(context.Background())
	return nil
}

func (uc *productUseCase) GetNewArrivals(ctx context.Context, limit int) ([]model.Product, error) {
	products, err := uc.repo.NewArrivals(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := uc.resolver.Attach(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (uc *productUseCase) GetMarketedProducts(ctx context.Context, limit int) ([]model.Product, error) {
	products, err := uc.repo.MarketedProducts(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := uc.resolver.Attach(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (uc *productUseCase) Delete(ctx context.Context, id string) (*dto.DeleteResult, error) {
	if id == "" {
		return nil, apperrors.Precondition("product id is required")
	}

	result, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	go uc.invalidateListCache(context.Background())
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), productsIndex, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}

	return result, nil
}

func (uc *productUseCase) listCacheKey(c *dto.PaginateCriteria) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%x", md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	keys, err := uc.cache.Client.Keys(ctx, "products:list:*").Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}

	// Soft-deleted products leave the index so search totals stay in step
	// with the default listing.
	if p.IsDeleted {
		if err := uc.es.Delete(ctx, productsIndex, p.ID); err != nil {
			uc.logger.Error("failed to delete product from ES", zap.Error(err))
		}
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"title": { "type": "text" },
				"description": { "type": "text" },
				"slug": { "type": "keyword" },
				"sku": { "type": "keyword" },
				"price": { "type": "double" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, productsIndex, mapping)

	if err := uc.es.Index(ctx, productsIndex, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.Error(err))
	}
}
