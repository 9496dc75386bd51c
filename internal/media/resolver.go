package media

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/pkg/cache"
	"github.com/avelia/catalog-service/pkg/logger"
)

const (
	cacheKeyPrefix = "media:"
	cacheTTL       = 30 * time.Minute
)

// Resolver batch-resolves media ids to MediaItem records: ids are deduplicated
// into one set per request, the cache is consulted first, and the misses go to
// the store in a single query. Callers never issue one lookup per record.
type Resolver struct {
	repo   Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewResolver(repo Repository, cache *cache.RedisClient, log logger.ZapLogger) *Resolver {
	return &Resolver{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

// Resolve returns a map from media id to item; ids that resolve to nothing
// are absent from the map.
func (r *Resolver) Resolve(ctx context.Context, ids []string) (map[string]*model.MediaItem, error) {
	unique := dedupe(ids)
	resolved := make(map[string]*model.MediaItem, len(unique))
	if len(unique) == 0 {
		return resolved, nil
	}

	missing := unique
	if r.cache != nil {
		missing = r.fromCache(ctx, unique, resolved)
	}

	if len(missing) > 0 {
		items, err := r.repo.FindByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for i := range items {
			item := items[i]
			resolved[item.ID] = &item
		}
		if r.cache != nil {
			r.backfill(ctx, items)
		}
	}

	return resolved, nil
}

// Attach merges resolved items into a page of products: product media links
// and variant images, nil where unresolved. Nothing else on the records is
// touched.
func (r *Resolver) Attach(ctx context.Context, products []model.Product) error {
	ids := make([]string, 0, len(products)*2)
	for i := range products {
		for _, m := range products[i].Media {
			ids = append(ids, m.MediaID)
		}
		for _, v := range products[i].Variants {
			if v.ImageID != nil {
				ids = append(ids, *v.ImageID)
			}
		}
	}

	resolved, err := r.Resolve(ctx, ids)
	if err != nil {
		return err
	}

	for i := range products {
		for j := range products[i].Media {
			products[i].Media[j].MediaItem = resolved[products[i].Media[j].MediaID]
		}
		for j := range products[i].Variants {
			if imageID := products[i].Variants[j].ImageID; imageID != nil {
				products[i].Variants[j].MediaItem = resolved[*imageID]
			}
		}
	}
	return nil
}

// fromCache fills resolved from redis and returns the ids it could not serve.
// Cache trouble degrades to a full store lookup.
func (r *Resolver) fromCache(ctx context.Context, ids []string, resolved map[string]*model.MediaItem) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cacheKeyPrefix+id)
	}

	values, err := r.cache.Client.MGet(ctx, keys...).Result()
	if err != nil {
		r.logger.Warn("media cache lookup failed", zap.Error(err))
		return ids
	}

	missing := make([]string, 0, len(ids))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var item model.MediaItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		resolved[ids[i]] = &item
	}
	return missing
}

func (r *Resolver) backfill(ctx context.Context, items []model.MediaItem) {
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			continue
		}
		if err := r.cache.Client.Set(ctx, cacheKeyPrefix+item.ID, data, cacheTTL).Err(); err != nil {
			r.logger.Warn("media cache backfill failed", zap.Error(err))
			return
		}
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
