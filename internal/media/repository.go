package media

import (
	"context"

	"github.com/avelia/catalog-service/internal/model"
)

type Repository interface {
	// FindByIDs batch-resolves media ids in a single query.
	FindByIDs(ctx context.Context, ids []string) ([]model.MediaItem, error)
}
