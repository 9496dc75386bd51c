package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/avelia/catalog-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.MediaItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM media_items WHERE id IN (?)`, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find media items")
	}

	var items []model.MediaItem
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return nil, pkgerrors.Wrap(err, "find media items")
	}
	return items, nil
}
