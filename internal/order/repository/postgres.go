package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/internal/order/dto"
	"github.com/avelia/catalog-service/pkg/apperrors"
)

const insertOrderQuery = `
    INSERT INTO orders (id, user_id, status, subtotal, shipping, tax, discount, total, created_at, updated_at)
    VALUES (:id, :user_id, :status, :subtotal, :shipping, :tax, :discount, :total, :created_at, :updated_at)
`

const insertOrderItemQuery = `
    INSERT INTO order_items (id, order_id, product_id, variant_id, title, sku, image_url, price, quantity, created_at, updated_at)
    VALUES (:id, :order_id, :product_id, :variant_id, :title, :sku, :image_url, :price, :quantity, :created_at, :updated_at)
`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Transaction("create order", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertOrderQuery, o); err != nil {
		return apperrors.Transaction("create order", err)
	}
	if len(o.Items) > 0 {
		if _, err := tx.NamedExecContext(ctx, insertOrderItemQuery, o.Items); err != nil {
			return apperrors.Transaction("create order", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Transaction("create order", err)
	}
	return nil
}

func (r *PGRepository) Find(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "find order")
	}

	if err := r.DB.SelectContext(ctx, &o.Items,
		`SELECT * FROM order_items WHERE order_id = $1 ORDER BY created_at`, id,
	); err != nil {
		return nil, pkgerrors.Wrap(err, "find order items")
	}
	if o.Items == nil {
		o.Items = []model.OrderItem{}
	}
	return &o, nil
}

func (r *PGRepository) List(ctx context.Context, criteria *dto.ListCriteria) ([]model.Order, error) {
	conditions := []string{}
	args := map[string]interface{}{}
	if criteria.UserID != "" {
		conditions = append(conditions, "user_id = :user_id")
		args["user_id"] = criteria.UserID
	}
	if criteria.Status != nil {
		conditions = append(conditions, "status = :status")
		args["status"] = string(*criteria.Status)
	}

	query := `SELECT * FROM orders`
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += ` ORDER BY created_at DESC LIMIT :limit OFFSET :offset`
	args["limit"] = criteria.Limit
	args["offset"] = (criteria.Page - 1) * criteria.Limit

	stmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list orders")
	}
	defer stmt.Close()

	var orders []model.Order
	if err := stmt.SelectContext(ctx, &orders, args); err != nil {
		return nil, pkgerrors.Wrap(err, "list orders")
	}
	return orders, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return pkgerrors.Wrap(err, "update order status")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return pkgerrors.Wrap(err, "update order status")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
