package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/internal/product/dto"
	"github.com/avelia/catalog-service/pkg/apperrors"
	"github.com/avelia/catalog-service/pkg/validate"
)

const insertProductQuery = `
	INSERT INTO products (
		id, title, slug, description, price, compare_at_price, cost_per_item,
		quantity, sku, is_active, is_available, is_published, is_marketed, is_deleted,
		verification_status, category_id, subcategory_id, product_type_id,
		published_at, marketed_at, deleted_at, created_at, updated_at
	) VALUES (
		:id, :title, :slug, :description, :price, :compare_at_price, :cost_per_item,
		:quantity, :sku, :is_active, :is_available, :is_published, :is_marketed, :is_deleted,
		:verification_status, :category_id, :subcategory_id, :product_type_id,
		:published_at, :marketed_at, :deleted_at, :created_at, :updated_at
	)`

const insertOptionQuery = `
	INSERT INTO product_options (
		id, product_id, name, value, price, compare_at_price, cost_per_item,
		is_deleted, deleted_at, created_at, updated_at
	) VALUES (
		:id, :product_id, :name, :value, :price, :compare_at_price, :cost_per_item,
		:is_deleted, :deleted_at, :created_at, :updated_at
	)`

const insertVariantQuery = `
	INSERT INTO product_variants (
		id, product_id, title, sku, price, compare_at_price, cost_per_item,
		quantity, image_id, is_deleted, deleted_at, created_at, updated_at
	) VALUES (
		:id, :product_id, :title, :sku, :price, :compare_at_price, :cost_per_item,
		:quantity, :image_id, :is_deleted, :deleted_at, :created_at, :updated_at
	)`

// Batch inserts N products and their nested options/variants in one
// transaction: products first, then the children in two bulk inserts keyed by
// the new parent ids. All-or-nothing.
func (r *PGRepository) Batch(ctx context.Context, inputs []dto.CreateProductInput) ([]model.Product, error) {
	now := time.Now()

	products := make([]model.Product, 0, len(inputs))
	var options []model.ProductOption
	var variants []model.ProductVariant

	for _, in := range inputs {
		p := buildProduct(&in, now)
		for _, o := range in.Options {
			options = append(options, model.ProductOption{
				BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
				ProductID:      p.ID,
				Name:           o.Name,
				Value:          o.Value,
				Price:          moneyPtr(o.Price),
				CompareAtPrice: moneyPtr(o.CompareAtPrice),
				CostPerItem:    moneyPtr(o.CostPerItem),
			})
		}
		for _, v := range in.Variants {
			variants = append(variants, model.ProductVariant{
				BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
				ProductID:      p.ID,
				Title:          v.Title,
				SKU:            validate.EmptyToNil(v.SKU),
				Price:          money(v.Price),
				CompareAtPrice: moneyPtr(v.CompareAtPrice),
				CostPerItem:    moneyPtr(v.CostPerItem),
				Quantity:       v.Quantity,
				ImageID:        v.ImageID,
			})
		}
		products = append(products, p)
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.Transaction("product batch", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertProductQuery, products); err != nil {
		return nil, apperrors.Transaction("product batch", err)
	}
	if len(options) > 0 {
		if _, err := tx.NamedExecContext(ctx, insertOptionQuery, options); err != nil {
			return nil, apperrors.Transaction("product batch", err)
		}
	}
	if len(variants) > 0 {
		if _, err := tx.NamedExecContext(ctx, insertVariantQuery, variants); err != nil {
			return nil, apperrors.Transaction("product batch", err)
		}
	}

	for i := range inputs {
		for j, mediaID := range inputs[i].MediaIDs {
			link := model.ProductMedia{ProductID: products[i].ID, MediaID: mediaID, SortOrder: j}
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO product_media (product_id, media_id, sort_order) VALUES (:product_id, :media_id, :sort_order)`,
				link,
			); err != nil {
				return nil, apperrors.Transaction("product batch", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Transaction("product batch", err)
	}

	if err := r.loadChildren(ctx, r.DB, products); err != nil {
		return nil, err
	}
	return products, nil
}

func buildProduct(in *dto.CreateProductInput, now time.Time) model.Product {
	return model.Product{
		BaseModel:          model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Title:              in.Title,
		Slug:               in.Slug,
		Description:        validate.EmptyToNil(in.Description),
		Price:              money(in.Price),
		CompareAtPrice:     moneyPtr(in.CompareAtPrice),
		CostPerItem:        moneyPtr(in.CostPerItem),
		Quantity:           in.Quantity,
		SKU:                in.SKU,
		IsActive:           true,
		IsAvailable:        true,
		VerificationStatus: model.VerificationPending,
		CategoryID:         in.CategoryID,
		SubcategoryID:      in.SubcategoryID,
		ProductTypeID:      in.ProductTypeID,
	}
}

// Update runs the diff/reconcile routine in one transaction. The product row
// is locked first so concurrent updates to the same product serialize instead
// of racing on the option/variant diff.
func (r *PGRepository) Update(ctx context.Context, id string, input *dto.UpdateProductInput) (*model.Product, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.Transaction("product update", err)
	}
	defer tx.Rollback()

	var current model.Product
	if err := tx.GetContext(ctx, &current, `SELECT * FROM products WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Transaction("product update", err)
	}

	now := time.Now()
	if err := updateScalars(ctx, tx, id, input, now); err != nil {
		return nil, err
	}

	if input.Options != nil {
		if err := r.reconcileOptions(ctx, tx, id, *input.Options, now); err != nil {
			return nil, err
		}
	}
	if input.Variants != nil {
		if err := r.reconcileVariants(ctx, tx, id, *input.Variants, now); err != nil {
			return nil, err
		}
	}

	// Re-read the reconciled state inside the transaction.
	var updated model.Product
	if err := tx.GetContext(ctx, &updated, `SELECT * FROM products WHERE id = $1`, id); err != nil {
		return nil, apperrors.Transaction("product update", err)
	}
	page := []model.Product{updated}
	if err := r.loadChildren(ctx, tx, page); err != nil {
		return nil, apperrors.Transaction("product update", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Transaction("product update", err)
	}
	return &page[0], nil
}

// updateScalars applies the three-state field semantics: absent fields are
// left untouched, null fields are cleared, set fields overwrite.
func updateScalars(ctx context.Context, tx *sqlx.Tx, id string, input *dto.UpdateProductInput, now time.Time) error {
	query, args := buildScalarUpdate(id, input, now)
	if _, err := tx.NamedExecContext(ctx, query, args); err != nil {
		return apperrors.Transaction("product update", err)
	}
	return nil
}

func buildScalarUpdate(id string, input *dto.UpdateProductInput, now time.Time) (string, map[string]interface{}) {
	sets := []string{"updated_at = :updated_at"}
	args := map[string]interface{}{"id": id, "updated_at": now}

	setString := func(column string, f interface {
		IsSet() bool
		Ptr() *string
	}) {
		if !f.IsSet() {
			return
		}
		sets = append(sets, column+" = :"+column)
		args[column] = validate.EmptyToNil(f.Ptr())
	}

	setString("title", input.Title)
	setString("slug", input.Slug)
	setString("description", input.Description)
	setString("sku", input.SKU)
	setString("verification_status", input.VerificationStatus)
	setString("category_id", input.CategoryID)
	setString("subcategory_id", input.SubcategoryID)
	setString("product_type_id", input.ProductTypeID)

	if input.Price.IsSet() {
		sets = append(sets, "price = :price")
		if v, ok := input.Price.Value(); ok {
			args["price"] = money(v)
		} else {
			args["price"] = nil
		}
	}
	if input.CompareAtPrice.IsSet() {
		sets = append(sets, "compare_at_price = :compare_at_price")
		args["compare_at_price"] = moneyPtr(input.CompareAtPrice.Ptr())
	}
	if input.CostPerItem.IsSet() {
		sets = append(sets, "cost_per_item = :cost_per_item")
		args["cost_per_item"] = moneyPtr(input.CostPerItem.Ptr())
	}
	if input.Quantity.IsSet() {
		sets = append(sets, "quantity = :quantity")
		args["quantity"], _ = input.Quantity.Value()
	}
	if input.IsActive.IsSet() {
		sets = append(sets, "is_active = :is_active")
		args["is_active"], _ = input.IsActive.Value()
	}
	if input.IsAvailable.IsSet() {
		sets = append(sets, "is_available = :is_available")
		args["is_available"], _ = input.IsAvailable.Value()
	}
	if input.IsPublished.IsSet() {
		sets = append(sets, "is_published = :is_published")
		v, _ := input.IsPublished.Value()
		args["is_published"] = v
		// Unpublishing pulls the product off the marketed rail too; a
		// marketed product is always published.
		if !v {
			sets = append(sets, "is_marketed = false", "marketed_at = NULL")
		}
	}

	return "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id = :id", args
}

func (r *PGRepository) reconcileOptions(ctx context.Context, tx *sqlx.Tx, productID string, inputs []dto.UpsertOptionInput, now time.Time) error {
	var current []model.ProductOption
	if err := tx.SelectContext(ctx, &current,
		`SELECT * FROM product_options WHERE product_id = $1 AND is_deleted = false`, productID,
	); err != nil {
		return apperrors.Transaction("option reconcile", err)
	}

	incoming := make([]model.ProductOption, 0, len(inputs))
	for _, in := range inputs {
		incoming = append(incoming, model.ProductOption{
			BaseModel:      model.BaseModel{ID: in.ID, CreatedAt: now, UpdatedAt: now},
			ProductID:      productID,
			Name:           in.Name,
			Value:          in.Value,
			Price:          moneyPtr(in.Price),
			CompareAtPrice: moneyPtr(in.CompareAtPrice),
			CostPerItem:    moneyPtr(in.CostPerItem),
		})
	}

	toAdd, toUpdate, toDelete := diffOptions(current, incoming)

	for i := range toAdd {
		if toAdd[i].ID == "" {
			toAdd[i].ID = uuid.New().String()
		}
	}
	if len(toAdd) > 0 {
		if _, err := tx.NamedExecContext(ctx, insertOptionQuery, toAdd); err != nil {
			return apperrors.Transaction("option reconcile", err)
		}
	}

	for _, o := range toUpdate {
		if _, err := tx.NamedExecContext(ctx, `
			UPDATE product_options
			SET name = :name, value = :value, price = :price,
				compare_at_price = :compare_at_price, cost_per_item = :cost_per_item,
				updated_at = :updated_at
			WHERE id = :id AND product_id = :product_id`, o,
		); err != nil {
			return apperrors.Transaction("option reconcile", err)
		}
	}

	if len(toDelete) > 0 {
		if err := softDeleteChildren(ctx, tx, "product_options", productID, toDelete, now); err != nil {
			return apperrors.Transaction("option reconcile", err)
		}
	}
	return nil
}

func (r *PGRepository) reconcileVariants(ctx context.Context, tx *sqlx.Tx, productID string, inputs []dto.UpsertVariantInput, now time.Time) error {
	var current []model.ProductVariant
	if err := tx.SelectContext(ctx, &current,
		`SELECT * FROM product_variants WHERE product_id = $1 AND is_deleted = false`, productID,
	); err != nil {
		return apperrors.Transaction("variant reconcile", err)
	}

	incoming := make([]model.ProductVariant, 0, len(inputs))
	for _, in := range inputs {
		incoming = append(incoming, model.ProductVariant{
			BaseModel:      model.BaseModel{ID: in.ID, CreatedAt: now, UpdatedAt: now},
			ProductID:      productID,
			Title:          in.Title,
			SKU:            validate.EmptyToNil(in.SKU),
			Price:          money(in.Price),
			CompareAtPrice: moneyPtr(in.CompareAtPrice),
			CostPerItem:    moneyPtr(in.CostPerItem),
			Quantity:       in.Quantity,
			ImageID:        in.ImageID,
		})
	}

	toAdd, toUpdate, toDelete := diffVariants(current, incoming)

	for i := range toAdd {
		if toAdd[i].ID == "" {
			toAdd[i].ID = uuid.New().String()
		}
	}
	if len(toAdd) > 0 {
		if _, err := tx.NamedExecContext(ctx, insertVariantQuery, toAdd); err != nil {
			return apperrors.Transaction("variant reconcile", err)
		}
	}

	for _, v := range toUpdate {
		if _, err := tx.NamedExecContext(ctx, `
			UPDATE product_variants
			SET title = :title, sku = :sku, price = :price,
				compare_at_price = :compare_at_price, cost_per_item = :cost_per_item,
				quantity = :quantity, image_id = :image_id, updated_at = :updated_at
			WHERE id = :id AND product_id = :product_id`, v,
		); err != nil {
			return apperrors.Transaction("variant reconcile", err)
		}
	}

	if len(toDelete) > 0 {
		if err := softDeleteChildren(ctx, tx, "product_variants", productID, toDelete, now); err != nil {
			return apperrors.Transaction("variant reconcile", err)
		}
	}
	return nil
}

// Deletions of options/variants are always soft: the rows stay behind with
// is_deleted = true and a deleted_at stamp.
func softDeleteChildren(ctx context.Context, tx *sqlx.Tx, table, productID string, ids []string, now time.Time) error {
	query, args, err := sqlx.In(
		"UPDATE "+table+" SET is_deleted = true, deleted_at = ?, updated_at = ? WHERE product_id = ? AND id IN (?)",
		now, now, productID, ids,
	)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
	return err
}

// UpdateMarketingStatus encapsulates the marketing business rule: marketing a
// product forces it published; unmarketing clears marketed_at but leaves
// is_published alone.
func (r *PGRepository) UpdateMarketingStatus(ctx context.Context, id string, isMarketed bool) (*model.Product, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.Transaction("marketing update", err)
	}
	defer tx.Rollback()

	var query string
	if isMarketed {
		query = `
			UPDATE products
			SET is_marketed = true, is_published = true,
				published_at = COALESCE(published_at, now()),
				marketed_at = now(), updated_at = now()
			WHERE id = $1`
	} else {
		query = `
			UPDATE products
			SET is_marketed = false, marketed_at = NULL, updated_at = now()
			WHERE id = $1`
	}

	res, err := tx.ExecContext(ctx, query, id)
	if err := notFoundIfNoRows(res, err, "marketing update"); err != nil {
		return nil, err
	}

	var updated model.Product
	if err := tx.GetContext(ctx, &updated, `SELECT * FROM products WHERE id = $1`, id); err != nil {
		return nil, apperrors.Transaction("marketing update", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Transaction("marketing update", err)
	}
	return &updated, nil
}

// UpdateStock applies absolute quantity writes. Items are independent of each
// other but share one transaction.
func (r *PGRepository) UpdateStock(ctx context.Context, updates []dto.StockUpdate) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Transaction("stock update", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		if u.VariantID != nil {
			res, err := tx.ExecContext(ctx,
				`UPDATE product_variants SET quantity = $1, updated_at = now() WHERE id = $2 AND product_id = $3`,
				u.Stock, *u.VariantID, u.ProductID,
			)
			if err := notFoundIfNoRows(res, err, "stock update"); err != nil {
				return err
			}
			continue
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE products SET quantity = $1, updated_at = now() WHERE id = $2`,
			u.Stock, u.ProductID,
		)
		if err := notFoundIfNoRows(res, err, "stock update"); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Transaction("stock update", err)
	}
	return nil
}

// Delete is a physical row delete, deliberately unlike the soft delete used
// for options/variants.
func (r *PGRepository) Delete(ctx context.Context, id string) (*dto.DeleteResult, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err := notFoundIfNoRows(res, err, "delete product"); err != nil {
		return nil, err
	}
	return &dto.DeleteResult{Success: true, DeletedID: id}, nil
}
