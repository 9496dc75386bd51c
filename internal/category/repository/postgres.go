package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/avelia/catalog-service/internal/category/dto"
	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/pkg/apperrors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateCategory(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, name, slug, description, image_url, is_active, created_at, updated_at)
        VALUES (:id, :name, :slug, :description, :image_url, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return pkgerrors.Wrap(err, "create category")
}

func (r *PGRepository) FindCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := r.DB.GetContext(ctx, &c, `SELECT * FROM categories WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "find category")
	}
	return &c, nil
}

func (r *PGRepository) ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	query := `SELECT * FROM categories`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name`

	var categories []model.Category
	if err := r.DB.SelectContext(ctx, &categories, query); err != nil {
		return nil, pkgerrors.Wrap(err, "list categories")
	}
	return categories, nil
}

func (r *PGRepository) UpdateCategory(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET name = :name, slug = :slug, description = :description,
            image_url = :image_url, is_active = :is_active, updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return pkgerrors.Wrap(err, "update category")
}

func (r *PGRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.guardedDelete(ctx, "categories", id,
		`SELECT count(*) FROM subcategories WHERE category_id = $1`,
		"category still owns subcategories",
	)
}

func (r *PGRepository) CreateSubcategory(ctx context.Context, s *model.Subcategory) error {
	query := `
        INSERT INTO subcategories (id, category_id, name, slug, description, image_url, is_active, created_at, updated_at)
        VALUES (:id, :category_id, :name, :slug, :description, :image_url, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return pkgerrors.Wrap(err, "create subcategory")
}

func (r *PGRepository) FindSubcategoryByID(ctx context.Context, id string) (*model.Subcategory, error) {
	var s model.Subcategory
	err := r.DB.GetContext(ctx, &s, `SELECT * FROM subcategories WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "find subcategory")
	}
	return &s, nil
}

func (r *PGRepository) ListSubcategories(ctx context.Context, categoryID string) ([]model.Subcategory, error) {
	query := `SELECT * FROM subcategories`
	args := []interface{}{}
	if categoryID != "" {
		query += ` WHERE category_id = $1`
		args = append(args, categoryID)
	}
	query += ` ORDER BY name`

	var subcategories []model.Subcategory
	if err := r.DB.SelectContext(ctx, &subcategories, query, args...); err != nil {
		return nil, pkgerrors.Wrap(err, "list subcategories")
	}
	return subcategories, nil
}

func (r *PGRepository) UpdateSubcategory(ctx context.Context, s *model.Subcategory) error {
	query := `
        UPDATE subcategories
        SET name = :name, slug = :slug, description = :description,
            image_url = :image_url, is_active = :is_active, updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return pkgerrors.Wrap(err, "update subcategory")
}

func (r *PGRepository) DeleteSubcategory(ctx context.Context, id string) error {
	return r.guardedDelete(ctx, "subcategories", id,
		`SELECT count(*) FROM product_types WHERE subcategory_id = $1`,
		"subcategory still owns product types",
	)
}

func (r *PGRepository) CreateProductType(ctx context.Context, t *model.ProductType) error {
	query := `
        INSERT INTO product_types (id, category_id, subcategory_id, name, slug, description, image_url, is_active, created_at, updated_at)
        VALUES (:id, :category_id, :subcategory_id, :name, :slug, :description, :image_url, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, t)
	return pkgerrors.Wrap(err, "create product type")
}

func (r *PGRepository) FindProductTypeByID(ctx context.Context, id string) (*model.ProductType, error) {
	var t model.ProductType
	err := r.DB.GetContext(ctx, &t, `SELECT * FROM product_types WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "find product type")
	}
	return &t, nil
}

func (r *PGRepository) ListProductTypes(ctx context.Context, subcategoryID string) ([]model.ProductType, error) {
	query := `SELECT * FROM product_types`
	args := []interface{}{}
	if subcategoryID != "" {
		query += ` WHERE subcategory_id = $1`
		args = append(args, subcategoryID)
	}
	query += ` ORDER BY name`

	var types []model.ProductType
	if err := r.DB.SelectContext(ctx, &types, query, args...); err != nil {
		return nil, pkgerrors.Wrap(err, "list product types")
	}
	return types, nil
}

func (r *PGRepository) UpdateProductType(ctx context.Context, t *model.ProductType) error {
	query := `
        UPDATE product_types
        SET name = :name, slug = :slug, description = :description,
            image_url = :image_url, is_active = :is_active, updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, t)
	return pkgerrors.Wrap(err, "update product type")
}

func (r *PGRepository) DeleteProductType(ctx context.Context, id string) error {
	return r.guardedDelete(ctx, "product_types", id,
		`SELECT count(*) FROM products WHERE product_type_id = $1 AND is_deleted = false`,
		"product type is still referenced by products",
	)
}

// guardedDelete refuses the hard delete while the level still owns children.
// The count runs inside the delete transaction so a child created in between
// cannot be orphaned.
func (r *PGRepository) guardedDelete(ctx context.Context, table, id, countQuery, reason string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Transaction("delete "+table, err)
	}
	defer tx.Rollback()

	var children int
	if err := tx.GetContext(ctx, &children, countQuery, id); err != nil {
		return apperrors.Transaction("delete "+table, err)
	}
	if children > 0 {
		return apperrors.Precondition("%s", reason)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return apperrors.Transaction("delete "+table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.Transaction("delete "+table, err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return tx.Commit()
}

func (r *PGRepository) CreateRequest(ctx context.Context, req *model.CategoryRequest) error {
	query := `
        INSERT INTO category_requests (id, kind, name, description, category_id, subcategory_id, status, requester_id, reviewer_id, reviewed_at, created_at, updated_at)
        VALUES (:id, :kind, :name, :description, :category_id, :subcategory_id, :status, :requester_id, :reviewer_id, :reviewed_at, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, req)
	return pkgerrors.Wrap(err, "create category request")
}

func (r *PGRepository) FindRequestByID(ctx context.Context, id string) (*model.CategoryRequest, error) {
	var req model.CategoryRequest
	err := r.DB.GetContext(ctx, &req, `SELECT * FROM category_requests WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "find category request")
	}
	return &req, nil
}

func (r *PGRepository) ListRequests(ctx context.Context, status *model.RequestStatus) ([]model.CategoryRequest, error) {
	query := `SELECT * FROM category_requests`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC`

	var requests []model.CategoryRequest
	if err := r.DB.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, pkgerrors.Wrap(err, "list category requests")
	}
	return requests, nil
}

// ReviewRequest transitions the request away from pending, stamping reviewer
// and reviewed_at, and materializes the requested level on approval. The
// transition and the materialization share one transaction.
func (r *PGRepository) ReviewRequest(ctx context.Context, req *model.CategoryRequest, input *dto.ReviewRequestInput) (*model.CategoryRequest, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.Transaction("review request", err)
	}
	defer tx.Rollback()

	now := time.Now()
	status := model.RequestRejected
	if input.Approve {
		status = model.RequestApproved
	}

	res, err := tx.ExecContext(ctx, `
        UPDATE category_requests
        SET status = $1, reviewer_id = $2, reviewed_at = $3, updated_at = $3
        WHERE id = $4 AND status = 'pending'`,
		string(status), input.ReviewerID, now, req.ID,
	)
	if err != nil {
		return nil, apperrors.Transaction("review request", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, apperrors.Transaction("review request", err)
	}
	if affected == 0 {
		return nil, apperrors.Precondition("request %s has already been reviewed", req.ID)
	}

	if input.Approve {
		if err := r.materialize(ctx, tx, req, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Transaction("review request", err)
	}

	req.Status = status
	req.ReviewerID = &input.ReviewerID
	req.ReviewedAt = &now
	req.UpdatedAt = now
	return req, nil
}

func (r *PGRepository) materialize(ctx context.Context, tx *sqlx.Tx, req *model.CategoryRequest, now time.Time) error {
	base := model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	slug := slugify(req.Name)

	switch req.Kind {
	case model.RequestKindCategory:
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO categories (id, name, slug, description, image_url, is_active, created_at, updated_at)
            VALUES (:id, :name, :slug, :description, NULL, true, :created_at, :updated_at)`,
			map[string]interface{}{
				"id": base.ID, "name": req.Name, "slug": slug,
				"description": req.Description, "created_at": now, "updated_at": now,
			},
		)
		if err != nil {
			return apperrors.Transaction("review request", err)
		}
	case model.RequestKindSubcategory:
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO subcategories (id, category_id, name, slug, description, image_url, is_active, created_at, updated_at)
            VALUES (:id, :category_id, :name, :slug, :description, NULL, true, :created_at, :updated_at)`,
			map[string]interface{}{
				"id": base.ID, "category_id": req.CategoryID, "name": req.Name, "slug": slug,
				"description": req.Description, "created_at": now, "updated_at": now,
			},
		)
		if err != nil {
			return apperrors.Transaction("review request", err)
		}
	case model.RequestKindProductType:
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO product_types (id, category_id, subcategory_id, name, slug, description, image_url, is_active, created_at, updated_at)
            VALUES (:id, :category_id, :subcategory_id, :name, :slug, :description, NULL, true, :created_at, :updated_at)`,
			map[string]interface{}{
				"id": base.ID, "category_id": req.CategoryID, "subcategory_id": req.SubcategoryID,
				"name": req.Name, "slug": slug,
				"description": req.Description, "created_at": now, "updated_at": now,
			},
		)
		if err != nil {
			return apperrors.Transaction("review request", err)
		}
	}
	return nil
}
