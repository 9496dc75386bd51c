package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/internal/product/dto"
	"github.com/avelia/catalog-service/pkg/apperrors"
)

const (
	eagerVariantLimit = 1
	eagerOptionLimit  = 3
	eagerMediaLimit   = 2
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Count(ctx context.Context, f *dto.Filters) (int, error) {
	args := map[string]interface{}{}
	conditions := filterConditions(f, args)

	query := "SELECT count(*) FROM products p"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "count products")
	}
	defer nstmt.Close()

	if err := nstmt.GetContext(ctx, &count, args); err != nil {
		return 0, pkgerrors.Wrap(err, "count products")
	}
	return count, nil
}

type productRow struct {
	model.Product
	TotalCount int     `db:"total_count"`
	SearchRank float64 `db:"search_rank"`
}

func (r *PGRepository) Paginate(ctx context.Context, c *dto.PaginateCriteria) (*dto.Page, error) {
	args := map[string]interface{}{}
	conditions := paginateConditions(c, args)

	// Total row count rides the page query as a window count; no second
	// round trip.
	rankExpr := "0 AS search_rank"
	if c.Search != "" {
		rankExpr = "ts_rank(" + searchVector + ", plainto_tsquery('english', :search)) AS search_rank"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(
		"SELECT p.*, COUNT(*) OVER() AS total_count, %s FROM products p%s ORDER BY %s LIMIT :limit OFFSET :offset",
		rankExpr, whereClause, orderBy(c),
	)
	args["limit"] = c.Limit
	args["offset"] = (c.Page - 1) * c.Limit

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "paginate products")
	}
	defer nstmt.Close()

	var rows []productRow
	if err := nstmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, pkgerrors.Wrap(err, "paginate products")
	}

	items := 0
	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		items = row.TotalCount
		products = append(products, row.Product)
	}

	if err := r.loadChildren(ctx, r.DB, products); err != nil {
		return nil, err
	}

	pages := 0
	if c.Limit > 0 {
		pages = (items + c.Limit - 1) / c.Limit
	}
	return &dto.Page{Data: products, Items: items, Pages: pages}, nil
}

func (r *PGRepository) Find(ctx context.Context, lookup *dto.Lookup) (*model.Product, error) {
	args := map[string]interface{}{}
	conditions := filterConditions(&lookup.Filters, args)

	if lookup.ID != "" {
		conditions = append(conditions, "p.id = :id")
		args["id"] = lookup.ID
	}
	if lookup.SKU != "" {
		conditions = append(conditions, "p.sku = :sku")
		args["sku"] = lookup.SKU
	}
	if lookup.Slug != "" {
		conditions = append(conditions, "p.slug = :slug")
		args["slug"] = lookup.Slug
	}

	query := "SELECT p.* FROM products p WHERE " + strings.Join(conditions, " AND ") + " LIMIT 1"

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find product")
	}
	defer nstmt.Close()

	var p model.Product
	if err := nstmt.GetContext(ctx, &p, args); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "find product")
	}

	page := []model.Product{p}
	if err := r.loadChildren(ctx, r.DB, page); err != nil {
		return nil, err
	}
	return &page[0], nil
}

func (r *PGRepository) MarketedCount(ctx context.Context) (int, error) {
	var count int
	query := `SELECT count(*) FROM products p WHERE p.is_active = true AND p.is_deleted = false AND p.is_marketed = true`
	if err := r.DB.GetContext(ctx, &count, query); err != nil {
		return 0, pkgerrors.Wrap(err, "marketed count")
	}
	return count, nil
}

func (r *PGRepository) NewArrivals(ctx context.Context, limit int) ([]model.Product, error) {
	return r.visibleList(ctx, limit, "", "p.created_at DESC")
}

func (r *PGRepository) MarketedProducts(ctx context.Context, limit int) ([]model.Product, error) {
	return r.visibleList(ctx, limit, " AND p.is_marketed = true", "p.marketed_at DESC")
}

// visibleList is the public storefront read path: fixed visibility predicate
// set and bounded eager loads to cap response size.
func (r *PGRepository) visibleList(ctx context.Context, limit int, extra, order string) ([]model.Product, error) {
	query := fmt.Sprintf(
		"SELECT p.* FROM products p WHERE %s%s ORDER BY %s LIMIT $1",
		visibleConditions, extra, order,
	)

	var products []model.Product
	if err := r.DB.SelectContext(ctx, &products, query, limit); err != nil {
		return nil, pkgerrors.Wrap(err, "list visible products")
	}
	if len(products) == 0 {
		return products, nil
	}

	ids := productIDs(products)
	options, err := r.loadOptionsBounded(ctx, ids, eagerOptionLimit)
	if err != nil {
		return nil, err
	}
	variants, err := r.loadVariantsBounded(ctx, ids, eagerVariantLimit)
	if err != nil {
		return nil, err
	}
	media, err := r.loadMediaBounded(ctx, ids, eagerMediaLimit)
	if err != nil {
		return nil, err
	}

	attachChildren(products, options, variants, media)
	return products, nil
}

func (r *PGRepository) FindVariants(ctx context.Context, productID string, includeDeleted bool) ([]model.ProductVariant, error) {
	query := `SELECT * FROM product_variants WHERE product_id = $1`
	if !includeDeleted {
		query += ` AND is_deleted = false`
	}
	query += ` ORDER BY created_at`

	var variants []model.ProductVariant
	if err := r.DB.SelectContext(ctx, &variants, query, productID); err != nil {
		return nil, pkgerrors.Wrap(err, "find variants")
	}
	return variants, nil
}

// loadChildren fetches the full (unbounded) non-deleted option/variant sets
// and media links for a page of products in three id-list queries.
func (r *PGRepository) loadChildren(ctx context.Context, ext sqlx.ExtContext, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := productIDs(products)

	var options []model.ProductOption
	query, qargs, err := sqlx.In(`SELECT * FROM product_options WHERE product_id IN (?) AND is_deleted = false ORDER BY created_at`, ids)
	if err != nil {
		return pkgerrors.Wrap(err, "load options")
	}
	if err := sqlx.SelectContext(ctx, ext, &options, ext.Rebind(query), qargs...); err != nil {
		return pkgerrors.Wrap(err, "load options")
	}

	var variants []model.ProductVariant
	query, qargs, err = sqlx.In(`SELECT * FROM product_variants WHERE product_id IN (?) AND is_deleted = false ORDER BY created_at`, ids)
	if err != nil {
		return pkgerrors.Wrap(err, "load variants")
	}
	if err := sqlx.SelectContext(ctx, ext, &variants, ext.Rebind(query), qargs...); err != nil {
		return pkgerrors.Wrap(err, "load variants")
	}

	var media []model.ProductMedia
	query, qargs, err = sqlx.In(`SELECT * FROM product_media WHERE product_id IN (?) ORDER BY sort_order`, ids)
	if err != nil {
		return pkgerrors.Wrap(err, "load media links")
	}
	if err := sqlx.SelectContext(ctx, ext, &media, ext.Rebind(query), qargs...); err != nil {
		return pkgerrors.Wrap(err, "load media links")
	}

	attachChildren(products, options, variants, media)
	return nil
}

type boundedOptionRow struct {
	model.ProductOption
	RN int `db:"rn"`
}

type boundedVariantRow struct {
	model.ProductVariant
	RN int `db:"rn"`
}

type boundedMediaRow struct {
	model.ProductMedia
	RN int `db:"rn"`
}

func (r *PGRepository) loadOptionsBounded(ctx context.Context, ids []interface{}, limit int) ([]model.ProductOption, error) {
	query, qargs, err := sqlx.In(`
		SELECT * FROM (
			SELECT o.*, ROW_NUMBER() OVER (PARTITION BY o.product_id ORDER BY o.created_at) AS rn
			FROM product_options o
			WHERE o.product_id IN (?) AND o.is_deleted = false
		) t WHERE t.rn <= ?`, ids, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load bounded options")
	}

	var rows []boundedOptionRow
	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(query), qargs...); err != nil {
		return nil, pkgerrors.Wrap(err, "load bounded options")
	}

	options := make([]model.ProductOption, 0, len(rows))
	for _, row := range rows {
		options = append(options, row.ProductOption)
	}
	return options, nil
}

func (r *PGRepository) loadVariantsBounded(ctx context.Context, ids []interface{}, limit int) ([]model.ProductVariant, error) {
	query, qargs, err := sqlx.In(`
		SELECT * FROM (
			SELECT v.*, ROW_NUMBER() OVER (PARTITION BY v.product_id ORDER BY v.created_at) AS rn
			FROM product_variants v
			WHERE v.product_id IN (?) AND v.is_deleted = false
		) t WHERE t.rn <= ?`, ids, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load bounded variants")
	}

	var rows []boundedVariantRow
	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(query), qargs...); err != nil {
		return nil, pkgerrors.Wrap(err, "load bounded variants")
	}

	variants := make([]model.ProductVariant, 0, len(rows))
	for _, row := range rows {
		variants = append(variants, row.ProductVariant)
	}
	return variants, nil
}

func (r *PGRepository) loadMediaBounded(ctx context.Context, ids []interface{}, limit int) ([]model.ProductMedia, error) {
	query, qargs, err := sqlx.In(`
		SELECT * FROM (
			SELECT m.*, ROW_NUMBER() OVER (PARTITION BY m.product_id ORDER BY m.sort_order) AS rn
			FROM product_media m
			WHERE m.product_id IN (?)
		) t WHERE t.rn <= ?`, ids, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load bounded media links")
	}

	var rows []boundedMediaRow
	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(query), qargs...); err != nil {
		return nil, pkgerrors.Wrap(err, "load bounded media links")
	}

	media := make([]model.ProductMedia, 0, len(rows))
	for _, row := range rows {
		media = append(media, row.ProductMedia)
	}
	return media, nil
}

func productIDs(products []model.Product) []interface{} {
	ids := make([]interface{}, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func attachChildren(products []model.Product, options []model.ProductOption, variants []model.ProductVariant, media []model.ProductMedia) {
	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		products[i].Options = []model.ProductOption{}
		products[i].Variants = []model.ProductVariant{}
		products[i].Media = []model.ProductMedia{}
		byID[products[i].ID] = &products[i]
	}
	for _, o := range options {
		if p, ok := byID[o.ProductID]; ok {
			p.Options = append(p.Options, o)
		}
	}
	for _, v := range variants {
		if p, ok := byID[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	for _, m := range media {
		if p, ok := byID[m.ProductID]; ok {
			p.Media = append(p.Media, m)
		}
	}
}

func notFoundIfNoRows(res sql.Result, err error, wrap string) error {
	if err != nil {
		return pkgerrors.Wrap(err, wrap)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return pkgerrors.Wrap(err, wrap)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
