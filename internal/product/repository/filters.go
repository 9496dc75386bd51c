package repository

import (
	"fmt"
	"strings"

	"github.com/avelia/catalog-service/internal/product/dto"
)

// searchVector weights title over description for ranked full-text search.
const searchVector = `(setweight(to_tsvector('english', p.title), 'A') || setweight(to_tsvector('english', coalesce(p.description, '')), 'B'))`

const visibleConditions = `p.is_active = true AND p.is_published = true AND p.is_available = true AND p.is_deleted = false AND p.verification_status = 'approved'`

// filterConditions translates the ternary flag filters into predicates.
// Absent (nil) filters are simply not applied.
func filterConditions(f *dto.Filters, args map[string]interface{}) []string {
	conditions := []string{}
	if f == nil {
		return conditions
	}
	if f.IsActive != nil {
		conditions = append(conditions, "p.is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.IsAvailable != nil {
		conditions = append(conditions, "p.is_available = :is_available")
		args["is_available"] = *f.IsAvailable
	}
	if f.IsPublished != nil {
		conditions = append(conditions, "p.is_published = :is_published")
		args["is_published"] = *f.IsPublished
	}
	if f.IsMarketed != nil {
		conditions = append(conditions, "p.is_marketed = :is_marketed")
		args["is_marketed"] = *f.IsMarketed
	}
	if f.IsDeleted != nil {
		conditions = append(conditions, "p.is_deleted = :is_deleted")
		args["is_deleted"] = *f.IsDeleted
	}
	if f.VerificationStatus != nil {
		conditions = append(conditions, "p.verification_status = :verification_status")
		args["verification_status"] = string(*f.VerificationStatus)
	}
	return conditions
}

// paginateConditions builds the full predicate list for Paginate. The price
// range matches when either the base price or any non-deleted variant price
// falls in range.
func paginateConditions(c *dto.PaginateCriteria, args map[string]interface{}) []string {
	conditions := filterConditions(&c.Filters, args)

	if c.Search != "" {
		conditions = append(conditions, searchVector+" @@ plainto_tsquery('english', :search)")
		args["search"] = c.Search
	}

	if c.MinPrice != nil || c.MaxPrice != nil {
		base := []string{}
		variant := []string{}
		if c.MinPrice != nil {
			base = append(base, "p.price >= :min_price")
			variant = append(variant, "v.price >= :min_price")
			args["min_price"] = money(*c.MinPrice)
		}
		if c.MaxPrice != nil {
			base = append(base, "p.price <= :max_price")
			variant = append(variant, "v.price <= :max_price")
			args["max_price"] = money(*c.MaxPrice)
		}
		conditions = append(conditions, fmt.Sprintf(
			"((%s) OR EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND v.is_deleted = false AND %s))",
			strings.Join(base, " AND "), strings.Join(variant, " AND "),
		))
	}

	if c.CategoryID != "" {
		conditions = append(conditions, "p.category_id = :category_id")
		args["category_id"] = c.CategoryID
	}
	if c.SubcategoryID != "" {
		conditions = append(conditions, "p.subcategory_id = :subcategory_id")
		args["subcategory_id"] = c.SubcategoryID
	}
	if c.ProductTypeID != "" {
		conditions = append(conditions, "p.product_type_id = :product_type_id")
		args["product_type_id"] = c.ProductTypeID
	}

	return conditions
}

// orderBy whitelists sort columns; ties break on full-text rank when a
// search term is present.
func orderBy(c *dto.PaginateCriteria) string {
	column := "p.created_at"
	switch c.SortBy {
	case dto.SortByPrice:
		column = "p.price"
	case dto.SortByCreatedAt:
		column = "p.created_at"
	case dto.SortByMarketed:
		column = "p.marketed_at"
	}

	direction := "DESC"
	if c.SortOrder == dto.SortAsc {
		direction = "ASC"
	}

	clause := column + " " + direction
	if c.Search != "" {
		clause += ", search_rank DESC"
	}
	return clause
}
