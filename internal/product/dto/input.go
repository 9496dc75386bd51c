package dto

import (
	"github.com/shopspring/decimal"

	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/pkg/optional"
)

// Filters is ternary per flag: nil means the predicate is not applied.
type Filters struct {
	IsActive           *bool
	IsAvailable        *bool
	IsPublished        *bool
	IsMarketed         *bool
	IsDeleted          *bool
	VerificationStatus *model.VerificationStatus
}

type SortBy string

const (
	SortByPrice     SortBy = "price"
	SortByCreatedAt SortBy = "created_at"
	SortByMarketed  SortBy = "marketed_at"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type PaginateCriteria struct {
	Filters
	Limit         int `validate:"required,gt=0"`
	Page          int `validate:"required,gt=0"`
	Search        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	CategoryID    string
	SubcategoryID string
	ProductTypeID string
	SortBy        SortBy    `validate:"omitempty,oneof=price created_at marketed_at"`
	SortOrder     SortOrder `validate:"omitempty,oneof=asc desc"`
}

// SearchOnly reports whether the criteria carry nothing beyond the search
// term and the default exclusion of soft-deleted products. The search index
// holds live products only, so any other predicate must be answered by the
// database.
func (c *PaginateCriteria) SearchOnly() bool {
	if c.MinPrice != nil || c.MaxPrice != nil {
		return false
	}
	if c.CategoryID != "" || c.SubcategoryID != "" || c.ProductTypeID != "" {
		return false
	}
	if c.IsActive != nil || c.IsAvailable != nil || c.IsPublished != nil ||
		c.IsMarketed != nil || c.VerificationStatus != nil {
		return false
	}
	return c.IsDeleted == nil || !*c.IsDeleted
}

// Lookup fetches one product; at least one of ID/SKU/Slug must be supplied.
type Lookup struct {
	Filters
	ID   string
	SKU  string
	Slug string
}

func (l *Lookup) Empty() bool {
	return l.ID == "" && l.SKU == "" && l.Slug == ""
}

type CreateOptionInput struct {
	Name           string           `json:"name" validate:"required,min=1"`
	Value          string           `json:"value" validate:"required,min=1"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	CostPerItem    *decimal.Decimal `json:"cost_per_item"`
}

type CreateVariantInput struct {
	Title          string           `json:"title" validate:"required,min=1"`
	SKU            *string          `json:"sku"`
	Price          decimal.Decimal  `json:"price" validate:"required"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	CostPerItem    *decimal.Decimal `json:"cost_per_item"`
	Quantity       int              `json:"quantity" validate:"gte=0"`
	ImageID        *string          `json:"image_id" validate:"omitempty,uuid4"`
}

type CreateProductInput struct {
	Title          string           `json:"title" validate:"required,min=1"`
	Slug           string           `json:"slug" validate:"required,min=1"`
	Description    *string          `json:"description"`
	Price          decimal.Decimal  `json:"price" validate:"required"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	CostPerItem    *decimal.Decimal `json:"cost_per_item"`
	Quantity       int              `json:"quantity" validate:"gte=0"`
	SKU            string           `json:"sku"`
	CategoryID     *string          `json:"category_id" validate:"omitempty,uuid4"`
	SubcategoryID  *string          `json:"subcategory_id" validate:"omitempty,uuid4"`
	ProductTypeID  *string          `json:"product_type_id" validate:"omitempty,uuid4"`
	MediaIDs       []string         `json:"media_ids" validate:"dive,uuid4"`

	Options  []CreateOptionInput  `json:"options"`
	Variants []CreateVariantInput `json:"variants"`
}

// UpsertOptionInput with an empty ID is an addition; with an ID it either
// updates the existing row (when content differs) or is left alone.
type UpsertOptionInput struct {
	ID             string           `json:"id" validate:"omitempty,uuid4"`
	Name           string           `json:"name" validate:"required,min=1"`
	Value          string           `json:"value" validate:"required,min=1"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	CostPerItem    *decimal.Decimal `json:"cost_per_item"`
}

type UpsertVariantInput struct {
	ID             string           `json:"id" validate:"omitempty,uuid4"`
	Title          string           `json:"title" validate:"required,min=1"`
	SKU            *string          `json:"sku"`
	Price          decimal.Decimal  `json:"price" validate:"required"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	CostPerItem    *decimal.Decimal `json:"cost_per_item"`
	Quantity       int              `json:"quantity" validate:"gte=0"`
	ImageID        *string          `json:"image_id" validate:"omitempty,uuid4"`
}

// UpdateProductInput fields are three-state: absent leaves the column
// untouched, an explicit null clears it, a value sets it. Options/Variants
// nil means "do not reconcile children"; an empty list soft-deletes them all.
type UpdateProductInput struct {
	Title              optional.Field[string]          `json:"title"`
	Slug               optional.Field[string]          `json:"slug"`
	Description        optional.Field[string]          `json:"description"`
	Price              optional.Field[decimal.Decimal] `json:"price"`
	CompareAtPrice     optional.Field[decimal.Decimal] `json:"compare_at_price"`
	CostPerItem        optional.Field[decimal.Decimal] `json:"cost_per_item"`
	Quantity           optional.Field[int]             `json:"quantity"`
	SKU                optional.Field[string]          `json:"sku"`
	IsActive           optional.Field[bool]            `json:"is_active"`
	IsAvailable        optional.Field[bool]            `json:"is_available"`
	IsPublished        optional.Field[bool]            `json:"is_published"`
	VerificationStatus optional.Field[string]          `json:"verification_status"`
	CategoryID         optional.Field[string]          `json:"category_id"`
	SubcategoryID      optional.Field[string]          `json:"subcategory_id"`
	ProductTypeID      optional.Field[string]          `json:"product_type_id"`

	Options  *[]UpsertOptionInput  `json:"options"`
	Variants *[]UpsertVariantInput `json:"variants"`
}

// StockUpdate is an absolute quantity write targeting the product itself or,
// when VariantID is set, one of its variants.
type StockUpdate struct {
	ProductID string  `json:"product_id" validate:"required,uuid4"`
	VariantID *string `json:"variant_id" validate:"omitempty,uuid4"`
	Stock     int     `json:"stock" validate:"gte=0"`
}
