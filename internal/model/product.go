package model

import "time"

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// Product prices are stored as canonical two-place decimal strings; the
// repository normalizes them before any write.
type Product struct {
	BaseModel
	Title              string             `db:"title" json:"title"`
	Slug               string             `db:"slug" json:"slug"`
	Description        *string            `db:"description" json:"description"`
	Price              string             `db:"price" json:"price"`
	CompareAtPrice     *string            `db:"compare_at_price" json:"compare_at_price"`
	CostPerItem        *string            `db:"cost_per_item" json:"cost_per_item"`
	Quantity           int                `db:"quantity" json:"quantity"`
	SKU                string             `db:"sku" json:"sku"`
	IsActive           bool               `db:"is_active" json:"is_active"`
	IsAvailable        bool               `db:"is_available" json:"is_available"`
	IsPublished        bool               `db:"is_published" json:"is_published"`
	IsMarketed         bool               `db:"is_marketed" json:"is_marketed"`
	IsDeleted          bool               `db:"is_deleted" json:"is_deleted"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verification_status"`
	CategoryID         *string            `db:"category_id" json:"category_id"`
	SubcategoryID      *string            `db:"subcategory_id" json:"subcategory_id"`
	ProductTypeID      *string            `db:"product_type_id" json:"product_type_id"`
	PublishedAt        *time.Time         `db:"published_at" json:"published_at"`
	MarketedAt         *time.Time         `db:"marketed_at" json:"marketed_at"`
	DeletedAt          *time.Time         `db:"deleted_at" json:"deleted_at"`

	Options  []ProductOption  `db:"-" json:"options"`
	Variants []ProductVariant `db:"-" json:"variants"`
	Media    []ProductMedia   `db:"-" json:"media"`
}

type ProductOption struct {
	BaseModel
	ProductID      string     `db:"product_id" json:"product_id"`
	Name           string     `db:"name" json:"name"`
	Value          string     `db:"value" json:"value"`
	Price          *string    `db:"price" json:"price"`
	CompareAtPrice *string    `db:"compare_at_price" json:"compare_at_price"`
	CostPerItem    *string    `db:"cost_per_item" json:"cost_per_item"`
	IsDeleted      bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deleted_at"`
}

type ProductVariant struct {
	BaseModel
	ProductID      string     `db:"product_id" json:"product_id"`
	Title          string     `db:"title" json:"title"`
	SKU            *string    `db:"sku" json:"sku"`
	Price          string     `db:"price" json:"price"`
	CompareAtPrice *string    `db:"compare_at_price" json:"compare_at_price"`
	CostPerItem    *string    `db:"cost_per_item" json:"cost_per_item"`
	Quantity       int        `db:"quantity" json:"quantity"`
	ImageID        *string    `db:"image_id" json:"image_id"`
	IsDeleted      bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deleted_at"`

	MediaItem *MediaItem `db:"-" json:"media_item"` // Resolved, not in DB table
}

// ProductMedia links a product to a media id; MediaItem is attached by the
// resolver after the batch lookup.
type ProductMedia struct {
	ProductID string     `db:"product_id" json:"product_id"`
	MediaID   string     `db:"media_id" json:"media_id"`
	SortOrder int        `db:"sort_order" json:"sort_order"`
	MediaItem *MediaItem `db:"-" json:"media_item"`
}
