package model

import "time"

// Category → Subcategory → ProductType is a strict three-level hierarchy.
// Levels are soft-disabled via IsActive and never hard-deleted while they
// still own children.
type Category struct {
	BaseModel
	Name        string  `db:"name" json:"name"`
	Slug        string  `db:"slug" json:"slug"`
	Description *string `db:"description" json:"description"`
	ImageURL    *string `db:"image_url" json:"image_url"`
	IsActive    bool    `db:"is_active" json:"is_active"`

	Subcategories []Subcategory `db:"-" json:"subcategories,omitempty"`
}

type Subcategory struct {
	BaseModel
	CategoryID  string  `db:"category_id" json:"category_id"`
	Name        string  `db:"name" json:"name"`
	Slug        string  `db:"slug" json:"slug"`
	Description *string `db:"description" json:"description"`
	ImageURL    *string `db:"image_url" json:"image_url"`
	IsActive    bool    `db:"is_active" json:"is_active"`

	ProductTypes []ProductType `db:"-" json:"product_types,omitempty"`
}

// ProductType carries both ancestor ids; the pair must stay mutually
// consistent (its subcategory's parent equals its category id).
type ProductType struct {
	BaseModel
	CategoryID    string  `db:"category_id" json:"category_id"`
	SubcategoryID string  `db:"subcategory_id" json:"subcategory_id"`
	Name          string  `db:"name" json:"name"`
	Slug          string  `db:"slug" json:"slug"`
	Description   *string `db:"description" json:"description"`
	ImageURL      *string `db:"image_url" json:"image_url"`
	IsActive      bool    `db:"is_active" json:"is_active"`
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type RequestKind string

const (
	RequestKindCategory    RequestKind = "category"
	RequestKindSubcategory RequestKind = "subcategory"
	RequestKindProductType RequestKind = "product_type"
)

// CategoryRequest is a moderation proposal to add a hierarchy level.
// ReviewedAt is set exactly when Status leaves pending.
type CategoryRequest struct {
	BaseModel
	Kind          RequestKind   `db:"kind" json:"kind"`
	Name          string        `db:"name" json:"name"`
	Description   *string       `db:"description" json:"description"`
	CategoryID    *string       `db:"category_id" json:"category_id"`
	SubcategoryID *string       `db:"subcategory_id" json:"subcategory_id"`
	Status        RequestStatus `db:"status" json:"status"`
	RequesterID   string        `db:"requester_id" json:"requester_id"`
	ReviewerID    *string       `db:"reviewer_id" json:"reviewer_id"`
	ReviewedAt    *time.Time    `db:"reviewed_at" json:"reviewed_at"`
}
