package dto

import "github.com/avelia/catalog-service/internal/model"

type CreateCategoryInput struct {
	Name        string  `json:"name" validate:"required,min=1"`
	Slug        string  `json:"slug" validate:"required,min=1"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

type CreateSubcategoryInput struct {
	CategoryID  string  `json:"category_id" validate:"required,uuid4"`
	Name        string  `json:"name" validate:"required,min=1"`
	Slug        string  `json:"slug" validate:"required,min=1"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

type CreateProductTypeInput struct {
	CategoryID    string  `json:"category_id" validate:"required,uuid4"`
	SubcategoryID string  `json:"subcategory_id" validate:"required,uuid4"`
	Name          string  `json:"name" validate:"required,min=1"`
	Slug          string  `json:"slug" validate:"required,min=1"`
	Description   *string `json:"description"`
	ImageURL      *string `json:"image_url" validate:"omitempty,url"`
}

type UpdateLevelInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Slug        *string `json:"slug" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

type SubmitRequestInput struct {
	Kind          model.RequestKind `json:"kind" validate:"required,oneof=category subcategory product_type"`
	Name          string            `json:"name" validate:"required,min=1"`
	Description   *string           `json:"description"`
	CategoryID    *string           `json:"category_id" validate:"omitempty,uuid4"`
	SubcategoryID *string           `json:"subcategory_id" validate:"omitempty,uuid4"`
	RequesterID   string            `json:"requester_id" validate:"required"`
}

type ReviewRequestInput struct {
	Approve    bool   `json:"approve"`
	ReviewerID string `json:"reviewer_id" validate:"required"`
}
